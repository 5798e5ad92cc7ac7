package patchcore

import "github.com/DanielGr12/ai-code-integrator/patchcore/difftext"

// DiffRow and DiffCell re-export difftext's side-by-side types at the
// patchcore package's API surface, so callers only need to import one
// package.
type DiffCell = difftext.Cell
type DiffRow = difftext.Row

// UnifiedDiff renders a standard unified diff between original and
// modified, three lines of context, via difftext.Unified.
func UnifiedDiff(name, original, modified string) string {
	return difftext.Unified(name, original, modified)
}

// SideBySideDiff renders an aligned two-column cell stream between
// original and modified via difftext.SideBySide.
func SideBySideDiff(original, modified string) []DiffRow {
	return difftext.SideBySide(original, modified)
}
