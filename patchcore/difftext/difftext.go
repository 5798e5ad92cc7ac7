// Package difftext renders the two diff views the review layer needs: a
// standard unified diff, and a structured side-by-side cell stream. It
// performs no styling of its own; callers decide how to present the data.
//
// The unified renderer is adapted from sketch.dev's
// claudetool/patch.go:generateUnifiedDiff, which calls github.com/pkg/diff
// directly. The side-by-side renderer is new, grounded on
// original_source/patcher_core.py's split-mode _generate_diff_preview and
// original_source/app.py's render_side_by_side_diff, which consume exactly
// this (line number, text, kind) cell shape per side.
package difftext

import (
	"fmt"
	"strings"

	"github.com/pkg/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies one side-by-side cell.
type Kind int

const (
	Equal Kind = iota
	Delete
	Insert
	Empty
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	default:
		return "empty"
	}
}

// Cell is one rendered line on one side of a side-by-side diff.
type Cell struct {
	Line int  // 1-based line number, 0 means absent
	Text string
	Kind Kind
}

// Row is one aligned pair of cells, one per side.
type Row struct {
	Left  Cell
	Right Cell
}

// Unified renders a standard unified diff with three lines of context,
// line terminators stripped, exactly as claudetool/patch.go's
// generateUnifiedDiff does via github.com/pkg/diff.
func Unified(name, original, modified string) string {
	var buf strings.Builder
	if err := diff.Text(name, name, original, modified, &buf); err != nil {
		return fmt.Sprintf("(diff generation failed: %v)\n", err)
	}
	return buf.String()
}

// SideBySide produces an aligned two-column cell stream for (original,
// modified): equal runs appear on both sides with matching line numbers,
// deletes appear on the left with an empty right cell, inserts appear on
// the right with an empty left cell, and replaces render the deleted
// lines above the inserted lines - matching the opcode walk in
// original_source/patcher_core.py's split-mode _generate_diff_preview.
//
// The edit script driving the walk comes from diffmatchpatch's line-mode
// diff helpers (DiffLinesToChars + DiffMain + DiffCharsToLines), the
// documented idiomatic way to get a line-level (rather than rune-level)
// diff out of that library.
func SideBySide(original, modified string) []Row {
	dmp := diffmatchpatch.New()
	aChars, bChars, lineArray := dmp.DiffLinesToChars(original, modified)
	diffs := dmp.DiffMain(aChars, bChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var rows []Row
	leftLine, rightLine := 1, 1
	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for _, l := range lines {
				rows = append(rows, Row{
					Left:  Cell{Line: leftLine, Text: l, Kind: Equal},
					Right: Cell{Line: rightLine, Text: l, Kind: Equal},
				})
				leftLine++
				rightLine++
			}
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				rows = append(rows, Row{
					Left:  Cell{Line: leftLine, Text: l, Kind: Delete},
					Right: Cell{Kind: Empty},
				})
				leftLine++
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				rows = append(rows, Row{
					Left:  Cell{Kind: Empty},
					Right: Cell{Line: rightLine, Text: l, Kind: Insert},
				})
				rightLine++
			}
		}
	}
	return rows
}

// splitLines splits a diffmatchpatch line-mode chunk into its constituent
// lines, dropping the final empty element produced by a trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

