package patchcore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// contextWindow is the number of lines shown on each side of a candidate
// match line in a Verdict's ErrorContext.
const contextWindow = 10

// previewChars is how much of a file is shown when no candidate line
// exists at all.
const previewChars = 500

// Analyze enriches each block in place (ValidMatch, LineNumber,
// MatchQuality) and returns one Verdict per block, evaluating a decision
// table top-to-bottom: the first row whose condition holds yields the
// verdict. Analyze never raises; every block yields exactly one verdict.
// Grounded 1:1 on original_source/patcher_core.py:analyze_blocks.
func (e *Engine) Analyze(blocks []Block) []Verdict {
	verdicts := make([]Verdict, len(blocks))
	for i := range blocks {
		verdicts[i] = e.analyzeOne(&blocks[i])
	}
	return verdicts
}

func (e *Engine) analyzeOne(b *Block) Verdict {
	logger := e.logger()

	// Row 1: ignore policy.
	if e.ignore.Match(b.Filename) {
		logger.DebugContext(e.ctx, "block_ignored", "file", b.Filename)
		return Verdict{
			Filename:    b.Filename,
			Status:      StatusError,
			Message:     "File is protected by .patchignore",
			Suggestions: []string{"Remove from .patchignore if you want to patch this file"},
		}
	}

	absPath := e.abs(b.Filename)
	searchEmpty := strings.TrimSpace(b.SearchBlock) == ""
	replaceEmpty := strings.TrimSpace(b.ReplaceBlock) == ""

	info, statErr := os.Stat(absPath)
	exists := statErr == nil

	// Rows 2-4: file does not exist.
	if !exists {
		if !searchEmpty {
			return Verdict{
				Filename: b.Filename,
				Status:   StatusError,
				Message:  "SEARCH must be empty for new files",
				Suggestions: []string{
					"Leave SEARCH block empty to create a new file",
				},
			}
		}
		parentExists := dirExists(filepath.Dir(absPath))
		if parentExists {
			return Verdict{
				Filename: b.Filename,
				Status:   StatusSuccess,
				Message:  "will be created",
			}
		}
		return Verdict{
			Filename: b.Filename,
			Status:   StatusWarning,
			Message:  "directory will be created",
			Suggestions: []string{
				"Ensure the directory path is correct",
			},
		}
	}
	if info.IsDir() {
		return Verdict{
			Filename: b.Filename,
			Status:   StatusError,
			Message:  fmt.Sprintf("%s is a directory", b.Filename),
		}
	}

	// Row 5: file exists, replace is blank -> deletion.
	if replaceEmpty {
		return Verdict{
			Filename: b.Filename,
			Status:   StatusWarning,
			Message:  "file will be deleted",
			Suggestions: []string{
				"Ensure you want to delete this file completely",
			},
		}
	}

	// Row 6: file exists, read fails.
	contentBytes, err := os.ReadFile(absPath)
	if err != nil {
		return Verdict{
			Filename: b.Filename,
			Status:   StatusError,
			Message:  fmt.Sprintf("cannot read file: %v", err),
		}
	}
	content := string(contentBytes)

	// Row 7: empty search for an existing file.
	if searchEmpty {
		return Verdict{
			Filename: b.Filename,
			Status:   StatusError,
			Message:  "SEARCH block is empty for existing file",
			Suggestions: []string{
				"Provide context to locate where to insert code",
			},
		}
	}

	outcome := resolveMatch(content, b.SearchBlock)
	logger.DebugContext(e.ctx, "match_attempted", "file", b.Filename, "tier", string(outcome.tier))

	switch {
	case outcome.ambiguousN > 1 && outcome.ambiguousAt == tierExact:
		ctxWin := contextAround(content, outcome.ambiguousLine)
		return Verdict{
			Filename: b.Filename,
			Status:   StatusError,
			Message:  fmt.Sprintf("Ambiguous! Found %d exact matches", outcome.ambiguousN),
			Suggestions: []string{
				"Add more surrounding context to make the search unique",
				"Include function/class signatures or unique comments",
			},
			ErrorContext: ctxWin,
		}

	case outcome.ambiguousN > 1 && outcome.ambiguousAt == tierRegex:
		ctxWin := contextAround(content, outcome.ambiguousLine)
		return Verdict{
			Filename: b.Filename,
			Status:   StatusError,
			Message:  fmt.Sprintf("Found %d similar blocks", outcome.ambiguousN),
			Suggestions: []string{
				"Provide more unique context",
			},
			ErrorContext: ctxWin,
		}

	case outcome.tier == tierExact:
		b.ValidMatch = outcome.found
		b.LineNumber = outcome.line
		b.MatchQuality = 100
		diff := UnifiedDiff(b.Filename, outcome.found, b.ReplaceBlock)
		return Verdict{
			Filename:        b.Filename,
			Status:          StatusSuccess,
			Message:         fmt.Sprintf("Exact match found at line %d", outcome.line),
			DiffPreview:     diff,
			LineNumber:      outcome.line,
			SimilarityScore: 100,
		}

	case outcome.tier == tierRegex:
		b.ValidMatch = outcome.found
		b.LineNumber = outcome.line
		b.MatchQuality = 95
		diff := UnifiedDiff(b.Filename, outcome.found, b.ReplaceBlock)
		return Verdict{
			Filename:        b.Filename,
			Status:          StatusWarning,
			Message:         fmt.Sprintf("Match found at line %d (whitespace differences)", outcome.line),
			DiffPreview:     diff,
			LineNumber:      outcome.line,
			SimilarityScore: 95,
			Suggestions:     []string{"Review the diff carefully for indentation changes"},
		}

	case outcome.tier == tierFuzzy:
		b.ValidMatch = outcome.found
		b.LineNumber = outcome.line
		b.MatchQuality = outcome.similarity
		diff := UnifiedDiff(b.Filename, outcome.found, b.ReplaceBlock)
		ctxWin := contextAround(content, outcome.line)
		return Verdict{
			Filename:        b.Filename,
			Status:          StatusWarning,
			Message:         fmt.Sprintf("Fuzzy match at line %d (%.1f%% similar)", outcome.line, outcome.similarity),
			DiffPreview:     diff,
			LineNumber:      outcome.line,
			SimilarityScore: outcome.similarity,
			Suggestions: []string{
				"Verify the match is correct before applying",
				"AI may have a slightly different version of the code",
			},
			ErrorContext: ctxWin,
		}

	default:
		var ctxWin string
		if outcome.bestGuessLine > 0 {
			ctxWin = contextAround(content, outcome.bestGuessLine)
		} else {
			ctxWin = previewPrefix(content)
		}
		return Verdict{
			Filename: b.Filename,
			Status:   StatusError,
			Message:  fmt.Sprintf("No match found. Best similarity: %.1f%%", outcome.bestGuessSimilarity),
			Suggestions: []string{
				"Check if the file has been recently modified",
				"Verify you're editing the correct file",
				"The AI may have hallucinated or used outdated code",
			},
			ErrorContext: ctxWin,
		}
	}
}

// contextAround extracts a ±contextWindow window of content's lines
// around line (1-based), marking the candidate line with ">>>". Grounded
// on original_source/patcher_core.py:_get_context_window.
func contextAround(content string, line int) string {
	lines := strings.Split(content, "\n")
	idx := line - 1
	if idx < 0 {
		idx = 0
	}
	start := idx - contextWindow
	if start < 0 {
		start = 0
	}
	end := idx + contextWindow + 1
	if end > len(lines) {
		end = len(lines)
	}
	var sb strings.Builder
	for i := start; i < end; i++ {
		marker := "   "
		if i == idx {
			marker = ">>>"
		}
		fmt.Fprintf(&sb, "%s %4d | %s\n", marker, i+1, lines[i])
	}
	return strings.TrimRight(sb.String(), "\n")
}

// previewPrefix returns the first previewChars characters of content, for
// total-miss diagnostics with no candidate line at all.
func previewPrefix(content string) string {
	r := []rune(content)
	if len(r) <= previewChars {
		return content
	}
	return string(r[:previewChars])
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
