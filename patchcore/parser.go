package patchcore

import (
	"regexp"
	"strings"
)

// blockRE extracts one FILE:/SEARCH/REPLACE block. It is intentionally
// non-greedy on the search and replace bodies (".*?") so that consecutive
// blocks in one input are parsed independently rather than one match
// swallowing up to the *last* ">>>>>" in the text. Grounded on
// original_source/patcher_core.py:parse_response's
// `re.compile(r"FILE:\s*(.*?)\n<<<<< SEARCH\n(.*?)\n=====\n(.*?)\n>>>>>", re.DOTALL)`.
var blockRE = regexp.MustCompile(`(?s)FILE:[ \t]*(.*?)\n<<<<< SEARCH\n(.*?)\n=====\n(.*?)\n>>>>>`)

// Parse extracts zero or more Blocks from text in document order. Parse is
// total: it never fails and never fabricates a block. Text outside, or
// between, recognized blocks is ignored. A block with an empty or
// absolute filename is dropped silently (parse-skip). Duplicate blocks
// are preserved in order.
func Parse(text string) []Block {
	matches := blockRE.FindAllStringSubmatch(text, -1)
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		filename := strings.TrimSpace(m[1])
		if filename == "" || strings.HasPrefix(filename, "/") {
			continue
		}
		blocks = append(blocks, Block{
			Filename:     filename,
			SearchBlock:  m[2],
			ReplaceBlock: m[3],
			Enabled:      true,
		})
	}
	return blocks
}

// Render reproduces b's wire format bit-for-bit, the inverse of Parse for
// a single block. Used by tests asserting the parse-then-render
// round-trip and by tooling that re-serializes accepted blocks.
func Render(b Block) string {
	var sb strings.Builder
	sb.WriteString("FILE: ")
	sb.WriteString(b.Filename)
	sb.WriteString("\n<<<<< SEARCH\n")
	sb.WriteString(b.SearchBlock)
	sb.WriteString("\n=====\n")
	sb.WriteString(b.ReplaceBlock)
	sb.WriteString("\n>>>>>")
	return sb.String()
}
