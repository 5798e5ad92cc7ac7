// Package matchkit implements the three-tier match cascade used to resolve
// an LLM-proposed search block against the real bytes of a file: an exact
// substring check, a whitespace-flexible regex, and a fuzzy sliding window.
//
// It is adapted from sketch.dev's claudetool/patchkit package, keeping the
// "find the unique occurrence, then describe it as an offset/length patch"
// shape of Unique, but replacing the Go-AST-aware tiers (which patchkit
// uses to tolerate insignificant whitespace in Go source) with the
// regex-token and fuzzy-window tiers instead: the search blocks here are
// not assumed to be Go, or any particular language.
package matchkit

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Spec describes where a needle was found in a haystack.
type Spec struct {
	Off int    // byte offset of the match start
	Len int    // byte length of the match
	Old string // the actual matched text (may differ from the search text)
}

// Unique finds the unique occurrence of needle in haystack. It reports the
// number of matches found: 0, 1, or 2 (2 standing in for "2 or more").
func Unique(haystack, needle string) (*Spec, int) {
	prefix, rest, ok := strings.Cut(haystack, needle)
	if !ok {
		return nil, 0
	}
	if strings.Contains(rest, needle) {
		return nil, 2
	}
	return &Spec{Off: len(prefix), Len: len(needle), Old: needle}, 1
}

// ExactResult is the outcome of the exact-substring tier.
type ExactResult struct {
	Found string // the matched text (equals needle, verbatim)
	Line  int    // 1-based line number of the match start
}

// Exact implements match cascade tier 1: a byte-for-byte substring search.
// matches is the true occurrence count (0, 1, or more); a result is
// returned only when there is exactly one. firstLine is the 1-based line
// of the first occurrence, valid whenever matches > 0 (including the
// ambiguous case), so callers can anchor a diagnostic window even when
// the match didn't resolve.
func Exact(content, needle string) (res *ExactResult, matches int, firstLine int) {
	if needle == "" {
		return nil, 0, 0
	}
	count := strings.Count(content, needle)
	if count == 0 {
		return nil, 0, 0
	}
	idx := strings.Index(content, needle)
	line := 1 + strings.Count(content[:idx], "\n")
	if count != 1 {
		return nil, count, line
	}
	return &ExactResult{Found: needle, Line: line}, 1, line
}

// RegexResult is the outcome of the whitespace-flexible regex tier.
type RegexResult struct {
	Found string
	Line  int
}

// tokenRE splits text into maximal runs of word characters, or single
// non-space non-word characters.
var tokenRE = regexp.MustCompile(`[\w]+|[^\s\w]`)

// BuildFlexiblePattern tokenizes needle and joins the escaped tokens with
// \s*, producing a regex that tolerates whitespace and indentation drift
// while still requiring token order and punctuation to match.
func BuildFlexiblePattern(needle string) string {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return ""
	}
	tokens := tokenRE.FindAllString(needle, -1)
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(escaped, `\s*`)
}

// Regex implements match cascade tier 2. It returns the true number of
// matches found; a result is returned only when there is exactly one.
// firstLine is the 1-based line of the first match, valid whenever
// matches > 0 (including the ambiguous case), so callers can anchor a
// diagnostic window even when the match didn't resolve - the raw needle
// text is not guaranteed (and for this tier, never expected) to appear
// literally in content, so a caller cannot re-derive this line itself.
func Regex(content, needle string) (res *RegexResult, matches int, firstLine int) {
	pattern := BuildFlexiblePattern(needle)
	if pattern == "" {
		return nil, 0, 0
	}
	re, err := regexp.Compile(`(?s)` + pattern)
	if err != nil {
		return nil, 0, 0
	}
	locs := re.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil, 0, 0
	}
	start := locs[0][0]
	line := 1 + strings.Count(content[:start], "\n")
	if len(locs) > 1 {
		return nil, len(locs), line
	}
	end := locs[0][1]
	return &RegexResult{Found: content[start:end], Line: line}, 1, line
}

// FuzzyResult is the outcome of the fuzzy-window tier, the best-scoring
// window regardless of whether it clears the resolve threshold.
type FuzzyResult struct {
	Found      string
	Line       int
	Similarity float64 // in [0, 100]
}

// Fuzzy implements match cascade tier 3: slide a window the length of
// needle's line count across content's lines, score each window against
// needle by a whitespace-collapsed LCS-style ratio, and return the best.
// The earliest window wins ties.
func Fuzzy(content, needle string) *FuzzyResult {
	lines := strings.Split(content, "\n")
	needleLines := strings.Split(needle, "\n")
	winLen := max(1, len(needleLines))
	winLen = min(winLen, len(lines))

	var best *FuzzyResult
	for i := 0; i+winLen <= len(lines); i++ {
		window := strings.Join(lines[i:i+winLen], "\n")
		score := SimilarityRatio(needle, window) * 100
		if best == nil || score > best.Similarity {
			best = &FuzzyResult{
				Found:      window,
				Line:       i + 1,
				Similarity: score,
			}
		}
	}
	return best
}

// SimilarityRatio computes a normalized similarity in [0, 1] between a and
// b: both sides have runs of whitespace collapsed to single spaces, then
// compared via diffmatchpatch's Myers diff. The ratio is 2*M/T, where M is
// the total length of the diff's matching (equal) runs and T is the
// combined length of both normalized strings - the same formula Python's
// difflib.SequenceMatcher.ratio() uses, which is what this cascade was
// originally specified against.
func SimilarityRatio(a, b string) float64 {
	na, nb := collapseWhitespace(a), collapseWhitespace(b)
	if na == "" && nb == "" {
		return 1
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(na, nb, false)
	var matched int
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += len([]rune(d.Text))
		}
	}
	total := len([]rune(na)) + len([]rune(nb))
	if total == 0 {
		return 1
	}
	return 2 * float64(matched) / float64(total)
}

func collapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}

// ReplaceFirst replaces the first occurrence of old in content with
// replacement, matching strings.Replace(content, old, replacement, 1)
// semantics. It is used by the Transactor to perform the actual file
// mutation once a unique target has been resolved by the cascade above.
func ReplaceFirst(content, old, replacement string) (string, bool) {
	idx := strings.Index(content, old)
	if idx == -1 {
		return content, false
	}
	var b strings.Builder
	b.Grow(len(content) - len(old) + len(replacement))
	b.WriteString(content[:idx])
	b.WriteString(replacement)
	b.WriteString(content[idx+len(old):])
	return b.String(), true
}
