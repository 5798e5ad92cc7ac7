package patchcore

import (
	"github.com/DanielGr12/ai-code-integrator/patchcore/matchkit"
)

// matchTier names which cascade tier resolved a match, for logging.
type matchTier string

const (
	tierExact matchTier = "exact"
	tierRegex matchTier = "regex"
	tierFuzzy matchTier = "fuzzy"
	tierNone  matchTier = "none"
)

// matchOutcome is the Matcher's result for one (search, content) pair: at
// most one of the three cascade tiers resolves, and the fuzzy tier's best
// window is always reported (even unresolved) as diagnostic context.
type matchOutcome struct {
	tier matchTier

	// Populated when tier != tierNone: the resolved match.
	found      string
	line       int
	similarity float64

	// ambiguousN is >1 when the exact or regex tier found multiple
	// candidates (an ambiguity error rather than a fall-through).
	// ambiguousLine is the 1-based line of the first of those candidates,
	// for anchoring the ambiguity's diagnostic context window.
	ambiguousAt   matchTier
	ambiguousN    int
	ambiguousLine int

	// bestGuessLine/bestGuessSimilarity are the fuzzy tier's best window,
	// surfaced as diagnostic context even when it's below the resolve
	// threshold. They stay zero when an earlier tier resolved or reported
	// an ambiguity, since the fuzzy tier is not run then.
	bestGuessLine       int
	bestGuessSimilarity float64
}

// fuzzyThreshold is the minimum similarity (0-100) at which the fuzzy
// tier resolves (as a low-confidence warning) rather than reporting a
// total miss. Grounded on
// original_source/patcher_core.py:Patcher.SIMILARITY_THRESHOLD.
const fuzzyThreshold = 80.0

// resolveMatch runs the three-tier cascade against content for needle,
// returning the first decisive result: exact first, then whitespace-
// flexible regex, then fuzzy window.
func resolveMatch(content, needle string) matchOutcome {
	if exact, n, line := matchkit.Exact(content, needle); n == 1 {
		return matchOutcome{tier: tierExact, found: exact.Found, line: exact.Line, similarity: 100}
	} else if n > 1 {
		return matchOutcome{ambiguousAt: tierExact, ambiguousN: n, ambiguousLine: line}
	}

	if rx, n, line := matchkit.Regex(content, needle); n == 1 {
		return matchOutcome{tier: tierRegex, found: rx.Found, line: rx.Line, similarity: 95}
	} else if n > 1 {
		return matchOutcome{ambiguousAt: tierRegex, ambiguousN: n, ambiguousLine: line}
	}

	best := matchkit.Fuzzy(content, needle)
	if best == nil {
		return matchOutcome{tier: tierNone}
	}
	if best.Similarity >= fuzzyThreshold {
		return matchOutcome{
			tier:       tierFuzzy,
			found:      best.Found,
			line:       best.Line,
			similarity: best.Similarity,
		}
	}
	return matchOutcome{
		tier:                tierNone,
		bestGuessLine:       best.Line,
		bestGuessSimilarity: best.Similarity,
	}
}
