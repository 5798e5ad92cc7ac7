package patchcore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// defaultIgnorePatterns seeds a fresh .patchignore on first run.
// Grounded on original_source/patcher_core.py:_load_ignore_patterns.
var defaultIgnorePatterns = []string{
	"*.lock",
	"*.min.js",
	"*.min.css",
	".env*",
	"node_modules/**",
	"__pycache__/**",
	"*.pyc",
	".git/**",
}

// IgnorePolicy is an ordered list of glob/substring patterns read from an
// ignore file. A path is ignored if any pattern matches.
//
// A pattern containing '*' or '?' is matched with path/filepath.Match,
// anchored against the full relative path (a shell-style glob); any other
// pattern is matched as a plain substring. Matching is case-sensitive.
// See DESIGN.md for why this uses path/filepath.Match rather than a
// gitignore-grammar library from the example pack: that grammar (negation,
// "**" segment wildcards, last-rule-wins) is richer than, and different
// from, this two-mode rule.
type IgnorePolicy struct {
	patterns []string
}

// LoadIgnorePolicy reads patterns from path, creating it with
// defaultIgnorePatterns if it does not exist.
func LoadIgnorePolicy(path string) (*IgnorePolicy, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if err := writeDefaultIgnoreFile(path); err != nil {
			return nil, err
		}
		return &IgnorePolicy{patterns: append([]string(nil), defaultIgnorePatterns...)}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &IgnorePolicy{patterns: patterns}, nil
}

func writeDefaultIgnoreFile(path string) error {
	content := strings.Join(defaultIgnorePatterns, "\n") + "\n"
	return os.WriteFile(path, []byte(content), 0o644)
}

// Match reports whether relPath is ignored by the policy.
func (p *IgnorePolicy) Match(relPath string) bool {
	for _, pattern := range p.patterns {
		if !strings.ContainsAny(pattern, "*?") {
			if strings.Contains(relPath, pattern) {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return true
		}
		// filepath.Match treats '/' specially (a bare '*' doesn't cross
		// separators), but patterns like "node_modules/**" and
		// "__pycache__/**" are meant to match any depth beneath a
		// directory. Handle that shape with a segment-prefix check.
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			if relPath == dir || strings.HasPrefix(relPath, dir+"/") {
				return true
			}
		}
	}
	return false
}
