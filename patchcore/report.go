package patchcore

import "strings"

// RenderForModel formats v as a re-promptable report an LLM can use to
// regenerate a failed or warned-about search block. Grounded on
// original_source/patcher_core.py:generate_ai_error_report.
func (v Verdict) RenderForModel() string {
	var b strings.Builder
	b.WriteString("PATCH ERROR REPORT\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n")
	b.WriteString("File: " + v.Filename + "\n")
	b.WriteString("Status: " + strings.ToUpper(string(v.Status)) + "\n")
	b.WriteString("Error: " + v.Message + "\n\n")

	if v.ErrorContext != "" {
		b.WriteString("Actual code found in file:\n```\n")
		b.WriteString(v.ErrorContext)
		b.WriteString("\n```\n\n")
	}

	if len(v.Suggestions) > 0 {
		b.WriteString("Suggestions:\n")
		for _, s := range v.Suggestions {
			b.WriteString("  - " + s + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Please regenerate the SEARCH block with:\n")
	b.WriteString("1. More unique context (function signature, comments)\n")
	b.WriteString("2. Exact indentation from the actual file\n")
	b.WriteString("3. At least 5-10 lines of surrounding code\n")

	return b.String()
}
