// Package patchcore implements the core patch-block engine: parsing
// FILE:/SEARCH/REPLACE blocks out of free-form LLM output, resolving each
// block's search text against real file contents through a cascade of
// match strategies, classifying the result into a three-valued verdict,
// and applying accepted edits as a reversible, hash-guarded transaction.
//
// It is adapted from sketch.dev's claudetool package (patch.go, edit.go,
// patchkit), generalized from that package's single-file,
// operation-at-a-time tool surface to the multi-block FILE:/SEARCH/REPLACE
// wire format this package implements. See DESIGN.md for the full
// grounding ledger.
package patchcore

// Status is a PatchVerdict's three-valued classification.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Action names a TransactionRecord file operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionModify Action = "modify"
	ActionDelete Action = "delete"
)

// Block is a parsed edit intent: the Parser's output, the Analyzer's
// enrichment target, and the Transactor's input.
//
// Filename must be non-empty and relative; the Parser enforces this by
// dropping any block that violates it. SearchBlock and ReplaceBlock may
// both be empty (an empty SearchBlock means "create"; Analyze rejects an
// empty SearchBlock for an existing file unless ReplaceBlock is also
// empty; an empty ReplaceBlock means "delete"). ValidMatch, LineNumber,
// and MatchQuality are populated only after Analyze runs; they are the
// zero value (empty string, 0, 0) beforehand.
type Block struct {
	Filename     string
	SearchBlock  string
	ReplaceBlock string

	ValidMatch   string // the exact substring the matcher resolved, "" until resolved
	LineNumber   int    // 1-based line of the match start, 0 until resolved
	MatchQuality float64 // similarity in [0, 100], 0 until resolved

	Enabled bool // whether the caller wishes to apply this block
}

// Verdict is the Analyzer's per-block output.
type Verdict struct {
	Filename string
	Status   Status
	Message  string

	DiffPreview string // rendered diff, empty for errors with no resolved target

	LineNumber       int     // 0 if not applicable
	SimilarityScore  float64 // 0 if not applicable

	Suggestions  []string
	ErrorContext string // a window of actual file lines around the best guess
}

// FileOp is one file's entry within a TransactionRecord.
type FileOp struct {
	Path       string `json:"path"`
	Action     Action `json:"action"`
	BackupPath string `json:"backup_path,omitempty"` // absent for create
	PostHash   string `json:"post_hash,omitempty"`   // present for create/modify
	PreHash    string `json:"pre_hash,omitempty"`    // present for delete
	LineNumber int    `json:"line_number,omitempty"` // present for modify, 0 otherwise
}

// TransactionRecord is one entry in the History Log: an atomic group of
// file operations committed together.
type TransactionRecord struct {
	ID        string   `json:"id"`        // stable identifier, independent of Timestamp
	Timestamp int64    `json:"timestamp"` // seconds since epoch
	Files     []FileOp `json:"files"`
}
