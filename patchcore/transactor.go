package patchcore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DanielGr12/ai-code-integrator/patchcore/matchkit"
)

// ApplyResult is the outcome of a successful Apply: the paths touched
// and an optional extra message (the "(staged N file(s) in git)" suffix
// when auto-stage succeeded; empty otherwise).
type ApplyResult struct {
	ModifiedPaths []string
	ExtraMessage  string
}

// Apply runs preflight then commits the enabled blocks in order,
// producing one TransactionRecord. It fails fast, writing nothing, if
// preflight rejects any block. Grounded on
// original_source/patcher_core.py:apply_patches.
func (e *Engine) Apply(blocks []Block, autoStage bool) (ApplyResult, error) {
	enabled := make([]*Block, 0, len(blocks))
	for i := range blocks {
		if blocks[i].Enabled {
			enabled = append(enabled, &blocks[i])
		}
	}

	if err := e.preflight(enabled); err != nil {
		return ApplyResult{}, err
	}

	now := time.Now()
	record := TransactionRecord{
		ID:        newTransactionID(),
		Timestamp: now.Unix(),
	}

	ctx := withTransaction(e.ctx, record.ID)
	var modified []string

	for i, b := range enabled {
		fileCtx := withFile(ctx, b.Filename, i)
		e.logger().DebugContext(fileCtx, "applying_block")
		op, err := e.applyOne(fileCtx, b, now)
		if err != nil {
			// Partial changes already written are not rolled back: the
			// journal entry simply isn't committed, so undo can never reach
			// the files this loop already wrote. Each individual write is
			// itself staged-then-rename, so no single file is left torn.
			return ApplyResult{}, fmt.Errorf("apply %s: %w", b.Filename, err)
		}
		record.Files = append(record.Files, op)
		modified = append(modified, b.Filename)
	}

	if len(record.Files) == 0 {
		return ApplyResult{}, nil
	}

	if err := e.history.append(record); err != nil {
		return ApplyResult{}, fmt.Errorf("commit history: %w", err)
	}
	e.logger().InfoContext(ctx, "transaction_committed", "files", len(record.Files))

	var extra string
	if autoStage {
		extra = e.autoStage(modified)
	}
	return ApplyResult{ModifiedPaths: modified, ExtraMessage: extra}, nil
}

// ErrPreflightHalted is wrapped by the error Apply returns when preflight
// rejects a block and nothing is written.
var ErrPreflightHalted = fmt.Errorf("preflight halted")

// preflight requires a resolved ValidMatch for every enabled block whose
// target file exists and whose SearchBlock is non-empty; otherwise the
// whole apply is rejected before anything is written.
func (e *Engine) preflight(blocks []*Block) error {
	for _, b := range blocks {
		if b.SearchBlock == "" {
			continue
		}
		absPath := e.abs(b.Filename)
		if _, err := os.Stat(absPath); err != nil {
			continue
		}
		if b.ValidMatch == "" {
			return fmt.Errorf("%w: %s has no resolved match (run Analyze first)", ErrPreflightHalted, b.Filename)
		}
	}
	return nil
}

func (e *Engine) applyOne(ctx context.Context, b *Block, now time.Time) (FileOp, error) {
	absPath := e.abs(b.Filename)
	_, statErr := os.Stat(absPath)
	exists := statErr == nil

	switch {
	case !exists:
		return e.applyCreate(absPath, b)
	case b.ReplaceBlock == "":
		return e.applyDelete(absPath, b, now)
	default:
		return e.applyModify(absPath, b, now)
	}
}

func (e *Engine) applyCreate(absPath string, b *Block) (FileOp, error) {
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return FileOp{}, fmt.Errorf("create parent dir: %w", err)
	}
	if err := stagedWrite(absPath, []byte(b.ReplaceBlock)); err != nil {
		return FileOp{}, err
	}
	hash, err := hashFile(absPath)
	if err != nil {
		return FileOp{}, err
	}
	return FileOp{Path: b.Filename, Action: ActionCreate, PostHash: hash}, nil
}

func (e *Engine) applyDelete(absPath string, b *Block, now time.Time) (FileOp, error) {
	backupPath, err := e.backups.snapshot(absPath, now)
	if err != nil {
		return FileOp{}, err
	}
	preHash, err := hashFile(backupPath)
	if err != nil {
		return FileOp{}, err
	}
	if err := os.Remove(absPath); err != nil {
		return FileOp{}, fmt.Errorf("delete %s: %w", b.Filename, err)
	}
	return FileOp{Path: b.Filename, Action: ActionDelete, BackupPath: backupPath, PreHash: preHash}, nil
}

func (e *Engine) applyModify(absPath string, b *Block, now time.Time) (FileOp, error) {
	backupPath, err := e.backups.snapshot(absPath, now)
	if err != nil {
		return FileOp{}, err
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return FileOp{}, fmt.Errorf("read %s: %w", b.Filename, err)
	}
	updated, ok := matchkit.ReplaceFirst(string(content), b.ValidMatch, b.ReplaceBlock)
	if !ok {
		return FileOp{}, fmt.Errorf("resolved match no longer present in %s", b.Filename)
	}
	if err := stagedWrite(absPath, []byte(updated)); err != nil {
		return FileOp{}, err
	}
	postHash, err := hashFile(absPath)
	if err != nil {
		return FileOp{}, err
	}
	return FileOp{
		Path:       b.Filename,
		Action:     ActionModify,
		BackupPath: backupPath,
		PostHash:   postHash,
		LineNumber: b.LineNumber,
	}, nil
}

// stagedWrite writes data to a temp file in path's directory and renames
// it into place, so a single file write is never left torn.
func stagedWrite(path string, data []byte) error {
	tmp := path + ".patchcore.tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// UndoResult is the outcome of a successful UndoLast.
type UndoResult struct {
	Message       string
	RestoredPaths []string
}

// ErrTamperDetected is returned when UndoLast's verify phase finds a
// file that was modified outside this engine since the last apply.
var ErrTamperDetected = fmt.Errorf("STOP: file modified since last apply, undo refused")

// UndoLast reverses the most recent TransactionRecord: verify phase
// first (every modify entry's current hash must match its recorded
// post_hash), then restore phase. A verify failure leaves the log
// untouched and returns ErrTamperDetected. Grounded on
// original_source/patcher_core.py:undo_last.
func (e *Engine) UndoLast() (UndoResult, error) {
	record, ok := e.history.last()
	if !ok {
		return UndoResult{}, fmt.Errorf("no transaction to undo")
	}
	ctx := withTransaction(e.ctx, record.ID)

	for _, op := range record.Files {
		if op.Action != ActionModify {
			continue
		}
		absPath := e.abs(op.Path)
		hash, err := hashFile(absPath)
		if err != nil {
			return UndoResult{}, fmt.Errorf("verify %s: %w", op.Path, err)
		}
		if hash != op.PostHash {
			return UndoResult{}, ErrTamperDetected
		}
	}

	// Verify passed: pop the record now. A failure during the restore
	// loop below still leaves the record popped and is reported to the
	// caller rather than re-queued.
	if _, ok := e.history.popLast(); !ok {
		return UndoResult{}, fmt.Errorf("remove transaction from history log: persist failed")
	}

	var restored []string
	for _, op := range record.Files {
		absPath := e.abs(op.Path)
		switch op.Action {
		case ActionCreate:
			if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
				return UndoResult{RestoredPaths: restored}, fmt.Errorf("undo create %s: %w", op.Path, err)
			}
		case ActionDelete, ActionModify:
			if err := e.backups.restore(op.BackupPath, absPath); err != nil {
				return UndoResult{RestoredPaths: restored}, fmt.Errorf("undo %s %s: %w", op.Action, op.Path, err)
			}
		}
		restored = append(restored, op.Path)
	}
	e.logger().InfoContext(ctx, "transaction_undone", "files", len(record.Files))

	return UndoResult{
		Message:       fmt.Sprintf("undid transaction %s (%d files)", record.ID, len(record.Files)),
		RestoredPaths: restored,
	}, nil
}
