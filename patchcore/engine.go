package patchcore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/DanielGr12/ai-code-integrator/skribe"
)

// liveRoots tracks which working-directory roots already have an open
// Engine, forbidding two live handles against the same directory - a
// re-architecture of the original's global mutable state.
var (
	liveRootsMu sync.Mutex
	liveRoots   = map[string]bool{}
)

// Engine is the external-interface handle for one working directory: it
// owns the Ignore Policy, Backup Store, and History Log for that root,
// and exposes the eight external operations (parse, analyze, apply,
// undo_last, history_summary, file_content, ignore_check, vcs_status).
// Construct one per working directory via Open; Close releases the root
// so it can be reopened later.
type Engine struct {
	root   string
	ignore *IgnorePolicy

	backups *backupStore
	history *historyLog

	ctx context.Context
	log *slog.Logger
}

const (
	backupDirName   = ".patch_backups"
	historyFileName = ".patch_history.json"
	ignoreFileName  = ".patchignore"
)

// Open constructs an Engine rooted at dir. It fails if another live
// Engine already holds dir (see liveRoots above), or if dir does not
// exist.
func Open(ctx context.Context, dir string, logger *slog.Logger) (*Engine, error) {
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absRoot)
	}

	liveRootsMu.Lock()
	if liveRoots[absRoot] {
		liveRootsMu.Unlock()
		return nil, fmt.Errorf("an engine handle is already open against %s", absRoot)
	}
	liveRoots[absRoot] = true
	liveRootsMu.Unlock()

	if logger == nil {
		logger = slog.Default()
	}
	logger = slog.New(skribe.AttrsWrap(logger.Handler()))

	ignore, err := LoadIgnorePolicy(filepath.Join(absRoot, ignoreFileName))
	if err != nil {
		liveRootsMu.Lock()
		delete(liveRoots, absRoot)
		liveRootsMu.Unlock()
		return nil, fmt.Errorf("load ignore policy: %w", err)
	}

	backups, err := newBackupStore(filepath.Join(absRoot, backupDirName))
	if err != nil {
		liveRootsMu.Lock()
		delete(liveRoots, absRoot)
		liveRootsMu.Unlock()
		return nil, fmt.Errorf("open backup store: %w", err)
	}

	history, err := newHistoryLog(filepath.Join(absRoot, historyFileName))
	if err != nil {
		liveRootsMu.Lock()
		delete(liveRoots, absRoot)
		liveRootsMu.Unlock()
		return nil, fmt.Errorf("open history log: %w", err)
	}

	return &Engine{
		root:    absRoot,
		ignore:  ignore,
		backups: backups,
		history: history,
		ctx:     ctx,
		log:     logger,
	}, nil
}

// Close releases this engine's claim on its root, allowing a future
// Open against the same directory.
func (e *Engine) Close() {
	liveRootsMu.Lock()
	delete(liveRoots, e.root)
	liveRootsMu.Unlock()
}

func (e *Engine) logger() *slog.Logger {
	return e.log
}

// abs resolves a block's repo-relative path against the engine's root.
func (e *Engine) abs(relPath string) string {
	return filepath.Join(e.root, relPath)
}

// IgnoreCheck reports whether relPath matches the Ignore Policy.
func (e *Engine) IgnoreCheck(relPath string) bool {
	return e.ignore.Match(relPath)
}

// HistorySummary returns the most recent limit transactions, newest
// first. limit <= 0 means "all".
func (e *Engine) HistorySummary(limit int) []TransactionRecord {
	return e.history.summary(limit)
}

// maxContentChars bounds FileContent's default truncation point when
// the caller passes maxChars <= 0.
const maxContentChars = 64 * 1024

// FileContent returns relPath's content truncated to maxChars runes,
// with a truncation marker appended when cut, or ("", false) if the
// file can't be read. Grounded on
// original_source/app.py's file-preview endpoint.
func (e *Engine) FileContent(relPath string, maxChars int) (string, bool) {
	if e.ignore.Match(relPath) {
		return "", false
	}
	data, err := os.ReadFile(e.abs(relPath))
	if err != nil {
		return "", false
	}
	if maxChars <= 0 {
		maxChars = maxContentChars
	}
	content := string(data)
	runes := []rune(content)
	if len(runes) <= maxChars {
		return content, true
	}
	return string(runes[:maxChars]) + "\n... (truncated)", true
}

// Parse delegates to the package-level Parse function; kept as a method
// so callers only need an *Engine to drive the whole pipeline.
func (e *Engine) Parse(text string) []Block {
	return Parse(text)
}
