package patchcore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// historyRetention is the maximum number of records the log retains;
// the oldest are dropped on write.
const historyRetention = 50

// historyLog is an append-only journal of TransactionRecords, persisted
// as one JSON array document. Grounded on
// original_source/patcher_core.py:_load_history/_save_history.
type historyLog struct {
	path    string
	records []TransactionRecord
}

func newHistoryLog(path string) (*historyLog, error) {
	h := &historyLog{path: path}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return h, nil
	case err != nil:
		return nil, fmt.Errorf("read history log: %w", err)
	}
	if len(data) == 0 {
		return h, nil
	}
	if err := json.Unmarshal(data, &h.records); err != nil {
		return nil, fmt.Errorf("parse history log: %w", err)
	}
	return h, nil
}

// newTransactionID assigns a stable identifier to a transaction,
// independent of its timestamp so that two transactions committed in
// the same second remain distinguishable (a gap in the original
// Python's bare-timestamp design that google/uuid closes here).
func newTransactionID() string {
	return uuid.NewString()
}

// append adds record to the log, drops the oldest records beyond
// historyRetention, and persists the result via write-temp-then-rename.
func (h *historyLog) append(record TransactionRecord) error {
	h.records = append(h.records, record)
	if len(h.records) > historyRetention {
		h.records = h.records[len(h.records)-historyRetention:]
	}
	return h.persist()
}

// popLast removes and returns the most recent record, or false if the
// log is empty. Used by Undo after a successful restore.
func (h *historyLog) popLast() (TransactionRecord, bool) {
	if len(h.records) == 0 {
		return TransactionRecord{}, false
	}
	last := h.records[len(h.records)-1]
	h.records = h.records[:len(h.records)-1]
	if err := h.persist(); err != nil {
		// Restore the in-memory record so a failed persist doesn't silently
		// lose track of a transaction still sitting on disk; the caller
		// treats this as an undo failure.
		h.records = append(h.records, last)
		return TransactionRecord{}, false
	}
	return last, true
}

// last returns the most recent record without removing it.
func (h *historyLog) last() (TransactionRecord, bool) {
	if len(h.records) == 0 {
		return TransactionRecord{}, false
	}
	return h.records[len(h.records)-1], true
}

// summary returns the most recent limit records, newest first.
func (h *historyLog) summary(limit int) []TransactionRecord {
	if limit <= 0 || limit > len(h.records) {
		limit = len(h.records)
	}
	out := make([]TransactionRecord, limit)
	for i := 0; i < limit; i++ {
		out[i] = h.records[len(h.records)-1-i]
	}
	return out
}

func (h *historyLog) persist() error {
	data, err := json.MarshalIndent(h.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history log: %w", err)
	}
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history log temp file: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return fmt.Errorf("rename history log into place: %w", err)
	}
	return nil
}
