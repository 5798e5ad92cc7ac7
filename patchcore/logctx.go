package patchcore

import (
	"context"
	"log/slog"

	"github.com/DanielGr12/ai-code-integrator/skribe"
)

// withTransaction returns a context carrying the transaction ID as a
// log attribute, so every log line emitted while applying or undoing a
// transaction is automatically tagged with it.
func withTransaction(ctx context.Context, id string) context.Context {
	return skribe.ContextWithAttr(ctx, slog.String("transaction_id", id))
}

// withFile returns a context carrying file and block-index attributes,
// for log lines emitted while applying a single block.
func withFile(ctx context.Context, file string, index int) context.Context {
	return skribe.ContextWithAttr(ctx, slog.String("file", file), slog.Int("block_index", index))
}
