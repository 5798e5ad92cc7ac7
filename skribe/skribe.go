// Package skribe defines context-carried structured logging attributes.
//
// Logging happens via slog. A handler wrapped with AttrsWrap picks up
// whatever attributes the current context carries, so a deeply nested
// call can log "transaction_id" or "file" without threading it through
// every function signature.
package skribe

import (
	"context"
	"log/slog"
	"slices"
)

type attrsKey struct{}

// ContextWithAttr returns a context that carries add in addition to
// whatever attributes ctx already carries.
func ContextWithAttr(ctx context.Context, add ...slog.Attr) context.Context {
	attrs := slices.Clone(Attrs(ctx))
	attrs = append(attrs, add...)
	return context.WithValue(ctx, attrsKey{}, attrs)
}

// Attrs returns the attributes carried by ctx, if any.
func Attrs(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// AttrsWrap wraps h so that every record it handles is augmented with
// the calling context's attributes.
func AttrsWrap(h slog.Handler) slog.Handler {
	return &augmentHandler{Handler: h}
}

type augmentHandler struct {
	slog.Handler
}

func (h *augmentHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := Attrs(ctx)
	r.AddAttrs(attrs...)
	return h.Handler.Handle(ctx, r)
}
