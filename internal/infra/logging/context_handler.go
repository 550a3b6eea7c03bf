// Package logging supplies the slog.Handler wrapper main() installs as the
// process-wide default. It adds an operation_id attribute to a record whose
// context carries one under this package's context key. The Operation
// middleware keeps its id in the gin context, not in the request's
// context.Context, so request log lines do not get the attribute from here.
package logging

import (
	"context"
	"log/slog"
)

// ContextHandler wraps an slog.Handler, adding an operation_id attribute
// from ctx (if present) to every record before delegating.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: inner}
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(operationIDContextKey{}).(string); ok && id != "" {
		r.AddAttrs(slog.String("operation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// operationIDContextKey is a context.Context key distinct from the gin
// context key the Operation middleware uses — gin handlers read the id via
// middleware.GetOperationID. The type is unexported, so only code in this
// package can set a value under it, and no code in this module does.
type operationIDContextKey struct{}
