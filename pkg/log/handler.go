package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// StackTraceHandler decorates another slog handler, adding a stacktrace
// attribute to records that carry an error under ErrAttrKey. The trace comes
// from the cockroachdb/errors safe details attached at construction time, so
// only errors built through this project's error constructors produce one.
type StackTraceHandler struct {
	next slog.Handler
}

// NewStackTraceHandler wraps next so that logged errors surface their
// captured stack traces.
func NewStackTraceHandler(next slog.Handler) slog.Handler {
	return &StackTraceHandler{next: next}
}

func (h *StackTraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *StackTraceHandler) Handle(ctx context.Context, r slog.Record) error {
	var trace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			trace = stackTraceOf(err)
		}
		return false
	})
	if trace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, trace))
	}
	return h.next.Handle(ctx, r)
}

func (h *StackTraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StackTraceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *StackTraceHandler) WithGroup(name string) slog.Handler {
	return &StackTraceHandler{next: h.next.WithGroup(name)}
}

func stackTraceOf(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) == 0 {
		return ""
	}
	return details[0]
}
