package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// errFmtHandler decorates another slog handler with stack traces pulled out
// of cockroachdb/errors values. When a record carries an ErrAttrKey
// attribute whose error was built by pkg/errors, the captured trace is
// attached under StacktraceAttrKey so JSON consumers get it as a plain
// string field.
type errFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps a slog handler with stack trace extraction.
// SetupLogger installs it on the process default logger; use it directly
// when bringing your own handler chain.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &errFmtHandler{
		handler: handler,
	}
}

func (eh *errFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *errFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var stacktrace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			stacktrace = extractStacktrace(err)
		}
		return false
	})
	if stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *errFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *errFmtHandler) WithGroup(g string) slog.Handler {
	return &errFmtHandler{handler: eh.handler.WithGroup(g)}
}

// extractStacktrace returns the first safe detail recorded on the error,
// which for errors.WithStack is the formatted trace. Errors from other
// sources yield the empty string and the record passes through untouched.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
