// Package dlog builds the process-wide structured logger shared by every
// dap-core package. It wraps log/slog with a tinted handler so a developer
// running cmd/dap-core in a terminal gets readable, colored output, while
// still emitting the same structured fields under --debug_connection.
package dlog

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// New builds a *slog.Logger writing to w (os.Stderr in production, a
// bytes.Buffer in tests). level controls the minimum emitted record;
// callers typically pass slog.LevelInfo, raised to slog.LevelDebug by
// --debug_connection.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	}))
}

// Default returns the process logger, a stderr-backed one at Info level
// built when the package is initialized. Packages should prefer taking a
// *slog.Logger field over calling this directly; it exists for call sites
// (tests, quick scripts) that have no logger to thread through.
func Default() *slog.Logger {
	return defaultLogger
}

var defaultLogger = New(os.Stderr, slog.LevelInfo)

// Or returns l if non-nil, else the process default. Every package in this
// module accepts a possibly-nil *slog.Logger and calls this once at
// construction time so the rest of the package can log unconditionally.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return defaultLogger
}

// WithSession tags every record the returned logger emits with the given
// connection id, so overlapping sessions in one log stream (or one
// --debug_connection capture) can be told apart.
func WithSession(l *slog.Logger, sessionID string) *slog.Logger {
	return Or(l).With(slog.String("session", sessionID))
}

// NopContext is a convenience for call sites that don't thread a
// context.Context through logging calls yet; slog's handler interface
// requires one.
var NopContext = context.Background()
