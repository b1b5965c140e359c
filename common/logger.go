package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by every engine package.
// By default nothing is logged. Passing nil restores the silent default.
//
// Log levels used by the engine:
//   - [slog.LevelDebug]: surface reconfiguration, pipeline creation
//   - [slog.LevelInfo]: negotiated adapter, format and present mode, loaded shaders, profiler output
//   - [slog.LevelWarn]: skipped or failed frames, rejected config reloads
//
// Parameters:
//   - l: the logger to install, or nil
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the logger installed with SetLogger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
