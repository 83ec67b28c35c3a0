// Package logutil provides the shared logging defaults for photorelief.
// Library packages are silent unless the caller hands them a logger.
package logutil

import (
	"context"
	"log/slog"
)

// discardHandler drops all records. Enabled returns false so callers skip
// attribute formatting entirely.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// Discard returns a logger that produces no output.
func Discard() *slog.Logger { return slog.New(discardHandler{}) }

// Or returns l, or a discarding logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
