// Package logging wires the default slog logger: tinted console output,
// optionally fanned out to an append only log file.
package logging

import (
	"context"
	"fmt"
	"os"

	log "log/slog"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger. With an empty path only the console
// handler is used. The returned func closes the log file.
func Setup(level log.Level, path string) (func(), error) {
	console := tint.NewHandler(os.Stdout, &tint.Options{Level: level})

	if path == "" {
		log.SetDefault(log.New(console))
		return func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	file := log.NewTextHandler(f, &log.HandlerOptions{Level: level})
	log.SetDefault(log.New(NewFanout(console, file)))

	return func() { f.Close() }, nil
}

// Fanout forwards every record to all wrapped handlers.
type Fanout struct {
	handlers []log.Handler
}

func NewFanout(handlers ...log.Handler) *Fanout {
	return &Fanout{handlers: handlers}
}

func (f *Fanout) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *Fanout) Handle(ctx context.Context, rec log.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *Fanout) WithAttrs(attrs []log.Attr) log.Handler {
	hs := make([]log.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &Fanout{handlers: hs}
}

func (f *Fanout) WithGroup(name string) log.Handler {
	hs := make([]log.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &Fanout{handlers: hs}
}
