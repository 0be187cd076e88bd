package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	errors []ErrorEvent
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := event.Message
	if msg == "" {
		msg = event.CurrentFile
	}

	// Format: [STAGE] current/total - message
	if event.Total > 0 {
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", event.Stage.Icon(), event.Current, event.Total, msg)
	} else if msg != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}
	if event.File != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.File, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "Complete: %d documents, %d chunks, %d terms indexed in %s",
		stats.Documents, stats.Chunks, stats.Terms, stats.Duration.Round(100*time.Millisecond))
	if stats.Failed > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d unreadable)", stats.Failed)
	}
	_, _ = fmt.Fprintln(r.out)

	if stats.Stages.Load > 0 || stats.Stages.Index > 0 {
		_, _ = fmt.Fprintln(r.out, "Stage Breakdown:")
		_, _ = fmt.Fprintf(r.out, "  Load:  %s\n", stats.Stages.Load.Round(time.Millisecond))
		_, _ = fmt.Fprintf(r.out, "  Chunk: %s\n", stats.Stages.Chunk.Round(time.Millisecond))
		_, _ = fmt.Fprintf(r.out, "  Index: %s\n", stats.Stages.Index.Round(time.Millisecond))
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

var _ Renderer = (*PlainRenderer)(nil)
