package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo describes a built knowledge base.
type StatusInfo struct {
	CorpusDir      string        `json:"corpus_dir"`
	Documents      int           `json:"documents"`
	Unreadable     int           `json:"unreadable"`
	Chunks         int           `json:"chunks"`
	VocabularySize int           `json:"vocabulary_size"`
	BuiltAt        time.Time     `json:"built_at"`
	BuildDuration  time.Duration `json:"build_duration"`
	MaxFileSize    int64         `json:"max_file_size"`
	Extensions     []string      `json:"extensions"`

	// Shopify is "configured" or "not configured"
	Shopify string `json:"shopify"`
}

// StatusRenderer displays knowledge-base status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Knowledge Base: "+info.CorpusDir))

	_, _ = fmt.Fprintf(r.out, "  Documents:  %d\n", info.Documents)
	if info.Unreadable > 0 {
		_, _ = fmt.Fprintf(r.out, "  Unreadable: %s\n", r.styles.Warning.Render(fmt.Sprint(info.Unreadable)))
	}
	_, _ = fmt.Fprintf(r.out, "  Chunks:     %d\n", info.Chunks)
	_, _ = fmt.Fprintf(r.out, "  Vocabulary: %d terms\n", info.VocabularySize)
	if !info.BuiltAt.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Built:      %s (%s)\n", formatTime(info.BuiltAt), formatDuration(info.BuildDuration))
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintf(r.out, "  Extensions:    %v\n", info.Extensions)
	_, _ = fmt.Fprintf(r.out, "  Max file size: %s\n", FormatBytes(info.MaxFileSize))
	_, _ = fmt.Fprintf(r.out, "  Shopify:       %s\n", r.renderStatus(info.Shopify))

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "configured":
		return r.styles.Success.Render(status)
	case "not configured":
		return r.styles.Warning.Render(status)
	default:
		return status
	}
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		if mins := int(diff.Minutes()); mins > 1 {
			return fmt.Sprintf("%d minutes ago", mins)
		}
		return "1 minute ago"
	case diff < 24*time.Hour:
		if hours := int(diff.Hours()); hours > 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
