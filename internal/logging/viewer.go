package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogEntry is one parsed JSON log line.
type LogEntry struct {
	Time    time.Time
	Level   string
	Msg     string
	Attrs   map[string]any
	Raw     string
	IsValid bool
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // minimum level shown
	Pattern *regexp.Regexp // raw-line filter
	NoColor bool
}

// Viewer reads, filters and formats log files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	levels map[string]lipgloss.Style
}

// NewViewer creates a viewer writing to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	v := &Viewer{config: cfg, out: out, levels: map[string]lipgloss.Style{}}
	if !cfg.NoColor {
		v.levels = map[string]lipgloss.Style{
			"debug": lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			"info":  lipgloss.NewStyle().Foreground(lipgloss.Color("154")),
			"warn":  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			"error": lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		}
	}
	return v
}

const maxLineBytes = 1024 * 1024

// Tail returns the matching entries among the last n lines of path.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if n <= 0 {
		return nil, nil
	}

	// Ring of the last n lines
	ring := make([]string, 0, n)
	next := 0
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		if len(ring) < n {
			ring = append(ring, sc.Text())
			continue
		}
		ring[next] = sc.Text()
		next = (next + 1) % n
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var entries []LogEntry
	for i := range ring {
		entry := ParseLine(ring[(next+i)%len(ring)])
		if v.Matches(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Follow sends entries appended to path after the call until ctx is done.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var partial string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		for {
			chunk, err := reader.ReadString('\n')
			partial += chunk
			if err != nil {
				break
			}
			line := strings.TrimRight(partial, "\r\n")
			partial = ""
			if line == "" {
				continue
			}
			entry := ParseLine(line)
			if !v.Matches(entry) {
				continue
			}
			select {
			case entries <- entry:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// ParseLine parses a slog JSON line. Lines that are not JSON come back with
// IsValid false and only Raw set.
func ParseLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return entry
	}
	entry.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			entry.Time = parsed
		}
	}
	entry.Level, _ = data["level"].(string)
	entry.Msg, _ = data["msg"].(string)

	entry.Attrs = make(map[string]any, len(data))
	for k, val := range data {
		switch k {
		case "time", "level", "msg":
		default:
			entry.Attrs[k] = val
		}
	}
	return entry
}

// Matches reports whether entry passes the level and pattern filters.
// Unparseable lines pass the level filter.
func (v *Viewer) Matches(entry LogEntry) bool {
	if v.config.Level != "" && entry.IsValid {
		if LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
			return false
		}
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}

// FormatEntry renders entry as "15:04:05.000 LEVEL msg k=v ..." with
// attributes in key order.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(entry.Time.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(v.formatLevel(entry.Level))
	b.WriteByte(' ')
	b.WriteString(entry.Msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Attrs[k])
	}
	return b.String()
}

// Print writes entries to the viewer output, one per line.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

func (v *Viewer) formatLevel(level string) string {
	label := strings.ToUpper(level)
	if len(label) > 5 {
		label = label[:5]
	}
	label = fmt.Sprintf("%-5s", label)

	key := strings.ToLower(level)
	if key == "warning" {
		key = "warn"
	}
	if style, ok := v.levels[key]; ok {
		return style.Render(label)
	}
	return label
}
