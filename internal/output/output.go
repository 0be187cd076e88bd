// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Writer provides formatted output for CLI commands.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a message with an icon. An empty icon indents the message
// under the previous line.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Code prints a block with every line indented, framed by blank lines.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Text prints content verbatim, adding a trailing newline if missing.
func (w *Writer) Text(content string) {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	_, _ = io.WriteString(w.out, content)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Field is one labelled value in a KeyValues listing.
type Field struct {
	Key   string
	Value string
}

// KeyValues prints fields as an aligned two-column listing.
func (w *Writer) KeyValues(fields ...Field) {
	width := 0
	for _, f := range fields {
		width = max(width, utf8.RuneCountInString(f.Key))
	}
	for _, f := range fields {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(f.Key))
		_, _ = fmt.Fprintf(w.out, "  %s:%s %s\n", f.Key, pad, f.Value)
	}
}
