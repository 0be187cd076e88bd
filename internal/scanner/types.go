// Package scanner discovers knowledge-base documents under a corpus root and
// extracts their plain text. Plain text and Markdown files are decoded as
// UTF-8 (with BOM sniffing); word-processor documents are unpacked and their
// paragraph text concatenated.
package scanner

import (
	"path/filepath"
	"strings"
	"time"
)

// Format identifies how a file's text is extracted.
type Format string

const (
	// FormatText is plain text, read as-is.
	FormatText Format = "text"
	// FormatMarkdown is Markdown, read as-is.
	FormatMarkdown Format = "markdown"
	// FormatDocx is an Office Open XML word-processor document.
	FormatDocx Format = "docx"
)

// DefaultExtensions is the extension allow-list used when none is configured.
var DefaultExtensions = []string{".txt", ".md", ".markdown", ".docx"}

// DefaultMaxFileSize is the default maximum file size (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// FileInfo contains metadata about a discovered file.
type FileInfo struct {
	Path    string    // Slash-separated path relative to the corpus root
	AbsPath string    // Absolute path
	Size    int64     // File size in bytes
	ModTime time.Time // Last modification time
	Format  Format
}

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// RootDir is the corpus root directory to scan.
	RootDir string

	// Extensions is the case-insensitive extension allow-list
	// (empty = DefaultExtensions).
	Extensions []string
}

// ScanResult is returned from the scanner channel.
type ScanResult struct {
	File  *FileInfo
	Error error
}

// Document is one loaded file and its extracted text.
type Document struct {
	Source string // Same as FileInfo.Path
	Format Format
	Text   string

	// Err is set when extraction failed. Text then holds a short diagnostic
	// so the document still shows up in search results.
	Err error
}

// DetectFormat maps a file path to its extraction format by extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatDocx
	case ".md", ".markdown", ".mdx":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// normalizeExtensions lowercases the allow-list and ensures a leading dot.
func normalizeExtensions(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
