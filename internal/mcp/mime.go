package mcp

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps corpus extensions to the MIME type of the text served for
// them. Word documents are served as their extracted plain text.
var mimeTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".mdx":      "text/markdown",
	".txt":      "text/plain",
	".docx":     "text/plain",
}

// MimeTypeForPath returns the MIME type of a document's served text.
// Unknown extensions are "text/plain".
func MimeTypeForPath(path string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "text/plain"
}
