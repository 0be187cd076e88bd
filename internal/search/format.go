package search

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NoResultsMessage is returned by FormatResults for an empty result list.
const NoResultsMessage = "No matching knowledge base entries found."

// DefaultPreviewChars bounds the chunk text shown per result.
const DefaultPreviewChars = 400

// FormatResults renders results as plain text for an agent to read back,
// citing each result's source document and chunk number.
func FormatResults(results []Result, previewChars int) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] %s (chunk %d, score %.3f)\n", i+1, r.Source, r.Seq, r.Score)
		sb.WriteString(Truncate(r.Text, previewChars))
	}
	return sb.String()
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}
