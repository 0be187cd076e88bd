package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatStatus_Full(t *testing.T) {
	// Given: a built knowledge base with order lookup and query traffic
	st := StatusOutput{
		CorpusDir:       "./knowledge_base",
		Documents:       4,
		Unreadable:      1,
		Chunks:          12,
		VocabularySize:  230,
		BuiltAt:         "2026-10-19T09:30:00Z",
		BuildDurationMS: 42,
		Extensions:      []string{".txt", ".md", ".docx"},
		Shopify:         "configured",
		TotalQueries:    8,
		ZeroResultPct:   25,
	}

	// When: formatting
	out := FormatStatus(st)

	// Then: every section is present
	assert.Contains(t, out, "## Knowledge Base Status\n\n")
	assert.Contains(t, out, "- **Corpus:** ./knowledge_base\n")
	assert.Contains(t, out, "- **Documents:** 4 (1 unreadable)\n")
	assert.Contains(t, out, "- **Chunks:** 12\n")
	assert.Contains(t, out, "- **Vocabulary:** 230 terms\n")
	assert.Contains(t, out, "- **Built:** 2026-10-19T09:30:00Z in 42ms\n")
	assert.Contains(t, out, "- **Formats:** .txt, .md, .docx\n")
	assert.Contains(t, out, "- **Order lookup:** available\n")
	assert.Contains(t, out, "- **Queries served:** 8 (25.0% with no results)\n")
}

func TestFormatStatus_Minimal(t *testing.T) {
	// Given: an empty knowledge base without Shopify
	st := StatusOutput{CorpusDir: "kb", Shopify: "not configured"}

	// When: formatting
	out := FormatStatus(st)

	// Then: optional sections are omitted
	assert.Contains(t, out, "- **Documents:** 0\n")
	assert.NotContains(t, out, "unreadable")
	assert.NotContains(t, out, "**Built:**")
	assert.NotContains(t, out, "**Formats:**")
	assert.NotContains(t, out, "**Queries served:**")
	assert.Contains(t, out, "- **Order lookup:** unavailable (Shopify not configured)\n")
}
