package ui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRenderer_Render(t *testing.T) {
	// Given: status for a built corpus
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	// When: rendering
	err := r.Render(StatusInfo{
		CorpusDir:      "/srv/kb",
		Documents:      5,
		Unreadable:     1,
		Chunks:         20,
		VocabularySize: 310,
		BuiltAt:        time.Now(),
		BuildDuration:  300 * time.Millisecond,
		MaxFileSize:    10 * 1024 * 1024,
		Extensions:     []string{".txt", ".md"},
		Shopify:        "not configured",
	})

	// Then: every field is shown
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Knowledge Base: /srv/kb")
	assert.Contains(t, out, "Documents:  5")
	assert.Contains(t, out, "Unreadable: 1")
	assert.Contains(t, out, "Vocabulary: 310 terms")
	assert.Contains(t, out, "just now")
	assert.Contains(t, out, "10.0 MB")
	assert.Contains(t, out, "not configured")
}

func TestStatusRenderer_RenderJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	require.NoError(t, r.RenderJSON(StatusInfo{CorpusDir: "kb", Chunks: 7, Shopify: "configured"}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "kb", decoded["corpus_dir"])
	assert.Equal(t, float64(7), decoded["chunks"])
	assert.Equal(t, "configured", decoded["shopify"])
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2*1024*1024))
	assert.Equal(t, "1.0 GB", FormatBytes(1024*1024*1024))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "just now", formatTime(time.Now()))
	assert.Equal(t, "5 minutes ago", formatTime(time.Now().Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "1 hour ago", formatTime(time.Now().Add(-61*time.Minute)))
	old := time.Date(2020, 3, 4, 5, 6, 0, 0, time.Local)
	assert.Equal(t, "2020-03-04 05:06", formatTime(old))
}
