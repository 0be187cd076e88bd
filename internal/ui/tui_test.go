package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewTUIRenderer_RejectsNonTTY(t *testing.T) {
	r, err := NewTUIRenderer(NewConfig(&bytes.Buffer{}))

	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestBuildModel_StageIndicators(t *testing.T) {
	// Given: a model tracking a chunking stage
	tracker := NewProgressTracker()
	model := newBuildModel(tracker, "knowledge_base")
	tracker.SetStage(StageChunking, 8)
	tracker.Update(2, "shipping.md")

	// When: rendering
	view := model.View()

	// Then: every stage, the count and the current file appear
	assert.Contains(t, view, "Loading")
	assert.Contains(t, view, "Chunking")
	assert.Contains(t, view, "Indexing")
	assert.Contains(t, view, "2 / 8 documents")
	assert.Contains(t, view, "shipping.md")
	assert.Contains(t, view, "knowledge_base")
}

func TestBuildModel_CompleteView(t *testing.T) {
	model := newBuildModel(NewProgressTracker(), "")

	next, cmd := model.Update(completeMsg(CompletionStats{Documents: 3, Chunks: 9, Terms: 40, Failed: 1, Duration: 2 * time.Second}))

	assert.NotNil(t, cmd, "completion quits the program")
	view := next.View()
	assert.Contains(t, view, "Knowledge base ready")
	assert.Contains(t, view, "9")
	assert.Contains(t, view, "1 documents unreadable")
}

func TestBuildModel_QuitKey(t *testing.T) {
	model := newBuildModel(NewProgressTracker(), "")

	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.NotNil(t, cmd)
	assert.Equal(t, "Cancelled.\n", next.View())
}

func TestBuildModel_StatusBarCounts(t *testing.T) {
	tracker := NewProgressTracker()
	model := newBuildModel(tracker, "")
	tracker.AddError(ErrorEvent{File: "x.docx", IsWarn: true})

	assert.Contains(t, model.View(), "1 unreadable")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "42s", formatDuration(42*time.Second))
	assert.Equal(t, "2m", formatDuration(2*time.Minute))
	assert.Equal(t, "1m 5s", formatDuration(65*time.Second))
}

func TestTruncateFilePath(t *testing.T) {
	assert.Equal(t, "short.md", truncateFilePath("short.md", 20))

	got := truncateFilePath("policies/returns/international/refund.md", 20)
	assert.Len(t, []rune(got), 20)
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "refund.md"))
}
