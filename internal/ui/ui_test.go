package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_Names(t *testing.T) {
	tests := []struct {
		stage Stage
		name  string
		icon  string
	}{
		{StageLoading, "Loading", "LOAD"},
		{StageChunking, "Chunking", "CHUNK"},
		{StageIndexing, "Indexing", "INDEX"},
		{StageComplete, "Complete", "DONE"},
		{Stage(99), "Unknown", "???"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.stage.String())
		assert.Equal(t, tt.icon, tt.stage.Icon())
	}
}

func TestNewConfig_AppliesOptions(t *testing.T) {
	buf := &bytes.Buffer{}

	cfg := NewConfig(buf, WithForcePlain(true), WithNoColor(true), WithCorpusDir("kb"))

	assert.Same(t, buf, cfg.Output)
	assert.True(t, cfg.ForcePlain)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "kb", cfg.CorpusDir)
}

func TestNewRenderer_NonTTY_ReturnsPlain(t *testing.T) {
	r := NewRenderer(NewConfig(&bytes.Buffer{}))

	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestIsTTY_NonFileWriter(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestDetectCI(t *testing.T) {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		t.Setenv(v, "")
	}
	// t.Setenv with "" still defines the variable
	assert.True(t, DetectCI())
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}
