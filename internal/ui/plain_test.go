package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainRenderer_UpdateProgress_OutputFormat(t *testing.T) {
	// Given: a plain renderer
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	// When: updating progress
	r.UpdateProgress(ProgressEvent{
		Stage:       StageLoading,
		Current:     3,
		Total:       10,
		CurrentFile: "policies/refund.md",
	})

	// Then: output is tagged with the stage and count
	assert.Equal(t, "[LOAD] 3/10 - policies/refund.md\n", buf.String())
}

func TestPlainRenderer_UpdateProgress_MessageWithoutTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.UpdateProgress(ProgressEvent{Stage: StageIndexing, Message: "Building index"})
	r.UpdateProgress(ProgressEvent{Stage: StageIndexing})

	assert.Equal(t, "[INDEX] Building index\n", buf.String(), "empty events print nothing")
}

func TestPlainRenderer_UpdateProgress_NoANSICodes(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	for _, stage := range []Stage{StageLoading, StageChunking, StageIndexing, StageComplete} {
		r.UpdateProgress(ProgressEvent{Stage: stage, Current: 1, Total: 2, Message: "working"})
	}

	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPlainRenderer_AddError(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.AddError(ErrorEvent{File: "broken.docx", Err: errors.New("zip: not a valid zip file"), IsWarn: true})
	r.AddError(ErrorEvent{Err: errors.New("walk failed")})

	assert.Equal(t,
		"WARN: broken.docx: zip: not a valid zip file\nERROR: walk failed\n",
		buf.String())
}

func TestPlainRenderer_Complete(t *testing.T) {
	// Given: a plain renderer
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))
	require.NoError(t, r.Start(context.Background()))

	// When: completing a build with an unreadable document
	r.Complete(CompletionStats{
		Documents: 4,
		Failed:    1,
		Chunks:    12,
		Terms:     230,
		Duration:  1500 * time.Millisecond,
		Stages:    StageTimings{Load: 900 * time.Millisecond, Chunk: 100 * time.Millisecond, Index: 500 * time.Millisecond},
	})

	// Then: the summary and stage breakdown are printed
	out := buf.String()
	assert.Contains(t, out, "Complete: 4 documents, 12 chunks, 230 terms indexed in 1.5s (1 unreadable)")
	assert.Contains(t, out, "Load:  900ms")
	assert.Contains(t, out, "Index: 500ms")
	assert.NoError(t, r.Stop())
}

func TestPlainRenderer_Complete_NoStages(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.Complete(CompletionStats{Documents: 0})

	assert.NotContains(t, buf.String(), "Stage Breakdown")
	assert.NotContains(t, buf.String(), "unreadable")
}
