// Package index builds the in-memory knowledge base: it loads the corpus,
// chunks every document and assembles the term-weight index.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aman-CERP/storekb/internal/chunk"
	"github.com/Aman-CERP/storekb/internal/config"
	"github.com/Aman-CERP/storekb/internal/scanner"
	"github.com/Aman-CERP/storekb/internal/store"
	"github.com/Aman-CERP/storekb/internal/ui"
)

// RunnerResult contains the outcome of a build.
type RunnerResult struct {
	// Index is the built, immutable index.
	Index *store.Index

	// Documents is the number of allow-listed files found.
	Documents int

	// Failed is the number of documents indexed as diagnostics.
	Failed int

	// Chunks is the number of indexed chunks.
	Chunks int

	// Terms is the vocabulary size.
	Terms int

	Duration time.Duration
	Stages   ui.StageTimings
	BuiltAt  time.Time
}

// RunnerDependencies contains the injected dependencies for Runner.
type RunnerDependencies struct {
	// Loader enumerates and extracts the corpus (required).
	Loader *scanner.Loader

	// Chunker splits document text (defaults to chunk.NewTextChunker).
	Chunker chunk.Splitter

	// Renderer receives progress events (optional).
	Renderer ui.Renderer
}

// Runner executes knowledge-base builds with progress reporting.
type Runner struct {
	loader   *scanner.Loader
	chunker  chunk.Splitter
	renderer ui.Renderer
}

// NewRunner creates a Runner with injected dependencies.
func NewRunner(deps RunnerDependencies) (*Runner, error) {
	if deps.Loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	chunker := deps.Chunker
	if chunker == nil {
		chunker = chunk.NewTextChunker()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &Runner{
		loader:   deps.Loader,
		chunker:  chunker,
		renderer: renderer,
	}, nil
}

// NewRunnerFromConfig creates a Runner whose loader and chunker follow the
// knowledge section of cfg.
func NewRunnerFromConfig(cfg *config.Config, renderer ui.Renderer) *Runner {
	k := cfg.Knowledge
	r, _ := NewRunner(RunnerDependencies{
		Loader: scanner.NewLoader(scanner.LoaderOptions{
			Extensions:  k.Extensions,
			Workers:     k.Workers,
			MaxFileSize: k.MaxFileSize,
		}),
		Chunker:  chunkerFromConfig(k),
		Renderer: renderer,
	})
	return r
}

func chunkerFromConfig(k config.KnowledgeConfig) *chunk.TextChunker {
	overlap := k.ChunkOverlap
	if overlap == 0 {
		// A configured zero means no overlap, not the chunker default
		overlap = -1
	}
	return chunk.NewTextChunkerWithOptions(chunk.Options{
		MaxChunkChars: k.ChunkSize,
		OverlapChars:  overlap,
	})
}

// Run loads every document under root, chunks it and builds the index.
// A missing root yields an empty index. Only cancellation and walk failures
// are returned as errors.
func (r *Runner) Run(ctx context.Context, root string) (*RunnerResult, error) {
	start := time.Now()
	var timing ui.StageTimings

	slog.Info("kb_build_started", slog.String("root", root))

	// Stage 1: Load
	r.renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageLoading,
		Message: fmt.Sprintf("Loading %s...", root),
	})
	loadStart := time.Now()
	docs, err := r.loader.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	timing.Load = time.Since(loadStart)

	failed := 0
	for _, d := range docs {
		if d.Err != nil {
			failed++
			r.renderer.AddError(ui.ErrorEvent{File: d.Source, Err: d.Err, IsWarn: true})
		}
	}

	// Stage 2: Chunk
	chunkStart := time.Now()
	perDoc, err := r.chunkDocuments(ctx, docs)
	if err != nil {
		return nil, err
	}
	timing.Chunk = time.Since(chunkStart)

	// Stage 3: Index
	r.renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageIndexing,
		Message: "Building term index...",
	})
	indexStart := time.Now()
	idx := store.Build(perDoc)
	timing.Index = time.Since(indexStart)

	stats := idx.Stats()
	result := &RunnerResult{
		Index:     idx,
		Documents: len(docs),
		Failed:    failed,
		Chunks:    stats.Chunks,
		Terms:     stats.VocabularySize,
		Duration:  time.Since(start),
		Stages:    timing,
		BuiltAt:   time.Now(),
	}

	r.renderer.Complete(ui.CompletionStats{
		Documents: result.Documents,
		Failed:    result.Failed,
		Chunks:    result.Chunks,
		Terms:     result.Terms,
		Duration:  result.Duration,
		Stages:    timing,
	})

	slog.Info("kb_build_complete",
		slog.String("root", root),
		slog.Int("documents", result.Documents),
		slog.Int("failed", result.Failed),
		slog.Int("chunks", result.Chunks),
		slog.Int("terms", result.Terms),
		slog.Int64("duration_total_ms", result.Duration.Milliseconds()),
		slog.Int64("duration_load_ms", timing.Load.Milliseconds()),
		slog.Int64("duration_chunk_ms", timing.Chunk.Milliseconds()),
		slog.Int64("duration_index_ms", timing.Index.Milliseconds()))

	return result, nil
}

// chunkDocuments splits each document in walk order.
func (r *Runner) chunkDocuments(ctx context.Context, docs []scanner.Document) ([]store.DocumentChunks, error) {
	out := make([]store.DocumentChunks, 0, len(docs))
	for i, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.renderer.UpdateProgress(ui.ProgressEvent{
			Stage:       ui.StageChunking,
			Current:     i + 1,
			Total:       len(docs),
			CurrentFile: d.Source,
		})
		out = append(out, store.DocumentChunks{
			Source: d.Source,
			Chunks: r.chunker.Split(d.Text),
		})
	}

	slog.Debug("kb_chunking_complete", slog.Int("documents", len(docs)))
	return out, nil
}

// nopRenderer discards progress events.
type nopRenderer struct{}

func (nopRenderer) Start(context.Context) error {
	return nil
}

func (nopRenderer) UpdateProgress(ui.ProgressEvent) {}

func (nopRenderer) AddError(ui.ErrorEvent) {}

func (nopRenderer) Complete(ui.CompletionStats) {}

func (nopRenderer) Stop() error {
	return nil
}
