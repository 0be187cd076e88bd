// Package search answers ranked relevance queries against an immutable
// store.Index. Queries containing CJK ideographs are first expanded with
// English hints so they can match an English corpus.
package search

import "github.com/Aman-CERP/storekb/internal/store"

// Default result limits.
const (
	DefaultTopK = 3
	MaxTopK     = 20
)

// Result is one ranked chunk.
type Result struct {
	Source string  `json:"source"` // Source document name
	Seq    int     `json:"seq"`    // Chunk number within the document
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

func newResult(c store.Chunk, score float64) Result {
	return Result{Source: c.Source, Seq: c.Seq, Text: c.Text, Score: score}
}

// EngineStats describes the engine's index and cache.
type EngineStats struct {
	store.IndexStats
	CachedQueries int `json:"cached_queries"`
}
