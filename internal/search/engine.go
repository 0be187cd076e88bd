package search

import (
	"log/slog"
	"sort"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/storekb/internal/store"
	"github.com/Aman-CERP/storekb/internal/telemetry"
)

// Engine scores chunks of an immutable index against free-text queries.
// The index is never mutated, so an Engine is safe for concurrent use.
type Engine struct {
	index    *store.Index
	expander *QueryExpander               // Optional; nil disables expansion
	cache    *lru.Cache[string, []Result] // Optional result cache
	metrics  *telemetry.QueryMetrics      // Optional query telemetry collector
	maxTopK  int
}

// EngineOption configures the search engine.
type EngineOption func(*Engine)

// WithQueryExpander enables CJK hint expansion before ranking.
func WithQueryExpander(exp *QueryExpander) EngineOption {
	return func(e *Engine) {
		e.expander = exp
	}
}

// WithMetrics sets an optional query metrics collector.
func WithMetrics(m *telemetry.QueryMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithCacheSize enables an LRU cache of the given number of result lists.
// Zero or negative disables caching.
func WithCacheSize(size int) EngineOption {
	return func(e *Engine) {
		if size <= 0 {
			e.cache = nil
			return
		}
		// lru.New only fails for non-positive sizes
		e.cache, _ = lru.New[string, []Result](size)
	}
}

// WithMaxTopK caps the number of results any query may return.
func WithMaxTopK(n int) EngineOption {
	return func(e *Engine) {
		e.maxTopK = n
	}
}

// New creates an engine over index.
func New(index *store.Index, opts ...EngineOption) *Engine {
	e := &Engine{
		index:   index,
		maxTopK: MaxTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search expands query, ranks it and returns at most topK results, highest
// score first. topK below 1 is treated as 1.
func (e *Engine) Search(query string, topK int) []Result {
	start := time.Now()

	topK = e.clampTopK(topK)
	expanded := e.expander.Expand(query)

	key := expanded + "\x00" + strconv.Itoa(topK)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.record(query, expanded, len(cached), true, time.Since(start))
			return cloneResults(cached)
		}
	}

	results := e.Rank(expanded, topK)
	if e.cache != nil {
		e.cache.Add(key, cloneResults(results))
	}

	elapsed := time.Since(start)
	e.record(query, expanded, len(results), false, elapsed)
	slog.Debug("search_completed",
		slog.String("query", query),
		slog.Bool("expanded", expanded != query),
		slog.Int("results", len(results)),
		slog.Duration("duration", elapsed))

	return results
}

// Rank scores every chunk against query without expansion or caching.
//
// Each distinct query term t gets weight count(t) * idf(t); a chunk's score
// is the sum of weight(t) * tf(chunk, t) * idf(t). Chunks scoring zero are
// dropped. Equal scores keep index order.
func (e *Engine) Rank(query string, topK int) []Result {
	if topK < 1 {
		topK = 1
	}

	terms := store.Tokenize(query)
	if len(terms) == 0 || e.index.Len() == 0 {
		return []Result{}
	}

	type weighted struct {
		term   string
		weight float64
		idf    float64
	}

	// Distinct terms in first-occurrence order keep float summation stable.
	counts := store.TermFrequencies(terms)
	seen := make(map[string]bool, len(counts))
	var qterms []weighted
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		idf, ok := e.index.IDF(t)
		if !ok {
			continue
		}
		qterms = append(qterms, weighted{term: t, weight: float64(counts[t]) * idf, idf: idf})
	}
	if len(qterms) == 0 {
		return []Result{}
	}

	results := make([]Result, 0)
	for i := 0; i < e.index.Len(); i++ {
		score := 0.0
		for _, q := range qterms {
			if tf := e.index.TermFrequency(i, q.term); tf > 0 {
				score += q.weight * float64(tf) * q.idf
			}
		}
		if score > 0 {
			results = append(results, newResult(e.index.Chunk(i), score))
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Stats returns index and cache statistics.
func (e *Engine) Stats() EngineStats {
	stats := EngineStats{IndexStats: e.index.Stats()}
	if e.cache != nil {
		stats.CachedQueries = e.cache.Len()
	}
	return stats
}

// Metrics returns the configured collector, or nil.
func (e *Engine) Metrics() *telemetry.QueryMetrics {
	return e.metrics
}

func (e *Engine) clampTopK(topK int) int {
	if topK < 1 {
		topK = 1
	}
	if e.maxTopK > 0 && topK > e.maxTopK {
		topK = e.maxTopK
	}
	return topK
}

// record records query telemetry if a collector is configured.
func (e *Engine) record(query, expanded string, n int, cacheHit bool, latency time.Duration) {
	if e.metrics == nil {
		return
	}
	qt := telemetry.QueryTypeNative
	if expanded != query {
		qt = telemetry.QueryTypeExpanded
	}
	e.metrics.Record(telemetry.QueryEvent{
		Query:       query,
		QueryType:   qt,
		ResultCount: n,
		CacheHit:    cacheHit,
		Latency:     latency,
		Timestamp:   time.Now(),
	})
}

func cloneResults(in []Result) []Result {
	out := make([]Result, len(in))
	copy(out, in)
	return out
}
