package index

import (
	"context"

	"github.com/Aman-CERP/storekb/internal/config"
	"github.com/Aman-CERP/storekb/internal/search"
	"github.com/Aman-CERP/storekb/internal/telemetry"
	"github.com/Aman-CERP/storekb/internal/ui"
)

// KnowledgeBase is a built index together with the engine that serves it.
// It is constructed once and never modified; rebuilding means opening a new
// KnowledgeBase.
type KnowledgeBase struct {
	Engine *search.Engine
	Build  *RunnerResult

	dir        string
	extensions []string
	maxFile    int64
}

// Open builds the knowledge base described by cfg. renderer may be nil.
func Open(ctx context.Context, cfg *config.Config, renderer ui.Renderer) (*KnowledgeBase, error) {
	result, err := NewRunnerFromConfig(cfg, renderer).Run(ctx, cfg.Knowledge.Dir)
	if err != nil {
		return nil, err
	}

	k := cfg.Knowledge
	engine := search.New(result.Index,
		search.WithQueryExpander(ExpanderFromConfig(k)),
		search.WithCacheSize(k.CacheSize),
		search.WithMaxTopK(k.MaxTopK),
		search.WithMetrics(telemetry.NewQueryMetrics()),
	)

	return &KnowledgeBase{
		Engine:     engine,
		Build:      result,
		dir:        k.Dir,
		extensions: append([]string(nil), k.Extensions...),
		maxFile:    k.MaxFileSize,
	}, nil
}

// ExpanderFromConfig returns the built-in hint table extended with the
// configured hints.
func ExpanderFromConfig(k config.KnowledgeConfig) *search.QueryExpander {
	extra := make([]search.Hint, 0, len(k.Hints))
	for _, h := range k.Hints {
		extra = append(extra, search.Hint{Term: h.Term, Expansion: h.Expansion})
	}
	return search.NewDefaultQueryExpander(extra...)
}

// Status summarizes the knowledge base for display.
func (kb *KnowledgeBase) Status(shopifyConfigured bool) ui.StatusInfo {
	shopify := "not configured"
	if shopifyConfigured {
		shopify = "configured"
	}
	return ui.StatusInfo{
		CorpusDir:      kb.dir,
		Documents:      kb.Build.Documents,
		Unreadable:     kb.Build.Failed,
		Chunks:         kb.Build.Chunks,
		VocabularySize: kb.Build.Terms,
		BuiltAt:        kb.Build.BuiltAt,
		BuildDuration:  kb.Build.Duration,
		MaxFileSize:    kb.maxFile,
		Extensions:     append([]string(nil), kb.extensions...),
		Shopify:        shopify,
	}
}

// Dir returns the corpus directory the knowledge base was built from.
func (kb *KnowledgeBase) Dir() string { return kb.dir }

// Sources returns the indexed document names in index order.
func (kb *KnowledgeBase) Sources() []string {
	var sources []string
	seen := make(map[string]bool)
	for _, c := range kb.Build.Index.Chunks() {
		if !seen[c.Source] {
			seen[c.Source] = true
			sources = append(sources, c.Source)
		}
	}
	return sources
}
