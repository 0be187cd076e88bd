package search

import (
	"strings"

	"github.com/Aman-CERP/storekb/internal/store"
)

// QueryExpander appends English hints to queries written in CJK so they can
// match an English corpus. It never removes or rewrites the original text.
//
// Example:
//
//	Input:  "退款政策"
//	Output: "退款政策 refund policy"
type QueryExpander struct {
	hints []Hint
}

// NewQueryExpander creates an expander over a fixed hint table. The table is
// copied, so later changes by the caller have no effect.
func NewQueryExpander(hints []Hint) *QueryExpander {
	h := make([]Hint, len(hints))
	copy(h, hints)
	return &QueryExpander{hints: h}
}

// NewDefaultQueryExpander creates an expander over the built-in table plus
// any extra hints, in that order.
func NewDefaultQueryExpander(extra ...Hint) *QueryExpander {
	return NewQueryExpander(append(DefaultHints(), extra...))
}

// Expand returns query with the expansion of every hint whose term occurs in
// it, space-separated and in table order. Queries without CJK ideographs and
// queries matching no hint are returned unchanged.
func (e *QueryExpander) Expand(query string) string {
	if e == nil || !store.ContainsCJK(query) {
		return query
	}

	var extra []string
	for _, h := range e.hints {
		if strings.Contains(query, h.Term) {
			extra = append(extra, h.Expansion)
		}
	}
	if len(extra) == 0 {
		return query
	}
	return query + " " + strings.Join(extra, " ")
}

// Hints returns a copy of the hint table.
func (e *QueryExpander) Hints() []Hint {
	out := make([]Hint, len(e.hints))
	copy(out, e.hints)
	return out
}
