package search

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/storekb/configs"
)

// Hint maps a secondary-language term to its primary-language expansion.
type Hint struct {
	Term      string `yaml:"term" json:"term"`
	Expansion string `yaml:"expansion" json:"expansion"`
}

// ParseHints decodes a YAML sequence of {term, expansion} pairs. Order is
// preserved; entries with an empty term or expansion are rejected.
func ParseHints(data []byte) ([]Hint, error) {
	var hints []Hint
	if err := yaml.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("parse hints: %w", err)
	}
	for i, h := range hints {
		if strings.TrimSpace(h.Term) == "" || strings.TrimSpace(h.Expansion) == "" {
			return nil, fmt.Errorf("parse hints: entry %d needs both term and expansion", i)
		}
	}
	return hints, nil
}

var defaultHints = sync.OnceValues(func() ([]Hint, error) {
	return ParseHints(configs.DefaultHints)
})

// DefaultHints returns a copy of the built-in hint table.
func DefaultHints() []Hint {
	hints, err := defaultHints()
	if err != nil {
		// The table is embedded at build time; a parse failure is a build defect.
		panic(err)
	}
	out := make([]Hint, len(hints))
	copy(out, hints)
	return out
}
