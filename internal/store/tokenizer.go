package store

import (
	"regexp"
	"strings"
)

// termRegex matches the two term classes: ASCII word runs and CJK Unified
// Ideograph runs. Everything else is a separator.
var termRegex = regexp.MustCompile(`[a-z0-9_]+|[\x{4e00}-\x{9fff}]+`)

// Tokenize converts text into an ordered sequence of normalized terms.
// Text is lowercased, then scanned left to right for maximal runs of
// ASCII letters/digits/underscore or of CJK ideographs.
//
// Examples:
//   - "Order #1001" -> ["order", "1001"]
//   - "退款政策 refund" -> ["退款政策", "refund"]
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	terms := termRegex.FindAllString(strings.ToLower(text), -1)
	if terms == nil {
		return []string{}
	}
	return terms
}

// TermFrequencies counts occurrences of each term.
func TermFrequencies(terms []string) map[string]int {
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return tf
}

// IsCJK reports whether r falls in the CJK Unified Ideographs block.
func IsCJK(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

// ContainsCJK reports whether s contains at least one CJK ideograph.
func ContainsCJK(s string) bool {
	for _, r := range s {
		if IsCJK(r) {
			return true
		}
	}
	return false
}
