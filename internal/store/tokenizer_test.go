package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \r\n"} {
		tokens := Tokenize(input)
		require.NotNil(t, tokens)
		assert.Empty(t, tokens, "input %q", input)
	}
}

func TestTokenize_MixedLatinAndCJK(t *testing.T) {
	// Given: an order reference followed by a CJK phrase
	text := "Order #1001 退款"

	// When: tokenizing
	tokens := Tokenize(text)

	// Then: latin/numeric runs are lowercased, the CJK run is one term
	assert.Equal(t, []string{"order", "1001", "退款"}, tokens)
}

func TestTokenize_CJKRunsMerge(t *testing.T) {
	assert.Equal(t, []string{"退款"}, Tokenize("退款"))
	assert.Equal(t, []string{"退款", "政策"}, Tokenize("退款，政策"))
	assert.Equal(t, []string{"退款政策"}, Tokenize("退款政策"))
}

func TestTokenize_Separators(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"punctuation", "refund-policy: 30 days.", []string{"refund", "policy", "30", "days"}},
		{"underscore kept", "order_id=42", []string{"order_id", "42"}},
		{"case folded", "SHIPPING Policy", []string{"shipping", "policy"}},
		{"other scripts dropped", "café ñandú", []string{"caf", "and"}},
		{"latin adjacent to cjk", "vip会员price", []string{"vip", "会员", "price"}},
		{"kana is a separator", "カード払い ok", []string{"払", "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Tokenize(tt.input))
		})
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	text := "Q: How long does a refund take? 退款需要多久"
	first := Tokenize(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Tokenize(text))
	}
}

func TestTermFrequencies(t *testing.T) {
	tf := TermFrequencies([]string{"refund", "policy", "refund"})
	assert.Equal(t, map[string]int{"refund": 2, "policy": 1}, tf)
	assert.Empty(t, TermFrequencies(nil))
}

func TestContainsCJK(t *testing.T) {
	assert.True(t, ContainsCJK("退款政策"))
	assert.True(t, ContainsCJK("refund 退款"))
	assert.False(t, ContainsCJK("refund policy"))
	assert.False(t, ContainsCJK(""))
	assert.False(t, ContainsCJK("カタカナ"))
}
