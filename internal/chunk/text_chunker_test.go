package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraph(word string, runes int) string {
	var b strings.Builder
	for utf8.RuneCountInString(b.String()) < runes {
		b.WriteString(word)
		b.WriteString(" ")
	}
	return strings.TrimSpace(string([]rune(b.String())[:runes]))
}

func TestTextChunker_Defaults(t *testing.T) {
	c := NewTextChunker()

	assert.Equal(t, DefaultMaxChunkChars, c.Options().MaxChunkChars)
	assert.Equal(t, DefaultOverlapChars, c.Options().OverlapChars)
}

func TestTextChunker_NegativeOverlapDisables(t *testing.T) {
	c := NewTextChunkerWithOptions(Options{MaxChunkChars: 100, OverlapChars: -1})
	assert.Equal(t, 0, c.Options().OverlapChars)
}

func TestTextChunker_EmptyInput(t *testing.T) {
	c := NewTextChunker()

	for _, input := range []string{"", "   ", "\n\n\n"} {
		assert.Empty(t, c.Split(input), "input %q", input)
	}
}

func TestTextChunker_QA_HeadingPrefixedToEachPair(t *testing.T) {
	// Given: a heading followed by two Q/A pairs
	content := `Shipping FAQ

Q: How long does delivery take?
A: Usually 3-5 business days.

Q: Do you ship internationally?
A: Yes, to most countries.
`
	c := NewTextChunker()

	// When: splitting
	chunks, mode := c.SplitWithMode(content)

	// Then: exactly two chunks, each starting with heading then Q then A
	assert.Equal(t, ModeQA, mode)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Shipping FAQ\nQ: How long does delivery take?\nA: Usually 3-5 business days.", chunks[0])
	assert.Equal(t, "Shipping FAQ\nQ: Do you ship internationally?\nA: Yes, to most countries.", chunks[1])
}

func TestTextChunker_QA_MarkerVariants(t *testing.T) {
	content := "question: Can I cancel?\nanswer: Within 24 hours.\nQ：退款多久到账？\nA：三到五天。"
	chunks := NewTextChunker().Split(content)

	require.Len(t, chunks, 2)
	assert.Equal(t, "question: Can I cancel?\nanswer: Within 24 hours.", chunks[0])
	assert.Equal(t, "Q：退款多久到账？\nA：三到五天。", chunks[1])
}

func TestTextChunker_QA_ContinuationLinesJoinOpenChunk(t *testing.T) {
	content := "Q: What payment methods?\nA: We accept:\n  - credit cards\n  - PayPal\nQ: Is tax included?\nA: No."
	chunks := NewTextChunker().Split(content)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Q: What payment methods?\nA: We accept:\n- credit cards\n- PayPal", chunks[0])
	assert.Equal(t, "Q: Is tax included?\nA: No.", chunks[1])
}

func TestTextChunker_QA_LatestHeadingWins(t *testing.T) {
	content := "Old heading\nNew heading\n    indented note\nQ: Hi?\nA: Hello."
	chunks := NewTextChunker().Split(content)

	require.Len(t, chunks, 1)
	assert.Equal(t, "New heading\nQ: Hi?\nA: Hello.", chunks[0])
}

func TestTextChunker_QA_AnswerWithoutQuestionOpensChunk(t *testing.T) {
	content := "Returns\nA: Returns accepted for 30 days.\nQ: Who pays shipping?\nA: We do."
	chunks := NewTextChunker().Split(content)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Returns\nA: Returns accepted for 30 days.", chunks[0])
	assert.Equal(t, "Returns\nQ: Who pays shipping?\nA: We do.", chunks[1])
}

func TestTextChunker_QA_CRLF(t *testing.T) {
	content := "FAQ\r\nQ: One?\r\nA: Yes.\r\n"
	chunks := NewTextChunker().Split(content)

	require.Len(t, chunks, 1)
	assert.Equal(t, "FAQ\nQ: One?\nA: Yes.", chunks[0])
}

func TestTextChunker_Paragraph_SmallDocumentIsOneChunk(t *testing.T) {
	content := "Refund policy.\n\nItems may be returned within 30 days.\n\n  \n\nContact support."
	chunks, mode := NewTextChunker().SplitWithMode(content)

	assert.Equal(t, ModeParagraph, mode)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Refund policy.\n\nItems may be returned within 30 days.\n\nContact support.", chunks[0])
}

func TestTextChunker_Paragraph_OverlapPrefix(t *testing.T) {
	// Given: three 400-rune paragraphs, which exceed the 900 rune limit together
	p1 := paragraph("alpha", 400)
	p2 := paragraph("bravo", 400)
	p3 := paragraph("charlie", 400)
	content := p1 + "\n\n" + p2 + "\n\n" + p3

	c := NewTextChunker()

	// When: splitting
	chunks := c.Split(content)

	// Then: at least two chunks, and each later chunk starts with the tail of
	// its predecessor
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, p1+"\n\n"+p2, chunks[0])
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		if len(prev) < DefaultOverlapChars {
			continue
		}
		tail := string(prev[len(prev)-DefaultOverlapChars:])
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d must start with overlap", i)
	}
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], p3))
}

func TestTextChunker_Paragraph_ShortPredecessorStartsFresh(t *testing.T) {
	c := NewTextChunkerWithOptions(Options{MaxChunkChars: 20, OverlapChars: 10})

	chunks := c.Split("short\n\nthis paragraph is long enough")

	require.Len(t, chunks, 2)
	assert.Equal(t, "short", chunks[0])
	assert.Equal(t, "this paragraph is long enough", chunks[1])
}

func TestTextChunker_Paragraph_OversizedParagraphKeptWhole(t *testing.T) {
	big := paragraph("delta", 1500)
	chunks := NewTextChunker().Split(big)

	require.Len(t, chunks, 1)
	assert.Equal(t, big, chunks[0])
}

func TestTextChunker_Paragraph_CountsRunesNotBytes(t *testing.T) {
	// 6 CJK runes each; 18 bytes each
	c := NewTextChunkerWithOptions(Options{MaxChunkChars: 14, OverlapChars: -1})

	chunks := c.Split("退款政策说明\n\n配送时间说明")

	require.Len(t, chunks, 1)
	assert.Equal(t, "退款政策说明\n\n配送时间说明", chunks[0])
}

func TestTextChunker_NoQuestionLineUsesPacking(t *testing.T) {
	// "A:" alone does not trigger Q/A mode
	_, mode := NewTextChunker().SplitWithMode("A: a stray answer\n\nanother paragraph")
	assert.Equal(t, ModeParagraph, mode)
}

func TestTextChunker_Deterministic(t *testing.T) {
	content := paragraph("echo", 700) + "\n\n" + paragraph("foxtrot", 700) + "\n\n" + paragraph("golf", 300)
	c := NewTextChunker()

	first := c.Split(content)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, c.Split(content))
	}
}

func TestTextChunker_ChunksNeverBlank(t *testing.T) {
	inputs := []string{
		"Q: x\nA: y",
		paragraph("hotel", 2000),
		"a\n\n\n\nb\n\n   \n\nc",
	}
	c := NewTextChunkerWithOptions(Options{MaxChunkChars: 50, OverlapChars: 10})
	for _, in := range inputs {
		for _, ch := range c.Split(in) {
			assert.NotEmpty(t, strings.TrimSpace(ch))
		}
	}
}

func TestTextChunker_ImplementsSplitter(t *testing.T) {
	var s Splitter = NewTextChunker()
	assert.NotNil(t, s)
}
