package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Matches "Q:", "Question:" and the full-width colon variants at line start.
	questionPattern = regexp.MustCompile(`(?i)^\s*(?:q|question)\s*[:：]`)

	// Matches "A:", "Answer:" and the full-width colon variants at line start.
	answerPattern = regexp.MustCompile(`(?i)^\s*(?:a|answer)\s*[:：]`)

	// Blank-line paragraph boundary.
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
)

const paragraphSeparator = "\n\n"

// TextChunker implements Q/A-aware segmentation with a paragraph packing
// fallback. It is stateless and safe for concurrent use.
type TextChunker struct {
	options Options
}

// NewTextChunker creates a chunker with default options.
func NewTextChunker() *TextChunker {
	return NewTextChunkerWithOptions(Options{})
}

// NewTextChunkerWithOptions creates a chunker with custom options.
func NewTextChunkerWithOptions(opts Options) *TextChunker {
	if opts.MaxChunkChars <= 0 {
		opts.MaxChunkChars = DefaultMaxChunkChars
	}
	if opts.OverlapChars == 0 {
		opts.OverlapChars = DefaultOverlapChars
	}
	if opts.OverlapChars < 0 {
		opts.OverlapChars = 0
	}
	return &TextChunker{options: opts}
}

// Options returns the effective options after defaults were applied.
func (c *TextChunker) Options() Options {
	return c.options
}

// Split returns the chunk texts for one document, in document order.
func (c *TextChunker) Split(text string) []string {
	chunks, _ := c.SplitWithMode(text)
	return chunks
}

// SplitWithMode is Split that also reports which strategy was used.
func (c *TextChunker) SplitWithMode(text string) ([]string, Mode) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if hasQuestionLine(text) {
		if chunks := splitQA(text); len(chunks) > 0 {
			return chunks, ModeQA
		}
	}
	return c.pack(text), ModeParagraph
}

func hasQuestionLine(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if questionPattern.MatchString(line) {
			return true
		}
	}
	return false
}

// splitQA opens a chunk at every question line. A heading line seen while no
// chunk is open is kept and prefixed to every question chunk that follows.
func splitQA(text string) []string {
	var (
		chunks  []string
		current []string
		heading string
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		if joined := strings.TrimSpace(strings.Join(current, "\n")); joined != "" {
			chunks = append(chunks, joined)
		}
		current = nil
	}

	open := func(line string) {
		current = nil
		if heading != "" {
			current = append(current, heading)
		}
		current = append(current, line)
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case questionPattern.MatchString(raw):
			flush()
			open(line)
		case answerPattern.MatchString(raw):
			if len(current) == 0 {
				open(line)
			} else {
				current = append(current, line)
			}
		case len(current) > 0:
			current = append(current, line)
		case !isIndented(raw):
			heading = line
		}
	}
	flush()

	return chunks
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// pack greedily joins paragraphs up to MaxChunkChars. When a chunk closes,
// its last OverlapChars runes seed the next one.
func (c *TextChunker) pack(text string) []string {
	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return []string{}
	}

	sepLen := utf8.RuneCountInString(paragraphSeparator)
	chunks := make([]string, 0, len(paragraphs))
	buf := ""
	bufLen := 0

	for _, para := range paragraphs {
		paraLen := utf8.RuneCountInString(para)
		if buf == "" {
			buf, bufLen = para, paraLen
			continue
		}
		if bufLen+sepLen+paraLen <= c.options.MaxChunkChars {
			buf += paragraphSeparator + para
			bufLen += sepLen + paraLen
			continue
		}

		chunks = append(chunks, buf)
		if c.options.OverlapChars > 0 && bufLen >= c.options.OverlapChars {
			tail := runeSuffix(buf, c.options.OverlapChars)
			buf = tail + paragraphSeparator + para
			bufLen = c.options.OverlapChars + sepLen + paraLen
		} else {
			buf, bufLen = para, paraLen
		}
	}
	if strings.TrimSpace(buf) != "" {
		chunks = append(chunks, buf)
	}

	return chunks
}

// runeSuffix returns the last n runes of s.
func runeSuffix(s string, n int) string {
	runes := []rune(s)
	if n >= len(runes) {
		return s
	}
	return string(runes[len(runes)-n:])
}
