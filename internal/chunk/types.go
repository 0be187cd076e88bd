// Package chunk splits extracted document text into bounded, retrievable
// chunks. Documents written as question/answer pairs are segmented per pair;
// everything else is packed paragraph by paragraph with a trailing overlap.
package chunk

// Chunk size defaults, measured in characters (runes).
const (
	DefaultMaxChunkChars = 900
	DefaultOverlapChars  = 150
)

// Mode identifies which segmentation strategy produced a document's chunks.
type Mode string

const (
	ModeQA        Mode = "qa"
	ModeParagraph Mode = "paragraph"
)

// Options configures the chunker.
type Options struct {
	// MaxChunkChars is the soft upper bound for a packed chunk. A single
	// paragraph longer than this is emitted whole. Zero means default.
	MaxChunkChars int

	// OverlapChars is the size of the tail carried from a closed chunk into
	// the next one. Zero means default; negative disables overlap.
	OverlapChars int
}

// Splitter turns one document's text into ordered chunk texts.
type Splitter interface {
	Split(text string) []string
}
