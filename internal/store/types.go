// Package store holds the tokenizer and the in-memory TF-IDF index that the
// knowledge base answers queries from. An Index is built once and never
// mutated, so it can be shared across goroutines without locking.
package store

// Chunk is the atomic retrievable unit of the knowledge base.
type Chunk struct {
	Source string // Source document name (slash-separated path relative to the corpus root)
	Seq    int    // Zero-based position within the source document's chunk list
	Text   string // Chunk text, never blank
}

// DocumentChunks is the ordered chunk list of one source document, the input
// to Build.
type DocumentChunks struct {
	Source string
	Chunks []string
}

// IndexStats summarizes a built index.
type IndexStats struct {
	Documents      int `json:"documents"`
	Chunks         int `json:"chunks"`
	VocabularySize int `json:"vocabulary_size"`
}
