package store

import (
	"math"
	"strings"
)

// Index is an immutable term-weighted index over a set of chunks.
//
// Invariants:
//   - len(tf) == len(chunks); tf[i] belongs to chunks[i]
//   - every term present in any tf vector has exactly one idf entry
type Index struct {
	chunks []Chunk
	tf     []map[string]int
	idf    map[string]float64
	docs   int
}

// Build tokenizes every chunk, counts document frequency per term across the
// corpus and derives smoothed IDF weights. Blank chunk texts are skipped;
// surviving chunks keep their position in the source document as Seq.
func Build(docs []DocumentChunks) *Index {
	idx := &Index{
		idf: make(map[string]float64),
	}

	df := make(map[string]int)
	for _, doc := range docs {
		added := false
		for seq, text := range doc.Chunks {
			if strings.TrimSpace(text) == "" {
				continue
			}
			tf := TermFrequencies(Tokenize(text))
			for term := range tf {
				df[term]++
			}
			idx.chunks = append(idx.chunks, Chunk{Source: doc.Source, Seq: seq, Text: text})
			idx.tf = append(idx.tf, tf)
			added = true
		}
		if added {
			idx.docs++
		}
	}

	n := len(idx.chunks)
	for term, count := range df {
		idx.idf[term] = IDF(n, count)
	}

	return idx
}

// IDF returns ln((n+1)/(df+1)) + 1. n is clamped to at least 1, which keeps
// the weight strictly positive and finite for any df in [0, n].
func IDF(n, df int) float64 {
	if n < 1 {
		n = 1
	}
	if df < 0 {
		df = 0
	}
	return math.Log(float64(n+1)/float64(df+1)) + 1
}

// Len returns the number of chunks in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.chunks)
}

// Chunk returns the i-th chunk in build order.
func (idx *Index) Chunk(i int) Chunk {
	return idx.chunks[i]
}

// Chunks returns a copy of all chunks in build order.
func (idx *Index) Chunks() []Chunk {
	if idx == nil {
		return nil
	}
	out := make([]Chunk, len(idx.chunks))
	copy(out, idx.chunks)
	return out
}

// TermFrequency returns how often term occurs in the i-th chunk.
func (idx *Index) TermFrequency(i int, term string) int {
	return idx.tf[i][term]
}

// IDF returns the weight of term and whether the index knows it.
func (idx *Index) IDF(term string) (float64, bool) {
	if idx == nil {
		return 0, false
	}
	w, ok := idx.idf[term]
	return w, ok
}

// VectorCount returns the number of term-frequency vectors; always equal to Len.
func (idx *Index) VectorCount() int {
	if idx == nil {
		return 0
	}
	return len(idx.tf)
}

// Stats returns summary counts for the index.
func (idx *Index) Stats() IndexStats {
	if idx == nil {
		return IndexStats{}
	}
	return IndexStats{
		Documents:      idx.docs,
		Chunks:         len(idx.chunks),
		VocabularySize: len(idx.idf),
	}
}
