package memory

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"docchat/internal/domain"
	"docchat/internal/vectorstore"
)

// DefaultDimension matches all-MiniLM-L6-v2.
const DefaultDimension = 384

// Index is an in-memory vector index using brute-force cosine similarity.
// Build assembles a new snapshot off to the side and publishes it with a
// single pointer store, so readers see either the old or the new content.
type Index struct {
	dimension int
	current   atomic.Pointer[snapshot]
}

type snapshot struct {
	vectors [][]float32 // unit length
	chunks  []domain.Chunk
}

// NewIndex returns an empty index for vectors of the given dimension.
func NewIndex(dimension int) *Index {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Index{dimension: dimension}
}

// Build validates and normalizes the input and replaces the current content.
// On error the previous content stays in place.
func (s *Index) Build(vectors [][]float32, chunks []domain.Chunk) error {
	if len(vectors) == 0 {
		return domain.ErrEmptyIndex
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors, %d chunks", domain.ErrCountMismatch, len(vectors), len(chunks))
	}
	next := &snapshot{
		vectors: make([][]float32, len(vectors)),
		chunks:  make([]domain.Chunk, len(chunks)),
	}
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("%w: vector %d has length %d, want %d", domain.ErrDimensionMismatch, i, len(v), s.dimension)
		}
		next.vectors[i] = Normalize(v)
	}
	copy(next.chunks, chunks)
	s.current.Store(next)
	return nil
}

// Search returns the min(topK, count) chunks most similar to query, best
// first. Equal scores are ordered by ascending chunk ID.
func (s *Index) Search(query []float32, topK int) ([]domain.SearchResult, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, domain.ErrIndexNotReady
	}
	if topK <= 0 {
		return []domain.SearchResult{}, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has length %d, want %d", domain.ErrDimensionMismatch, len(query), s.dimension)
	}
	q := Normalize(query)

	scores := make([]float64, len(snap.vectors))
	for i := range snap.vectors {
		scores[i] = dot(snap.vectors[i], q)
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		i, j := idxs[a], idxs[b]
		if scores[i] != scores[j] {
			return scores[i] > scores[j]
		}
		return snap.chunks[i].ID < snap.chunks[j].ID
	})
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for rank, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{
			Chunk: snap.chunks[j],
			Score: float32(scores[j]),
			Rank:  rank + 1,
		})
	}
	return results, nil
}

// Clear drops the current content. Calling it on an empty index is a no-op.
func (s *Index) Clear() {
	s.current.Store(nil)
}

// Stats reports readiness, chunk count and dimension of the current snapshot.
func (s *Index) Stats() vectorstore.Stats {
	snap := s.current.Load()
	if snap == nil {
		return vectorstore.Stats{Dimension: s.dimension}
	}
	return vectorstore.Stats{Ready: true, Count: len(snap.chunks), Dimension: s.dimension}
}

// Normalize returns a unit-length copy of v. A zero vector is returned as a
// zero copy.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
