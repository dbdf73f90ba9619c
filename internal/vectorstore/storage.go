package vectorstore

import "docchat/internal/domain"

// Stats is a point-in-time view of an index.
type Stats struct {
	Ready     bool
	Count     int
	Dimension int
}

// Index holds the vectors and chunks of the current document and answers
// nearest-neighbour queries. Build replaces the whole content atomically.
type Index interface {
	Build(vectors [][]float32, chunks []domain.Chunk) error
	Search(query []float32, topK int) ([]domain.SearchResult, error)
	Clear()
	Stats() Stats
}
