package domain

import "errors"

var (
	ErrInvalidChunkingConfig = errors.New("invalid chunking config: overlap must be smaller than chunk size")
	ErrEmptyIngestion        = errors.New("no text to ingest")
	ErrEmbedding             = errors.New("embedding failed")
	ErrDimensionMismatch     = errors.New("vector dimension mismatch")
	ErrIndexNotReady         = errors.New("index not ready: please ingest a document first")
	ErrEmptyIndex            = errors.New("cannot build index from zero vectors")
	ErrCountMismatch         = errors.New("vectors and chunks length mismatch")
	ErrGeneration            = errors.New("generation failed")
	ErrExtraction            = errors.New("text extraction failed")
	ErrEmptyQuery            = errors.New("empty query")
)

// IsIngestionInput reports whether err was caused by the uploaded document
// itself rather than by a backend.
func IsIngestionInput(err error) bool {
	return errors.Is(err, ErrEmptyIngestion) || errors.Is(err, ErrExtraction)
}
