package domain

import (
	"context"
	"time"
)

// Document is a single uploaded document after text extraction.
type Document struct {
	Name string
	Text string
}

// Chunk is a contiguous word window of the current document.
// It covers words [StartWord, EndWord) and is never mutated after chunking.
type Chunk struct {
	ID        int
	Text      string
	StartWord int
	EndWord   int
}

// SearchResult is a chunk ranked against a query.
type SearchResult struct {
	Chunk Chunk
	Score float32
	Rank  int
}

// Turn is one question/answer exchange.
type Turn struct {
	Query       string
	Response    string
	ContextUsed int
	At          time.Time
}

// IngestResult reports a successful ingestion.
type IngestResult struct {
	Document   string
	ChunkCount int
	Summary    string
}

// Status describes what is currently loaded.
type Status struct {
	Ready              bool
	ChunkCount         int
	Document           string
	Dimension          int
	GeneratorConnected bool
}

// Chunker splits document text into overlapping chunks.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
}

// Embedder maps texts to fixed-dimension vectors, one per input, in order.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator turns a prompt into an answer.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// HealthChecker is implemented by generators that can report whether their
// backend is reachable and the configured model is available.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
