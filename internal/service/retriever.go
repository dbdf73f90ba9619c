package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/embedding"
	"docchat/internal/logging"
	"docchat/internal/vectorstore"
)

const defaultEmbedTimeout = 60 * time.Second

// RetrieverOptions tunes a Retriever. Zero values fall back to defaults.
type RetrieverOptions struct {
	EmbedTimeout        time.Duration
	QueryCacheSize      int
	QueryCacheTTL       time.Duration
	SummaryMaxSentences int
	Logger              *zap.Logger
}

// Retriever owns the index lifecycle: it ingests one document at a time
// and answers similarity queries against whatever was ingested last.
type Retriever struct {
	chunker       domain.Chunker
	embedder      domain.Embedder
	queryEmbedder domain.Embedder
	index         vectorstore.Index
	summarizer    domain.Summarizer
	opts          RetrieverOptions
	logger        *zap.Logger

	// ingestMu serializes ingestions; queries never take it.
	ingestMu sync.Mutex
	// stateMu keeps the document label in step with the published index.
	stateMu  sync.RWMutex
	document string
}

// NewRetriever wires the pipeline. summarizer may be nil.
func NewRetriever(chunker domain.Chunker, embedder domain.Embedder, index vectorstore.Index, summarizer domain.Summarizer, opts RetrieverOptions) *Retriever {
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = defaultEmbedTimeout
	}
	logger := logging.OrNop(opts.Logger).Named("retriever")
	guarded := embedding.Guard(embedder)
	return &Retriever{
		chunker:       chunker,
		embedder:      guarded,
		queryEmbedder: embedding.WithQueryCache(guarded, opts.QueryCacheSize, opts.QueryCacheTTL, logger),
		index:         index,
		summarizer:    summarizer,
		opts:          opts,
		logger:        logger,
	}
}

// Ingest replaces the current document with doc. Nothing observable changes
// unless every step succeeds.
func (r *Retriever) Ingest(ctx context.Context, doc domain.Document) (domain.IngestResult, error) {
	r.ingestMu.Lock()
	defer r.ingestMu.Unlock()

	chunks, err := r.chunker.Chunk(doc.Text)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("chunk %s: %w", doc.Name, err)
	}
	if len(chunks) == 0 {
		return domain.IngestResult{}, fmt.Errorf("%w: %s produced no chunks", domain.ErrEmptyIngestion, doc.Name)
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	start := time.Now()
	ectx, cancel := context.WithTimeout(ctx, r.opts.EmbedTimeout)
	vectors, err := r.embedder.Embed(ectx, texts)
	cancel()
	if err != nil {
		r.logger.Warn("embedding failed", zap.String("document", doc.Name), zap.Error(err))
		return domain.IngestResult{}, fmt.Errorf("embed %s: %w", doc.Name, err)
	}

	r.stateMu.Lock()
	err = r.index.Build(vectors, chunks)
	if err == nil {
		r.document = doc.Name
	}
	r.stateMu.Unlock()
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("build index for %s: %w", doc.Name, err)
	}

	r.logger.Info("document ingested",
		zap.String("document", doc.Name),
		zap.Int("chunks", len(chunks)),
		zap.String("embedder", r.embedder.Name()),
		zap.Duration("took", time.Since(start)),
	)
	return domain.IngestResult{
		Document:   doc.Name,
		ChunkCount: len(chunks),
		Summary:    r.summarize(doc),
	}, nil
}

func (r *Retriever) summarize(doc domain.Document) string {
	if r.summarizer == nil {
		return ""
	}
	summary, err := r.summarizer.Summarize(doc.Text, r.opts.SummaryMaxSentences)
	if err != nil {
		r.logger.Warn("summary failed", zap.String("document", doc.Name), zap.Error(err))
		return ""
	}
	return summary
}

// Query returns the k chunks most similar to question.
func (r *Retriever) Query(ctx context.Context, question string, k int) ([]domain.SearchResult, error) {
	if !r.index.Stats().Ready {
		return nil, domain.ErrIndexNotReady
	}
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}

	ectx, cancel := context.WithTimeout(ctx, r.opts.EmbedTimeout)
	vecs, err := r.queryEmbedder.Embed(ectx, []string{question})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := r.index.Search(vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// Status reports what is currently loaded. GeneratorConnected is left to
// the caller.
func (r *Retriever) Status() domain.Status {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	stats := r.index.Stats()
	return domain.Status{
		Ready:      stats.Ready,
		ChunkCount: stats.Count,
		Document:   r.document,
		Dimension:  stats.Dimension,
	}
}

// Clear drops the current document. It is safe to call when empty.
func (r *Retriever) Clear() {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.index.Clear()
	r.document = ""
	r.logger.Info("index cleared")
}
