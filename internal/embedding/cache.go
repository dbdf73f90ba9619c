package embedding

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"docchat/internal/domain"
)

// WithQueryCache puts an expiring LRU in front of e. It is meant for the
// query path, where users repeat questions; ingestion batches bypass it.
func WithQueryCache(e domain.Embedder, size int, ttl time.Duration, logger *zap.Logger) domain.Embedder {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &lruEmbedder{
		next:   e,
		cache:  expirable.NewLRU[string, []float32](size, nil, ttl),
		logger: logger,
	}
}

type lruEmbedder struct {
	next   domain.Embedder
	cache  *expirable.LRU[string, []float32]
	logger *zap.Logger
}

func (l *lruEmbedder) Name() string   { return l.next.Name() }
func (l *lruEmbedder) Dimension() int { return l.next.Dimension() }

func (l *lruEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) != 1 {
		return l.next.Embed(ctx, texts)
	}
	key := cacheKey(l.next.Name(), texts[0])
	if cached, ok := l.cache.Get(key); ok {
		l.logger.Debug("query embedding cache hit")
		return [][]float32{clone(cached)}, nil
	}
	vecs, err := l.next.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 1 {
		l.cache.Add(key, clone(vecs[0]))
	}
	return vecs, nil
}

func cacheKey(model, text string) string {
	h := sha1.Sum([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:])
}

func clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
