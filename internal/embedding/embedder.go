package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"docchat/internal/domain"
)

// Guard wraps an embedder so every failure is reported as
// domain.ErrEmbedding. A response with the wrong number of vectors or with
// NaN or infinite components is rejected. Vector lengths are left to the
// index to check.
func Guard(e domain.Embedder) domain.Embedder {
	if e == nil {
		return nil
	}
	if _, ok := e.(*guarded); ok {
		return e
	}
	return &guarded{next: e}
}

type guarded struct {
	next domain.Embedder
}

func (g *guarded) Name() string   { return g.next.Name() }
func (g *guarded) Dimension() int { return g.next.Dimension() }

func (g *guarded) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := g.next.Embed(ctx, texts)
	if err != nil {
		if errors.Is(err, domain.ErrEmbedding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEmbedding, g.next.Name(), err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: %s returned %d vectors for %d inputs", domain.ErrEmbedding, g.next.Name(), len(vecs), len(texts))
	}
	for i, v := range vecs {
		for _, x := range v {
			if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: %s returned a non-finite value in vector %d", domain.ErrEmbedding, g.next.Name(), i)
			}
		}
	}
	return vecs, nil
}
