package embedding

import (
	"context"
	"fmt"

	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/embedding/gemini"
	"docchat/internal/embedding/hashing"
	"docchat/internal/embedding/ollama"
	"docchat/internal/embedding/openai"
)

// New builds the configured embedder for vectors of length dimension and
// wraps it with Guard.
func New(ctx context.Context, cfg config.EmbedderConfig, dimension int) (domain.Embedder, error) {
	var emb domain.Embedder
	switch cfg.Type {
	case "hashing", "":
		emb = hashing.NewEmbedder(dimension)
	case "ollama":
		if cfg.Ollama == nil {
			return nil, fmt.Errorf("ollama embedder config missing")
		}
		emb = ollama.NewClient(ollama.Config{
			Host:      cfg.Ollama.Host,
			Model:     cfg.Ollama.Model,
			Dimension: dimension,
		})
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Dimension: dimension,
			BatchSize: cfg.OpenAI.BatchSize,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init: %w", err)
		}
		emb = client
	case "gemini":
		if cfg.Gemini == nil {
			return nil, fmt.Errorf("gemini embedder config missing")
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKeyEnv: cfg.Gemini.APIKeyEnv,
			Model:     cfg.Gemini.Model,
			Dimension: dimension,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini embedder init: %w", err)
		}
		emb = client
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
	return Guard(emb), nil
}
