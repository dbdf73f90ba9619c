package generation

import (
	"context"
	"fmt"

	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/generation/gemini"
	"docchat/internal/generation/ollama"
	"docchat/internal/generation/openai"
)

// New builds the configured generator.
func New(ctx context.Context, cfg config.GeneratorConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "extractive", "":
		return NewExtractive(), nil
	case "ollama":
		if cfg.Ollama == nil {
			return nil, fmt.Errorf("ollama generator config missing")
		}
		return ollama.NewClient(ollama.Config{Host: cfg.Ollama.Host, Model: cfg.Ollama.Model}), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai generator config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("openai generator init: %w", err)
		}
		return client, nil
	case "gemini":
		if cfg.Gemini == nil {
			return nil, fmt.Errorf("gemini generator config missing")
		}
		client, err := gemini.NewClient(ctx, gemini.Config{APIKeyEnv: cfg.Gemini.APIKeyEnv, Model: cfg.Gemini.Model})
		if err != nil {
			return nil, fmt.Errorf("gemini generator init: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}
