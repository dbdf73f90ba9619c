package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"docchat/internal/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	gen, err := New(ctx, config.GeneratorConfig{Type: "extractive"})
	require.NoError(t, err)
	require.Equal(t, "extractive", gen.Name())

	gen, err = New(ctx, config.GeneratorConfig{Type: "ollama", Ollama: &config.OllamaConfig{Model: "mistral"}})
	require.NoError(t, err)
	require.Equal(t, "ollama/mistral", gen.Name())

	_, err = New(ctx, config.GeneratorConfig{Type: "ollama"})
	require.Error(t, err)
	_, err = New(ctx, config.GeneratorConfig{Type: "markov"})
	require.Error(t, err)

	t.Setenv("DOCCHAT_TEST_GEMINI_KEY", "")
	_, err = New(ctx, config.GeneratorConfig{Type: "gemini", Gemini: &config.GeminiConfig{APIKeyEnv: "DOCCHAT_TEST_GEMINI_KEY"}})
	require.Error(t, err)
}
