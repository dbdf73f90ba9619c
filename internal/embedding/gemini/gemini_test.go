package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("DOCCHAT_TEST_GEMINI_KEY", " ")
	_, err := NewClient(context.Background(), Config{APIKeyEnv: "DOCCHAT_TEST_GEMINI_KEY"})
	require.ErrorContains(t, err, "missing API key")
}
