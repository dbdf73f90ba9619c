package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"docchat/internal/assembler"
	"docchat/internal/domain"
)

func TestExtractiveAnswersWithTopExcerpt(t *testing.T) {
	ctx := assembler.Assemble([]domain.SearchResult{
		{Chunk: domain.Chunk{ID: 3, Text: "Mitochondria produce ATP."}, Rank: 1},
		{Chunk: domain.Chunk{ID: 0, Text: "Cells have membranes."}, Rank: 2},
	})
	out, err := NewExtractive().Generate(context.Background(), assembler.Prompt("what makes ATP?", ctx))
	require.NoError(t, err)
	require.Equal(t, "From the document:\n\nMitochondria produce ATP.", out)
}

func TestExtractiveWithoutContext(t *testing.T) {
	out, err := NewExtractive().Generate(context.Background(), assembler.Prompt("q", ""))
	require.NoError(t, err)
	require.Contains(t, out, "doesn't contain enough information")

	var _ domain.HealthChecker = Extractive{}
	require.NoError(t, Extractive{}.Health(context.Background()))
}
