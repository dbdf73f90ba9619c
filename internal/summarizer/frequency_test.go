package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarizePicksFrequentSentencesInOrder(t *testing.T) {
	text := "Solar power is growing. Cats sleep a lot. Solar panels turn solar light into power. Bread needs yeast."
	out, err := NewFrequencySummarizer().Summarize(text, 2)
	require.NoError(t, err)
	require.Equal(t, "Solar power is growing. Solar panels turn solar light into power.", out)
}

func TestSummarizeWithoutSentences(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("  no   terminal punctuation here ", 3)
	require.NoError(t, err)
	require.Equal(t, "no terminal punctuation here", out)

	long := strings.Repeat("x", 1000)
	out, err = s.Summarize(long, 3)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(out, "…"))
	require.Len(t, []rune(out), 401)

	out, err = s.Summarize("", 3)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSummarizeDefaultsSentenceCount(t *testing.T) {
	text := strings.Repeat("One more sentence here. ", 10)
	out, err := NewFrequencySummarizer().Summarize(text, 0)
	require.NoError(t, err)
	require.Equal(t, 5, strings.Count(out, "."))
}
