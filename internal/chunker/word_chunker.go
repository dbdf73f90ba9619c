package chunker

import (
	"fmt"
	"strings"

	"docchat/internal/domain"
)

// WordChunker splits text into fixed-size word windows with overlap.
type WordChunker struct {
	chunkSize int
	overlap   int
}

// NewWordChunker validates the window parameters up front so a bad config
// fails at startup instead of on the first upload.
func NewWordChunker(chunkSize, overlap int) (*WordChunker, error) {
	if err := validate(chunkSize, overlap); err != nil {
		return nil, err
	}
	return &WordChunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk implements domain.Chunker.
func (c *WordChunker) Chunk(text string) ([]domain.Chunk, error) {
	return Words(text, c.chunkSize, c.overlap)
}

// Words slides a chunkSize window over the whitespace-separated words of
// text with stride chunkSize-overlap. Windows start at every multiple of the
// stride below the word count, so the tail may hold several short windows.
func Words(text string, chunkSize, overlap int) ([]domain.Chunk, error) {
	if err := validate(chunkSize, overlap); err != nil {
		return nil, err
	}
	words := strings.Fields(text)
	n := len(words)
	if n == 0 {
		return nil, nil
	}
	stride := chunkSize - overlap
	chunks := make([]domain.Chunk, 0, (n+stride-1)/stride)
	for i := 0; i < n; i += stride {
		end := i + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, domain.Chunk{
			ID:        len(chunks),
			Text:      strings.Join(words[i:end], " "),
			StartWord: i,
			EndWord:   end,
		})
	}
	return chunks, nil
}

func validate(size, overlap int) error {
	if size <= 0 || overlap < 0 || overlap >= size {
		return fmt.Errorf("%w (size=%d, overlap=%d)", domain.ErrInvalidChunkingConfig, size, overlap)
	}
	return nil
}
