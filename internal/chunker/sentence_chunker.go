package chunker

import (
	"regexp"
	"strings"

	"docchat/internal/domain"
)

// SentenceChunker splits text into sentence-based chunks with overlap.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) (*SentenceChunker, error) {
	if err := validate(sentencesPerChunk, overlapSentences); err != nil {
		return nil, err
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}, nil
}

// Chunk groups sentences into windows. StartWord and EndWord are word
// offsets into the whole text so chunks from either chunker look the same.
func (c *SentenceChunker) Chunk(text string) ([]domain.Chunk, error) {
	sentences := c.sentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}
	// offsets[i] is the index of the first word of sentence i
	offsets := make([]int, len(sentences)+1)
	for i, s := range sentences {
		offsets[i+1] = offsets[i] + len(strings.Fields(s))
	}
	stride := c.sentencesPerChunk - c.overlapSentences
	var chunks []domain.Chunk
	for i := 0; i < len(sentences); i += stride {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, domain.Chunk{
			ID:        len(chunks),
			Text:      strings.Join(sentences[i:end], " "),
			StartWord: offsets[i],
			EndWord:   offsets[end],
		})
	}
	return chunks, nil
}

func (c *SentenceChunker) sentences(text string) []string {
	var raw []string
	last := 0
	for _, loc := range c.splitter.FindAllStringIndex(text, -1) {
		raw = append(raw, text[loc[0]:loc[1]])
		last = loc[1]
	}
	// keep trailing text that has no terminal punctuation
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		raw = append(raw, tail)
	}
	out := raw[:0]
	for _, s := range raw {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
