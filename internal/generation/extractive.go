package generation

import (
	"context"
	"strings"

	"docchat/internal/assembler"
)

// Extractive is an offline generator that answers with the best-ranked
// excerpt of the prompt's context. It lets docchat run without any model
// server and serves as the generator double in tests.
type Extractive struct{}

func NewExtractive() *Extractive { return &Extractive{} }

func (Extractive) Name() string { return "extractive" }

func (Extractive) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	excerpts := assembler.Excerpts(prompt)
	if len(excerpts) == 0 {
		return "The document context doesn't contain enough information to answer the question.", nil
	}
	return "From the document:\n\n" + strings.TrimSpace(excerpts[0]), nil
}

// Health always succeeds; there is no backend.
func (Extractive) Health(context.Context) error { return nil }
