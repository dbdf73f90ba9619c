package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docchat/internal/assembler"
	"docchat/internal/domain"
	"docchat/internal/history"
	"docchat/internal/logging"
)

const (
	defaultGenerateTimeout = 120 * time.Second
	healthTimeout          = 5 * time.Second
)

// Answer is the outcome of one question. Degraded is set when generation
// failed and Text describes the failure instead of answering.
type Answer struct {
	Text     string
	Sources  []domain.SearchResult
	Degraded bool
}

// ChatOptions tunes a Chat. Zero values fall back to defaults.
type ChatOptions struct {
	GenerateTimeout time.Duration
	HistorySize     int
	Logger          *zap.Logger
}

// Chat answers questions about the ingested document and keeps the
// conversation log.
type Chat struct {
	retriever *Retriever
	generator domain.Generator
	history   *history.Log
	timeout   time.Duration
	logger    *zap.Logger
}

func NewChat(retriever *Retriever, generator domain.Generator, opts ChatOptions) *Chat {
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultGenerateTimeout
	}
	return &Chat{
		retriever: retriever,
		generator: generator,
		history:   history.New(opts.HistorySize),
		timeout:   opts.GenerateTimeout,
		logger:    logging.OrNop(opts.Logger).Named("chat"),
	}
}

// Retriever exposes the underlying pipeline for ingestion.
func (c *Chat) Retriever() *Retriever { return c.retriever }

// Ask retrieves the k best chunks for question and generates an answer from
// them. Retrieval errors are returned; generation errors are folded into a
// degraded answer that still carries the sources.
func (c *Chat) Ask(ctx context.Context, question string, k int) (Answer, error) {
	results, err := c.retriever.Query(ctx, question, k)
	if err != nil {
		return Answer{}, err
	}
	prompt := assembler.Prompt(question, assembler.Assemble(results))

	start := time.Now()
	gctx, cancel := context.WithTimeout(ctx, c.timeout)
	text, err := c.generator.Generate(gctx, prompt)
	cancel()

	ans := Answer{Text: text, Sources: results}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", domain.ErrGeneration, c.generator.Name(), err)
		c.logger.Warn("generation failed", zap.Error(err))
		ans.Text = fmt.Sprintf("Error generating response: %v. Make sure the generation backend is running and the model is available.", err)
		ans.Degraded = true
	} else {
		c.logger.Debug("answer generated",
			zap.String("generator", c.generator.Name()),
			zap.Int("sources", len(results)),
			zap.Duration("took", time.Since(start)),
		)
	}

	c.history.Append(domain.Turn{
		Query:       question,
		Response:    ans.Text,
		ContextUsed: len(results),
		At:          time.Now(),
	})
	return ans, nil
}

// History returns the retained turns, oldest first.
func (c *Chat) History() []domain.Turn { return c.history.Turns() }

func (c *Chat) ClearHistory() { c.history.Clear() }

// Reset drops the document and the conversation.
func (c *Chat) Reset() {
	c.retriever.Clear()
	c.history.Clear()
}

// Status reports the retriever state and, when the generator can tell,
// whether its backend is reachable.
func (c *Chat) Status(ctx context.Context) domain.Status {
	st := c.retriever.Status()
	st.GeneratorConnected = c.GeneratorHealth(ctx) == nil
	return st
}

// GeneratorHealth checks the generator backend. Generators without a health
// check are assumed reachable.
func (c *Chat) GeneratorHealth(ctx context.Context) error {
	hc, ok := c.generator.(domain.HealthChecker)
	if !ok {
		return nil
	}
	hctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return hc.Health(hctx)
}
