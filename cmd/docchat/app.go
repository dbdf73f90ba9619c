package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/embedding"
	"docchat/internal/extract"
	"docchat/internal/generation"
	"docchat/internal/logging"
	"docchat/internal/service"
	"docchat/internal/summarizer"
	"docchat/internal/vectorstore/memory"
)

var errCheckFailed = errors.New("one or more checks failed")

type app struct {
	cfg       *config.AppConfig
	logger    *zap.Logger
	embedder  domain.Embedder
	generator domain.Generator
	chat      *service.Chat
}

// newApp assembles the pipeline described by cfg.
func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "word", "":
		ch, err = chunker.NewWordChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	case "sentence":
		ch, err = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		err = fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}
	if err != nil {
		return nil, err
	}

	emb, err := embedding.New(ctx, cfg.Embedder, cfg.Index.Dimension)
	if err != nil {
		return nil, err
	}
	gen, err := generation.New(ctx, cfg.Generator)
	if err != nil {
		return nil, err
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "none":
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	retriever := service.NewRetriever(ch, emb, memory.NewIndex(cfg.Index.Dimension), sum, service.RetrieverOptions{
		EmbedTimeout:        cfg.EmbedTimeout(),
		QueryCacheSize:      cfg.Retrieval.QueryCacheSize,
		QueryCacheTTL:       cfg.QueryCacheTTL(),
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		Logger:              logger,
	})
	chat := service.NewChat(retriever, gen, service.ChatOptions{
		GenerateTimeout: cfg.GenerateTimeout(),
		HistorySize:     cfg.History.MaxTurns,
		Logger:          logger,
	})

	logger.Info("pipeline ready",
		zap.String("chunker", cfg.Chunker.Type),
		zap.String("embedder", emb.Name()),
		zap.String("generator", gen.Name()),
		zap.Int("dimension", cfg.Index.Dimension),
	)
	return &app{cfg: cfg, logger: logger, embedder: emb, generator: gen, chat: chat}, nil
}

func (a *app) close() { _ = a.logger.Sync() }

func (a *app) ingestFile(ctx context.Context, path string) (domain.IngestResult, error) {
	doc, err := extract.File(path)
	if err != nil {
		return domain.IngestResult{}, err
	}
	return a.chat.Retriever().Ingest(ctx, doc)
}

type modelLister interface {
	Models(ctx context.Context) ([]string, error)
}

// check probes the generator and the embedder and reports each result.
func (a *app) check(ctx context.Context, out io.Writer) error {
	failed := false
	report := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Fprintf(out, "FAIL  %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(out, "OK    %s\n", name)
	}

	if lister, ok := a.generator.(modelLister); ok {
		lctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		models, err := lister.Models(lctx)
		cancel()
		if err == nil {
			fmt.Fprintf(out, "      available models: %v\n", models)
		}
	}
	report("generator "+a.generator.Name(), a.chat.GeneratorHealth(ctx))

	ectx, cancel := context.WithTimeout(ctx, a.cfg.EmbedTimeout())
	vecs, err := a.embedder.Embed(ectx, []string{"docchat connectivity check"})
	cancel()
	if err == nil && len(vecs[0]) != a.cfg.Index.Dimension {
		err = fmt.Errorf("%w: got %d, index expects %d", domain.ErrDimensionMismatch, len(vecs[0]), a.cfg.Index.Dimension)
	}
	report("embedder "+a.embedder.Name(), err)

	if failed {
		return errCheckFailed
	}
	return nil
}
