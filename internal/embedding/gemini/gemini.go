package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// Client embeds text with the Gemini API.
type Client struct {
	client    *genai.Client
	model     string
	dimension int
	taskType  string
}

// Config configures the Gemini embeddings client.
type Config struct {
	APIKeyEnv string
	Model     string
	Dimension int
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: cfg.Model, dimension: cfg.Dimension, taskType: "RETRIEVAL_DOCUMENT"}, nil
}

func (c *Client) Name() string { return "gemini/" + c.model }

func (c *Client) Dimension() int { return c.dimension }

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{{Text: t}}}
	}
	config := &genai.EmbedContentConfig{TaskType: c.taskType}
	if c.dimension > 0 {
		dim := int32(c.dimension)
		config.OutputDimensionality = &dim
	}
	resp, err := c.client.Models.EmbedContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, errors.New("no embedding values returned")
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}
