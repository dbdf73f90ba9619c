package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	ChunkSize         int    `yaml:"chunk_size"`
	Overlap           int    `yaml:"overlap"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// IndexConfig fixes the vector dimension every embedder must produce.
type IndexConfig struct {
	Dimension int `yaml:"dimension"`
}

// OllamaConfig holds connection details for a local Ollama server.
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// OpenAIConfig holds configuration for an OpenAI-compatible API.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size,omitempty"`
}

// GeminiConfig holds configuration for the Gemini API.
type GeminiConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string        `yaml:"type"`
	TimeoutSecs int           `yaml:"timeout_secs"`
	Ollama      *OllamaConfig `yaml:"ollama,omitempty"`
	OpenAI      *OpenAIConfig `yaml:"openai,omitempty"`
	Gemini      *GeminiConfig `yaml:"gemini,omitempty"`
}

// GeneratorConfig selects and configures the answer generator.
type GeneratorConfig struct {
	Type        string        `yaml:"type"`
	TimeoutSecs int           `yaml:"timeout_secs"`
	Ollama      *OllamaConfig `yaml:"ollama,omitempty"`
	OpenAI      *OpenAIConfig `yaml:"openai,omitempty"`
	Gemini      *GeminiConfig `yaml:"gemini,omitempty"`
}

// RetrievalConfig configures query-time behaviour.
type RetrievalConfig struct {
	TopK              int `yaml:"top_k"`
	QueryCacheSize    int `yaml:"query_cache_size"`
	QueryCacheTTLSecs int `yaml:"query_cache_ttl_secs"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// HistoryConfig bounds the conversation log.
type HistoryConfig struct {
	MaxTurns int `yaml:"max_turns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// LogConfig configures logging. An empty File logs to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Index      IndexConfig      `yaml:"index"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	History    HistoryConfig    `yaml:"history"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// EmbedTimeout bounds a single embedder call.
func (c *AppConfig) EmbedTimeout() time.Duration {
	return time.Duration(c.Embedder.TimeoutSecs) * time.Second
}

// GenerateTimeout bounds a single generator call.
func (c *AppConfig) GenerateTimeout() time.Duration {
	return time.Duration(c.Generator.TimeoutSecs) * time.Second
}

// QueryCacheTTL is how long a query embedding stays cached.
func (c *AppConfig) QueryCacheTTL() time.Duration {
	return time.Duration(c.Retrieval.QueryCacheTTLSecs) * time.Second
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/docchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations that cannot work at runtime.
func (c *AppConfig) Validate() error {
	switch c.Chunker.Type {
	case "word":
		if c.Chunker.ChunkSize <= 0 || c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
			return fmt.Errorf("chunker: overlap (%d) must be in [0, chunk_size=%d)", c.Chunker.Overlap, c.Chunker.ChunkSize)
		}
	case "sentence":
		if c.Chunker.SentencesPerChunk <= 0 || c.Chunker.OverlapSentences < 0 || c.Chunker.OverlapSentences >= c.Chunker.SentencesPerChunk {
			return fmt.Errorf("chunker: overlap_sentences (%d) must be in [0, sentences_per_chunk=%d)", c.Chunker.OverlapSentences, c.Chunker.SentencesPerChunk)
		}
	default:
		return fmt.Errorf("unknown chunker: %s", c.Chunker.Type)
	}
	if c.Index.Dimension <= 0 {
		return fmt.Errorf("index: dimension must be positive, got %d", c.Index.Dimension)
	}
	switch c.Embedder.Type {
	case "hashing", "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("unknown embedder: %s", c.Embedder.Type)
	}
	switch c.Generator.Type {
	case "extractive", "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("unknown generator: %s", c.Generator.Type)
	}
	if c.Summarizer.Type != "frequency" && c.Summarizer.Type != "none" {
		return fmt.Errorf("unknown summarizer: %s", c.Summarizer.Type)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docchat", "config.yaml"), nil
}

// Default returns the built-in configuration: local hashing embeddings and
// an Ollama generator, matching an offline setup.
func Default() *AppConfig {
	cfg := &AppConfig{
		Chunker:    ChunkerConfig{Type: "word", ChunkSize: 500, Overlap: 50},
		Index:      IndexConfig{Dimension: 384},
		Embedder:   EmbedderConfig{Type: "hashing", TimeoutSecs: 60},
		Generator:  GeneratorConfig{Type: "ollama", TimeoutSecs: 120, Ollama: &OllamaConfig{Host: "http://localhost:11434", Model: "phi"}},
		Retrieval:  RetrievalConfig{TopK: 3, QueryCacheSize: 256, QueryCacheTTLSecs: 600},
		Summarizer: SummarizerConfig{Type: "frequency", MaxSentences: 3},
		History:    HistoryConfig{MaxTurns: 50},
		Server:     ServerConfig{Addr: ":8000", MaxUploadMB: 32},
		Log:        LogConfig{Level: "info", Format: "console"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = def.Chunker.Type
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.Index.Dimension == 0 {
		cfg.Index.Dimension = def.Index.Dimension
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.TimeoutSecs <= 0 {
		cfg.Embedder.TimeoutSecs = def.Embedder.TimeoutSecs
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = def.Generator.Type
	}
	if cfg.Generator.TimeoutSecs <= 0 {
		cfg.Generator.TimeoutSecs = def.Generator.TimeoutSecs
	}
	applyProviderDefaults(&cfg.Embedder.Ollama, &cfg.Embedder.OpenAI, &cfg.Embedder.Gemini, cfg.Embedder.Type, "all-minilm", "text-embedding-3-small", "text-embedding-004")
	applyProviderDefaults(&cfg.Generator.Ollama, &cfg.Generator.OpenAI, &cfg.Generator.Gemini, cfg.Generator.Type, "phi", "gpt-4o-mini", "gemini-2.0-flash")
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = def.Summarizer.Type
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	if cfg.History.MaxTurns <= 0 {
		cfg.History.MaxTurns = def.History.MaxTurns
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = def.Server.MaxUploadMB
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

func applyProviderDefaults(ol **OllamaConfig, oa **OpenAIConfig, gm **GeminiConfig, typ, ollamaModel, openaiModel, geminiModel string) {
	switch typ {
	case "ollama":
		if *ol == nil {
			*ol = &OllamaConfig{}
		}
		if (*ol).Host == "" {
			(*ol).Host = "http://localhost:11434"
		}
		if (*ol).Model == "" {
			(*ol).Model = ollamaModel
		}
	case "openai":
		if *oa == nil {
			*oa = &OpenAIConfig{}
		}
		if (*oa).BaseURL == "" {
			(*oa).BaseURL = "https://api.openai.com/v1"
		}
		if (*oa).APIKeyEnv == "" {
			(*oa).APIKeyEnv = "OPENAI_API_KEY"
		}
		if (*oa).Model == "" {
			(*oa).Model = openaiModel
		}
		if (*oa).BatchSize == 0 {
			(*oa).BatchSize = 32
		}
	case "gemini":
		if *gm == nil {
			*gm = &GeminiConfig{}
		}
		if (*gm).APIKeyEnv == "" {
			(*gm).APIKeyEnv = "GEMINI_API_KEY"
		}
		if (*gm).Model == "" {
			(*gm).Model = geminiModel
		}
	}
}
