package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wikirag/internal/domain"
)

// Config holds all configuration for the RAG pipeline.
type Config struct {
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Ingest     IngestConfig     `yaml:"ingest"`
}

// ChunkingConfig controls how documents are split into chunks.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig controls retrieval behavior.
type RetrievalConfig struct {
	Mode         string `yaml:"mode"` // "lexical" or "vector"
	TopK         int    `yaml:"top_k"`
	CacheSize    int    `yaml:"cache_size"`
	CacheTTLSecs int    `yaml:"cache_ttl_secs"`
}

// EmbeddingConfig configures the embedding encoder collaborator.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "jina", "ollama", "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// GenerationConfig configures the text-generation collaborator.
type GenerationConfig struct {
	Provider     string `yaml:"provider"` // "openai", "deepseek", "local"
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	MaxNewTokens int    `yaml:"max_new_tokens"`
}

// IngestConfig controls local file ingestion.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
		Retrieval: RetrievalConfig{
			Mode:         "lexical",
			TopK:         5,
			CacheSize:    100,
			CacheTTLSecs: 300,
		},
		Embedding: EmbeddingConfig{
			Provider:  "mock",
			Model:     "all-minilm",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			BatchSize: 32,
		},
		Generation: GenerationConfig{
			Provider:     "local",
			Model:        "llama3",
			MaxNewTokens: 256,
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.git/**", "**/node_modules/**"},
		},
	}
}

// Validate checks option combinations the pipeline depends on.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d: %w", c.Chunking.ChunkSize, domain.ErrInvalidConfig)
	}
	if c.Chunking.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative, got %d: %w", c.Chunking.ChunkOverlap, domain.ErrInvalidConfig)
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d): %w",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize, domain.ErrInvalidConfig)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("top_k must be >= 1, got %d: %w", c.Retrieval.TopK, domain.ErrInvalidConfig)
	}
	switch c.Retrieval.Mode {
	case "lexical", "vector":
	default:
		return fmt.Errorf("unknown retrieval mode %q: %w", c.Retrieval.Mode, domain.ErrInvalidConfig)
	}
	return nil
}

// Load loads configuration from a YAML file, layered over defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for wikirag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "wikirag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".wikirag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ChunksPath returns the path of the persisted chunk sequence.
func ChunksPath(dir string) string {
	return filepath.Join(dir, ".wikirag", "chunks.jsonl")
}

// MetadataPath returns the path of the ordinal-aligned metadata array.
func MetadataPath(dir string) string {
	return filepath.Join(dir, ".wikirag", "metadata.json")
}

// IndexPath returns the path of the vector index artifact.
func IndexPath(dir string) string {
	return filepath.Join(dir, ".wikirag", "index.db")
}

// EnsureDataDir ensures the .wikirag directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".wikirag"), 0755)
}
