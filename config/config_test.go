package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wikirag/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.ChunkSize != 500 {
		t.Errorf("ChunkSize = %d, want 500", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.ChunkOverlap != 50 {
		t.Errorf("ChunkOverlap = %d, want 50", cfg.Chunking.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Generation.MaxNewTokens != 256 {
		t.Errorf("MaxNewTokens = %d, want 256", cfg.Generation.MaxNewTokens)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want default 5", cfg.Retrieval.TopK)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wikirag.yaml")

	data := `
chunking:
  chunk_size: 800
retrieval:
  mode: vector
  top_k: 3
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Chunking.ChunkSize != 800 {
		t.Errorf("ChunkSize = %d, want 800", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.ChunkOverlap != 50 {
		t.Errorf("ChunkOverlap = %d, want default 50", cfg.Chunking.ChunkOverlap)
	}
	if cfg.Retrieval.Mode != "vector" {
		t.Errorf("Mode = %q, want vector", cfg.Retrieval.Mode)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.Retrieval.TopK)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"zero chunk size", func(c *Config) { c.Chunking.ChunkSize = 0 }, true},
		{"negative overlap", func(c *Config) { c.Chunking.ChunkOverlap = -1 }, true},
		{"overlap equals size", func(c *Config) { c.Chunking.ChunkOverlap = c.Chunking.ChunkSize }, true},
		{"overlap exceeds size", func(c *Config) { c.Chunking.ChunkOverlap = c.Chunking.ChunkSize + 10 }, true},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }, true},
		{"unknown mode", func(c *Config) { c.Retrieval.Mode = "hybrid" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidConfig) {
					t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
				}
			} else if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wikirag.yaml")

	cfg := DefaultConfig()
	cfg.Chunking.ChunkSize = 250
	cfg.Chunking.ChunkOverlap = 25

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Chunking.ChunkSize != 250 {
		t.Errorf("ChunkSize = %d, want 250", loaded.Chunking.ChunkSize)
	}
	if loaded.Chunking.ChunkOverlap != 25 {
		t.Errorf("ChunkOverlap = %d, want 25", loaded.Chunking.ChunkOverlap)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("empty dir should yield defaults, TopK = %d", cfg.Retrieval.TopK)
	}

	data := "retrieval:\n  top_k: 9\n"
	if err := os.WriteFile(filepath.Join(dir, "wikirag.yaml"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Retrieval.TopK != 9 {
		t.Errorf("TopK = %d, want 9", cfg.Retrieval.TopK)
	}
}

func TestPathHelpers(t *testing.T) {
	dir := "/tmp/project"

	if got := ChunksPath(dir); got != filepath.Join(dir, ".wikirag", "chunks.jsonl") {
		t.Errorf("ChunksPath = %q", got)
	}
	if got := MetadataPath(dir); got != filepath.Join(dir, ".wikirag", "metadata.json") {
		t.Errorf("MetadataPath = %q", got)
	}
	if got := IndexPath(dir); got != filepath.Join(dir, ".wikirag", "index.db") {
		t.Errorf("IndexPath = %q", got)
	}
}
