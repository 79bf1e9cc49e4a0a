package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wikirag/config"
	"wikirag/internal/adapter/cache"
	"wikirag/internal/adapter/chunker"
	"wikirag/internal/adapter/embedding"
	"wikirag/internal/adapter/generation"
	"wikirag/internal/port"
	"wikirag/internal/usecase"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "wikirag",
	Short: "Wikipedia RAG - ingest articles, build an index, ask questions",
	Long: `wikirag is a retrieval-augmented question answering tool. It ingests
Wikipedia articles or local text files, splits them into overlapping chunks,
and answers questions grounded in the retrieved passages.

Example usage:
  wikirag ingest --wiki "Salt March" --wiki "Mahatma Gandhi"
  wikirag index
  wikirag query -q "Who led the Salt March?"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./wikirag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "data directory (default is current directory)")
}

// newEmbedder builds the configured embedding client. Vector mode only.
func newEmbedder() (port.Embedder, error) {
	e := cfg.Embedding
	opts := []embedding.Option{}
	if e.BatchSize > 0 {
		opts = append(opts, embedding.WithBatchSize(e.BatchSize))
	}
	if e.Dimension > 0 {
		opts = append(opts, embedding.WithDimension(e.Dimension))
	}

	switch e.Provider {
	case "openai":
		return embedding.NewOpenAIClient(e.APIKeyEnv, e.Model, opts...)
	case "jina":
		return embedding.NewJinaClient(e.APIKeyEnv, e.Model, opts...)
	case "ollama":
		return embedding.NewOllamaClient(e.Model, e.BaseURL, opts...)
	case "mock":
		return embedding.NewMockEmbedder(e.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", e.Provider)
	}
}

// newPipeline wires the pipeline from the loaded config.
func newPipeline() (*usecase.Pipeline, error) {
	if err := config.EnsureDataDir(rootDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	var embedder port.Embedder
	if cfg.Retrieval.Mode == usecase.ModeVector {
		var err error
		embedder, err = newEmbedder()
		if err != nil {
			return nil, err
		}
	}

	g := cfg.Generation
	gen, err := generation.NewClient(g.Provider, g.Model, g.BaseURL, g.APIKey, g.MaxNewTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	var qc *cache.QueryCache
	if cfg.Retrieval.CacheSize > 0 {
		qc = cache.NewQueryCache(cfg.Retrieval.CacheSize, time.Duration(cfg.Retrieval.CacheTTLSecs)*time.Second)
	}

	return usecase.NewPipeline(usecase.PipelineOptions{
		Chunker:      chunker.NewWindowChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
		Embedder:     embedder,
		Generator:    gen,
		ChunksPath:   config.ChunksPath(rootDir),
		IndexPath:    config.IndexPath(rootDir),
		MetadataPath: config.MetadataPath(rootDir),
		Mode:         cfg.Retrieval.Mode,
		TopK:         cfg.Retrieval.TopK,
		BatchSize:    cfg.Embedding.BatchSize,
		Cache:        qc,
	})
}
