package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"wikirag/config"
	"wikirag/internal/adapter/fetcher"
	"wikirag/internal/adapter/fs"
	"wikirag/internal/domain"
	"wikirag/internal/usecase"
)

var ingestWikiTitles []string

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest documents into the chunk store",
	Long: `Ingest documents and split them into overlapping chunks. Sources can be
Wikipedia article titles (--wiki, repeatable) or a directory of local text
files. Ingesting replaces the stored corpus; re-run 'wikirag index' afterwards
when using vector retrieval.

Examples:
  wikirag ingest --wiki "Salt March" --wiki "Industrial Revolution"
  wikirag ingest ./notes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringArrayVar(&ingestWikiTitles, "wiki", nil, "Wikipedia article title to fetch (repeatable)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	var docs []domain.Document

	if len(ingestWikiTitles) > 0 {
		wiki := fetcher.NewWikipedia()
		for _, title := range ingestWikiTitles {
			fmt.Printf("Fetching %q...\n", title)
			doc, err := wiki.Fetch(title)
			if err != nil {
				return fmt.Errorf("failed to fetch %q: %w", title, err)
			}
			docs = append(docs, doc)
		}
	}

	if len(args) > 0 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		loader := fs.NewLoader(cfg.Ingest.Includes, cfg.Ingest.Excludes)
		loaded, err := loader.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load files: %w", err)
		}
		fmt.Printf("Loaded %d file(s) from %s\n", len(loaded), path)
		docs = append(docs, loaded...)
	}

	if len(docs) == 0 {
		return fmt.Errorf("nothing to ingest: pass a directory or at least one --wiki title")
	}

	p, err := newPipeline()
	if err != nil {
		return err
	}

	n, err := p.AddDocuments(docs)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngested %d document(s) into %d chunk(s)\n", len(docs), n)
	fmt.Printf("Chunk store: %s\n", config.ChunksPath(rootDir))
	if cfg.Retrieval.Mode == usecase.ModeVector {
		fmt.Println("Run 'wikirag index' to rebuild the vector index.")
	}
	return nil
}
