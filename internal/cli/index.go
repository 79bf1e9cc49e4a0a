package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"wikirag/config"
	"wikirag/internal/usecase"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the retrieval index from ingested chunks",
	Long: `Build retrieval artifacts for the ingested corpus. In vector mode this
embeds every chunk and writes the vector index plus its metadata; in lexical
mode the chunk store is used directly and this only verifies it exists.

Examples:
  wikirag index
  wikirag index -d /path/to/project`,
	Args: cobra.NoArgs,
	RunE: runBuildIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runBuildIndex(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	n, err := p.BuildIndex(progress)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if cfg.Retrieval.Mode == usecase.ModeVector {
		fmt.Printf("Indexed %d chunk(s)\n", n)
		fmt.Printf("Index stored at: %s\n", config.IndexPath(rootDir))
	} else {
		fmt.Printf("Lexical mode: %d chunk(s) ready, no index artifact needed\n", n)
	}
	return nil
}
