package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question against the ingested corpus",
	Long: `Retrieve the most relevant passages for a question and generate an
answer grounded in them. Sources are listed unless the model answered from
its own general knowledge.

Examples:
  wikirag query -q "Who led the Salt March?"
  wikirag query -q "Who led the Salt March?" -k 3 --json`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question to ask (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the full response as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}

	resp, err := p.QueryTopK(queryText, queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(resp.Answer)

	if len(resp.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, s := range resp.Sources {
			fmt.Printf("  [%d] %s (%s) score=%.4f\n", i+1, s.Title, s.SourceURL, s.Score)
		}
	} else {
		fmt.Println("\n(answered from general knowledge)")
	}
	return nil
}
