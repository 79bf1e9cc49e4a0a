package retriever

import (
	"fmt"
	"strings"

	"wikirag/internal/domain"
)

// formatContext renders ranked passages into the context block handed
// to generation: one "[title | url] text" entry per passage, separated
// by a --- marker, rank order preserved.
func formatContext(results []domain.ScoredChunk) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("[%s | %s] %s", r.Chunk.Title, r.Chunk.SourceURL, r.Chunk.Text))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
