package port

import "wikirag/internal/domain"

// Retriever is the capability pair the orchestrator depends on. Both
// the vector and lexical implementations satisfy it, so the pipeline
// stays agnostic of the retrieval mode.
type Retriever interface {
	// Search returns the top-k chunks for the query, ranked best
	// first under the retriever's own score semantics.
	Search(query string, k int) ([]domain.ScoredChunk, error)

	// FormatContext renders ranked results into the context string
	// passed to generation.
	FormatContext(results []domain.ScoredChunk) string
}
