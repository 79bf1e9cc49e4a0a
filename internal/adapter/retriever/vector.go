package retriever

import (
	"fmt"

	"wikirag/internal/adapter/store"
	"wikirag/internal/domain"
	"wikirag/internal/port"
)

// VectorRetriever answers queries against a persisted flat index. The
// embedder must be the one the index was built with; a mismatched
// encoder degrades result quality silently rather than erroring.
type VectorRetriever struct {
	index    *store.FlatIndex
	meta     []domain.ChunkRef
	chunks   []domain.Chunk
	embedder port.Embedder
}

func NewVectorRetriever(
	index *store.FlatIndex,
	meta []domain.ChunkRef,
	chunks []domain.Chunk,
	embedder port.Embedder,
) *VectorRetriever {
	return &VectorRetriever{
		index:    index,
		meta:     meta,
		chunks:   chunks,
		embedder: embedder,
	}
}

// Search embeds the query and returns the k nearest chunks by L2
// distance, ascending. Hits outside the metadata array's bounds are
// dropped as stale rather than surfaced as errors.
func (r *VectorRetriever) Search(query string, k int) ([]domain.ScoredChunk, error) {
	embeddings, err := r.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("encoder returned no embedding for query")
	}

	hits, err := r.index.Search(embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Ordinal < 0 || hit.Ordinal >= len(r.meta) || hit.Ordinal >= len(r.chunks) {
			continue
		}
		results = append(results, domain.ScoredChunk{
			Chunk: r.chunks[hit.Ordinal],
			Score: hit.Distance,
		})
	}
	return results, nil
}

func (r *VectorRetriever) FormatContext(results []domain.ScoredChunk) string {
	return formatContext(results)
}
