package retriever

import (
	"sort"
	"strings"

	"wikirag/internal/domain"
)

// LexicalRetriever scores chunks by case-insensitive whitespace-token
// overlap with the query. It needs no index and serves as the
// fallback whenever no vector index has been built.
type LexicalRetriever struct {
	chunks []domain.Chunk
}

func NewLexicalRetriever(chunks []domain.Chunk) *LexicalRetriever {
	return &LexicalRetriever{chunks: chunks}
}

// Search returns up to k chunks sharing at least one token with the
// query, ranked by shared-token count descending. Ties keep the
// original chunk-sequence order.
func (r *LexicalRetriever) Search(query string, k int) ([]domain.ScoredChunk, error) {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	var results []domain.ScoredChunk
	for _, chunk := range r.chunks {
		score := 0
		for token := range tokenSet(chunk.Text) {
			if _, ok := queryTokens[token]; ok {
				score++
			}
		}
		if score == 0 {
			continue
		}
		results = append(results, domain.ScoredChunk{
			Chunk: chunk,
			Score: float64(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (r *LexicalRetriever) FormatContext(results []domain.ScoredChunk) string {
	return formatContext(results)
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
