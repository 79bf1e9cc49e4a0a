package port

import "wikirag/internal/domain"

type Chunker interface {
	Chunk(doc domain.Document) []domain.Chunk
}
