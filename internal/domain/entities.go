package domain

// Document is the unit of ingestion. Only its derived chunks are persisted.
type Document struct {
	ID        string
	Title     string
	SourceURL string
	Text      string
}

// Chunk is the atomic retrieval unit: a positioned substring of a
// document's normalized text. StartPos and EndPos are character
// offsets into the normalized text.
type Chunk struct {
	ID        string `json:"id"`
	DocID     string `json:"doc_id"`
	Text      string `json:"text"`
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	StartPos  int    `json:"start_pos"`
	EndPos    int    `json:"end_pos"`
}

// ScoredChunk is a chunk annotated with a retrieval score. Score
// semantics depend on the retriever: L2 distance (lower is better)
// for vector search, shared-token count (higher is better) for
// lexical search.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// ChunkRef is the metadata record persisted alongside the vector
// index. Its ordinal position must always match the index position
// of the corresponding embedding.
type ChunkRef struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	SourceURL  string `json:"source_url"`
}

// SourceRef identifies a source attributed to a generated answer.
type SourceRef struct {
	Title     string  `json:"title"`
	SourceURL string  `json:"source_url"`
	Score     float64 `json:"score"`
}

// QueryResponse is the result of a full retrieve-and-generate cycle.
// UsedPassages always carries the retrieval result regardless of the
// attribution decision; Sources is empty when the generator declared
// it answered from general knowledge.
type QueryResponse struct {
	Question     string        `json:"question"`
	Answer       string        `json:"answer"`
	Sources      []SourceRef   `json:"sources"`
	UsedPassages []ScoredChunk `json:"used_passages"`
}
