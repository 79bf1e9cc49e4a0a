package retriever

import (
	"errors"
	"path/filepath"
	"testing"

	"wikirag/internal/adapter/embedding"
	"wikirag/internal/adapter/store"
	"wikirag/internal/domain"
)

func buildTestIndex(t *testing.T, chunks []domain.Chunk, embedder *embedding.MockEmbedder) *store.FlatIndex {
	t.Helper()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.Embed(texts)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "index.db")
	if err := store.WriteFlatIndex(path, vectors); err != nil {
		t.Fatal(err)
	}
	idx, err := store.OpenFlatIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func refsFor(chunks []domain.Chunk) []domain.ChunkRef {
	refs := make([]domain.ChunkRef, len(chunks))
	for i, c := range chunks {
		refs[i] = domain.ChunkRef{ID: c.ID, DocumentID: c.DocID, Title: c.Title, SourceURL: c.SourceURL}
	}
	return refs
}

func TestVectorSearchSingleChunkCorpus(t *testing.T) {
	chunks := saltChunks()[:1]
	embedder := embedding.NewMockEmbedder(16)
	idx := buildTestIndex(t, chunks, embedder)

	r := NewVectorRetriever(idx, refsFor(chunks), chunks, embedder)

	// A single-chunk corpus must return that chunk for any query.
	for _, query := range []string{"salt march", "completely unrelated text", ""} {
		results, err := r.Search(query, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 {
			t.Fatalf("query %q: expected 1 result, got %d", query, len(results))
		}
		if results[0].Chunk.ID != chunks[0].ID {
			t.Errorf("query %q: got chunk %s", query, results[0].Chunk.ID)
		}
		if results[0].Score < 0 {
			t.Errorf("query %q: negative distance %v", query, results[0].Score)
		}
	}
}

func TestVectorSearchOrdering(t *testing.T) {
	chunks := saltChunks()
	embedder := embedding.NewMockEmbedder(32)
	idx := buildTestIndex(t, chunks, embedder)

	r := NewVectorRetriever(idx, refsFor(chunks), chunks, embedder)

	// Querying with a chunk's exact text puts it at distance zero.
	results, err := r.Search(chunks[1].Text, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != chunks[1].ID {
		t.Errorf("expected exact-text chunk first, got %s", results[0].Chunk.ID)
	}
	if results[0].Score != 0 {
		t.Errorf("expected zero distance for identical text, got %v", results[0].Score)
	}
	if results[1].Score < results[0].Score {
		t.Error("distances must be ascending")
	}
}

func TestVectorSearchDropsStaleOrdinals(t *testing.T) {
	chunks := saltChunks()
	embedder := embedding.NewMockEmbedder(16)
	idx := buildTestIndex(t, chunks, embedder)

	// Metadata shorter than the index simulates a stale artifact pair:
	// hits beyond its bounds are dropped, not surfaced as errors.
	r := NewVectorRetriever(idx, refsFor(chunks[:1]), chunks[:1], embedder)

	results, err := r.Search("salt", 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, res := range results {
		if res.Chunk.ID != chunks[0].ID {
			t.Errorf("stale ordinal leaked into results: %s", res.Chunk.ID)
		}
	}
	if len(results) > 1 {
		t.Errorf("expected at most 1 in-bounds result, got %d", len(results))
	}
}

func TestVectorSearchEmbedderFailure(t *testing.T) {
	chunks := saltChunks()
	embedder := embedding.NewMockEmbedder(16)
	idx := buildTestIndex(t, chunks, embedder)

	r := NewVectorRetriever(idx, refsFor(chunks), chunks, failingEmbedder{})

	_, err := r.Search("salt", 1)
	if err == nil {
		t.Fatal("expected error from failing embedder")
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed([]string) ([][]float32, error) {
	return nil, errors.New("encoder unavailable")
}

func (failingEmbedder) Dimension() int    { return 16 }
func (failingEmbedder) ModelName() string { return "failing" }
