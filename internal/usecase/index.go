package usecase

import (
	"fmt"
	"os"

	"wikirag/internal/adapter/store"
	"wikirag/internal/domain"
	"wikirag/internal/port"
)

// IndexBuilder embeds the persisted chunk sequence and materializes the
// vector index alongside its ordinal-aligned metadata. Artifacts are
// written to temporary paths and renamed into place, so a failed build
// leaves any previous index untouched.
type IndexBuilder struct {
	chunks    *store.ChunkStore
	embedder  port.Embedder
	indexPath string
	metaPath  string
	batchSize int

	// Progress is called after each embedded batch with the number of
	// chunks processed so far and the total. Optional.
	Progress func(done, total int)
}

// NewIndexBuilder creates an index builder.
func NewIndexBuilder(chunks *store.ChunkStore, embedder port.Embedder, indexPath, metaPath string, batchSize int) *IndexBuilder {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &IndexBuilder{
		chunks:    chunks,
		embedder:  embedder,
		indexPath: indexPath,
		metaPath:  metaPath,
		batchSize: batchSize,
	}
}

// Build embeds every stored chunk and writes the index and metadata
// artifacts. Returns the number of vectors indexed.
func (b *IndexBuilder) Build() (int, error) {
	chunks, err := b.chunks.Load()
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks to index: %w", domain.ErrNotFound)
	}

	vectors := make([][]float32, 0, len(chunks))
	dim := 0

	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := b.embedder.Embed(texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed batch at chunk %d: %w", start, err)
		}
		if len(batch) != len(texts) {
			return 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), len(texts))
		}

		for i, vec := range batch {
			if dim == 0 {
				dim = len(vec)
			}
			if len(vec) != dim {
				return 0, fmt.Errorf("vector for chunk %d has dimension %d, index has %d: %w",
					start+i, len(vec), dim, domain.ErrDimensionMismatch)
			}
		}
		vectors = append(vectors, batch...)

		if b.Progress != nil {
			b.Progress(end, len(chunks))
		}
	}

	meta := make([]domain.ChunkRef, 0, len(chunks))
	for _, c := range chunks {
		meta = append(meta, domain.ChunkRef{
			ID:         c.ID,
			DocumentID: c.DocID,
			Title:      c.Title,
			SourceURL:  c.SourceURL,
		})
	}

	// Stage both artifacts fully before renaming either, so a failure
	// at any point leaves the previous index and metadata aligned.
	tmpIndex := b.indexPath + ".tmp"
	tmpMeta := b.metaPath + ".tmp"
	if err := store.WriteFlatIndex(tmpIndex, vectors); err != nil {
		os.Remove(tmpIndex)
		return 0, fmt.Errorf("failed to write index: %w", err)
	}
	if err := store.SaveMetadata(tmpMeta, meta); err != nil {
		os.Remove(tmpIndex)
		os.Remove(tmpMeta)
		return 0, fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Rename(tmpIndex, b.indexPath); err != nil {
		os.Remove(tmpIndex)
		os.Remove(tmpMeta)
		return 0, fmt.Errorf("failed to replace index: %w", err)
	}
	if err := os.Rename(tmpMeta, b.metaPath); err != nil {
		os.Remove(tmpMeta)
		return 0, fmt.Errorf("failed to replace metadata: %w", err)
	}

	return len(vectors), nil
}
