package chunker

import (
	"fmt"
	"strings"

	"wikirag/internal/domain"
)

// WindowChunker splits normalized document text into fixed-size
// character windows that advance by size minus overlap.
type WindowChunker struct {
	size    int
	overlap int
}

func NewWindowChunker(size, overlap int) *WindowChunker {
	return &WindowChunker{
		size:    size,
		overlap: overlap,
	}
}

// Chunk splits a document into overlapping windows over its
// normalized text. All offsets refer to the normalized text, counted
// in characters.
//
// A document no longer than one window yields a single chunk spanning
// the full text; empty or whitespace-only input yields no chunks. When
// the stride would leave a final window shorter than the configured
// size, that window is pulled back to end exactly at the text length,
// which can give it more than the nominal overlap with its
// predecessor.
func (c *WindowChunker) Chunk(doc domain.Document) []domain.Chunk {
	text := []rune(Normalize(doc.Text))
	if len(text) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	emit := func(start, end int) {
		chunks = append(chunks, domain.Chunk{
			ID:        fmt.Sprintf("%s_%d", doc.ID, len(chunks)),
			DocID:     doc.ID,
			Text:      string(text[start:end]),
			Title:     doc.Title,
			SourceURL: doc.SourceURL,
			StartPos:  start,
			EndPos:    end,
		})
	}

	start := 0
	for {
		if len(text)-start <= c.size {
			// Final window. Right-justify it unless the whole
			// document fits in one chunk.
			if len(chunks) > 0 {
				start = len(text) - c.size
			}
			emit(start, len(text))
			return chunks
		}
		emit(start, start+c.size)
		start += c.size - c.overlap
	}
}

// Normalize collapses whitespace runs to single spaces and trims the
// ends. Chunk offsets are relative to this form.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
