package port

import "wikirag/internal/domain"

// Fetcher acquires documents from an external source by title.
type Fetcher interface {
	Fetch(title string) (domain.Document, error)
}
