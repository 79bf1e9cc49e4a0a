package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wikirag/internal/domain"
)

const defaultEndpoint = "https://en.wikipedia.org/w/api.php"

// Wikipedia fetches plain-text article extracts through the MediaWiki
// action API.
type Wikipedia struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		endpoint:  defaultEndpoint,
		userAgent: "wikirag/1.0 (educational project)",
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWikipediaWithEndpoint points the fetcher at a non-default API
// endpoint, e.g. another language edition or a test server.
func NewWikipediaWithEndpoint(endpoint string) *Wikipedia {
	w := NewWikipedia()
	w.endpoint = endpoint
	return w
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			Extract string `json:"extract"`
			FullURL string `json:"fullurl"`
		} `json:"pages"`
	} `json:"query"`
}

// Fetch retrieves the full plain-text extract of one article. The
// returned document has no ID; the pipeline assigns one on ingest.
func (w *Wikipedia) Fetch(title string) (domain.Document, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|info")
	params.Set("explaintext", "1")
	params.Set("inprop", "url")
	params.Set("redirects", "1")
	params.Set("format", "json")
	params.Set("titles", title)

	req, err := http.NewRequest("GET", w.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Document{}, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Document{}, fmt.Errorf("failed to parse response: %w", err)
	}

	// Missing pages come back with no pageid and an empty extract.
	for _, page := range parsed.Query.Pages {
		if page.PageID == 0 || page.Extract == "" {
			continue
		}
		return domain.Document{
			Title:     page.Title,
			SourceURL: page.FullURL,
			Text:      page.Extract,
		}, nil
	}

	return domain.Document{}, fmt.Errorf("article %q: %w", title, domain.ErrNotFound)
}
