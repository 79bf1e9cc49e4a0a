package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"wikirag/internal/domain"
)

// Loader turns local text files into documents for ingestion. Files
// are selected by doublestar include/exclude patterns relative to the
// walked root.
type Loader struct {
	includes []string
	excludes []string
}

func NewLoader(includes, excludes []string) *Loader {
	if len(includes) == 0 {
		includes = []string{"**/*.txt", "**/*.md"}
	}
	return &Loader{
		includes: includes,
		excludes: excludes,
	}
}

// Load walks root and reads every matching file as one document. The
// document title is the file name without extension and the source
// URL is a file:// reference; IDs are left for the pipeline to
// assign.
func (l *Loader) Load(root string) ([]domain.Document, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if l.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !l.shouldInclude(relPath) || l.shouldExclude(relPath) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		name := filepath.Base(path)
		docs = append(docs, domain.Document{
			Title:     strings.TrimSuffix(name, filepath.Ext(name)),
			SourceURL: "file://" + path,
			Text:      string(data),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (l *Loader) shouldInclude(path string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *Loader) shouldExclude(path string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
