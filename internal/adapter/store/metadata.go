package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"wikirag/internal/domain"
)

// SaveMetadata writes the ordinal-aligned chunk reference array. Like
// the chunk store, it writes through a temporary file so a failed
// build never clobbers the previous array.
func SaveMetadata(path string, refs []domain.ChunkRef) error {
	if refs == nil {
		refs = []domain.ChunkRef{}
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadMetadata reads the chunk reference array persisted by a build.
func LoadMetadata(path string) ([]domain.ChunkRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("metadata %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var refs []domain.ChunkRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return refs, nil
}
