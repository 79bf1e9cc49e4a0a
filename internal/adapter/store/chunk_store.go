package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wikirag/internal/domain"
)

// ChunkStore persists the ordered chunk sequence as one JSON record
// per line. Saves replace the file wholesale; the chunk sequence is
// never merged in place.
type ChunkStore struct {
	path string
}

func NewChunkStore(path string) *ChunkStore {
	return &ChunkStore{path: path}
}

// Save writes the chunk sequence, replacing any existing file. The
// write goes to a temporary file first so a failure leaves the prior
// sequence untouched.
func (s *ChunkStore) Save(chunks []domain.Chunk) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create chunk file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, chunk := range chunks {
		data, err := json.Marshal(chunk)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("failed to encode chunk %s: %w", chunk.ID, err)
		}
		w.Write(data)
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write chunks: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}

// Load reads the persisted chunk sequence in order. Malformed lines
// are skipped so one corrupt record does not poison the rest of the
// corpus. Returns domain.ErrNotFound if no sequence was ever saved.
func (s *ChunkStore) Load() ([]domain.Chunk, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("chunk store %s: %w", s.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open chunk store: %w", err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk domain.Chunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue // skip malformed record
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk store: %w", err)
	}

	return chunks, nil
}

// Exists reports whether a chunk sequence has been persisted.
func (s *ChunkStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the location of the persisted sequence.
func (s *ChunkStore) Path() string {
	return s.path
}

// EnsureDir creates the parent directory for a store path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
