package store

import (
	"errors"
	"path/filepath"
	"testing"

	"wikirag/internal/domain"
)

func TestFlatIndexSearchOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	vectors := [][]float32{
		{0, 0},
		{3, 4},
		{1, 0},
	}
	if err := WriteFlatIndex(path, vectors); err != nil {
		t.Fatal(err)
	}

	idx, err := OpenFlatIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Dimension() != 2 || idx.Count() != 3 {
		t.Fatalf("unexpected index shape: dim=%d count=%d", idx.Dimension(), idx.Count())
	}

	hits, err := idx.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}

	wantOrdinals := []int{0, 2, 1}
	wantDistances := []float64{0, 1, 5}
	for i, h := range hits {
		if h.Ordinal != wantOrdinals[i] {
			t.Errorf("hit %d: ordinal %d, want %d", i, h.Ordinal, wantOrdinals[i])
		}
		if h.Distance != wantDistances[i] {
			t.Errorf("hit %d: distance %v, want %v", i, h.Distance, wantDistances[i])
		}
	}
}

func TestFlatIndexTiesKeepOrdinalOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	// Equidistant vectors from the origin query.
	vectors := [][]float32{{0, 1}, {1, 0}, {-1, 0}}
	if err := WriteFlatIndex(path, vectors); err != nil {
		t.Fatal(err)
	}

	idx, err := OpenFlatIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}

	for i, h := range hits {
		if h.Ordinal != i {
			t.Errorf("tie broken out of ordinal order: hit %d has ordinal %d", i, h.Ordinal)
		}
	}
}

func TestFlatIndexKSmallerThanCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	if err := WriteFlatIndex(path, [][]float32{{1}, {2}, {3}}); err != nil {
		t.Fatal(err)
	}
	idx, err := OpenFlatIndex(path)
	if err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search([]float32{2}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Ordinal != 1 {
		t.Errorf("expected single nearest hit at ordinal 1, got %+v", hits)
	}
}

func TestFlatIndexDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	err := WriteFlatIndex(path, [][]float32{{1, 2}, {1, 2, 3}})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on build, got %v", err)
	}

	if err := WriteFlatIndex(path, [][]float32{{1, 2}}); err != nil {
		t.Fatal(err)
	}
	idx, err := OpenFlatIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = idx.Search([]float32{1, 2, 3}, 1)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on query, got %v", err)
	}
}

func TestFlatIndexOpenMissing(t *testing.T) {
	_, err := OpenFlatIndex(filepath.Join(t.TempDir(), "index.db"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFlatIndexRebuildReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	if err := WriteFlatIndex(path, [][]float32{{1}, {2}, {3}}); err != nil {
		t.Fatal(err)
	}
	if err := WriteFlatIndex(path, [][]float32{{5}}); err != nil {
		t.Fatal(err)
	}

	idx, err := OpenFlatIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Count() != 1 {
		t.Errorf("expected rebuilt index with 1 vector, got %d", idx.Count())
	}
}
