package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"go.etcd.io/bbolt"

	"wikirag/internal/domain"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyDimension  = []byte("dimension")
)

// FlatIndex is a brute-force nearest-neighbor index over L2 distance,
// persisted as a bbolt file keyed by chunk ordinal. Position i in the
// index always resolves to position i of the chunk sequence and
// metadata array; any divergence is a build bug, not a recoverable
// condition.
type FlatIndex struct {
	dimension int
	vectors   [][]float32
}

type indexMeta struct {
	Dimension int `json:"dimension"`
	Count     int `json:"count"`
}

// WriteFlatIndex persists embeddings for the whole chunk sequence in
// ordinal order, replacing anything at path. All vectors must share
// one dimension.
func WriteFlatIndex(path string, vectors [][]float32) error {
	if len(vectors) == 0 {
		return fmt.Errorf("no vectors to index")
	}

	dimension := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("vector %d has dimension %d, index has %d: %w",
				i, len(v), dimension, domain.ErrDimensionMismatch)
		}
	}

	os.Remove(path)
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		vb, err := tx.CreateBucketIfNotExists(bucketVectors)
		if err != nil {
			return err
		}
		mb, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}

		meta, err := json.Marshal(indexMeta{Dimension: dimension, Count: len(vectors)})
		if err != nil {
			return err
		}
		if err := mb.Put(keyDimension, meta); err != nil {
			return err
		}

		for i, v := range vectors {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if err := vb.Put(ordinalKey(i), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// OpenFlatIndex loads a persisted index into memory. The file handle
// is released once loaded; a rebuilt index requires reopening.
func OpenFlatIndex(path string) (*FlatIndex, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("index %s: %w", path, domain.ErrNotFound)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer db.Close()

	idx := &FlatIndex{}
	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return fmt.Errorf("index file has no meta bucket")
		}
		var meta indexMeta
		if err := json.Unmarshal(mb.Get(keyDimension), &meta); err != nil {
			return fmt.Errorf("failed to parse index meta: %w", err)
		}
		idx.dimension = meta.Dimension
		idx.vectors = make([][]float32, 0, meta.Count)

		vb := tx.Bucket(bucketVectors)
		if vb == nil {
			return fmt.Errorf("index file has no vectors bucket")
		}
		return vb.ForEach(func(k, v []byte) error {
			var vec []float32
			if err := json.Unmarshal(v, &vec); err != nil {
				return fmt.Errorf("corrupt vector record: %w", err)
			}
			idx.vectors = append(idx.vectors, vec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return idx, nil
}

// Hit is one nearest-neighbor result. Ordinal addresses the chunk
// sequence; Distance is Euclidean, non-negative, lower is closer.
type Hit struct {
	Ordinal  int
	Distance float64
}

// Search returns the k vectors closest to the query by L2 distance,
// ascending, with ties broken by ordinal.
func (idx *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query dimension %d, index dimension %d: %w",
			len(query), idx.dimension, domain.ErrDimensionMismatch)
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	hits := make([]Hit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = Hit{Ordinal: i, Distance: l2Distance(query, v)}
	}

	// Stable keeps ordinal order among equal distances.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Dimension returns the embedding dimension the index was built with.
func (idx *FlatIndex) Dimension() int {
	return idx.dimension
}

// Count returns the number of indexed vectors.
func (idx *FlatIndex) Count() int {
	return len(idx.vectors)
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func ordinalKey(i int) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, uint32(i))
	return key
}
