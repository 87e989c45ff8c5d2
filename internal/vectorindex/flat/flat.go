package flat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// Index is a flat L2 index. It is safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []string
}

// New creates an empty index fixed to dimension for its lifetime.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	return &Index{dimension: dimension}, nil
}

// FromData builds an index from persisted data after validating it.
// The vectors are shared, not copied; stored vectors are never modified.
func FromData(data *domain.IndexData) (*Index, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &Index{
		dimension: data.Dimension,
		vectors:   append([][]float32(nil), data.Vectors...),
		chunks:    append([]string(nil), data.Chunks...),
	}, nil
}

// Dimension returns the fixed vector dimension.
func (idx *Index) Dimension() int {
	return idx.dimension
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Chunk returns the chunk stored at position i.
func (idx *Index) Chunk(i int) (string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if i < 0 || i >= len(idx.chunks) {
		return "", fmt.Errorf("%w: position %d", domain.ErrNotFound, i)
	}
	return idx.chunks[i], nil
}

// Append adds vectors and their chunks in order. Either all are added
// or, on error, none are.
func (idx *Index) Append(vectors [][]float32, chunks []string) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrInvalidInput, len(vectors), len(chunks))
	}
	for i, v := range vectors {
		if len(v) != idx.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, i, len(v), idx.dimension)
		}
	}

	copied := make([][]float32, len(vectors))
	for i, v := range vectors {
		copied[i] = append([]float32(nil), v...)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = append(idx.vectors, copied...)
	idx.chunks = append(idx.chunks, chunks...)
	return nil
}

// Clone returns an independent index with the same contents. Appending
// to the clone does not affect the original.
func (idx *Index) Clone() *Index {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return &Index{
		dimension: idx.dimension,
		vectors:   append([][]float32(nil), idx.vectors...),
		chunks:    append([]string(nil), idx.chunks...),
	}
}

// Data returns the index contents for persistence.
func (idx *Index) Data() *domain.IndexData {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return &domain.IndexData{
		Dimension: idx.dimension,
		Vectors:   append([][]float32(nil), idx.vectors...),
		Chunks:    append([]string(nil), idx.chunks...),
	}
}

// Search returns up to k nearest vectors to query, closest first.
// Equal distances are ordered by position. When fewer than k vectors
// are stored, all of them are returned.
func (idx *Index) Search(query []float32, k int) ([]domain.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dimension)
	}

	idx.mu.RLock()
	hits := make([]domain.Hit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = domain.Hit{Position: i, Distance: SquaredL2(query, v)}
	}
	idx.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// SquaredL2 returns the squared Euclidean distance between equal-length vectors.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
