package domain

import "fmt"

// IndexData is the persisted form of a per-user vector index:
// fixed-dimension vectors plus the parallel ordered chunk list.
// Vectors[i] is the embedding of Chunks[i].
type IndexData struct {
	Dimension int
	Vectors   [][]float32
	Chunks    []string
}

// Len returns the number of stored vectors.
func (d *IndexData) Len() int {
	return len(d.Vectors)
}

// Validate checks the lockstep invariant between vectors and chunks
// and that every vector has the index dimension.
func (d *IndexData) Validate() error {
	if d.Dimension <= 0 {
		return fmt.Errorf("%w: dimension %d", ErrCorruptIndex, d.Dimension)
	}
	if len(d.Vectors) != len(d.Chunks) {
		return fmt.Errorf("%w: %d vectors, %d chunks", ErrCorruptIndex, len(d.Vectors), len(d.Chunks))
	}
	for i, v := range d.Vectors {
		if len(v) != d.Dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d",
				ErrDimensionMismatch, i, len(v), d.Dimension)
		}
	}
	return nil
}

// Hit is one nearest-neighbour search result.
type Hit struct {
	// Position is the vector's position in the index (and its chunk's position).
	Position int

	// Distance is the squared Euclidean distance to the query.
	Distance float32
}
