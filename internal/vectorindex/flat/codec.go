package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// Vector file layout, all little-endian:
//
//	magic   [4]byte "AQFL"
//	version uint32
//	dim     uint32
//	count   uint32
//	data    count*dim float32
const (
	codecVersion = 1
	headerSize   = 16

	// MaxDimension bounds the dimension accepted from a vector file.
	MaxDimension = 1 << 16

	// header counts are untrusted; capacity grows past this as vectors arrive
	maxPrealloc = 1024
)

var magic = [4]byte{'A', 'Q', 'F', 'L'}

// EncodeVectors writes vectors of the given dimension to w.
func EncodeVectors(w io.Writer, dimension int, vectors [][]float32) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:4], magic[:])
	binary.LittleEndian.PutUint32(header[4:8], codecVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(dimension))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(vectors)))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}

	buf := make([]byte, 4)
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d",
				domain.ErrDimensionMismatch, i, len(v), dimension)
		}
		for _, f := range v {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// DecodeVectors reads vectors written by EncodeVectors.
func DecodeVectors(r io.Reader) (int, [][]float32, error) {
	br := bufio.NewReader(r)

	var header [headerSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return 0, nil, fmt.Errorf("%w: short header: %v", domain.ErrCorruptIndex, err)
	}
	if [4]byte(header[:4]) != magic {
		return 0, nil, fmt.Errorf("%w: bad magic", domain.ErrCorruptIndex)
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != codecVersion {
		return 0, nil, fmt.Errorf("%w: unsupported version %d", domain.ErrCorruptIndex, v)
	}
	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	count := int(binary.LittleEndian.Uint32(header[12:16]))
	if dim <= 0 || dim > MaxDimension {
		return 0, nil, fmt.Errorf("%w: dimension %d", domain.ErrCorruptIndex, dim)
	}

	vectors := make([][]float32, 0, min(count, maxPrealloc))
	buf := make([]byte, 4*dim)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return 0, nil, fmt.Errorf("%w: vector %d: %v", domain.ErrCorruptIndex, i, err)
		}
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		vectors = append(vectors, v)
	}

	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		return 0, nil, fmt.Errorf("%w: trailing data", domain.ErrCorruptIndex)
	}
	return dim, vectors, nil
}
