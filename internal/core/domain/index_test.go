package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexData_Validate(t *testing.T) {
	tests := []struct {
		name    string
		data    IndexData
		wantErr error
	}{
		{"empty index", IndexData{Dimension: 3}, nil},
		{"consistent", IndexData{
			Dimension: 2,
			Vectors:   [][]float32{{1, 2}, {3, 4}},
			Chunks:    []string{"a", "b"},
		}, nil},
		{"zero dimension", IndexData{}, ErrCorruptIndex},
		{"count mismatch", IndexData{
			Dimension: 2,
			Vectors:   [][]float32{{1, 2}},
			Chunks:    []string{"a", "b"},
		}, ErrCorruptIndex},
		{"dimension mismatch", IndexData{
			Dimension: 2,
			Vectors:   [][]float32{{1, 2, 3}},
			Chunks:    []string{"a"},
		}, ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateUserID(t *testing.T) {
	valid := []string{"alice", "user-42", "u_1.x"}
	for _, id := range valid {
		assert.NoError(t, ValidateUserID(id), id)
	}

	invalid := []string{"", "  ", ".", "..", "a/b", `a\b`, "../etc", "a\x00b"}
	for _, id := range invalid {
		assert.ErrorIs(t, ValidateUserID(id), ErrInvalidInput, "%q", id)
	}
}
