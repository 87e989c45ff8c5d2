package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
)

type stubNormaliser struct {
	name     string
	types    []string
	priority int
	gotMIME  string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.types }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	s.gotMIME = raw.MIMEType
	return &driven.NormaliseResult{Content: s.name}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	low := &stubNormaliser{name: "low", types: []string{"text/plain"}, priority: 5}
	high := &stubNormaliser{name: "high", types: []string{"text/plain"}, priority: 50}
	r := NewRegistry(low, high)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "high", result.Content)
	assert.Equal(t, "text/plain", result.MIMEType)
}

func TestRegistry_DetectsMissingMIMEType(t *testing.T) {
	pdf := &stubNormaliser{name: "pdf", types: []string{"application/pdf"}, priority: 50}
	r := NewRegistry(pdf)

	_, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "lecture.PDF", Content: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.gotMIME)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(&stubNormaliser{types: []string{"text/plain"}})

	_, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{types: []string{"text/plain", "text/csv"}},
		&stubNormaliser{types: []string{"application/pdf", "text/plain"}},
	)
	assert.Equal(t, []string{"application/pdf", "text/csv", "text/plain"}, r.SupportedMIMETypes())
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		uri     string
		content string
		want    string
	}{
		{"notes.pdf", "", "application/pdf"},
		{"notes.txt", "", "text/plain"},
		{"README.md", "", "text/plain"},
		{"upload", "%PDF-1.7 ...", "application/pdf"},
		{"upload", "just some words", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.uri+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIMEType(tt.uri, []byte(tt.content)))
		})
	}
}
