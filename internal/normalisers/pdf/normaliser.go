// Package pdf extracts text from PDF documents using GoPDF2.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	gopdf "github.com/VantageDataChat/GoPDF2"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/logger"
	"github.com/custodia-labs/acadrag/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var pdfMagic = []byte("%PDF-")

// Extractor returns the page count of a PDF and the text of each page.
type Extractor interface {
	PageCount(data []byte) (int, error)
	PageText(data []byte, page int) (string, error)
}

type gopdfExtractor struct{}

func (gopdfExtractor) PageCount(data []byte) (int, error) {
	return gopdf.GetSourcePDFPageCountFromBytes(data)
}

func (gopdfExtractor) PageText(data []byte, page int) (string, error) {
	return gopdf.ExtractPageText(data, page)
}

// Normaliser handles PDF documents.
type Normaliser struct {
	extractor Extractor
}

// New creates a PDF normaliser backed by GoPDF2.
func New() *Normaliser {
	return &Normaliser{extractor: gopdfExtractor{}}
}

// NewWithExtractor creates a PDF normaliser with a custom extractor.
func NewWithExtractor(e Extractor) *Normaliser {
	return &Normaliser{extractor: e}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page, joined by newlines, and cleans it.
// Pages that fail to extract are skipped; a PDF with no readable page
// yields empty content rather than an error.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (result *driven.NormaliseResult, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !bytes.HasPrefix(raw.Content, pdfMagic) {
		return nil, fmt.Errorf("%w: %s is not a PDF", domain.ErrInvalidInput, raw.URI)
	}

	// GoPDF2 panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("extract pdf %s: %v", raw.URI, r)
		}
	}()

	pages, err := n.extractor.PageCount(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", raw.URI, err)
	}

	var sb strings.Builder
	for i := 0; i < pages; i++ {
		text, err := n.extractor.PageText(raw.Content, i)
		if err != nil {
			logger.Debug("pdf %s: skipping page %d: %v", raw.URI, i+1, err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return &driven.NormaliseResult{
		Content:  normalisers.Clean(sb.String()),
		MIMEType: "application/pdf",
	}, nil
}
