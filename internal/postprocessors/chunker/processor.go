// Package chunker splits text into bounded-length chunks along sentence boundaries.
package chunker

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// DefaultMaxLen is the default maximum chunk length in characters.
const DefaultMaxLen = 600

// Processor splits text into sentence-aligned chunks.
// It implements the PostProcessor interface.
type Processor struct {
	maxLen int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxLen sets the maximum chunk length in characters.
func WithMaxLen(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxLen = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxLen: DefaultMaxLen}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxLen returns the configured maximum chunk length.
func (p *Processor) MaxLen() int {
	return p.maxLen
}

// Process splits text into chunks. Input chunks are ignored.
func (p *Processor) Process(_ context.Context, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	parts := Split(text, p.maxLen)
	if len(parts) == 0 {
		return nil, nil
	}
	chunks := make([]domain.Chunk, len(parts))
	for i, s := range parts {
		chunks[i] = domain.Chunk{Content: s, Position: i}
	}
	return chunks, nil
}

// Split greedily packs sentences into chunks of at most maxLen characters,
// joining sentences with a single space. A sentence longer than maxLen is
// never cut and becomes a chunk of its own.
func Split(text string, maxLen int) []string {
	var (
		chunks []string
		buf    []string
		bufLen int
	)

	flush := func() {
		if len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, " "))
			buf = buf[:0]
			bufLen = 0
		}
	}

	for _, s := range Sentences(text) {
		n := utf8.RuneCountInString(s)
		if len(buf) > 0 && bufLen+1+n > maxLen {
			flush()
		}
		if len(buf) > 0 {
			bufLen++
		}
		buf = append(buf, s)
		bufLen += n
	}
	flush()

	return chunks
}

// Sentences splits text after '.', '!' or '?' when followed by whitespace.
// The terminator stays with its sentence; the whitespace is dropped.
func Sentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	emit := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
	}

	for i := 0; i < len(runes)-1; i++ {
		if !isTerminator(runes[i]) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		emit(i + 1)
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	emit(len(runes))

	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
