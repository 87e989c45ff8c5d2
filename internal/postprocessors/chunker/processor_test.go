package chunker

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.MaxLen() != DefaultMaxLen {
			t.Errorf("expected maxLen %d, got %d", DefaultMaxLen, p.MaxLen())
		}
	})

	t.Run("custom max length", func(t *testing.T) {
		p := New(WithMaxLen(120))
		if p.MaxLen() != 120 {
			t.Errorf("expected maxLen 120, got %d", p.MaxLen())
		}
	})

	t.Run("zero value ignored", func(t *testing.T) {
		p := New(WithMaxLen(0))
		if p.MaxLen() != DefaultMaxLen {
			t.Errorf("expected default maxLen, got %d", p.MaxLen())
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", New().Name())
	}
}

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no terminator", "just words", []string{"just words"}},
		{"three kinds", "One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"newline after terminator", "Line one.\nLine two.", []string{"Line one.", "Line two."}},
		{"decimal not split", "Pi is 3.14 roughly. Yes.", []string{"Pi is 3.14 roughly.", "Yes."}},
		{"ellipsis", "Wait... what?", []string{"Wait...", "what?"}},
		{"trailing terminator", "End.", []string{"End."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{"empty input", "", 10, nil},
		{
			"fits in one chunk",
			"The mitochondria is the powerhouse of the cell. It produces ATP.",
			600,
			[]string{"The mitochondria is the powerhouse of the cell. It produces ATP."},
		},
		{
			"flush before overflow",
			"The mitochondria is the powerhouse of the cell. It produces ATP.",
			50,
			[]string{"The mitochondria is the powerhouse of the cell.", "It produces ATP."},
		},
		{
			"exact fit",
			"Aaaa. Bbbb.",
			11,
			[]string{"Aaaa. Bbbb."},
		},
		{
			"oversized sentence stands alone",
			"Hi. This sentence is far too long. Ok.",
			10,
			[]string{"Hi.", "This sentence is far too long.", "Ok."},
		},
		{
			"multibyte counted as characters",
			"Ça va. Très bien.",
			17,
			[]string{"Ça va. Très bien."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.maxLen)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split() = %q, want %q", got, tt.want)
			}
		})
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestSplit_PreservesTextAndBounds(t *testing.T) {
	text := strings.Repeat("Cells divide by mitosis. Meiosis makes gametes! Why does it matter? ", 40) +
		"A deliberately long sentence that keeps going well past any small limit without stopping at all."

	for _, maxLen := range []int{20, 60, 200, 600} {
		chunks := Split(text, maxLen)

		if stripSpace(strings.Join(chunks, "")) != stripSpace(text) {
			t.Fatalf("maxLen %d: non-whitespace characters changed", maxLen)
		}

		for _, c := range chunks {
			if c != strings.TrimSpace(c) || c == "" {
				t.Errorf("maxLen %d: chunk not trimmed: %q", maxLen, c)
			}
			if utf8.RuneCountInString(c) > maxLen && len(Sentences(c)) != 1 {
				t.Errorf("maxLen %d: multi-sentence chunk exceeds limit: %q", maxLen, c)
			}
		}
	}
}

func TestProcessor_Process(t *testing.T) {
	p := New(WithMaxLen(50))

	chunks, err := p.Process(context.Background(), "The mitochondria is the powerhouse of the cell. It produces ATP.", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Position != i {
			t.Errorf("chunk %d has position %d", i, c.Position)
		}
	}
	if chunks[1].Content != "It produces ATP." {
		t.Errorf("unexpected second chunk %q", chunks[1].Content)
	}

	empty, err := p.Process(context.Background(), "", nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected no chunks for empty text, got %v (%v)", empty, err)
	}
}
