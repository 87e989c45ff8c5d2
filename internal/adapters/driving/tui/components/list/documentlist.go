// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// DocumentList displays documents in a navigable list.
type DocumentList struct {
	docs     []domain.Document
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewDocumentList creates an empty document list.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &DocumentList{styles: s, width: 80, height: 10}
}

// View renders the list.
func (l *DocumentList) View() string {
	if len(l.docs) == 0 {
		return l.styles.Muted.Render("No documents uploaded yet.")
	}

	lines := make([]string, 0, len(l.docs)+2)
	lines = append(lines, l.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(l.docs))), "")

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.docs) {
		end = len(l.docs)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderDocument(i, &l.docs[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *DocumentList) renderDocument(i int, d *domain.Document) string {
	nameWidth := l.width - 30
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := d.Name
	if r := []rune(name); len(r) > nameWidth {
		name = string(r[:nameWidth-3]) + "..."
	}

	meta := fmt.Sprintf("%s  %s", d.CreatedAt.Local().Format("2006-01-02 15:04"), humanSize(d.Size))
	if i == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", nameWidth, name, meta))
	}
	return l.styles.Normal.Render(fmt.Sprintf("  %-*s  ", nameWidth, name)) + l.styles.Muted.Render(meta)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// SetDocuments replaces the list contents, keeping the selection in range.
func (l *DocumentList) SetDocuments(docs []domain.Document) {
	l.docs = docs
	if l.selected >= len(docs) {
		l.selected = len(docs) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// SelectedDocument returns the selected document, or nil when empty.
func (l *DocumentList) SelectedDocument() *domain.Document {
	if len(l.docs) == 0 {
		return nil
	}
	return &l.docs[l.selected]
}

// Selected returns the selected index.
func (l *DocumentList) Selected() int {
	return l.selected
}

// MoveUp moves selection up.
func (l *DocumentList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *DocumentList) MoveDown() {
	if l.selected < len(l.docs)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *DocumentList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of documents.
func (l *DocumentList) Count() int {
	return len(l.docs)
}
