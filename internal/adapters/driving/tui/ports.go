// Package tui provides an interactive terminal chat over a user's documents.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Answer answers questions.
	Answer driving.AnswerService

	// Document lists and deletes documents. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}

// Session identifies who is chatting and how.
type Session struct {
	UserID string
	TopK   int
}

func (s Session) validate() error {
	if domain.ValidateUserID(s.UserID) != nil {
		return ErrMissingUser
	}
	return nil
}
