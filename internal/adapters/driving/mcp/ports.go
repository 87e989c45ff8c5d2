package mcp

import (
	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Answer answers questions from indexed chunks.
	Answer driving.AnswerService

	// Document lists documents and exports notes. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}

// Options configures the server.
type Options struct {
	// UserID is the user every tool call acts for.
	UserID string

	// TopK is used when a tool call does not set top_k.
	TopK int
}

func (o Options) validate() error {
	return domain.ValidateUserID(o.UserID)
}
