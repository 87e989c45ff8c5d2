package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the question to answer from the uploaded notes"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of note chunks to retrieve (default 3)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string   `json:"answer"`
	Retrieved []string `json:"retrieved"`
	Status    string   `json:"status"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one uploaded document.
type DocumentOutput struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MIMEType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the user's uploaded study notes",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents the user has uploaded",
	}, s.handleListDocuments)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = s.opts.TopK
	}

	ans, err := s.ports.Answer.Ask(ctx, domain.AskRequest{
		UserID: s.opts.UserID,
		Query:  input.Query,
		TopK:   topK,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	retrieved := ans.Retrieved
	if retrieved == nil {
		retrieved = []string{}
	}
	return nil, AskOutput{
		Answer:    ans.Text,
		Retrieved: retrieved,
		Status:    string(ans.Status),
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, errors.New("document service not configured")
	}

	docs, err := s.ports.Document.List(ctx, s.opts.UserID)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:        docs[i].ID,
			Name:      docs[i].Name,
			MIMEType:  docs[i].MIMEType,
			Size:      docs[i].Size,
			CreatedAt: docs[i].CreatedAt,
		}
	}
	return nil, output, nil
}
