// Package mcp provides an MCP (Model Context Protocol) server adapter for acadrag.
// It lets AI assistants ask questions against a user's indexed documents.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
