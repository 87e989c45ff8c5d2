package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/api"
)

var serveAddr string

var serveCmd = needsServices(&cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the JSON HTTP API. Every request under /api except /api/health
must carry the caller's id in the X-User-ID header; authentication is left to
a proxy in front of the server.

Endpoints:
  GET    /api/health
  GET    /api/documents
  POST   /api/documents        multipart form, field "file"
  DELETE /api/documents/{id}
  POST   /api/ask              {"query": "...", "top_k": 3}
  GET    /api/notes`,
	Args: cobra.NoArgs,
	RunE: runServe,
})

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from settings, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if answerService == nil || documentService == nil {
		return errors.New("services not configured")
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.HTTPAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := api.NewHandler(answerService, documentService, topKOrDefault(0), version)
	cmd.Printf("acadrag API listening on %s\n", addr)
	return api.Serve(ctx, addr, api.NewRouter(h))
}
