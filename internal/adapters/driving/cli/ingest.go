package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/acadrag/internal/connectors/filesystem"
	"github.com/custodia-labs/acadrag/internal/logger"
)

var ingestWatch string

var ingestCmd = needsServices(&cobra.Command{
	Use:   "ingest [files...]",
	Short: "Upload and index documents",
	Long: `Uploads each file, extracts and cleans its text, splits it into passages
and adds their embeddings to your index. PDF, .txt and .md files are supported.

With --watch, every supported file already in the folder is ingested and the
folder is then watched; new or changed files are ingested once they stop
changing. Stop watching with Ctrl+C.`,
	Example: `  acadrag ingest lecture1.pdf lecture2.pdf
  acadrag ingest --watch ~/notes`,
	RunE: runIngest,
})

func init() {
	ingestCmd.Flags().StringVarP(&ingestWatch, "watch", "w", "", "folder to ingest and watch")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if len(args) == 0 && ingestWatch == "" {
		return errors.New("nothing to ingest: pass files or --watch")
	}
	user, err := currentUser()
	if err != nil {
		return err
	}

	var failed int
	for _, path := range args {
		if err := ingestFile(cmd, user, path); err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
		}
	}

	if ingestWatch != "" {
		return watchFolder(cmd, user, ingestWatch)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func ingestFile(cmd *cobra.Command, user, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := documentService.Upload(cmd.Context(), user, filepath.Base(path), data)
	if err != nil {
		return err
	}
	cmd.Printf("Ingested %s (%s)\n", doc.Name, doc.ID)
	return nil
}

func watchFolder(cmd *cobra.Command, user, dir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	conn := filesystem.New(dir)
	defer conn.Close()

	existing, err := conn.FullSync(ctx)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	for _, path := range existing {
		if err := ingestFile(cmd, user, path); err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
		}
	}

	changes, err := conn.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	for change := range changes {
		switch change.Type {
		case filesystem.ChangeCreated, filesystem.ChangeUpdated:
			if err := ingestFile(cmd, user, change.Path); err != nil {
				cmd.PrintErrf("%s: %v\n", change.Path, err)
			}
		case filesystem.ChangeDeleted:
			// indexed passages are kept; use `acadrag docs delete`
			logger.Info("%s removed from %s", filepath.Base(change.Path), dir)
		}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}
