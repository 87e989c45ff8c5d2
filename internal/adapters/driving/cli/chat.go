package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui"
)

// isTerminal reports whether stdin and stdout are a terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var chatCmd = needsServices(&cobra.Command{
	Use:   "chat",
	Short: "Chat with your documents in the terminal",
	Long: `Opens an interactive terminal chat. Each answer is shown with the passages
it was generated from.

Controls:
  Enter      - Ask
  PgUp/PgDn  - Scroll the transcript
  Tab        - Switch between chat and documents
  j/k        - Move in the document list
  x then y   - Delete the selected document
  r          - Refresh the document list
  Ctrl+C     - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
})

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	if !isTerminal() {
		return errors.New("chat needs an interactive terminal; use `acadrag ask` instead")
	}
	user, err := currentUser()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(
		&tui.Ports{Answer: answerService, Document: documentService},
		tui.Session{UserID: user, TopK: topKOrDefault(0)},
	)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
