package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = needsServices(&cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the passages closest to the question from your uploaded
documents and asks the configured model to answer from them.

When the model cannot be reached the answer is "Model did not respond."
and the retrieved passages are still shown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
})

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the --json shape, matching the HTTP API.
type askOutput struct {
	Answer    string   `json:"answer"`
	Retrieved []string `json:"retrieved"`
	Status    string   `json:"status"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	user, err := currentUser()
	if err != nil {
		return err
	}

	ans, err := answerService.Ask(cmd.Context(), domain.AskRequest{
		UserID: user,
		Query:  strings.Join(args, " "),
		TopK:   topKOrDefault(askTopK),
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if askJSON {
		retrieved := ans.Retrieved
		if retrieved == nil {
			retrieved = []string{}
		}
		data, err := json.MarshalIndent(askOutput{
			Answer:    ans.Text,
			Retrieved: retrieved,
			Status:    string(ans.Status),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding answer: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, ans.Text)
	if len(ans.Retrieved) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for i, chunk := range ans.Retrieved {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, chunk)
		}
	}
	return nil
}
