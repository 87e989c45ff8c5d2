package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"documents"},
	Short:   "Manage uploaded documents",
	Long:    `List or delete the documents uploaded for the current user.`,
}

var docsListCmd = needsServices(&cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
})

var docsDeleteCmd = needsServices(&cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete an uploaded document",
	Long: `Deletes the stored file and its registry entry.

With documents.delete_policy = "retain" (the default) the document's passages
stay searchable. With "rebuild" the index is rebuilt from the remaining
documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsDelete,
})

var notesCmd = needsServices(&cobra.Command{
	Use:   "notes",
	Short: "Print your accumulated notes",
	Long:  `Prints the cleaned text of every document ingested for the current user.`,
	Args:  cobra.NoArgs,
	RunE:  runNotes,
})

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(notesCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	user, err := currentUser()
	if err != nil {
		return err
	}

	docs, err := documentService.List(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tUPLOADED")
	for i := range docs {
		d := &docs[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			d.ID, d.Name, d.MIMEType, d.Size, d.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	user, err := currentUser()
	if err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), user, args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}

func runNotes(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	user, err := currentUser()
	if err != nil {
		return err
	}

	notes, err := documentService.Notes(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("failed to read notes: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), notes)
	return nil
}
