package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Check the build status of a book",
	Long: `Ask the server once how far a book's build has progressed.

The id is either a local book number such as #3 or the server id.

Examples:
  epubpress status '#3'
  epubpress status 5f0c1e2a`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeBookIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		book, _, err := resolveBook(client, args[0])
		if err != nil {
			return err
		}

		Printf("GET %s\n", book.StatusURL())
		status, err := client.CheckStatus(cmd.Context(), book)
		if err != nil {
			return fmt.Errorf("status check failed: %w", err)
		}
		recordStatus(book, status)

		switch {
		case status.Failed():
			fmt.Printf("❌ Build failed: %s\n", status.Message)
		case status.Complete:
			fmt.Printf("✅ Ready: %s\n", status.Message)
		default:
			fmt.Printf("⏳ Building: %s\n", status.Message)
		}
		return nil
	},
}
