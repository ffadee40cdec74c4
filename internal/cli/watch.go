package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [id]",
	Short: "Wait for a book to finish building",
	Long: `Poll the build status of a book until the server finishes it.

Polling starts at watch.interval and backs off up to watch.max_interval;
watch.timeout bounds the whole wait.

Examples:
  epubpress watch '#3'
  epubpress watch --plain 5f0c1e2a`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeBookIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")

		client, err := newClient()
		if err != nil {
			return err
		}
		book, _, err := resolveBook(client, args[0])
		if err != nil {
			return err
		}

		status, err := followBuild(cmd.Context(), client, book, plain)
		if err != nil {
			return err
		}
		Successf("Ready: %s", status.Message)
		fmt.Printf("Download with: epubpress download %s\n", book.ID())
		return nil
	},
}

func init() {
	watchCmd.Flags().Bool("plain", false, "print status lines instead of the interactive view")
}
