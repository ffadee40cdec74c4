package cli

import (
	"errors"
	"fmt"
	"net/mail"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/db"
	"github.com/billmal071/epubpress/internal/notify"
)

var emailCmd = &cobra.Command{
	Use:   "email [id] [address]",
	Short: "Have the server email a finished book",
	Long: `Ask EpubPress to send a built book to an email address, such as a
Send-to-Kindle address.

Examples:
  epubpress email '#3' me@kindle.com
  epubpress email -f mobi 5f0c1e2a me@kindle.com`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeBookIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rawFiletype, _ := cmd.Flags().GetString("filetype")
		address := args[1]

		if _, err := mail.ParseAddress(address); err != nil {
			return fmt.Errorf("invalid email address: %s", address)
		}
		ft, err := filetypeFlag(rawFiletype)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		book, _, err := resolveBook(client, args[0])
		if err != nil {
			return err
		}

		if err := client.EmailDelivery(cmd.Context(), book, address, ft); err != nil {
			return fmt.Errorf("email delivery failed: %w", err)
		}

		if err := db.MarkDelivered(book.ID(), address); err != nil && !errors.Is(err, db.ErrNotFound) {
			Printf("Warning: failed to record delivery: %v\n", err)
		}
		notify.Delivered(book.Title(), address)
		Successf("Sent to %s", address)
		return nil
	},
}

func init() {
	emailCmd.Flags().StringP("filetype", "f", "", "output format: epub or mobi (default: the book's)")
}
