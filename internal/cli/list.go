package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/db"
	"github.com/billmal071/epubpress/internal/press"
	"github.com/billmal071/epubpress/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published books",
	Long: `List books published from this machine and their last known status.

By default, books that were already downloaded or emailed are hidden. Use
-a/--all to show them.

Examples:
  epubpress list                  List books still in progress
  epubpress list -a               List all books
  epubpress list -s failed        List failed builds
  epubpress list -i               Pick a book interactively`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "filter by status (published, building, complete, failed, downloaded, delivered)")
	listCmd.Flags().BoolP("all", "a", false, "show all books including downloaded and delivered")
	listCmd.Flags().BoolP("interactive", "i", false, "pick a book and show its details")
}

func runList(cmd *cobra.Command, args []string) error {
	statusFilter, _ := cmd.Flags().GetString("status")
	showAll, _ := cmd.Flags().GetBool("all")
	interactive, _ := cmd.Flags().GetBool("interactive")

	var status db.BookStatus
	if statusFilter != "" {
		status = db.BookStatus(strings.ToLower(statusFilter))
	}

	books, err := db.ListBooks(status, showAll)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if len(books) == 0 {
		if statusFilter != "" {
			fmt.Printf("No books with status '%s'.\n", statusFilter)
		} else {
			fmt.Println("No books in progress.")
		}
		return nil
	}

	if interactive {
		chosen, err := tui.RunPicker(books, "Published books")
		if err != nil {
			return err
		}
		if chosen != nil {
			printBookDetails(chosen)
		}
		return nil
	}

	fmt.Printf("Books (%d):\n\n", len(books))
	for _, b := range books {
		printBook(b)
	}
	return nil
}

func statusIcon(s db.BookStatus) string {
	switch s {
	case db.StatusPublished:
		return "📤"
	case db.StatusBuilding:
		return "⏳"
	case db.StatusComplete:
		return "✅"
	case db.StatusFailed:
		return "❌"
	case db.StatusDownloaded:
		return "📗"
	case db.StatusDelivered:
		return "📧"
	}
	return "  "
}

func printBook(b *db.Book) {
	title := b.Title
	if title == "" {
		title = "Untitled book"
	}
	if len(title) > 50 {
		title = title[:47] + "..."
	}

	fmt.Printf("%s [#%d] %s\n", statusIcon(b.Status), b.ID, title)

	fmt.Printf("   Status: %s", b.Status)
	if b.StatusMessage != "" {
		fmt.Printf(" - %s", b.StatusMessage)
	}
	fmt.Println()

	if b.FilePath != "" {
		if info, err := os.Stat(b.FilePath); err == nil {
			fmt.Printf("   File: %s (%s)\n", b.FilePath, tui.FormatSize(info.Size()))
		} else {
			fmt.Printf("   File: %s (missing)\n", b.FilePath)
		}
	}

	fmt.Printf("   ID: %s | %s | %d url(s)\n", b.RemoteID, b.Filetype, len(b.URLs))
	fmt.Println()
}

func printBookDetails(b *db.Book) {
	printBook(b)

	book := press.NewBook(ledgerProps(b))
	fmt.Printf("   Status URL:   %s\n", book.StatusURL())
	fmt.Printf("   Download URL: %s\n", book.DownloadURL(press.DownloadOptions{}))
	if b.Description != "" {
		fmt.Printf("   Description:  %s\n", b.Description)
	}
	if b.Email != "" {
		fmt.Printf("   Email:        %s\n", b.Email)
	}
	fmt.Printf("   Published:    %s\n", b.CreatedAt.Format("2006-01-02 15:04"))
	if b.CompletedAt != nil {
		fmt.Printf("   Finished:     %s\n", b.CompletedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println("   Sources:")
	for i, u := range b.URLs {
		fmt.Printf("     %d. %s\n", i+1, u)
	}
}
