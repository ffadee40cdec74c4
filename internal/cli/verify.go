package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/db"
	"github.com/billmal071/epubpress/internal/downloader"
	"github.com/billmal071/epubpress/internal/press"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file|id]",
	Short: "Check that downloaded books are valid EPUB or MOBI files",
	Long: `Check the container format of downloaded books.

The argument is either a file path or a book id as used by download.

Examples:
  epubpress verify ~/Books/Weekend.epub
  epubpress verify '#3'
  epubpress verify --all`,
	ValidArgsFunction: completeBookIDs,
	RunE:              runVerify,
}

func init() {
	verifyCmd.Flags().Bool("all", false, "verify all downloaded books")
}

func runVerify(cmd *cobra.Command, args []string) error {
	verifyAll, _ := cmd.Flags().GetBool("all")

	if !verifyAll {
		if len(args) != 1 {
			return fmt.Errorf("provide a file, a book id or use --all flag")
		}
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return verifyFile(args[0])
		}
	}

	var books []*db.Book
	if verifyAll {
		var err error
		books, err = db.ListBooks(db.StatusDownloaded, false)
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}
	} else {
		client, err := newClient()
		if err != nil {
			return err
		}
		_, rec, err := resolveBook(client, args[0])
		if err != nil {
			return err
		}
		if rec == nil || rec.FilePath == "" {
			return fmt.Errorf("book %s has not been downloaded", args[0])
		}
		books = []*db.Book{rec}
	}

	if len(books) == 0 {
		fmt.Println("No downloads to verify")
		return nil
	}

	fmt.Printf("Verifying %d book(s)...\n\n", len(books))

	verified, failed, missing := 0, 0, 0
	for _, b := range books {
		if _, err := os.Stat(b.FilePath); os.IsNotExist(err) {
			fmt.Printf("❌ [#%d] %s\n", b.ID, b.Title)
			fmt.Printf("    File not found: %s\n\n", b.FilePath)
			missing++
			continue
		}

		fmt.Printf("🔍 [#%d] %s\n", b.ID, b.Title)
		err := downloader.Verify(b.FilePath, filetypeOf(b.FilePath, b.Filetype))
		if markErr := db.MarkVerified(b.RemoteID, err == nil); markErr != nil {
			Printf("Warning: failed to record verification: %v\n", markErr)
		}
		if err != nil {
			fmt.Printf("    ❌ Verification failed: %v\n\n", err)
			failed++
			continue
		}
		fmt.Printf("    ✓ Valid %s\n\n", filetypeOf(b.FilePath, b.Filetype))
		verified++
	}

	fmt.Println("─────────────────────────────────")
	fmt.Printf("Verified: %d\n", verified)
	if failed > 0 {
		fmt.Printf("Failed: %d\n", failed)
	}
	if missing > 0 {
		fmt.Printf("Missing: %d\n", missing)
	}
	if failed > 0 {
		fmt.Println("\nTip: download the book again with 'epubpress download'")
	}
	return nil
}

func verifyFile(path string) error {
	ft := filetypeOf(path, "")
	if err := downloader.Verify(path, ft); err != nil {
		return err
	}
	Successf("%s is a valid %s", path, ft)
	return nil
}

// filetypeOf picks the format from the file extension, then the fallback
func filetypeOf(path, fallback string) press.Filetype {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ft := press.Filetype(ext); ft.Valid() {
		return ft
	}
	return press.ParseFiletype(fallback)
}
