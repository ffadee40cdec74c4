package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/press"
)

var downloadCmd = &cobra.Command{
	Use:   "download [id]",
	Short: "Download a finished book",
	Long: `Download a built book from EpubPress.

The file is checked to really be an EPUB or MOBI before it is kept.

Examples:
  epubpress download '#3'
  epubpress download -f mobi -o ~/Books 5f0c1e2a
  epubpress download --print-url '#3'`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeBookIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rawFiletype, _ := cmd.Flags().GetString("filetype")
		outputDir, _ := cmd.Flags().GetString("output")
		printURL, _ := cmd.Flags().GetBool("print-url")

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

		if printURL {
			fmt.Println(book.DownloadURL(press.DownloadOptions{Filetype: ft}))
			return nil
		}

		path, err := saveBook(cmd.Context(), client, book, ft, outputDir)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		Successf("Downloaded: %s", path)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringP("filetype", "f", "", "output format: epub or mobi (default: the book's)")
	downloadCmd.Flags().StringP("output", "o", "", "output directory (default: downloads.path)")
	downloadCmd.Flags().Bool("print-url", false, "print the download url instead of downloading")
}
