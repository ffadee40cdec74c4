package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/press"
)

// Commit is set at build time
var Commit = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("epubpress version %s (%s)\n", press.Version, Commit)
	},
}
