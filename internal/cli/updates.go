package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/press"
	"github.com/billmal071/epubpress/internal/tui"
)

var checkUpdatesCmd = &cobra.Command{
	Use:   "check-updates",
	Short: "Check whether this client is still supported by the server",
	Long: `Compare a client version against the server's version manifest.

Without flags, this program's own version is checked. With --client, the
named client's entry in the manifest is used instead.

Examples:
  epubpress check-updates
  epubpress check-updates --client epub-press-chrome --client-version 0.8.0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("client")
		version, _ := cmd.Flags().GetString("client-version")

		if name == "" && version != "" {
			return fmt.Errorf("--client-version requires --client")
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		notice, err := client.CheckForUpdates(cmd.Context(), name, version)
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}

		if name == "" {
			name, version = "epubpress", press.Version
		}
		if notice == "" {
			Successf("%s %s is up to date", name, version)
			return nil
		}
		fmt.Println(tui.WarningStyle.Render(fmt.Sprintf("⚠ %s %s: %s", name, version, notice)))
		return nil
	},
}

func init() {
	checkUpdatesCmd.Flags().String("client", "", "client name as listed in the manifest")
	checkUpdatesCmd.Flags().String("client-version", "", "version of the named client")
}
