package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/db"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for epubpress.

To load completions:

Bash:
  $ source <(epubpress completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ epubpress completion bash > /etc/bash_completion.d/epubpress
  # macOS:
  $ epubpress completion bash > /usr/local/etc/bash_completion.d/epubpress

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ epubpress completion zsh > "${fpath[1]}/_epubpress"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ epubpress completion fish | source

  # To load completions for each session, execute once:
  $ epubpress completion fish > ~/.config/fish/completions/epubpress.fish

PowerShell:
  PS> epubpress completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> epubpress completion powershell > epubpress.ps1
  # and source this file from your PowerShell profile.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.ExactValidArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

// completeBookIDs provides dynamic completion for local book numbers
func completeBookIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	books, err := db.ListBooks("", true)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, b := range books {
		// Format: "#ID\tTitle (Status)"
		completion := fmt.Sprintf("#%d\t%s (%s)", b.ID, truncateTitle(b.Title, 40), b.Status)
		completions = append(completions, completion)
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

// truncateTitle truncates a title to the specified length
func truncateTitle(title string, maxLen int) string {
	if len(title) <= maxLen {
		return title
	}
	return title[:maxLen-3] + "..."
}
