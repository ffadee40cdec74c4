package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/config"
	"github.com/billmal071/epubpress/internal/db"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the page cache",
	Long: `Manage the cache of pages fetched with publish --fetch.

Examples:
  epubpress cache stats    # Show cache statistics
  epubpress cache clean    # Remove expired pages
  epubpress cache clear    # Remove all cached pages
  epubpress cache disable  # Always fetch pages again`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		total, expired, err := db.GetCacheStats()
		if err != nil {
			return fmt.Errorf("failed to get cache stats: %w", err)
		}

		cfg := config.Get()

		fmt.Println("Page Cache Statistics")
		fmt.Println("─────────────────────────")
		fmt.Printf("Status: %s\n", enabledStatus(cfg.Cache.Enabled))
		fmt.Printf("Total cached pages: %d\n", total)
		fmt.Printf("Expired entries: %d\n", expired)
		fmt.Printf("Valid entries: %d\n", total-expired)
		fmt.Printf("Cache TTL: %v\n", cfg.Cache.TTL)

		if expired > 0 {
			fmt.Println("\nTip: Run 'epubpress cache clean' to remove expired entries")
		}

		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.ClearPageCache(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		Successf("Cache cleared")
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.CleanExpiredPages(); err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}
		Successf("Expired entries removed")
		return nil
	},
}

var cacheEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable page caching",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set("cache.enabled", "true"); err != nil {
			return fmt.Errorf("failed to enable cache: %w", err)
		}
		Successf("Cache enabled")
		return nil
	},
}

var cacheDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable page caching",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set("cache.enabled", "false"); err != nil {
			return fmt.Errorf("failed to disable cache: %w", err)
		}
		Successf("Cache disabled")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	cacheCmd.AddCommand(cacheEnableCmd)
	cacheCmd.AddCommand(cacheDisableCmd)
}

func enabledStatus(enabled bool) string {
	if enabled {
		return "enabled ✓"
	}
	return "disabled"
}
