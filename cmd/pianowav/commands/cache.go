package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/pianowav/pkg/cli"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Render cache management",
	Long: `Manage the render cache.

Rendered samples are cached by the sheet text and every render setting, so
rendering an unchanged song again only re-encodes and uploads it.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number and size of cached renders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		cache, closer, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		st, err := cache.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(&CacheStats{Entries: st.Entries, Bytes: st.Bytes})
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached render",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		cache, closer, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		n, err := cache.Purge(cmd.Context())
		if err != nil {
			return err
		}
		cli.PrintSuccess(os.Stdout, "Purged %d cached renders", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

// CacheStats is the result of the cache stats command.
type CacheStats struct {
	Entries int   `json:"entries" yaml:"entries"`
	Bytes   int64 `json:"bytes" yaml:"bytes"`
}

// Table implements cli.Tabler.
func (s *CacheStats) Table() *cli.Table {
	return &cli.Table{
		Title:   "Render cache",
		Headers: []string{"ENTRIES", "SIZE"},
		Rows:    [][]string{{fmt.Sprintf("%d", s.Entries), cli.FormatBytes(s.Bytes)}},
	}
}
