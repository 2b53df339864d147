package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/pianowav/cmd/pianowav/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if formatOutput != "table" {
			return printReport(build.Get())
		}
		fmt.Println(build.String())
		if IsVerbose() {
			info := build.Get()
			fmt.Printf("  go:     %s\n", info.Go)
			if path, err := configPath(); err == nil {
				if _, err := os.Stat(path); err == nil {
					fmt.Printf("  config: %s\n", path)
				} else {
					fmt.Printf("  config: %s (not created)\n", path)
				}
			} else {
				fmt.Printf("  config: (unavailable: %v)\n", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
