package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/pianowav/pkg/cli"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config file management",
	Long: `Manage the render config file.

The config file is YAML. Every field has a default, so the file only needs
the settings that differ:

  sample_rate: 44100
  engine: additive
  quantize: clip
  output: s3://bucket/songs
  s3:
    region: us-east-1
  cache:
    ttl: 168h`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config %s already exists (use --force to overwrite)", path)
		}
		if err := cli.DefaultRenderConfig().Save(path); err != nil {
			return err
		}
		cli.PrintSuccess(os.Stdout, "Config written to %s", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			cli.PrintWarning(os.Stderr, "%v", err)
		}
		return printReport(cfg.Redacted())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
