package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/pianowav/pkg/cli"
)

// homeEnv overrides the directory holding .pianowav.
const homeEnv = "PIANOWAV_HOME"

var (
	// Global flags
	verbose      bool
	configFile   string
	formatOutput string
	outputFile   string
)

var rootCmd = &cobra.Command{
	Use:   "pianowav",
	Short: "Render piano sheet notation to WAV",
	Long: `pianowav - Render text piano sheets to mono 16-bit WAV files.

A sheet starts with a line of comma-separated tempo names, followed by
blocks of a quoted label, a right hand line and a left hand line:

  Moderato,Allegro
  "verse 1
  C4,QN-D4,QN-E4,QN
  C3,HN-,QN

A sheet without quoted labels lists one voice per line and is rendered with
--layout sequential (or layout: sequential in the config file).

Settings are read from ~/.pianowav/config.yaml. Flags override them.

Examples:
  # Render a sheet file into ./output_songs
  pianowav render twinkle.txt

  # Render every built-in song at every listed tempo to S3
  pianowav render --builtin all --all-tempos --output s3://bucket/songs

  # Render a label-less sheet, one voice per line
  pianowav render --layout sequential melody.txt

  # Show what was written
  pianowav inspect output_songs/twinkle.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.pianowav/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "table", "output format (table, yaml, json)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "report", "r", "", "write the report to a file instead of stdout")
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

func paths() (*cli.Paths, error) {
	if home := os.Getenv(homeEnv); home != "" {
		return &cli.Paths{HomeDir: home}, nil
	}
	return cli.NewPaths()
}

// configPath returns the --config value or the default config file.
func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	p, err := paths()
	if err != nil {
		return "", fmt.Errorf("config not available: %w", err)
	}
	return p.ConfigFile(), nil
}

// GetConfig loads the render config. A missing file yields the defaults.
func GetConfig() (*cli.RenderConfig, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := cli.LoadRenderConfig(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("config loaded", "path", path)
	return cfg, nil
}

// outputOptions returns the report options from the global flags.
func outputOptions() (cli.OutputOptions, error) {
	f, err := cli.ParseOutputFormat(formatOutput)
	if err != nil {
		return cli.OutputOptions{}, err
	}
	return cli.OutputOptions{Format: f, File: outputFile}, nil
}

func printReport(result any) error {
	opts, err := outputOptions()
	if err != nil {
		return err
	}
	return cli.Output(result, opts)
}
