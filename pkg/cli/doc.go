// Package cli provides the shared pieces of the pianowav command line:
// the render config file, output formatting and styled terminal output.
//
// This package includes:
//   - RenderConfig, loaded from ~/.pianowav/config.yaml
//   - Output formatting (table, YAML, JSON)
//   - Batch file loading (YAML/JSON)
//   - lipgloss styles for summaries and status lines
//
// Example usage:
//
//	paths, err := cli.NewPaths()
//	cfg, err := cli.LoadRenderConfig(paths.ConfigFile())
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	params := cfg.Params()
//
//	cli.Output(report, cli.OutputOptions{Format: cli.FormatTable})
package cli
