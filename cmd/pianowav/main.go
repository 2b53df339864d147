// Package main is the entry point for the pianowav CLI.
//
// Usage:
//
//	pianowav [flags] <command> [subcommand] [args]
//
// Commands:
//
//	render     - Render sheet files or built-in songs to WAV
//	list       - List the built-in songs
//	inspect    - Show the format of a WAV file
//	config     - Config file management (init, show, path)
//	cache      - Render cache management (stats, purge)
//	version    - Show version information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haivivi/pianowav/cmd/pianowav/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
