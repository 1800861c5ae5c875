package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/anomredux/claude-bar/internal/cli"
)

// version is set by goreleaser via ldflags.
var version = "dev"

func main() {
	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("claude-bar"),
		kong.Description("Menu bar monitor for Claude Code token and cost usage"),
		kong.UsageOnError(),
		kong.Vars{"version": "claude-bar " + version},
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
