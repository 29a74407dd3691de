package main

import (
	"context"
	"fmt"
	"os"

	"github.com/catmux-radio/catmux/internal/cmd"
)

// version and commit are overridden at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	root := cmd.NewCommand(version, commit)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
