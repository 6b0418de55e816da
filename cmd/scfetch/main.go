// Command scfetch downloads a prebuilt ShellCheck release and installs the
// executable at a chosen path.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
