// Command axiosgen generates TypeScript axios services and models from
// Swagger 2.0 and OpenAPI 3 documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	cgerrors "github.com/osakka/axiosgen/pkg/errors"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := newRootCommand(os.Stdout, os.Stderr)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input from internal failures
func exitCode(err error) int {
	if cgerrors.IsUserError(err) {
		return 2
	}
	return 1
}
