// Command storefront is a command-line client for the storefront commerce API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/storefront/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
