// Command fuzzydbscan clusters point files and serves the clustering API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TrevorS/fuzzydbscan/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, os.Args[1:], cli.Env{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
	stop()
	os.Exit(code)
}
