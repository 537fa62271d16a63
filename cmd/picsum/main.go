package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ligustah/picsum/internal/storage"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitInvalidArgs = 1
	ExitInterrupted = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\n[picsum] Received interrupt, finishing in-flight downloads...")
			cancel()
		case <-ctx.Done():
		}
	}()

	c := &cli{
		stdout: os.Stdout,
		stderr: os.Stderr,
		home:   storage.DefaultHome,
	}
	return c.run(ctx, args)
}

// cli holds the process-level collaborators so tests can replace them.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	home   storage.HomeFunc
}

func (c *cli) run(ctx context.Context, args []string) int {
	cfg, code, ok := c.parseFlags(args)
	if !ok {
		return code
	}
	return c.download(ctx, cfg)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: picsum [options]

Download images of a given size from picsum.photos into
{dir}/{width}x{height}/image-{n}.jpg, using several parallel workers.

Options:`)
}
