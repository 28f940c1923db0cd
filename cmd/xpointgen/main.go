package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Amr-9/XPointGen/internal/config"
	"github.com/Amr-9/XPointGen/internal/driver"
	"github.com/Amr-9/XPointGen/internal/ui"
)

const version = "1.0"

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		ui.Fatalf("XPointGen", "%v", err)
	}

	switch {
	case cfg.Quiet:
		ui.SetQuiet()
	case cfg.Verbose:
		ui.SetVerbose()
	}
	if !cfg.Quiet {
		ui.PrintBanner(version)
	}
	if err := raisePriority(); err != nil {
		ui.Debugf("XPointGen", "process priority unchanged: %v", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	d := driver.New(cfg)
	sum, err := d.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintCancelled(d.Stats())
			os.Exit(130)
		}
		ui.PrintError(err)
		os.Exit(1)
	}

	if !cfg.Quiet {
		ui.PrintSummary(sum)
	}

	// stdout may be carrying the points themselves
	var out io.Writer = os.Stdout
	if cfg.Output == "-" {
		out = os.Stderr
	}
	fmt.Fprintf(out, "Generated %s with %d points.\n", cfg.Output, sum.Points)
	if cfg.BinOutput != "" {
		fmt.Fprintf(out, "Wrote %d entries to %s.\n", sum.Points, cfg.BinOutput)
	}
}
