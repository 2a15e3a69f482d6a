// Package main provides the assetyaml command.
//
// assetyaml works on raw asset documents without their Go types:
//   - check lints item identities (duplicate ids, tombstones of live items)
//   - ids lists the path and id of every item
//   - cid prints content ids
//   - watch re-checks documents as they change
//   - fmt rewrites documents with the configured indentation
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Use a minimal logger until the configured one is built.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run is main without the process concerns.
func run(outW io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runContext(ctx, outW, os.Stderr, args)
}

func runContext(ctx context.Context, outW, errW io.Writer, args []string) error {
	inv, shouldExit, err := parse(args, outW)
	if err != nil {
		return err
	}

	if shouldExit {
		return nil
	}

	a := &app{out: outW, cfg: inv.cfg, logger: newLogger(inv.cfg, errW), debug: inv.debug}

	switch inv.command {
	case "check":
		return a.check(inv.args)
	case "ids":
		return a.ids(inv.args)
	case "cid":
		return a.cid(inv.args)
	case "watch":
		return a.watch(ctx, inv.args)
	case "fmt":
		return a.format(inv.args)
	default:
		return a.printConfig()
	}
}
