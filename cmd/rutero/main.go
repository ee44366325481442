package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/vmfab/rutero/internal/cli"
)

// main is the entrypoint for the rutero service.
func main() {
	// Use a minimal logger until the configured one takes over.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates command execution for easier testing and error handling.
func run(args []string) error {
	root := cli.New()
	root.SetArgs(args)
	return root.Execute()
}
