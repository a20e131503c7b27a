// ABOUTME: Entry point for the tertulia terminal chat client
// ABOUTME: Wires signals, runs the cobra command tree and reports errors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/tertulia/internal/api"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, describeError(err))
	if errors.Is(err, api.ErrUnauthorized) {
		color.New(color.FgYellow).Fprintln(w, "Ejecuta `tertulia login <usuario>` para iniciar una nueva sesión.")
	}
}
