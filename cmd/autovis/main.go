package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ============================================================================
// AUTOVIS CLI — automatic chart selection for any result set
// ============================================================================

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("✗ "+err.Error()))
		stop()
		os.Exit(1)
	}
}
