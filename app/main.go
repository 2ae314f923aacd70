// Author: Fredrik Thulin <fredrik@ispik.se>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"soltrace/app/cmd"
	"soltrace/internal"
	"syscall"
)

func main() {
	// Initialize HLL statistics with error checking
	if err := internal.InitStats(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize statistics: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
