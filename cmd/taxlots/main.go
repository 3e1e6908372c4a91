package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rustyeddy/taxlots/cmd/taxlots/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
