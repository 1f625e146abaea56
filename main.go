// Command storefront serves the checkout and catalog HTTP API.
package main

import (
	"fmt"
	"os"

	"storefront/cmd"
	"storefront/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cmd.Bootstrap(os.Args[1:])
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := cmd.NewBuilder(cfg).Build()
	if err != nil {
		return err
	}

	ctx, stop := cmd.SignalContext()
	defer stop()
	return app.Run(ctx)
}
