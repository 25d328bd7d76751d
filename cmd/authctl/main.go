package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/authctl"
	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

func main() {
	// Global flags come before the command; config.LoadConfig reads them itself.
	args, err := authctl.SplitArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, authctl.Usage)
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	cli := authctl.New(app.Accounts(), os.Stdin, os.Stdout)
	if err := cli.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, authctl.ErrUsage) {
			fmt.Fprintln(os.Stderr, authctl.Usage)
		}
		app.Close()
		os.Exit(1)
	}
}
