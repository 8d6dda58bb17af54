package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/hrkeeper/internal/client/cli"
	"github.com/dmitrijs2005/hrkeeper/internal/client/config"
	"github.com/dmitrijs2005/hrkeeper/internal/flagx"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "hrctl:", err)
		os.Exit(2)
	}

	app := cli.NewApp(cfg)
	err = app.Run(ctx, flagx.RemoveArgs(os.Args[1:], config.Flags))

	switch {
	case err == nil:
	case errors.Is(err, cli.ErrUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "hrctl:", err)
		os.Exit(1)
	}

}
