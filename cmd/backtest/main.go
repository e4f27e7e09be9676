package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
)

// app holds the state shared by every subcommand.
type app struct {
	log *logger.Logger
}

func newApp() *cli.Command {
	a := &app{}

	return &cli.Command{
		Name:  "backtest",
		Usage: "Backtest technical analysis strategies on daily price series",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.runCommand(),
			a.quickCommand(),
			a.downloadCommand(),
			a.schemaCommand(),
			a.browseCommand(),
		},
	}
}

// before creates the logger for the selected level.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}

	a.log = log

	return ctx, nil
}

// output returns the writer results are printed to.
func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
