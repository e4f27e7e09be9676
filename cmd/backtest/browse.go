package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

func (a *app) browseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the results of earlier runs interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "results",
				Usage: "Results folder to open",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p := tea.NewProgram(NewModel(cmd.String("results")), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err := p.Run()

			return err
		},
	}
}
