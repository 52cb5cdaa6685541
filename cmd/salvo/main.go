package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/salvo/version"
)

func main() {
	ctx := context.Background()

	appl := &cli.Command{
		Name:    version.Name(),
		Usage:   "Rate-of-fire analysis of gunshot recordings",
		Version: version.Version() + " " + version.Commit(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log pipeline stages to stderr",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			return ctx, nil
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			processCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}
