package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/salvo/version"
)

func main() {
	ctx := context.Background()

	appl := &cli.Command{
		Name:    version.Name() + "-report",
		Usage:   "Analyze folders of gunshot recordings and digest the results",
		Version: version.Version() + " " + version.Commit(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Minimum log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var level slog.Level
			if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
				return ctx, fmt.Errorf("invalid log level: %w", err)
			}

			slog.SetLogLoggerLevel(level)

			return ctx, nil
		},
		Commands: []*cli.Command{
			reportCommand(),
			digestCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}
