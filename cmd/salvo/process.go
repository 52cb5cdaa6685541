//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/salvo/internal/decode"
)

var errProcessArgs = errors.New("expected exactly one argument: file path")

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Extract audio from any container with ffmpeg (video clips included) and analyze it",
		ArgsUsage: "<file>",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "stream",
				Usage: "Audio stream index (0-based)",
				Value: 0,
			},
		}, analysisFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errProcessArgs, cmd.NArg())
			}

			filePath := cmd.Args().First()

			buf, _, err := decode.Container(ctx, filePath, cmd.Int("stream"))
			if err != nil {
				return err
			}

			result, err := runSession(cmd, buf)
			if err != nil {
				return err
			}

			return outputResult(filePath, result, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}
