//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/salvo/internal/decode"
	"github.com/farcloser/salvo/internal/types"
)

var (
	errInvalidArgCount   = errors.New("expected exactly one argument: file path or \"-\" for stdin")
	errMissingSampleRate = errors.New("--sample-rate is required for raw PCM input")
	errInvalidBitDepth   = errors.New("must be 16, 24, or 32")
	errUnknownInput      = errors.New("unknown input format (valid: auto, raw, wav, flac)")
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a WAV, FLAC or raw PCM recording",
		ArgsUsage: "<file | ->",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Input format: auto (by extension, raw for stdin), raw, wav, flac",
				Value:   "auto",
			},

			// PCMFormat flags, raw input only.
			&cli.IntFlag{
				Name:    "sample-rate",
				Aliases: []string{"s"},
				Usage:   "Sample rate in Hz of raw PCM input (e.g., 44100, 48000)",
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth of raw PCM input (16, 24, or 32)",
				Value:   16,
			},
			&cli.IntFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "Number of interleaved channels of raw PCM input, mixed down to mono",
				Value:   1,
			},
		}, analysisFlags()...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			inputPath := cmd.Args().First()

			buf, err := readInput(cmd, inputPath)
			if err != nil {
				return err
			}

			result, err := runSession(cmd, buf)
			if err != nil {
				return err
			}

			return outputResult(inputPath, result, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}

func readInput(cmd *cli.Command, source string) (types.Buffer, error) {
	kind := cmd.String("input")
	if kind == "auto" {
		kind = detectInput(source)
	}

	switch kind {
	case "wav", "flac":
		return decode.File(source)
	case "raw":
		format, err := parsePCMFormat(cmd)
		if err != nil {
			return types.Buffer{}, err
		}

		if source == "-" {
			return decode.PCM(os.Stdin, format)
		}

		file, err := os.Open(source) //nolint:gosec // CLI tool opens user-specified audio files
		if err != nil {
			return types.Buffer{}, fmt.Errorf("cannot access %s: %w", source, err)
		}
		defer file.Close()

		return decode.PCM(file, format)
	default:
		return types.Buffer{}, fmt.Errorf("%w: %q", errUnknownInput, kind)
	}
}

func detectInput(source string) string {
	if source == "-" {
		return "raw"
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".wav", ".wave":
		return "wav"
	case ".flac":
		return "flac"
	default:
		return "raw"
	}
}

func parsePCMFormat(cmd *cli.Command) (types.PCMFormat, error) {
	sampleRate := cmd.Int("sample-rate")
	if sampleRate <= 0 {
		return types.PCMFormat{}, errMissingSampleRate
	}

	bitDepth, err := toBitDepth(cmd.Int("bit-depth"))
	if err != nil {
		return types.PCMFormat{}, fmt.Errorf("--bit-depth: %w", err)
	}

	channels := max(cmd.Int("channels"), 1)

	return types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		Channels:   uint(channels), //nolint:gosec // validated positive value
	}, nil
}

func toBitDepth(v int) (types.BitDepth, error) {
	switch v {
	case 16:
		return types.Depth16, nil
	case 24:
		return types.Depth24, nil
	case 32:
		return types.Depth32, nil
	default:
		return 0, errInvalidBitDepth
	}
}
