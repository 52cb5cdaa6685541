//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/salvo"
)

// analysisFlags are shared by every command that runs the analysis.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		// Configuration sources.
		&cli.StringFlag{
			Name:    "environment",
			Aliases: []string{"E"},
			Usage:   "Recording environment adjusting detection defaults: outdoor, indoor, suppressed",
			Value:   "outdoor",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML file overriding the environment defaults",
		},

		// Individual parameters, taking precedence over both.
		&cli.FloatFlag{
			Name:  "threshold-std",
			Usage: "Detection threshold in standard deviations above the envelope mean (0.1-5.0)",
		},
		&cli.FloatFlag{
			Name:  "min-spacing",
			Usage: "Minimum time between two shots, seconds (0.01-1.0)",
		},
		&cli.FloatFlag{
			Name:  "burst-gap",
			Usage: "Largest gap between shots of one burst, seconds (0.05-2.0)",
		},
		&cli.FloatFlag{
			Name:  "window",
			Usage: "Envelope smoothing window, seconds (0.001-0.01)",
		},
		&cli.FloatFlag{
			Name:  "min-prominence",
			Usage: "Minimum relative peak prominence over its local base (0.01-1.0)",
		},
		&cli.IntFlag{
			Name:  "min-burst",
			Usage: "Smallest number of shots reported as a burst (1-50)",
		},

		// Manual corrections.
		&cli.FloatSliceFlag{
			Name:    "toggle",
			Aliases: []string{"t"},
			Usage:   "Add or remove a shot at this time in seconds (repeatable, applied in order)",
		},
		&cli.FloatFlag{
			Name:  "tolerance",
			Usage: "How close a toggle must be to an existing shot to remove it, seconds",
			Value: salvo.DefaultOptions().EditTolerance,
		},

		// Output.
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
			Value:   "console",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"D"},
			Usage:   "Include shot times, detector statistics and the configuration in output",
		},
	}
}

// resolveConfig layers the environment preset, the optional YAML file and explicitly set flags, in that order.
func resolveConfig(cmd *cli.Command) (salvo.Config, error) {
	env, err := salvo.ParseEnvironment(cmd.String("environment"))
	if err != nil {
		return salvo.Config{}, err
	}

	cfg := salvo.ConfigForEnvironment(env)

	if path := cmd.String("config"); path != "" {
		file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified config files
		if err != nil {
			return salvo.Config{}, fmt.Errorf("opening config: %w", err)
		}
		defer file.Close()

		cfg, err = salvo.LoadConfig(file, cfg)
		if err != nil {
			return salvo.Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if cmd.IsSet("threshold-std") {
		cfg.PeakThresholdStd = cmd.Float("threshold-std")
	}

	if cmd.IsSet("min-spacing") {
		cfg.MinShotSpacing = cmd.Float("min-spacing")
	}

	if cmd.IsSet("burst-gap") {
		cfg.BurstGapThreshold = cmd.Float("burst-gap")
	}

	if cmd.IsSet("window") {
		cfg.WindowSize = cmd.Float("window")
	}

	if cmd.IsSet("min-prominence") {
		cfg.MinPeakProminence = cmd.Float("min-prominence")
	}

	if cmd.IsSet("min-burst") {
		cfg.MinBurstCount = cmd.Int("min-burst")
	}

	return cfg, cfg.Validate()
}

// runSession analyzes buf and applies the requested manual toggles.
func runSession(cmd *cli.Command, buf salvo.Buffer) (*salvo.Result, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	opts := salvo.DefaultOptions()
	opts.EditTolerance = cmd.Float("tolerance")

	session, err := salvo.NewSession(buf, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	result := session.Result()

	for _, at := range cmd.FloatSlice("toggle") {
		result, err = session.Toggle(at)
		if err != nil {
			return nil, fmt.Errorf("--toggle %g: %w", at, err)
		}
	}

	return result, nil
}
