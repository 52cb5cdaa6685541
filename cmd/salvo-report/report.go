//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/salvo"
	"github.com/farcloser/salvo/internal/decode"
	"github.com/farcloser/salvo/internal/output"
	"github.com/farcloser/salvo/internal/types"
)

const defaultOutputFile = "salvo-report.jsonl"

var (
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no recordings found")
	errFolderArg    = errors.New("expected exactly one argument: folder path")
)

// containerExtensions are decoded through ffmpeg; WAV and FLAC are decoded natively.
//
//nolint:gochecknoglobals // configuration data, effectively const
var containerExtensions = []string{".m4a", ".mp3", ".mp4", ".mov", ".ogg", ".opus", ".webm", ".mkv"}

type reportOptions struct {
	outputPath  string
	redact      bool
	environment string
	workers     int
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Scan a folder of recordings and write a salvo JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file path (a gzip copy is written next to it)",
				Value:   defaultOutputFile,
			},
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.StringFlag{
				Name:    "environment",
				Aliases: []string{"E"},
				Usage:   "Override recording environment for all files: outdoor, indoor, suppressed (default: auto-detect from path)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errFolderArg
			}

			return runReport(ctx, cmd.Args().First(), reportOptions{
				outputPath:  cmd.String("output"),
				redact:      cmd.Bool("redact-path"),
				environment: cmd.String("environment"),
				workers:     max(cmd.Int("workers"), 1),
			})
		},
	}
}

func runReport(ctx context.Context, folder string, opts reportOptions) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	files, err := collectRecordings(folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoAudioFiles)
	}

	fmt.Fprintf(os.Stderr, "Found %d recordings to analyze (%d workers)\n", len(files), opts.workers)

	startTime := time.Now()

	results := analyzeAll(ctx, files, opts.workers, func(ctx context.Context, filePath string) Record {
		return processFile(ctx, filePath, opts.environment)
	}, func(done int, filePath string) {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)
	})

	failed, totals, err := writeReport(opts.outputPath, results, opts.redact)
	if err != nil {
		return err
	}

	if err := compressFile(opts.outputPath); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)

	fmt.Fprintf(os.Stderr, "\nDone: %d recordings in %s (%d failed)\n", len(files), elapsed.Truncate(time.Second), failed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", opts.outputPath, opts.outputPath)

	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  Wall clock:  %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  decode:      %s (cumulative)\n", totals.decode.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  analysis:    %s (cumulative)\n", totals.analyze.Truncate(time.Millisecond))

	if analyzed := len(files) - failed; analyzed > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:    %s (decode: %s, analyze: %s)\n",
			(totals.decode+totals.analyze)/time.Duration(analyzed),
			totals.decode/time.Duration(analyzed),
			totals.analyze/time.Duration(analyzed),
		)
	}

	fmt.Fprintln(os.Stderr)

	return runDigest(os.Stdout, opts.outputPath, "")
}

// analyzeAll runs process over files with at most workers in flight, keeping results in file order.
// Cancelling ctx stops scheduling; files not started yet are recorded as failed.
func analyzeAll(
	ctx context.Context,
	files []string,
	workers int,
	process func(context.Context, string) Record,
	progress func(done int, filePath string),
) []Record {
	results := make([]Record, len(files))

	var (
		done      atomic.Int64
		waitGroup sync.WaitGroup
	)

	sem := make(chan struct{}, max(workers, 1))

	for idx, filePath := range files {
		if ctx.Err() != nil {
			results[idx] = Record{File: filePath, Error: fmt.Sprintf("not analyzed: %v", ctx.Err())}

			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[idx] = Record{File: filePath, Error: fmt.Sprintf("not analyzed: %v", ctx.Err())}

			continue
		}

		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()
			defer func() { <-sem }()

			results[idx] = process(ctx, filePath)

			if progress != nil {
				progress(int(done.Add(1)), filePath)
			}
		}()
	}

	waitGroup.Wait()

	return results
}

type timingTotals struct {
	decode  time.Duration
	analyze time.Duration
}

func writeReport(path string, results []Record, redact bool) (int, timingTotals, error) {
	var totals timingTotals

	out, err := os.Create(path) //nolint:gosec // user-chosen report location
	if err != nil {
		return 0, totals, fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed := 0

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totals.decode += millisToDuration(record.Timing.DecodeMs)
			totals.analyze += millisToDuration(record.Timing.AnalyzeMs)
		}

		if redact {
			record.File = ""
			if record.Probe != nil {
				record.Probe = record.Probe.Anonymized()
			}
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "index", idx, "error", err)
		}
	}

	return failed, totals, out.Close()
}

func processFile(ctx context.Context, filePath, environmentOverride string) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	env, err := detectEnvironment(filePath, environmentOverride)
	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("invalid environment: %v", err)}
	}

	record := Record{File: filePath, Timing: timing}

	// Decode.
	decodeStart := time.Now()

	var buf types.Buffer

	if decode.Native(filePath) {
		buf, err = decode.File(filePath)
	} else {
		buf, record.Probe, err = decode.Container(ctx, filePath, 0)
	}

	timing.DecodeMs = durationMs(time.Since(decodeStart))

	if err != nil {
		record.Error = fmt.Sprintf("decode failed: %v", err)

		return record
	}

	// Analyze.
	analyzeStart := time.Now()

	result, err := salvo.Analyze(buf, salvo.ConfigForEnvironment(env))

	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	if err != nil {
		record.Error = fmt.Sprintf("analysis failed: %v", err)

		return record
	}

	record.Analysis = output.ResultToMap(result)

	return record
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// detectEnvironment picks the preset from the override, or from folder names such as "indoor-range/".
func detectEnvironment(filePath, override string) (salvo.Environment, error) {
	if override != "" {
		return salvo.ParseEnvironment(override)
	}

	lower := strings.ToLower(filepath.Dir(filePath))

	switch {
	case strings.Contains(lower, "suppressed"):
		return salvo.EnvironmentSuppressed, nil
	case strings.Contains(lower, "indoor"):
		return salvo.EnvironmentIndoor, nil
	default:
		return salvo.EnvironmentOutdoor, nil
	}
}

func collectRecordings(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if decode.Native(path) || slices.Contains(containerExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	src, err := os.Open(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}
	defer src.Close()

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := io.Copy(gzWriter, src); err != nil {
		return err
	}

	return gzWriter.Close()
}
