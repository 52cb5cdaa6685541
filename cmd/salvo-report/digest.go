package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/urfave/cli/v3"
)

var errReportArg = errors.New("expected exactly one argument: path to report.jsonl")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a salvo JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "check",
				Usage: "Show recordings flagged by a specific check (e.g., cadence-consistency, spacing-limited)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errReportArg
			}

			return runDigest(os.Stdout, cmd.Args().First(), cmd.String("check"))
		},
	}
}

func runDigest(out io.Writer, reportPath, checkFilter string) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(out, records)

	if checkFilter != "" {
		printCheckDetail(out, records, checkFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 4 * 1024 * 1024 // shot time lists make long lines
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

// rateBucket returns the digest histogram label for a burst rate.
func rateBucket(rpm float64) string {
	switch {
	case rpm < 300:
		return "< 300"
	case rpm < 700:
		return "300-700"
	case rpm < 1000:
		return "700-1000"
	default:
		return ">= 1000"
	}
}

//nolint:gochecknoglobals // display order
var rateBuckets = []string{"< 300", "300-700", "700-1000", ">= 1000"}

type digestTotals struct {
	recordings int
	failed     int
	shots      int
	bursts     int
	audioSec   float64
	severity   map[string]int
	rates      map[string]int
	checks     map[string]*checkBreakdown
}

func tally(records []digestRecord) digestTotals {
	totals := digestTotals{
		recordings: len(records),
		severity:   map[string]int{"severe": 0, "moderate": 0, "mild": 0, "clean": 0},
		rates:      map[string]int{},
		checks:     map[string]*checkBreakdown{},
	}

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			totals.failed++

			continue
		}

		analysis := rec.Analysis

		totals.shots += analysis.Summary.TotalShots
		totals.bursts += analysis.Summary.TotalBursts
		totals.audioSec += analysis.Recording.DurationSec

		worst := analysis.Findings.WorstSeverity
		if worst == "" || worst == "no issue" {
			totals.severity["clean"]++
		} else {
			totals.severity[worst]++
		}

		for _, burst := range analysis.Bursts {
			if burst.NumShots >= 2 {
				totals.rates[rateBucket(burst.RateRPM)]++
			}
		}

		for _, issue := range analysis.Findings.Issues {
			if !issue.Detected {
				continue
			}

			breakdown, ok := totals.checks[issue.Check]
			if !ok {
				breakdown = &checkBreakdown{Check: issue.Check}
				totals.checks[issue.Check] = breakdown
			}

			breakdown.Total++

			switch issue.Severity {
			case "severe":
				breakdown.Severe++
			case "moderate":
				breakdown.Moderate++
			case "mild":
				breakdown.Mild++
			}
		}
	}

	return totals
}

func printDigest(out io.Writer, records []digestRecord) {
	totals := tally(records)

	fmt.Fprintln(out, "=== Salvo Report Digest ===")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total recordings:  %d\n", totals.recordings)
	fmt.Fprintf(out, "Failed:            %d\n", totals.failed)
	fmt.Fprintf(out, "Analyzed:          %d\n", totals.recordings-totals.failed)
	fmt.Fprintf(out, "Audio:             %.1fs\n", totals.audioSec)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "--- Shots ---")
	fmt.Fprintf(out, "  Shots in bursts:  %d\n", totals.shots)
	fmt.Fprintf(out, "  Bursts:           %d\n", totals.bursts)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "--- Burst Rate (RPM) ---")

	for _, bucket := range rateBuckets {
		fmt.Fprintf(out, "  %-9s %d\n", bucket+":", totals.rates[bucket])
	}

	fmt.Fprintln(out)

	fmt.Fprintln(out, "--- Worst Severity ---")
	fmt.Fprintf(out, "  Clean:     %d\n", totals.severity["clean"])
	fmt.Fprintf(out, "  Mild:      %d\n", totals.severity["mild"])
	fmt.Fprintf(out, "  Moderate:  %d\n", totals.severity["moderate"])
	fmt.Fprintf(out, "  Severe:    %d\n", totals.severity["severe"])
	fmt.Fprintln(out)

	fmt.Fprintln(out, "--- Findings By Check ---")

	breakdowns := make([]*checkBreakdown, 0, len(totals.checks))
	for _, bd := range totals.checks {
		breakdowns = append(breakdowns, bd)
	}

	slices.SortFunc(breakdowns, func(a, b *checkBreakdown) int {
		if a.Total != b.Total {
			return b.Total - a.Total
		}

		if a.Check < b.Check {
			return -1
		}

		return 1
	})

	for _, bd := range breakdowns {
		fmt.Fprintf(out, "  %s\n", bd.Check)
		fmt.Fprintf(out, "    total: %d  severe: %d  moderate: %d  mild: %d\n", bd.Total, bd.Severe, bd.Moderate, bd.Mild)
	}
}

type checkEntry struct {
	file       string
	severity   string
	summary    string
	confidence float64
	bursts     int
	meanRPM    float64
}

func printCheckDetail(out io.Writer, records []digestRecord, check string) {
	fmt.Fprintln(out)

	var entries []checkEntry

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			continue
		}

		for _, issue := range rec.Analysis.Findings.Issues {
			if !issue.Detected || issue.Check != check {
				continue
			}

			entry := checkEntry{
				file:       rec.File,
				severity:   issue.Severity,
				summary:    issue.Summary,
				confidence: issue.Confidence,
				bursts:     rec.Analysis.Summary.TotalBursts,
				meanRPM:    rec.Analysis.Summary.MeanBurstRateRPM,
			}

			if entry.file == "" {
				entry.file = "(redacted)"
			}

			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No recordings flagged by %s\n", check)

		return
	}

	slices.SortStableFunc(entries, func(a, b checkEntry) int {
		return severityRank(a.severity) - severityRank(b.severity)
	})

	fmt.Fprintf(out, "=== %s: %d recordings ===\n\n", check, len(entries))

	for _, entry := range entries {
		fmt.Fprintf(out, "  %s\n", entry.file)
		fmt.Fprintf(out, "    severity: %s  confidence: %.0f%%\n", entry.severity, entry.confidence*100)
		fmt.Fprintf(out, "    %s\n", entry.summary)
		fmt.Fprintf(out, "    bursts: %d  mean rate: %.0f RPM\n", entry.bursts, entry.meanRPM)
		fmt.Fprintln(out)
	}
}

func severityRank(severity string) int {
	switch severity {
	case "severe":
		return 0
	case "moderate":
		return 1
	case "mild":
		return 2
	default:
		return 3
	}
}
