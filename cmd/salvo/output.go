//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/salvo"
	"github.com/farcloser/salvo/internal/output"
)

func outputResult(filePath string, result *salvo.Result, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any
	if debug {
		meta = output.ResultToMap(result)
	} else {
		meta = buildFriendlyOutput(result)
	}

	data := &format.Data{
		Object: filePath,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// buildFriendlyOutput creates a user-friendly summary of the analysis results.
func buildFriendlyOutput(result *salvo.Result) map[string]any {
	summary := result.Summary

	meta := map[string]any{
		"summary": fmt.Sprintf("%d shots, %d bursts (%d findings, worst: %s)",
			len(result.Shots), summary.TotalBursts, result.IssueCount, result.WorstSeverity),
		"totals": map[string]any{
			"total_shots":  summary.TotalShots,
			"total_bursts": summary.TotalBursts,
			"detected":     len(result.Shots),
			"manual_edits": result.Edits,
		},
	}

	if summary.MeanBurstRateRPM > 0 {
		meta["cadence"] = map[string]any{
			"rate": fmt.Sprintf("%.0f RPM (min %.0f, max %.0f)",
				summary.MeanBurstRateRPM, summary.MinBurstRateRPM, summary.MaxBurstRateRPM),
			"consistency": fmt.Sprintf("std %.1f ms, mean deviation %.1f ms",
				summary.AvgStdInterval*1000, summary.AvgMeanDeviation*1000),
		}
	}

	if len(result.Bursts) > 0 {
		bursts := make([]any, 0, len(result.Bursts))

		for _, burst := range result.Bursts {
			line := fmt.Sprintf("#%d %.3fs-%.3fs: %d shots", burst.Number, burst.StartTime, burst.EndTime, burst.NumShots)
			if burst.NumShots > 1 {
				line += fmt.Sprintf(", %.0f RPM, interval %.1f ms (std %.1f ms)",
					burst.RateRPM, burst.MeanInterval*1000, burst.StdInterval*1000)
			}

			bursts = append(bursts, line)
		}

		meta["bursts"] = bursts
	}

	if len(result.Issues) > 0 {
		issues := make([]any, 0, len(result.Issues))

		for _, issue := range result.Issues {
			marker := "  "
			if issue.Detected {
				marker = "!!"
			}

			issues = append(issues, fmt.Sprintf("%s [%s] %s: %s (%.0f%% confidence)",
				marker, issue.Severity, issue.Check, issue.Summary, issue.Confidence*100))
		}

		meta["findings"] = issues
	}

	return meta
}
