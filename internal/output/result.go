// Package output provides shared result serialization for salvo console, JSON and JSONL output.
package output

import (
	"github.com/farcloser/salvo"
	"github.com/farcloser/salvo/internal/types"
)

// ResultToMap converts an analysis result into the canonical map structure used for JSON and JSONL serialization.
func ResultToMap(result *salvo.Result) map[string]any {
	meta := map[string]any{
		"session":  result.SessionID.String(),
		"revision": result.Revision,
		"recording": map[string]any{
			"sample_rate":  result.SampleRate,
			"sample_count": result.SampleCount,
			"duration_sec": result.Duration,
		},
		"config":  ConfigToMap(result.Config),
		"summary": SummaryToMap(result.Summary),
		"findings": map[string]any{
			"issue_count":    result.IssueCount,
			"worst_severity": result.WorstSeverity.String(),
			"issues":         IssuesToList(result.Issues),
		},
	}

	if result.Detection != nil {
		meta["detection"] = DetectionToMap(result.Detection, result.SampleRate)
	}

	if result.Clipping != nil && result.DCOffset != nil {
		meta["condition"] = ConditionToMap(result.Clipping, result.DCOffset)
	}

	meta["shots"] = map[string]any{
		"count":        len(result.Shots),
		"manual_edits": result.Edits,
		"times_sec":    result.ShotTimes,
	}

	bursts := make([]any, 0, len(result.Bursts))
	for i := range result.Bursts {
		bursts = append(bursts, BurstToMap(&result.Bursts[i]))
	}

	meta["bursts"] = bursts

	return meta
}

// ConfigToMap converts the detection configuration to a map.
func ConfigToMap(cfg salvo.Config) map[string]any {
	return map[string]any{
		"peak_threshold_std":  cfg.PeakThresholdStd,
		"min_shot_spacing":    cfg.MinShotSpacing,
		"burst_gap_threshold": cfg.BurstGapThreshold,
		"window_size":         cfg.WindowSize,
		"min_peak_prominence": cfg.MinPeakProminence,
		"min_burst_count":     cfg.MinBurstCount,
	}
}

// DetectionToMap converts peak detector diagnostics to a map.
func DetectionToMap(detection *types.Detection, sampleRate int) map[string]any {
	return map[string]any{
		"envelope_mean":   detection.Mean,
		"envelope_stddev": detection.StdDev,
		"threshold":       detection.Threshold,
		"candidates":      detection.Candidates,
		"rejected":        detection.Rejected,
		"detected_shots":  len(detection.Shots),
		"detected_sec":    detection.Shots.Times(sampleRate),
	}
}

// ConditionToMap converts recording condition measurements to a map.
func ConditionToMap(clipping *types.ClippingDetection, dcOffset *types.DCOffsetResult) map[string]any {
	return map[string]any{
		"clipping": map[string]any{
			"events":          clipping.Events,
			"clipped_samples": clipping.ClippedSamples,
			"longest_run":     clipping.LongestRun,
		},
		"dc_offset": map[string]any{
			"offset":    dcOffset.Offset,
			"offset_db": dcOffset.OffsetDb,
		},
	}
}

// SummaryToMap converts aggregate statistics to a map.
func SummaryToMap(summary types.Summary) map[string]any {
	return map[string]any{
		"total_shots":         summary.TotalShots,
		"total_bursts":        summary.TotalBursts,
		"mean_burst_rate_rpm": summary.MeanBurstRateRPM,
		"min_burst_rate_rpm":  summary.MinBurstRateRPM,
		"max_burst_rate_rpm":  summary.MaxBurstRateRPM,
		"avg_std_interval":    summary.AvgStdInterval,
		"avg_mean_deviation":  summary.AvgMeanDeviation,
	}
}

// BurstToMap converts one burst to a map.
func BurstToMap(burst *types.Burst) map[string]any {
	return map[string]any{
		"burst":          burst.Number,
		"num_shots":      burst.NumShots,
		"start_sec":      burst.StartTime,
		"end_sec":        burst.EndTime,
		"duration_sec":   burst.Duration,
		"mean_interval":  burst.MeanInterval,
		"std_interval":   burst.StdInterval,
		"mean_deviation": burst.MeanDeviation,
		"rate_rpm":       burst.RateRPM,
		"shots_sec":      burst.Shots,
	}
}

// IssuesToList converts findings to a list of maps.
func IssuesToList(issues []salvo.Issue) []any {
	list := make([]any, 0, len(issues))
	for _, issue := range issues {
		list = append(list, map[string]any{
			"check":      issue.Check.String(),
			"detected":   issue.Detected,
			"severity":   issue.Severity.String(),
			"summary":    issue.Summary,
			"confidence": issue.Confidence,
		})
	}

	return list
}
