//nolint:tagliatelle
package main

import "github.com/farcloser/salvo/internal/integration/ffprobe"

// Record is a single line in the JSONL report file.
type Record struct {
	File     string          `json:"file,omitempty"`
	Analysis map[string]any  `json:"analysis,omitempty"`
	Probe    *ffprobe.Result `json:"probe,omitempty"`
	Error    string          `json:"error,omitempty"`
	Timing   *RecordTiming   `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	DecodeMs  float64 `json:"decode_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	TotalMs   float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File     string          `json:"file,omitempty"`
	Analysis *digestAnalysis `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type digestAnalysis struct {
	Recording digestRecording `json:"recording"`
	Summary   digestSummary   `json:"summary"`
	Findings  digestFindings  `json:"findings"`
	Bursts    []digestBurst   `json:"bursts"`
}

type digestRecording struct {
	DurationSec float64 `json:"duration_sec"`
}

type digestSummary struct {
	TotalShots       int     `json:"total_shots"`
	TotalBursts      int     `json:"total_bursts"`
	MeanBurstRateRPM float64 `json:"mean_burst_rate_rpm"`
	MinBurstRateRPM  float64 `json:"min_burst_rate_rpm"`
	MaxBurstRateRPM  float64 `json:"max_burst_rate_rpm"`
	AvgStdInterval   float64 `json:"avg_std_interval"`
}

type digestFindings struct {
	IssueCount    int           `json:"issue_count"`
	WorstSeverity string        `json:"worst_severity"`
	Issues        []digestIssue `json:"issues"`
}

type digestIssue struct {
	Check      string  `json:"check"`
	Detected   bool    `json:"detected"`
	Severity   string  `json:"severity"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
}

type digestBurst struct {
	Number      int     `json:"burst"`
	NumShots    int     `json:"num_shots"`
	StartSec    float64 `json:"start_sec"`
	DurationSec float64 `json:"duration_sec"`
	RateRPM     float64 `json:"rate_rpm"`
	StdInterval float64 `json:"std_interval"`
}

// checkBreakdown tracks per-check severity counts for the digest.
type checkBreakdown struct {
	Check    string
	Total    int
	Severe   int
	Moderate int
	Mild     int
}
