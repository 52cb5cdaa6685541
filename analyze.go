package salvo

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/farcloser/salvo/internal/pipeline/cadence"
)

/*
Usage:

buf := salvo.Buffer{Samples: samples, SampleRate: 48000}
result, err := salvo.Analyze(buf, salvo.DefaultConfig())
fmt.Printf("%d bursts, %.0f RPM\n", result.Summary.TotalBursts, result.Summary.MeanBurstRateRPM)

// Environment-aware thresholds
result, err := salvo.Analyze(buf, salvo.ConfigForEnvironment(salvo.EnvironmentIndoor))

// Interactive correction
session, err := salvo.NewSession(buf, salvo.DefaultConfig(), salvo.DefaultOptions())
result, err = session.Toggle(1.234)        // add or remove the shot at 1.234s
result, err = session.Reconfigure(newCfg)  // full re-detection, edits discarded

// Iterate findings
for _, issue := range result.Issues {
    if issue.Detected {
        fmt.Printf("[%s] %s\n", issue.Severity, issue.Summary)
    }
}
*/

// Check represents a high-level review check on the analysis.
type Check int

const (
	CheckCadenceConsistency Check = 1 << iota
	CheckSpacingLimited
	CheckUngroupedShots
	CheckClipping
	CheckDCOffset

	ChecksAll = CheckCadenceConsistency | CheckSpacingLimited | CheckUngroupedShots | CheckClipping | CheckDCOffset
)

func (c Check) String() string {
	switch c {
	case CheckCadenceConsistency:
		return "cadence-consistency"
	case CheckSpacingLimited:
		return "spacing-limited"
	case CheckUngroupedShots:
		return "ungrouped-shots"
	case CheckClipping:
		return "clipping"
	case CheckDCOffset:
		return "dc-offset"
	}

	return "unknown"
}

// Severity indicates how much a finding should worry the reviewer.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "no issue"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	}

	return "unknown"
}

// Issue represents a finding about the analysis.
type Issue struct {
	Check      Check
	Detected   bool
	Severity   Severity
	Summary    string  // human-readable summary
	Confidence float64 // 0.0-1.0
}

// Bands defines severity thresholds for a check. Higher values are worse.
type Bands struct {
	Mild     float64
	Moderate float64
	Severe   float64
}

// Match returns the severity for a value.
// Returns (SeverityNone, false) when the value is below detection (the Mild threshold).
func (b Bands) Match(value float64) (Severity, bool) {
	if value >= b.Severe {
		return SeveritySevere, true
	}

	if value >= b.Moderate {
		return SeverityModerate, true
	}

	if value >= b.Mild {
		return SeverityMild, true
	}

	return SeverityNone, false
}

// Phase names a pipeline stage, as reported to a ProgressFunc.
type Phase string

const (
	PhaseEnvelope Phase = "estimating envelope"
	PhasePeaks    Phase = "detecting peaks"
	PhaseBursts   Phase = "segmenting bursts"
	PhaseCadence  Phase = "calculating cadence"
)

// ProgressFunc receives phase notifications. It is called synchronously and must neither block nor call back into
// the session.
type ProgressFunc func(phase Phase)

// Options configures a session beyond detection parameters.
type Options struct {
	Checks   Check        // which findings to report (default: ChecksAll)
	Progress ProgressFunc // optional

	// EditTolerance is how close (seconds) a toggle must land to an existing shot to remove it (default 0.01).
	EditTolerance float64

	// Severity bands per check (zero value = use defaults).
	Consistency    Bands // coefficient of variation of intervals, worst burst
	SpacingLimited Bands // fraction of intervals within 10% of MinShotSpacing
	Ungrouped      Bands // shots outside any reported burst
	Clipping       Bands // clipping events (runs of 2+ samples at full scale)
	DCOffset       Bands // absolute waveform mean, full scale = 1
}

// DefaultOptions returns the default session options.
func DefaultOptions() Options {
	return Options{
		Checks:         ChecksAll,
		EditTolerance:  0.01,
		Consistency:    Bands{Mild: 0.05, Moderate: 0.10, Severe: 0.20},
		SpacingLimited: Bands{Mild: 0.05, Moderate: 0.20, Severe: 0.50},
		Ungrouped:      Bands{Mild: 1, Moderate: 3, Severe: 10},
		Clipping:       Bands{Mild: 1, Moderate: 5, Severe: 20},
		DCOffset:       Bands{Mild: 0.01, Moderate: 0.05, Severe: 0.1},
	}
}

// spacingMargin flags intervals shorter than this multiple of MinShotSpacing as refractory-limited.
const spacingMargin = 1.1

// Result is an immutable snapshot of an analysis session.
type Result struct {
	SessionID uuid.UUID
	Revision  int // incremented on every edit, reset or reconfiguration

	SampleRate  int
	SampleCount int
	Duration    float64 // seconds
	Config      Config

	// Detection is the untouched output of the peak detector.
	Detection *Detection

	// Recording condition, measured once per buffer.
	Clipping *ClippingDetection
	DCOffset *DCOffsetResult

	// Shots is the current shot set, manual edits included.
	Shots     ShotSet
	ShotTimes []float64
	Edits     int // manual edits applied since detection

	Bursts  []Burst
	Summary Summary

	Issues        []Issue
	IssueCount    int
	WorstSeverity Severity
}

// Analyze runs a one-shot analysis with default options.
func Analyze(buf Buffer, cfg Config) (*Result, error) {
	session, err := NewSession(buf, cfg, DefaultOptions())
	if err != nil {
		return nil, err
	}

	return session.Result(), nil
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()
	zeroBands := Bands{}

	if opts.Checks == 0 {
		opts.Checks = defaults.Checks
	}

	if opts.EditTolerance <= 0 {
		opts.EditTolerance = defaults.EditTolerance
	}

	if opts.Consistency == zeroBands {
		opts.Consistency = defaults.Consistency
	}

	if opts.SpacingLimited == zeroBands {
		opts.SpacingLimited = defaults.SpacingLimited
	}

	if opts.Ungrouped == zeroBands {
		opts.Ungrouped = defaults.Ungrouped
	}

	if opts.Clipping == zeroBands {
		opts.Clipping = defaults.Clipping
	}

	if opts.DCOffset == zeroBands {
		opts.DCOffset = defaults.DCOffset
	}
}

func interpretResults(result *Result, opts Options) {
	result.Issues = nil
	result.IssueCount = 0
	result.WorstSeverity = SeverityNone

	// Cadence consistency
	if opts.Checks&CheckCadenceConsistency != 0 && result.Summary.MeanBurstRateRPM > 0 {
		worstCV, worstBurst := 0.0, 0

		for _, burst := range result.Bursts {
			if burst.MeanInterval <= 0 {
				continue
			}

			if cv := burst.StdInterval / burst.MeanInterval; cv > worstCV {
				worstCV, worstBurst = cv, burst.Number
			}
		}

		severity, detected := opts.Consistency.Match(worstCV)

		var summary string

		switch severity {
		case SeverityNone:
			summary = fmt.Sprintf("Steady cadence (worst variation %.1f%%)", worstCV*100)
		case SeverityMild:
			summary = fmt.Sprintf("Slightly variable cadence in burst %d (%.1f%%)", worstBurst, worstCV*100)
		case SeverityModerate:
			summary = fmt.Sprintf("Variable cadence in burst %d (%.1f%%)", worstBurst, worstCV*100)
		case SeveritySevere:
			summary = fmt.Sprintf("Erratic cadence in burst %d (%.1f%%), review shots", worstBurst, worstCV*100)
		}

		result.Issues = append(result.Issues, Issue{
			Check:      CheckCadenceConsistency,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.9,
		})
	}

	// Refractory-limited detections
	if opts.Checks&CheckSpacingLimited != 0 && result.Summary.MeanBurstRateRPM > 0 {
		limit := result.Config.MinShotSpacing * spacingMargin

		var total, pinned int

		for _, burst := range result.Bursts {
			for _, interval := range cadence.Intervals(burst.Shots) {
				total++

				if interval < limit {
					pinned++
				}
			}
		}

		fraction := float64(pinned) / float64(total)
		severity, detected := opts.SpacingLimited.Match(fraction)

		var summary string

		switch severity {
		case SeverityNone:
			summary = "Intervals clear of the refractory limit"
		default:
			summary = fmt.Sprintf(
				"%d of %d intervals at the %.0f ms spacing limit, true rate may exceed %.0f RPM",
				pinned,
				total,
				result.Config.MinShotSpacing*1000,
				60/result.Config.MinShotSpacing,
			)
		}

		result.Issues = append(result.Issues, Issue{
			Check:      CheckSpacingLimited,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.7,
		})
	}

	// Ungrouped shots
	if opts.Checks&CheckUngroupedShots != 0 && len(result.Shots) > 0 {
		ungrouped := len(result.Shots) - result.Summary.TotalShots
		severity, detected := opts.Ungrouped.Match(float64(ungrouped))

		var summary string

		switch severity {
		case SeverityNone:
			summary = "Every shot belongs to a burst"
		default:
			summary = fmt.Sprintf(
				"%d shots outside any burst of %d or more",
				ungrouped,
				result.Config.MinBurstCount,
			)
		}

		result.Issues = append(result.Issues, Issue{
			Check:      CheckUngroupedShots,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 1.0,
		})
	}

	// Clipping
	if opts.Checks&CheckClipping != 0 && result.Clipping != nil && result.SampleCount > 0 {
		clip := result.Clipping
		severity, detected := opts.Clipping.Match(float64(clip.Events))

		var summary string

		switch severity {
		case SeverityNone:
			summary = "No clipping"
		default:
			summary = fmt.Sprintf(
				"%d clipping events (%d samples, longest %d), peak shapes may be flattened",
				clip.Events,
				clip.ClippedSamples,
				clip.LongestRun,
			)
		}

		result.Issues = append(result.Issues, Issue{
			Check:      CheckClipping,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.95,
		})
	}

	// DC offset
	if opts.Checks&CheckDCOffset != 0 && result.DCOffset != nil && result.SampleCount > 0 {
		offset := math.Abs(result.DCOffset.Offset)
		severity, detected := opts.DCOffset.Match(offset)

		var summary string

		switch severity {
		case SeverityNone:
			summary = fmt.Sprintf("DC offset negligible (%.1f dBFS)", result.DCOffset.OffsetDb)
		default:
			summary = fmt.Sprintf("DC offset of %.3f (%.1f dBFS) raises the envelope floor", result.DCOffset.Offset, result.DCOffset.OffsetDb)
		}

		result.Issues = append(result.Issues, Issue{
			Check:      CheckDCOffset,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.9,
		})
	}

	// Calculate summary stats
	for _, issue := range result.Issues {
		if issue.Detected {
			result.IssueCount++
		}

		if issue.Severity > result.WorstSeverity {
			result.WorstSeverity = issue.Severity
		}
	}
}
