package salvo

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/salvo/internal/types"
)

type (
	// Buffer is a decoded mono waveform and its sample rate.
	Buffer = types.Buffer
	// ShotSet holds shot positions as strictly increasing sample indices.
	ShotSet = types.ShotSet
	// Burst is a chronologically numbered group of shots with its cadence statistics.
	Burst = types.Burst
	// Summary aggregates all reported bursts.
	Summary = types.Summary
	// Detection holds peak detector output and threshold statistics.
	Detection = types.Detection
	// ClippingDetection counts runs of full-scale samples.
	ClippingDetection = types.ClippingDetection
	// DCOffsetResult is the mean level of the waveform.
	DCOffsetResult = types.DCOffsetResult
)

var (
	// ErrInvalidConfiguration is returned before any computation when a Config field is out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	// ErrEditOutOfRange is returned for a manual edit outside the recording.
	ErrEditOutOfRange = errors.New("edit outside recording")
)

// Config controls detection and grouping. Durations are in seconds.
type Config struct {
	// PeakThresholdStd places the detection threshold at mean + PeakThresholdStd * stddev of the envelope.
	PeakThresholdStd float64 `yaml:"peak_threshold_std"`

	// MinShotSpacing is the refractory period enforced between accepted shots.
	// It caps the measurable rate at 60 / MinShotSpacing RPM.
	MinShotSpacing float64 `yaml:"min_shot_spacing"`

	// BurstGapThreshold is the largest gap between two shots of the same burst.
	BurstGapThreshold float64 `yaml:"burst_gap_threshold"`

	// WindowSize is the envelope smoothing window. Shorter keeps transients sharp, longer suppresses noise.
	WindowSize float64 `yaml:"window_size"`

	// MinPeakProminence is the minimum (peak - base) / base ratio for a candidate to count as a shot.
	MinPeakProminence float64 `yaml:"min_peak_prominence"`

	// MinBurstCount is the smallest group reported as a burst.
	MinBurstCount int `yaml:"min_burst_count"`
}

type floatRange struct {
	min, max float64
}

//nolint:gochecknoglobals // validation table, effectively const
var (
	rangePeakThresholdStd  = floatRange{0.1, 5.0}
	rangeMinShotSpacing    = floatRange{0.01, 1.0}
	rangeBurstGapThreshold = floatRange{0.05, 2.0}
	rangeWindowSize        = floatRange{0.001, 0.01}
	rangeMinPeakProminence = floatRange{0.01, 1.0}
)

const (
	minBurstCountLow  = 1
	minBurstCountHigh = 50
)

// DefaultConfig returns DefaultOutdoorConfig.
func DefaultConfig() Config {
	return DefaultOutdoorConfig()
}

// DefaultOutdoorConfig returns a configuration for open-air recordings, where reports decay quickly.
func DefaultOutdoorConfig() Config {
	return Config{
		PeakThresholdStd:  2.5,
		MinShotSpacing:    0.04,
		BurstGapThreshold: 0.25,
		WindowSize:        0.002,
		MinPeakProminence: 0.2,
		MinBurstCount:     3,
	}
}

// DefaultIndoorConfig returns a configuration for ranges and rooms.
// Reflections trail each report, so spacing and prominence are raised to keep echoes from counting as shots.
func DefaultIndoorConfig() Config {
	cfg := DefaultOutdoorConfig()
	cfg.MinShotSpacing = 0.05
	cfg.MinPeakProminence = 0.4
	cfg.WindowSize = 0.003

	return cfg
}

// DefaultSuppressedConfig returns a configuration for suppressed fire.
// Reports sit closer to the mechanical noise floor, so the threshold and prominence are lowered.
func DefaultSuppressedConfig() Config {
	cfg := DefaultOutdoorConfig()
	cfg.PeakThresholdStd = 1.8
	cfg.MinPeakProminence = 0.1
	cfg.WindowSize = 0.004

	return cfg
}

// Validate rejects out-of-range fields. Values are never clamped.
func (c Config) Validate() error {
	var errs []error

	check := func(field string, value float64, rng floatRange) {
		if !(value >= rng.min && value <= rng.max) { // also rejects NaN
			errs = append(errs, fmt.Errorf("%w: %s %v not in [%v, %v]", ErrInvalidConfiguration, field, value, rng.min, rng.max))
		}
	}

	check("peak threshold std", c.PeakThresholdStd, rangePeakThresholdStd)
	check("min shot spacing", c.MinShotSpacing, rangeMinShotSpacing)
	check("burst gap threshold", c.BurstGapThreshold, rangeBurstGapThreshold)
	check("window size", c.WindowSize, rangeWindowSize)
	check("min peak prominence", c.MinPeakProminence, rangeMinPeakProminence)

	if c.MinBurstCount < minBurstCountLow || c.MinBurstCount > minBurstCountHigh {
		errs = append(errs, fmt.Errorf("%w: min burst count %d not in [%d, %d]",
			ErrInvalidConfiguration, c.MinBurstCount, minBurstCountLow, minBurstCountHigh))
	}

	return errors.Join(errs...)
}

// LoadConfig overlays the YAML document read from r onto base, then validates the result.
// Keys absent from the document keep their base value.
func LoadConfig(r io.Reader, base Config) (Config, error) {
	cfg := base

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Environment represents the recording environment, which adjusts detection to the acoustics of the place.
type Environment int

const (
	EnvironmentOutdoor    Environment = iota // Open air (default).
	EnvironmentIndoor                        // Enclosed range or room. Strong reflections.
	EnvironmentSuppressed                    // Suppressed fire. Quieter reports.
)

func (e Environment) String() string {
	switch e {
	case EnvironmentOutdoor:
		return "outdoor"
	case EnvironmentIndoor:
		return "indoor"
	case EnvironmentSuppressed:
		return "suppressed"
	}

	return "unknown"
}

// ParseEnvironment converts a string to an Environment value.
func ParseEnvironment(s string) (Environment, error) {
	switch s {
	case "outdoor", "":
		return EnvironmentOutdoor, nil
	case "indoor":
		return EnvironmentIndoor, nil
	case "suppressed":
		return EnvironmentSuppressed, nil
	default:
		return 0, fmt.Errorf("unknown environment %q (valid: outdoor, indoor, suppressed)", s)
	}
}

// ConfigForEnvironment returns the default Config for the given environment.
func ConfigForEnvironment(env Environment) Config {
	switch env {
	case EnvironmentIndoor:
		return DefaultIndoorConfig()
	case EnvironmentSuppressed:
		return DefaultSuppressedConfig()
	default:
		return DefaultOutdoorConfig()
	}
}
