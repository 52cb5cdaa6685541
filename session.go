package salvo

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/farcloser/salvo/internal/pipeline/burst"
	"github.com/farcloser/salvo/internal/pipeline/cadence"
	"github.com/farcloser/salvo/internal/pipeline/condition"
	"github.com/farcloser/salvo/internal/pipeline/envelope"
	"github.com/farcloser/salvo/internal/pipeline/peak"
	"github.com/farcloser/salvo/internal/pipeline/shotedit"
)

// EditKind selects what a manual edit does.
type EditKind int

const (
	EditToggle EditKind = iota // remove the nearby shot, or add one
	EditAdd                    // add a shot unless one already sits on that sample
	EditRemove                 // remove the nearby shot, if any
)

func (k EditKind) String() string {
	switch k {
	case EditToggle:
		return "toggle"
	case EditAdd:
		return "add"
	case EditRemove:
		return "remove"
	}

	return "unknown"
}

// Edit is a manual correction at a point in time.
type Edit struct {
	Kind EditKind
	Time float64 // seconds from the start of the buffer

	// Tolerance overrides Options.EditTolerance when positive.
	Tolerance float64
}

// Session holds one recording under analysis: the sample buffer, the configuration, the detected and current shot
// sets, and the latest Result snapshot.
//
// A Session is meant for a single writer. It performs no locking.
type Session struct {
	id     uuid.UUID
	buffer Buffer
	config Config
	opts   Options

	detection *Detection
	clipping  *ClippingDetection
	dcOffset  *DCOffsetResult
	shots     ShotSet
	edits     int
	revision  int
	result    *Result
}

// NewSession validates its inputs and runs the complete pipeline once.
//
// A zero Config selects DefaultConfig. An empty buffer is not an error: it yields an empty result.
func NewSession(buf Buffer, cfg Config, opts Options) (*Session, error) {
	if buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, buf.SampleRate)
	}

	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	applyDefaults(&opts)

	session := &Session{
		id:     uuid.New(),
		buffer: buf,
		opts:   opts,
	}

	session.clipping = condition.Clipping(buf.Samples)
	session.dcOffset = condition.DCOffset(buf.Samples)

	session.detect(cfg)

	return session, nil
}

// ID identifies the session, for callers correlating snapshots across edits.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Result returns the current snapshot.
func (s *Session) Result() *Result {
	return s.result
}

// Apply performs a manual edit, then re-segments and re-aggregates without re-running detection.
// It returns the new snapshot; earlier snapshots stay valid and unchanged.
// An edit that leaves the shots as they are returns the current snapshot and does not count as an edit.
func (s *Session) Apply(edit Edit) (*Result, error) {
	duration := s.buffer.Duration()
	if !(edit.Time >= 0 && edit.Time < duration) {
		return nil, fmt.Errorf("%w: %.4fs not in [0, %.4fs)", ErrEditOutOfRange, edit.Time, duration)
	}

	tolerance := s.opts.EditTolerance
	if edit.Tolerance > 0 {
		tolerance = edit.Tolerance
	}

	rate := s.buffer.SampleRate

	var shots ShotSet

	switch edit.Kind {
	case EditAdd:
		shots = shotedit.Insert(s.shots, edit.Time, rate)
	case EditRemove:
		var removed bool
		if shots, removed = shotedit.Remove(s.shots, edit.Time, rate, tolerance); !removed {
			return s.result, nil
		}
	default:
		shots = shotedit.Toggle(s.shots, edit.Time, rate, tolerance)
	}

	// round(t * rate) can land on the sample count for t within half a sample of the end.
	if last := len(shots) - 1; last >= 0 && shots[last] >= len(s.buffer.Samples) {
		shots = shots[:last]
	}

	// Adding over an existing shot, or past the last sample, leaves the snapshot as is.
	if slices.Equal(shots, s.shots) {
		slog.Debug("session.Apply", "session", s.id, "edit", edit.Kind, "time", edit.Time, "stage", "unchanged")

		return s.result, nil
	}

	slog.Debug("session.Apply", "session", s.id, "edit", edit.Kind, "time", edit.Time, "shots", len(shots))

	s.shots = shots
	s.edits++
	s.publish()

	return s.result, nil
}

// Toggle adds a shot at t, or removes the one already there.
func (s *Session) Toggle(t float64) (*Result, error) {
	return s.Apply(Edit{Kind: EditToggle, Time: t})
}

// Reset discards manual edits and restores the detected shots.
func (s *Session) Reset() *Result {
	s.shots = s.detection.Shots.Clone()
	s.edits = 0
	s.publish()

	return s.result
}

// Reconfigure discards all derived state, including manual edits, and re-runs detection on the same buffer.
func (s *Session) Reconfigure(cfg Config) (*Result, error) {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.detect(cfg)

	return s.result, nil
}

func (s *Session) detect(cfg Config) {
	s.config = cfg

	s.notify(PhaseEnvelope)

	env := envelope.Estimate(s.buffer.Samples, s.buffer.SampleRate, cfg.WindowSize)

	s.notify(PhasePeaks)

	s.detection = peak.Detect(env, s.buffer.SampleRate, peak.Options{
		ThresholdStd:  cfg.PeakThresholdStd,
		MinSpacing:    cfg.MinShotSpacing,
		MinProminence: cfg.MinPeakProminence,
	})

	slog.Debug("session.detect", "session", s.id,
		"samples", len(s.buffer.Samples),
		"threshold", s.detection.Threshold,
		"candidates", s.detection.Candidates,
		"shots", len(s.detection.Shots),
	)

	s.shots = s.detection.Shots.Clone()
	s.edits = 0
	s.publish()
}

// publish recomputes bursts and statistics from the current shots and swaps in a fresh snapshot.
func (s *Session) publish() {
	rate := s.buffer.SampleRate

	s.notify(PhaseBursts)

	bursts := burst.Segment(s.shots, rate, s.config.BurstGapThreshold, s.config.MinBurstCount)

	s.notify(PhaseCadence)

	bursts, summary := cadence.Calculate(bursts)

	s.revision++

	result := &Result{
		SessionID:   s.id,
		Revision:    s.revision,
		SampleRate:  rate,
		SampleCount: len(s.buffer.Samples),
		Duration:    s.buffer.Duration(),
		Config:      s.config,
		Detection:   s.detection,
		Clipping:    s.clipping,
		DCOffset:    s.dcOffset,
		Shots:       s.shots.Clone(),
		ShotTimes:   s.shots.Times(rate),
		Edits:       s.edits,
		Bursts:      bursts,
		Summary:     summary,
	}

	interpretResults(result, s.opts)

	s.result = result
}

func (s *Session) notify(phase Phase) {
	if s.opts.Progress != nil {
		s.opts.Progress(phase)
	}
}
