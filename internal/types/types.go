package types

import "slices"

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes interleaved little-endian signed PCM, as produced by ffmpeg extraction or supplied raw.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// Buffer is a decoded mono waveform. Samples are normalized to [-1, 1] by the decoders, but the kernel only
// assumes finite values.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// ShotSet holds shot positions as sample indices, strictly increasing.
type ShotSet []int

// Times converts sample indices to seconds.
func (s ShotSet) Times(sampleRate int) []float64 {
	times := make([]float64, len(s))
	if sampleRate <= 0 {
		return times
	}

	for i, idx := range s {
		times[i] = float64(idx) / float64(sampleRate)
	}

	return times
}

// Valid reports whether the set is strictly increasing and every index lies within [0, sampleCount).
func (s ShotSet) Valid(sampleCount int) bool {
	for i, idx := range s {
		if idx < 0 || idx >= sampleCount {
			return false
		}

		if i > 0 && idx <= s[i-1] {
			return false
		}
	}

	return true
}

// Clone returns an independent copy. A nil set clones to an empty, non-nil one.
func (s ShotSet) Clone() ShotSet {
	if s == nil {
		return ShotSet{}
	}

	return slices.Clone(s)
}

// Detection contains peak detector results and the statistics the threshold was derived from.
type Detection struct {
	Shots      ShotSet
	Mean       float64 // envelope mean
	StdDev     float64 // envelope population standard deviation
	Threshold  float64 // Mean + k * StdDev
	Candidates int     // local maxima above threshold, before prominence and refractory filtering
	Rejected   int     // candidates dropped for insufficient prominence
}

// Burst is a contiguous run of shots.
//
// Statistics (MeanInterval onward) are only filled by the cadence calculator, and stay zero for single-shot
// bursts.
type Burst struct {
	Number    int       // 1-based, chronological
	FirstShot int       // position of the first member in the ShotSet
	Shots     []float64 // member timestamps, seconds
	NumShots  int
	StartTime float64
	EndTime   float64
	Duration  float64

	MeanInterval  float64 // seconds
	StdInterval   float64 // population stddev of intervals, seconds
	MeanDeviation float64 // mean |interval - MeanInterval|, seconds
	RateRPM       float64 // 60 / MeanInterval
}

/*
Cadence Interpretation

| RateRPM   | Typical source                              |
|-----------|---------------------------------------------|
| < 300     | Semi-automatic, practiced trigger pulls     |
| 300-700   | Automatic rifles, open-bolt SMGs            |
| 700-1000  | Modern assault rifles, closed-bolt SMGs     |
| > 1000    | High-cyclic SMGs, or echoes detected as shots |

StdInterval relative to MeanInterval (coefficient of variation):

| CV        | Interpretation                               |
|-----------|----------------------------------------------|
| < 5%      | Mechanical cycling. Steady.                  |
| 5-10%     | Slight variation. Normal for gas systems.    |
| 10-20%    | Variable. Mixed fire or missed detections.   |
| > 20%     | Erratic. Review shots manually.              |
*/

// Summary aggregates reported bursts. Rate, interval and deviation aggregates only cover bursts with at least two
// shots.
type Summary struct {
	TotalShots       int
	TotalBursts      int
	MeanBurstRateRPM float64
	MinBurstRateRPM  float64
	MaxBurstRateRPM  float64
	AvgStdInterval   float64
	AvgMeanDeviation float64
}

// ClippingDetection counts runs of samples pinned at full scale.
type ClippingDetection struct {
	Samples        int
	Events         int // runs of two or more clipped samples
	ClippedSamples int
	LongestRun     int
}

// DCOffsetResult is the mean level of the waveform.
type DCOffsetResult struct {
	Offset   float64 // signed, full scale = 1
	OffsetDb float64 // dBFS of |Offset|, floored at -120
	Samples  int
}
