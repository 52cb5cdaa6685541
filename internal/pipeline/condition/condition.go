// Package condition measures recording defects that degrade shot detection.
package condition

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/salvo/internal/types"
)

// Ceiling is the absolute level at or above which a normalized sample counts as clipped.
const Ceiling = 0.999

// minRun is the shortest run of clipped samples reported as an event. A lone full-scale sample is a peak, not a clip.
const minRun = 2

// silentDb stands in for the level of a zero offset.
const silentDb = -120.0

// Clipping finds runs of consecutive samples at or above Ceiling.
func Clipping(samples []float64) *types.ClippingDetection {
	result := &types.ClippingDetection{Samples: len(samples)}

	var run int

	flush := func() {
		if run >= minRun {
			result.Events++
			result.ClippedSamples += run
			result.LongestRun = max(result.LongestRun, run)
		}

		run = 0
	}

	for _, sample := range samples {
		if math.Abs(sample) >= Ceiling {
			run++

			continue
		}

		flush()
	}

	flush()

	return result
}

// DCOffset measures the mean of the waveform.
func DCOffset(samples []float64) *types.DCOffsetResult {
	if len(samples) == 0 {
		return &types.DCOffsetResult{OffsetDb: silentDb}
	}

	offset := stat.Mean(samples, nil)

	offsetDb := 20 * math.Log10(math.Abs(offset))
	if math.IsInf(offsetDb, -1) || offsetDb < silentDb {
		offsetDb = silentDb
	}

	return &types.DCOffsetResult{
		Offset:   offset,
		OffsetDb: offsetDb,
		Samples:  len(samples),
	}
}
