// Package cadence computes rate and timing statistics for bursts.
package cadence

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/salvo/internal/types"
)

// Calculate fills the statistics of each burst and aggregates them. The input slice is not modified.
func Calculate(bursts []types.Burst) ([]types.Burst, types.Summary) {
	out := make([]types.Burst, len(bursts))

	var (
		summary    types.Summary
		rates      []float64
		stds       []float64
		deviations []float64
	)

	for i, burst := range bursts {
		out[i] = measure(burst)

		summary.TotalShots += out[i].NumShots
		summary.TotalBursts++

		if out[i].NumShots < 2 {
			continue
		}

		rates = append(rates, out[i].RateRPM)
		stds = append(stds, out[i].StdInterval)
		deviations = append(deviations, out[i].MeanDeviation)
	}

	if len(rates) > 0 {
		summary.MeanBurstRateRPM = stat.Mean(rates, nil)
		summary.MinBurstRateRPM = floats.Min(rates)
		summary.MaxBurstRateRPM = floats.Max(rates)
		summary.AvgStdInterval = stat.Mean(stds, nil)
		summary.AvgMeanDeviation = stat.Mean(deviations, nil)
	}

	return out, summary
}

func measure(burst types.Burst) types.Burst {
	burst.Shots = append([]float64(nil), burst.Shots...)
	burst.NumShots = len(burst.Shots)

	burst.Duration = 0
	burst.MeanInterval = 0
	burst.StdInterval = 0
	burst.MeanDeviation = 0
	burst.RateRPM = 0

	if burst.NumShots < 2 {
		return burst
	}

	burst.StartTime = burst.Shots[0]
	burst.EndTime = burst.Shots[burst.NumShots-1]
	burst.Duration = burst.EndTime - burst.StartTime

	intervals := Intervals(burst.Shots)

	mean, std := stat.PopMeanStdDev(intervals, nil)
	if math.IsNaN(std) {
		std = 0
	}

	burst.MeanInterval = mean
	burst.StdInterval = std

	var deviation float64
	for _, interval := range intervals {
		deviation += math.Abs(interval - mean)
	}

	burst.MeanDeviation = deviation / float64(len(intervals))

	if mean > 0 {
		burst.RateRPM = 60 / mean
	}

	return burst
}

// Intervals returns the differences between consecutive timestamps.
func Intervals(times []float64) []float64 {
	if len(times) < 2 {
		return []float64{}
	}

	intervals := make([]float64, len(times)-1)
	floats.SubTo(intervals, times[1:], times[:len(times)-1])

	return intervals
}
