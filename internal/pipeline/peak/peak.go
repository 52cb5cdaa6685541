// Package peak finds shot events in an amplitude envelope.
package peak

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/salvo/internal/types"
)

// Options carries the detection subset of the analysis configuration.
type Options struct {
	ThresholdStd  float64 // threshold = mean + ThresholdStd * stddev
	MinSpacing    float64 // refractory period, seconds
	MinProminence float64 // minimum (peak - base) / base
}

type candidate struct {
	index int     // plateau midpoint
	left  int     // first plateau sample
	right int     // last plateau sample
	value float64 // envelope height
}

// Detect returns the accepted shot positions together with the threshold statistics.
//
// A degenerate envelope (fewer than two samples, or zero variance) yields an empty ShotSet.
func Detect(env []float64, sampleRate int, opts Options) *types.Detection {
	result := &types.Detection{Shots: types.ShotSet{}}

	if len(env) < 2 || sampleRate <= 0 {
		return result
	}

	mean, std := stat.PopMeanStdDev(env, nil)
	result.Mean = mean
	result.StdDev = std

	if std == 0 || math.IsNaN(std) {
		result.Threshold = mean

		return result
	}

	result.Threshold = mean + opts.ThresholdStd*std

	spacing := opts.MinSpacing * float64(sampleRate)
	reach := max(int(math.Ceil(spacing)), 1)

	var candidates []candidate

	for _, cand := range localMaxima(env) {
		if cand.value <= result.Threshold {
			continue
		}

		result.Candidates++

		base := prominenceBase(env, cand, reach)
		if relativeProminence(cand.value, base) < opts.MinProminence {
			result.Rejected++

			continue
		}

		candidates = append(candidates, cand)
	}

	result.Shots = refractory(candidates, spacing)

	return result
}

// localMaxima scans for samples strictly higher than both neighbors. Flat tops count once, at their midpoint;
// plateaus touching either edge of the envelope are not peaks.
func localMaxima(env []float64) []candidate {
	var peaks []candidate

	last := len(env) - 1

	for i := 1; i < last; {
		if env[i] <= env[i-1] {
			i++

			continue
		}

		ahead := i
		for ahead < last && env[ahead+1] == env[i] {
			ahead++
		}

		if ahead < last && env[ahead+1] < env[i] {
			peaks = append(peaks, candidate{
				index: (i + ahead) / 2,
				left:  i,
				right: ahead,
				value: env[i],
			})
		}

		i = ahead + 1
	}

	return peaks
}

// prominenceBase walks away from the peak on both sides, at most reach samples, stopping early at any sample
// higher than the peak. The base is the higher of the two minima found.
func prominenceBase(env []float64, cand candidate, reach int) float64 {
	leftMin := cand.value

	for j := cand.left - 1; j >= max(cand.left-reach, 0); j-- {
		if env[j] > cand.value {
			break
		}

		leftMin = min(leftMin, env[j])
	}

	rightMin := cand.value

	for j := cand.right + 1; j <= min(cand.right+reach, len(env)-1); j++ {
		if env[j] > cand.value {
			break
		}

		rightMin = min(rightMin, env[j])
	}

	return max(leftMin, rightMin)
}

func relativeProminence(value, base float64) float64 {
	if base <= 0 {
		return math.Inf(1)
	}

	return (value - base) / base
}

// refractory keeps the highest candidates first, suppressing any other candidate closer than spacing samples to
// one already kept.
func refractory(candidates []candidate, spacing float64) types.ShotSet {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		if c := cmp.Compare(candidates[b].value, candidates[a].value); c != 0 {
			return c
		}

		return cmp.Compare(candidates[a].index, candidates[b].index)
	})

	// Candidates are already in index order, so neighbors are found by walking outwards.
	suppressed := make([]bool, len(candidates))
	shots := types.ShotSet{}

	for _, pos := range order {
		if suppressed[pos] {
			continue
		}

		shots = append(shots, candidates[pos].index)

		for j := pos - 1; j >= 0 && float64(candidates[pos].index-candidates[j].index) < spacing; j-- {
			suppressed[j] = true
		}

		for j := pos + 1; j < len(candidates) && float64(candidates[j].index-candidates[pos].index) < spacing; j++ {
			suppressed[j] = true
		}
	}

	slices.Sort(shots)

	return shots
}
