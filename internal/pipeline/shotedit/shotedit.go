// Package shotedit applies manual corrections to a ShotSet.
//
// Every function returns a new ShotSet and leaves its input untouched, so a snapshot handed to a renderer can never
// change underneath it.
package shotedit

import (
	"math"
	"slices"

	"github.com/farcloser/salvo/internal/types"
)

// Toggle removes the shot nearest to timestamp if it lies within tolerance seconds, and inserts a shot at
// round(timestamp * sampleRate) otherwise.
//
// The effective tolerance is never below half a sample, so toggling the same timestamp twice restores the input.
func Toggle(shots types.ShotSet, timestamp float64, sampleRate int, tolerance float64) types.ShotSet {
	if pos, ok := Nearest(shots, timestamp, sampleRate, tolerance); ok {
		return removeAt(shots, pos)
	}

	return Insert(shots, timestamp, sampleRate)
}

// Insert adds a shot at round(timestamp * sampleRate). Inserting an index that is already present, or one before
// the first sample, is a no-op.
func Insert(shots types.ShotSet, timestamp float64, sampleRate int) types.ShotSet {
	idx := int(math.Round(timestamp * float64(sampleRate)))
	if idx < 0 {
		return shots.Clone()
	}

	pos, found := slices.BinarySearch(shots, idx)
	if found {
		return shots.Clone()
	}

	out := make(types.ShotSet, 0, len(shots)+1)
	out = append(out, shots[:pos]...)
	out = append(out, idx)
	out = append(out, shots[pos:]...)

	return out
}

// Remove drops the shot nearest to timestamp when it lies within tolerance, and reports whether one was removed.
func Remove(shots types.ShotSet, timestamp float64, sampleRate int, tolerance float64) (types.ShotSet, bool) {
	pos, ok := Nearest(shots, timestamp, sampleRate, tolerance)
	if !ok {
		return shots.Clone(), false
	}

	return removeAt(shots, pos), true
}

// Nearest returns the position of the shot closest to timestamp, if within tolerance.
func Nearest(shots types.ShotSet, timestamp float64, sampleRate int, tolerance float64) (int, bool) {
	if len(shots) == 0 || sampleRate <= 0 {
		return 0, false
	}

	rate := float64(sampleRate)
	// Half a sample plus rounding slack.
	tolerance = max(tolerance, 0.5/rate*(1+1e-9))

	// Shots are sorted: the nearest one is at the insertion point or just before it.
	target := int(math.Floor(timestamp * rate))
	pos, _ := slices.BinarySearch(shots, target)

	best, bestDist := -1, math.Inf(1)

	for _, cand := range []int{pos - 1, pos, pos + 1} {
		if cand < 0 || cand >= len(shots) {
			continue
		}

		if dist := math.Abs(float64(shots[cand])/rate - timestamp); dist < bestDist {
			best, bestDist = cand, dist
		}
	}

	if best < 0 || bestDist > tolerance {
		return 0, false
	}

	return best, true
}

func removeAt(shots types.ShotSet, pos int) types.ShotSet {
	out := make(types.ShotSet, 0, len(shots)-1)
	out = append(out, shots[:pos]...)

	return append(out, shots[pos+1:]...)
}
