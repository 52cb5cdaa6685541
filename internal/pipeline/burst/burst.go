// Package burst groups shots into bursts by inter-shot gap.
package burst

import (
	"github.com/farcloser/salvo/internal/types"
)

// Segment splits the shot timeline wherever consecutive shots are more than gap seconds apart, drops groups of
// fewer than minCount shots and numbers the rest 1..N.
//
// Only membership and timing bounds are filled; statistics are left to the cadence calculator.
func Segment(shots types.ShotSet, sampleRate int, gap float64, minCount int) []types.Burst {
	bursts := []types.Burst{}

	if len(shots) == 0 || sampleRate <= 0 {
		return bursts
	}

	times := shots.Times(sampleRate)

	flush := func(first, end int) {
		if end-first < minCount {
			return
		}

		members := make([]float64, end-first)
		copy(members, times[first:end])

		bursts = append(bursts, types.Burst{
			Number:    len(bursts) + 1,
			FirstShot: first,
			Shots:     members,
			NumShots:  len(members),
			StartTime: members[0],
			EndTime:   members[len(members)-1],
		})
	}

	first := 0

	for i := 1; i < len(times); i++ {
		if times[i]-times[i-1] > gap {
			flush(first, i)
			first = i
		}
	}

	flush(first, len(times))

	return bursts
}
