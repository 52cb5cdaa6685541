package burst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/salvo/internal/pipeline/burst"
	"github.com/farcloser/salvo/internal/types"
)

const rate = 1000

// train returns count shots starting at first, step samples apart.
func train(first, step, count int) types.ShotSet {
	shots := make(types.ShotSet, count)
	for i := range shots {
		shots[i] = first + i*step
	}

	return shots
}

func TestSegmentEmpty(t *testing.T) {
	t.Parallel()

	bursts := burst.Segment(nil, rate, 0.25, 3)
	require.NotNil(t, bursts)
	assert.Empty(t, bursts)
}

func TestSegmentSingleBurst(t *testing.T) {
	t.Parallel()

	bursts := burst.Segment(train(100, 100, 10), rate, 0.25, 3)

	require.Len(t, bursts, 1)
	assert.Equal(t, 1, bursts[0].Number)
	assert.Equal(t, 0, bursts[0].FirstShot)
	assert.Equal(t, 10, bursts[0].NumShots)
	assert.InDelta(t, 0.1, bursts[0].StartTime, 1e-12)
	assert.InDelta(t, 1.0, bursts[0].EndTime, 1e-12)
	assert.Len(t, bursts[0].Shots, 10)
}

func TestSegmentSplitsOnGap(t *testing.T) {
	t.Parallel()

	shots := append(train(100, 100, 6), train(1600, 100, 7)...)

	bursts := burst.Segment(shots, rate, 0.25, 3)

	require.Len(t, bursts, 2)
	assert.Equal(t, []int{1, 2}, []int{bursts[0].Number, bursts[1].Number})
	assert.Equal(t, 6, bursts[0].NumShots)
	assert.Equal(t, 7, bursts[1].NumShots)
	assert.Equal(t, 6, bursts[1].FirstShot)
	assert.InDelta(t, 1.6, bursts[1].StartTime, 1e-12)
}

func TestSegmentGapIsInclusive(t *testing.T) {
	t.Parallel()

	// A gap equal to the threshold keeps the burst together; only a larger one splits.
	together := burst.Segment(types.ShotSet{0, 250, 500}, rate, 0.25, 1)
	assert.Len(t, together, 1)

	split := burst.Segment(types.ShotSet{0, 251, 502}, rate, 0.25, 1)
	assert.Len(t, split, 3)
}

func TestSegmentDropsShortGroupsAndRenumbers(t *testing.T) {
	t.Parallel()

	// 2 shots, 4 shots, 1 shot, 3 shots.
	shots := types.ShotSet{0, 100, 1000, 1100, 1200, 1300, 3000, 5000, 5100, 5200}

	bursts := burst.Segment(shots, rate, 0.25, 3)

	require.Len(t, bursts, 2)
	assert.Equal(t, 1, bursts[0].Number)
	assert.Equal(t, 4, bursts[0].NumShots)
	assert.Equal(t, 2, bursts[0].FirstShot)
	assert.Equal(t, 2, bursts[1].Number)
	assert.Equal(t, 3, bursts[1].NumShots)
	assert.Equal(t, 7, bursts[1].FirstShot)
}

func TestSegmentMinCountOne(t *testing.T) {
	t.Parallel()

	bursts := burst.Segment(types.ShotSet{500}, rate, 0.25, 1)

	require.Len(t, bursts, 1)
	assert.Equal(t, 1, bursts[0].NumShots)
	assert.InDelta(t, 0.5, bursts[0].StartTime, 1e-12)
	assert.InDelta(t, 0.5, bursts[0].EndTime, 1e-12)
}

func TestSegmentPartition(t *testing.T) {
	t.Parallel()

	shots := types.ShotSet{0, 100, 200, 900, 1000, 1100, 1200, 2500, 2600, 2700}

	bursts := burst.Segment(shots, rate, 0.25, 1)

	total := 0
	for i, b := range bursts {
		total += b.NumShots

		if i > 0 {
			assert.Greater(t, b.StartTime-bursts[i-1].EndTime, 0.25)
		}
	}

	assert.Equal(t, len(shots), total)
}

func TestSegmentDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	shots := train(0, 100, 5)
	bursts := burst.Segment(shots, rate, 0.25, 3)

	require.Len(t, bursts, 1)

	bursts[0].Shots[0] = 42

	again := burst.Segment(shots, rate, 0.25, 3)
	assert.InDelta(t, 0.0, again[0].Shots[0], 1e-12)
	assert.Equal(t, train(0, 100, 5), shots)
}
