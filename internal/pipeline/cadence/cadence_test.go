package cadence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/salvo/internal/pipeline/cadence"
	"github.com/farcloser/salvo/internal/types"
)

func burstOf(number int, times ...float64) types.Burst {
	return types.Burst{
		Number:    number,
		Shots:     times,
		NumShots:  len(times),
		StartTime: times[0],
		EndTime:   times[len(times)-1],
	}
}

func TestIntervals(t *testing.T) {
	t.Parallel()

	assert.Empty(t, cadence.Intervals(nil))
	assert.Empty(t, cadence.Intervals([]float64{1}))
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.05}, cadence.Intervals([]float64{1, 1.1, 1.3, 1.35}), 1e-12)
}

func TestCalculateRegular(t *testing.T) {
	t.Parallel()

	bursts, summary := cadence.Calculate([]types.Burst{burstOf(1, 0.1, 0.2, 0.3, 0.4, 0.5)})

	require.Len(t, bursts, 1)

	b := bursts[0]
	assert.InDelta(t, 0.4, b.Duration, 1e-12)
	assert.InDelta(t, 0.1, b.MeanInterval, 1e-12)
	assert.InDelta(t, 0, b.StdInterval, 1e-9)
	assert.InDelta(t, 0, b.MeanDeviation, 1e-9)
	assert.InDelta(t, 600, b.RateRPM, 1e-6)

	assert.Equal(t, 5, summary.TotalShots)
	assert.Equal(t, 1, summary.TotalBursts)
	assert.InDelta(t, 600, summary.MeanBurstRateRPM, 1e-6)
	assert.InDelta(t, 600, summary.MinBurstRateRPM, 1e-6)
	assert.InDelta(t, 600, summary.MaxBurstRateRPM, 1e-6)
}

func TestCalculateIrregular(t *testing.T) {
	t.Parallel()

	// Intervals 0.1, 0.2, 0.1, 0.2: mean 0.15, population std 0.05, mean deviation 0.05.
	bursts, _ := cadence.Calculate([]types.Burst{burstOf(1, 0, 0.1, 0.3, 0.4, 0.6)})

	b := bursts[0]
	assert.InDelta(t, 0.15, b.MeanInterval, 1e-12)
	assert.InDelta(t, 0.05, b.StdInterval, 1e-12)
	assert.InDelta(t, 0.05, b.MeanDeviation, 1e-12)
	assert.InDelta(t, 400, b.RateRPM, 1e-6)
}

func TestCalculateSingleShotBurst(t *testing.T) {
	t.Parallel()

	bursts, summary := cadence.Calculate([]types.Burst{burstOf(1, 2.5)})

	b := bursts[0]
	assert.Equal(t, 1, b.NumShots)
	assert.Zero(t, b.Duration)
	assert.Zero(t, b.MeanInterval)
	assert.Zero(t, b.StdInterval)
	assert.Zero(t, b.MeanDeviation)
	assert.Zero(t, b.RateRPM)
	assert.InDelta(t, 2.5, b.StartTime, 1e-12)

	// Counted, but without rate aggregates.
	assert.Equal(t, 1, summary.TotalShots)
	assert.Equal(t, 1, summary.TotalBursts)
	assert.Zero(t, summary.MeanBurstRateRPM)
	assert.Zero(t, summary.MinBurstRateRPM)
	assert.Zero(t, summary.MaxBurstRateRPM)
}

func TestCalculateSummaryAcrossBursts(t *testing.T) {
	t.Parallel()

	bursts, summary := cadence.Calculate([]types.Burst{
		burstOf(1, 0, 0.1, 0.2),        // 600 RPM
		burstOf(2, 1, 1.05, 1.1, 1.15), // 1200 RPM
		burstOf(3, 3),                  // single shot, excluded from rate aggregates
	})

	require.Len(t, bursts, 3)

	assert.Equal(t, 8, summary.TotalShots)
	assert.Equal(t, 3, summary.TotalBursts)
	assert.InDelta(t, 900, summary.MeanBurstRateRPM, 1e-6)
	assert.InDelta(t, 600, summary.MinBurstRateRPM, 1e-6)
	assert.InDelta(t, 1200, summary.MaxBurstRateRPM, 1e-6)
	assert.InDelta(t, 0, summary.AvgStdInterval, 1e-9)
}

func TestCalculateEmpty(t *testing.T) {
	t.Parallel()

	bursts, summary := cadence.Calculate(nil)

	assert.Empty(t, bursts)
	assert.Equal(t, types.Summary{}, summary)
}

func TestCalculateDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	input := []types.Burst{burstOf(1, 0, 0.1, 0.2)}

	out, _ := cadence.Calculate(input)
	out[0].Shots[0] = 99

	assert.Zero(t, input[0].RateRPM)
	assert.InDelta(t, 0.0, input[0].Shots[0], 1e-12)
}

func TestCalculateIdempotent(t *testing.T) {
	t.Parallel()

	input := []types.Burst{burstOf(1, 0, 0.1, 0.3, 0.4, 0.6), burstOf(2, 2, 2.1, 2.2)}

	first, summaryFirst := cadence.Calculate(input)
	second, summarySecond := cadence.Calculate(first)

	assert.Equal(t, first, second)
	assert.Equal(t, summaryFirst, summarySecond)
}
