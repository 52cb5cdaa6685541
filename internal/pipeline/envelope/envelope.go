// Package envelope derives a smoothed amplitude envelope from raw samples.
package envelope

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// WindowLength converts a window duration to a sample count, never less than one.
func WindowLength(sampleRate int, windowSize float64) int {
	return max(int(math.Round(windowSize*float64(sampleRate))), 1)
}

// Estimate computes a centered moving RMS over windowSize seconds, producing one value per input sample.
//
// Value i covers samples [i-n/2, i-n/2+n-1], clipped to the buffer and normalized by the number of in-bounds
// samples, so that an isolated impulse yields a plateau centered on the impulse.
func Estimate(samples []float64, sampleRate int, windowSize float64) []float64 {
	size := len(samples)
	env := make([]float64, size)

	if size == 0 {
		return env
	}

	length := WindowLength(sampleRate, windowSize)
	half := length / 2

	squares := make([]float64, size)
	vecmath.MulBlock(squares, samples, samples)

	// Prime the window for i = 0: samples [-half, length-half-1].
	var sum float64

	for j := range min(length-half, size) {
		sum += squares[j]
	}

	for i := range size {
		if i > 0 {
			// Slide: admit the new right edge, drop the old left edge.
			if right := i - half + length - 1; right < size {
				sum += squares[right]
			}

			if left := i - half - 1; left >= 0 {
				sum -= squares[left]
			}
		}

		lo := max(i-half, 0)
		hi := min(i-half+length-1, size-1)
		count := hi - lo + 1

		// Subtraction can leave a tiny negative residue after a loud transient.
		env[i] = math.Sqrt(max(sum, 0) / float64(count))
	}

	return env
}
