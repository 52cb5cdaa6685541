package decode

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/farcloser/primordium/fault"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/farcloser/salvo/internal/types"
)

var errInvalidWAV = errors.New("invalid WAV file")

// WAV decodes a PCM WAV stream to mono.
func WAV(r io.ReadSeeker) (types.Buffer, error) {
	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return types.Buffer{}, errInvalidWAV
	}

	slog.Debug("decode.WAV", "sample rate", decoder.SampleRate, "bit depth", decoder.BitDepth, "channels", decoder.NumChans)

	maxVal, err := divisor(types.BitDepth(decoder.BitDepth))
	if err != nil {
		return types.Buffer{}, err
	}

	numChannels := int(decoder.NumChans)
	if numChannels == 0 {
		return types.Buffer{}, fmt.Errorf("%w: no channels", errInvalidWAV)
	}

	sampleRate := int(decoder.SampleRate)

	chunk := &audio.IntBuffer{
		Data:   make([]int, 4096*numChannels),
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: numChannels},
	}

	samples := make([]float64, 0, sampleRate)

	for {
		n, err := decoder.PCMBuffer(chunk)
		if err != nil {
			return types.Buffer{}, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		if n == 0 {
			break
		}

		samples = mixdown(samples, chunk.Data[:n-n%numChannels], numChannels, maxVal)
	}

	return types.Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// mixdown appends interleaved integer frames to dst as mono normalized samples.
func mixdown(dst []float64, interleaved []int, numChannels int, maxVal float64) []float64 {
	for i := 0; i+numChannels <= len(interleaved); i += numChannels {
		var sum float64
		for ch := range numChannels {
			sum += float64(interleaved[i+ch])
		}

		dst = append(dst, sum/float64(numChannels)/maxVal)
	}

	return dst
}
