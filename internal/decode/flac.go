package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/farcloser/primordium/fault"
	"github.com/tphakala/flac"

	"github.com/farcloser/salvo/internal/types"
)

var errInvalidFLAC = errors.New("invalid FLAC stream")

// FLAC decodes a FLAC stream to mono.
func FLAC(r io.Reader) (types.Buffer, error) {
	decoder, err := flac.NewDecoder(r)
	if err != nil {
		return types.Buffer{}, fmt.Errorf("%w: %w", errInvalidFLAC, err)
	}

	slog.Debug("decode.FLAC", "sample rate", decoder.SampleRate, "bit depth", decoder.BitsPerSample, "channels", decoder.NChannels)

	depth := types.BitDepth(decoder.BitsPerSample) //nolint:gosec // bit depth is a small constant

	maxVal, err := divisor(depth)
	if err != nil {
		return types.Buffer{}, err
	}

	numChannels := decoder.NChannels
	if numChannels <= 0 {
		return types.Buffer{}, fmt.Errorf("%w: no channels", errInvalidFLAC)
	}

	bytesPerSample := decoder.BitsPerSample / 8
	frameSize := bytesPerSample * numChannels
	samples := make([]float64, 0, decoder.SampleRate)
	frame := make([]int, numChannels)

	for {
		block, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return types.Buffer{}, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		for i := 0; i+frameSize <= len(block); i += frameSize {
			for ch := range numChannels {
				frame[ch] = sampleAt(block[i+ch*bytesPerSample:], depth)
			}

			samples = mixdown(samples, frame, numChannels, maxVal)
		}
	}

	return types.Buffer{Samples: samples, SampleRate: decoder.SampleRate}, nil
}

// sampleAt reads one little-endian signed sample.
func sampleAt(data []byte, depth types.BitDepth) int {
	switch depth {
	case types.Depth16:
		return int(int16(binary.LittleEndian.Uint16(data))) //nolint:gosec // two's complement conversion for signed PCM samples
	case types.Depth24:
		raw := int32(data[0]) | int32(data[1])<<8 | int32(data[2])<<16
		if raw&0x800000 != 0 {
			raw |= ^0xFFFFFF
		}

		return int(raw)
	case types.Depth32:
		return int(int32(binary.LittleEndian.Uint32(data))) //nolint:gosec // two's complement conversion for signed PCM samples
	default:
		return 0
	}
}
