// Package decode turns encoded audio into the mono float64 buffers the analysis kernel consumes.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/salvo/internal/types"
)

var (
	errUnsupportedBitDepth = errors.New("unsupported bit depth")
	errInvalidFormat       = errors.New("invalid PCM format")
)

// PCM reads interleaved little-endian signed PCM until EOF and mixes all channels down to mono.
// A trailing partial frame is ignored.
func PCM(r io.Reader, format types.PCMFormat) (types.Buffer, error) {
	if format.SampleRate <= 0 || format.Channels == 0 {
		return types.Buffer{}, fmt.Errorf("%w: %d Hz, %d channels", errInvalidFormat, format.SampleRate, format.Channels)
	}

	maxVal, err := divisor(format.BitDepth)
	if err != nil {
		return types.Buffer{}, err
	}

	bytesPerSample := int(format.BitDepth / 8)         //nolint:gosec // bit depth and channel count are small constants
	numChannels := int(format.Channels)                //nolint:gosec // bit depth and channel count are small constants
	frameSize := bytesPerSample * numChannels

	buf := make([]byte, frameSize*4096)
	samples := make([]float64, 0, format.SampleRate)

	// Carry-over of a frame split across two reads.
	var pending int

	for {
		n, err := r.Read(buf[pending:])
		n += pending

		completeFrames := (n / frameSize) * frameSize
		data := buf[:completeFrames]

		for i := 0; i < len(data); i += frameSize {
			var sum float64

			for ch := range numChannels {
				offset := i + ch*bytesPerSample

				switch format.BitDepth {
				case types.Depth16:
					sum += float64(int16(binary.LittleEndian.Uint16(data[offset:]))) / maxVal //nolint:gosec // two's complement conversion for signed PCM samples
				case types.Depth24:
					raw := int32(data[offset]) | int32(data[offset+1])<<8 | int32(data[offset+2])<<16
					if raw&0x800000 != 0 {
						raw |= ^0xFFFFFF
					}

					sum += float64(raw) / maxVal
				case types.Depth32:
					sum += float64(int32(binary.LittleEndian.Uint32(data[offset:]))) / maxVal //nolint:gosec // two's complement conversion for signed PCM samples
				default:
				}
			}

			samples = append(samples, sum/float64(numChannels))
		}

		pending = copy(buf, buf[completeFrames:n])

		if err == io.EOF {
			break
		}

		if err != nil {
			return types.Buffer{}, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return types.Buffer{Samples: samples, SampleRate: format.SampleRate}, nil
}

func divisor(depth types.BitDepth) (float64, error) {
	switch depth {
	case types.Depth16:
		return MaxValue16, nil
	case types.Depth24:
		return MaxValue24, nil
	case types.Depth32:
		return MaxValue32, nil
	default:
		return 0, fmt.Errorf("%w: %d", errUnsupportedBitDepth, depth)
	}
}
