package decode

import (
	"bytes"
	"context"
	"fmt"

	"github.com/farcloser/salvo/internal/integration/ffmpeg"
	"github.com/farcloser/salvo/internal/integration/ffprobe"
	"github.com/farcloser/salvo/internal/types"
)

// Container decodes any format ffmpeg understands, such as phone or camera video, through ffprobe and ffmpeg.
// The probe result is returned for reporting.
func Container(ctx context.Context, path string, streamIndex int) (types.Buffer, *ffprobe.Result, error) {
	probeResult, err := ffprobe.Probe(ctx, path)
	if err != nil {
		return types.Buffer{}, nil, fmt.Errorf("probing file: %w", err)
	}

	stream, err := probeResult.AudioStream(streamIndex)
	if err != nil {
		return types.Buffer{}, probeResult, err
	}

	rate, err := stream.Rate()
	if err != nil {
		return types.Buffer{}, probeResult, err
	}

	var pcmBuf bytes.Buffer

	if err = ffmpeg.ExtractMono(ctx, path, &pcmBuf, streamIndex); err != nil {
		return types.Buffer{}, probeResult, fmt.Errorf("extracting PCM: %w", err)
	}

	buf, err := PCM(&pcmBuf, types.PCMFormat{SampleRate: rate, BitDepth: ffmpeg.Depth, Channels: 1})
	if err != nil {
		return types.Buffer{}, probeResult, err
	}

	return buf, probeResult, nil
}
