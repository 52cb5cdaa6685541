//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/salvo/internal/integration/binary"
)

var (
	errNoAudioStream     = errors.New("audio stream not found")
	errInvalidSampleRate = errors.New("invalid sample rate")
)

// Result holds the audio streams and container format of a probed file.
// Only audio streams are listed, so Streams[n] is audio stream n.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one audio stream.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`            // aac, opus, pcm_s16le
	SampleRate string `json:"sample_rate,omitempty"` // 48000
	Channels   int    `json:"channels,omitempty"`
	Duration   string `json:"duration,omitempty"`
}

// Format is the container.
type Format struct {
	Filename   string            `json:"filename,omitempty"`
	FormatName string            `json:"format_name"` // "mov,mp4,m4a,3gp,3g2,mj2" for phone video
	Duration   string            `json:"duration,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"` // creation_time, encoder, device model
}

// AudioStream returns the nth (0-based) audio stream.
func (r *Result) AudioStream(nth int) (*Stream, error) {
	if nth < 0 || nth >= len(r.Streams) {
		return nil, fmt.Errorf("%w: index %d (file has %d audio streams)", errNoAudioStream, nth, len(r.Streams))
	}

	return &r.Streams[nth], nil
}

// Rate parses the stream sample rate.
func (s *Stream) Rate() (int, error) {
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidSampleRate, s.SampleRate)
	}

	return rate, nil
}

// Anonymized returns a copy without the file path and capture location.
func (r *Result) Anonymized() *Result {
	out := *r
	out.Streams = append([]Stream(nil), r.Streams...)
	out.Format.Filename = ""

	if len(r.Format.Tags) > 0 {
		out.Format.Tags = make(map[string]string, len(r.Format.Tags))
		for key, value := range r.Format.Tags {
			out.Format.Tags[key] = value
		}

		for _, key := range locationTags {
			delete(out.Format.Tags, key)
		}
	}

	return &out
}

// Probe runs ffprobe on filePath.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	var output bytes.Buffer

	err := binary.Run(ctx, name, timeout, &output,
		"-v", "quiet",
		"-print_format", "json",
		"-select_streams", "a",
		"-show_format",
		"-show_streams",
		filePath,
	)
	if err != nil {
		return nil, err
	}

	var result Result
	if err = json.Unmarshal(output.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}
