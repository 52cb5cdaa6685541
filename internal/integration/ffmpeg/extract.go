package ffmpeg

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/farcloser/salvo/internal/integration/binary"
)

// ExtractMono writes one audio stream of the file at path to output as mono little-endian PCM of width Depth,
// at the stream's native sample rate. Video, subtitle and data streams are ignored.
// Channels are averaged by ffmpeg, which matches the mixdown of the native decoders.
func ExtractMono(ctx context.Context, path string, output io.Writer, streamIndex int) error {
	slog.Debug("ffmpeg.ExtractMono", "path", path, "stream index", streamIndex, "stage", "start")

	err := binary.Run(ctx, name, timeout, output, extractArgs(path, streamIndex)...)
	if err != nil {
		slog.Debug("ffmpeg.ExtractMono", "path", path, "stream index", streamIndex, "stage", "error", "error", err)

		return err
	}

	slog.Debug("ffmpeg.ExtractMono", "path", path, "stream index", streamIndex, "stage", "done")

	return nil
}

func extractArgs(path string, streamIndex int) []string {
	codec := "s" + strconv.Itoa(int(Depth)) + "le"

	return []string{
		"-nostdin",
		"-v", "error",
		"-i", path,
		"-map", "0:a:" + strconv.Itoa(streamIndex),
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-f", codec,
		"-acodec", "pcm_" + codec,
		"-",
	}
}
