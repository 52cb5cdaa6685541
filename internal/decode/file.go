package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/farcloser/salvo/internal/types"
)

// ErrUnsupportedContainer is returned for extensions without a native decoder. Such files go through ffmpeg.
var ErrUnsupportedContainer = errors.New("no native decoder")

// Native reports whether path has an extension decodable without ffmpeg.
func Native(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave", ".flac":
		return true
	default:
		return false
	}
}

// File decodes a WAV or FLAC file, chosen by extension.
func File(path string) (types.Buffer, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return types.Buffer{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return WAV(file)
	case ".flac":
		return FLAC(file)
	default:
		return types.Buffer{}, fmt.Errorf("%w: %s", ErrUnsupportedContainer, filepath.Ext(path))
	}
}
