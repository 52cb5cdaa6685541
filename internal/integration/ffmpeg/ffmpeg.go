// Package ffmpeg extracts audio from containers salvo cannot decode natively.
package ffmpeg

import (
	"time"

	"github.com/farcloser/salvo/internal/types"
)

// Depth is the sample width of extracted PCM.
const Depth = types.Depth32

const (
	name = "ffmpeg"
	// Long range sessions decode to several hundred megabytes of PCM.
	timeout = 5 * time.Minute
)
