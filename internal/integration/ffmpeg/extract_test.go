package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractArgs(t *testing.T) {
	t.Parallel()

	args := extractArgs("/tmp/clip.mov", 2)

	assert.Subset(t, args, []string{"0:a:2", "s32le", "pcm_s32le", "/tmp/clip.mov", "-vn"})
	assert.Equal(t, "-", args[len(args)-1])
}
