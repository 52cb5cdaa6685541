// Package ffprobe reads stream metadata from media containers.
package ffprobe

import "time"

const (
	name = "ffprobe"
	// Network mounts and sleeping drives need a generous margin; probing itself takes milliseconds.
	timeout = 45 * time.Second
)

// Container tags that carry capture location. Phones and action cameras write them into video files.
var locationTags = []string{
	"location",
	"location-eng",
	"com.apple.quicktime.location.ISO6709",
}
