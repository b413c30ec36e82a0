// Package video assembles captured frames into a video file.
package video

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jengzang/combined-routes/internal/models"
)

// DefaultOutput is the video file written when none is configured.
const DefaultOutput = "combined-routes.mp4"

// Encoder writes ordered frames to a video file, showing each frame for
// frameDuration.
type Encoder interface {
	Encode(ctx context.Context, frames []models.Frame, frameDuration time.Duration, output string) error
}

// EncoderFactory creates an encoder instance
type EncoderFactory func() Encoder

// EncoderRegistry maps encoder names to factories
var EncoderRegistry = make(map[string]EncoderFactory)

// RegisterEncoder registers an encoder factory under a name
func RegisterEncoder(name string, factory EncoderFactory) {
	EncoderRegistry[name] = factory
}

// GetEncoder returns a new encoder registered under name
func GetEncoder(name string) (Encoder, error) {
	factory, ok := EncoderRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown video encoder %q (have %s)", name, strings.Join(EncoderNames(), ", "))
	}
	return factory(), nil
}

// EncoderNames lists the registered encoder names
func EncoderNames() []string {
	names := make([]string, 0, len(EncoderRegistry))
	for name := range EncoderRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EncoderFor picks the encoder matching the output file's extension:
// .gif is written natively, everything else goes through ffmpeg.
func EncoderFor(output string) (Encoder, error) {
	if strings.EqualFold(filepath.Ext(output), ".gif") {
		return GetEncoder(GIFEncoderName)
	}
	return GetEncoder(FFmpegEncoderName)
}
