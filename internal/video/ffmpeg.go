package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/jengzang/combined-routes/internal/models"
)

// FFmpegEncoderName is the registry name of the ffmpeg encoder
const FFmpegEncoderName = "ffmpeg"

// OutputFPS is the frame rate of the written video.
const OutputFPS = 2

// FFmpegEncoder pipes PNG frames into ffmpeg and writes an H.264 video.
type FFmpegEncoder struct {
	Binary string
}

// Args returns the ffmpeg arguments for the given frame duration and output.
func (e *FFmpegEncoder) Args(frameDuration time.Duration, output string) []string {
	inputRate := strconv.FormatFloat(1/frameDuration.Seconds(), 'f', -1, 64)
	return []string{
		"-y",
		"-loglevel", "error",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-framerate", inputRate,
		"-i", "-",
		"-c:v", "libx264",
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(OutputFPS),
		output,
	}
}

// Encode runs ffmpeg over the frames in order.
func (e *FFmpegEncoder) Encode(ctx context.Context, frames []models.Frame, frameDuration time.Duration, output string) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}
	if frameDuration <= 0 {
		return fmt.Errorf("invalid frame duration %v", frameDuration)
	}
	binary := e.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	var stdin bytes.Buffer
	for _, f := range frames {
		stdin.Write(f.PNG)
	}

	cmd := exec.CommandContext(ctx, binary, e.Args(frameDuration, output)...)
	cmd.Stdin = &stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg command failed: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

func init() {
	RegisterEncoder(FFmpegEncoderName, func() Encoder { return &FFmpegEncoder{} })
}
