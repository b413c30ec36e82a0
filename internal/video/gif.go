package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"time"

	"github.com/jengzang/combined-routes/internal/models"
)

// GIFEncoderName is the registry name of the GIF encoder
const GIFEncoderName = "gif"

// GIFEncoder writes an animated GIF, dithering each frame to the Plan9
// palette.
type GIFEncoder struct{}

// Build converts the frames into an animation.
func (GIFEncoder) Build(ctx context.Context, frames []models.Frame, frameDuration time.Duration) (*gif.GIF, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to encode")
	}
	delay := int(frameDuration / (10 * time.Millisecond))
	if delay <= 0 {
		return nil, fmt.Errorf("invalid frame duration %v", frameDuration)
	}

	anim := &gif.GIF{}
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := png.Decode(bytes.NewReader(f.PNG))
		if err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", f.Index, err)
		}
		pimg := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), img, img.Bounds().Min)
		anim.Image = append(anim.Image, pimg)
		anim.Delay = append(anim.Delay, delay)
	}
	return anim, nil
}

// Encode writes the animation to output.
func (e GIFEncoder) Encode(ctx context.Context, frames []models.Frame, frameDuration time.Duration, output string) error {
	anim, err := e.Build(ctx, frames, frameDuration)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return f.Close()
}

func init() {
	RegisterEncoder(GIFEncoderName, func() Encoder { return GIFEncoder{} })
}
