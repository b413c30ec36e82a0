package render

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/jengzang/combined-routes/internal/models"
)

// Default raster size, 720p.
const (
	DefaultFrameWidth  = 1280
	DefaultFrameHeight = 720
)

// Rasterizer draws a canvas into an image without tiles, projecting the
// viewport equirectangularly with longitude scaled by the cosine of the
// viewport's middle latitude. As a frame surface it keeps the last
// loaded image until the next Load.
type Rasterizer struct {
	Width   int
	Height  int
	Padding float64 // pixels kept free around the viewport

	last image.Image
}

// ErrNothingLoaded is returned by Snapshot before the first Load.
var ErrNothingLoaded = errors.New("no canvas loaded")

// NewRasterizer creates a rasterizer producing width x height images.
func NewRasterizer(width, height int) *Rasterizer {
	if width <= 0 {
		width = DefaultFrameWidth
	}
	if height <= 0 {
		height = DefaultFrameHeight
	}
	return &Rasterizer{Width: width, Height: height, Padding: 16}
}

// Load draws the canvas and keeps the image for Snapshot.
func (r *Rasterizer) Load(ctx context.Context, c *Canvas) error {
	img, err := r.Render(ctx, c)
	if err != nil {
		return err
	}
	r.last = img
	return nil
}

// Snapshot returns the image drawn by the last Load.
func (r *Rasterizer) Snapshot(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.last == nil {
		return nil, ErrNothingLoaded
	}
	return r.last, nil
}

// Render draws the canvas into a new image.
func (r *Rasterizer) Render(ctx context.Context, c *Canvas) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetHexColor(c.Theme().Background)
	dc.Clear()

	vp, ok := c.Viewport()
	if !ok {
		return dc.Image(), nil
	}
	proj := newProjection(vp, float64(r.Width), float64(r.Height), r.Padding)

	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, l := range c.Lines() {
		dc.SetHexColor(l.Color)
		dc.SetLineWidth(l.Weight)
		for i, p := range l.Positions {
			x, y := proj.point(p)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		if len(l.Positions) == 1 {
			x, y := proj.point(l.Positions[0])
			dc.DrawPoint(x, y, l.Weight/2)
			dc.Fill()
			continue
		}
		dc.Stroke()
	}
	return dc.Image(), nil
}

// WaitSettled returns immediately; the raster is complete once Load
// returns.
func (r *Rasterizer) WaitSettled(ctx context.Context) error {
	return ctx.Err()
}

type projection struct {
	sw         models.Position
	kx         float64
	scale      float64
	offX, offY float64
	height     float64
}

func newProjection(vp models.Bounds, width, height, pad float64) projection {
	midLat := (vp.SouthWest.Lat + vp.NorthEast.Lat) / 2
	kx := math.Cos(midLat * math.Pi / 180)

	spanX := (vp.NorthEast.Lon - vp.SouthWest.Lon) * kx
	spanY := vp.NorthEast.Lat - vp.SouthWest.Lat
	availX := math.Max(width-2*pad, 1)
	availY := math.Max(height-2*pad, 1)

	var scale float64
	switch {
	case spanX > 0 && spanY > 0:
		scale = math.Min(availX/spanX, availY/spanY)
	case spanX > 0:
		scale = availX / spanX
	case spanY > 0:
		scale = availY / spanY
	default:
		scale = 1
	}

	return projection{
		sw:     vp.SouthWest,
		kx:     kx,
		scale:  scale,
		offX:   (width - math.Max(spanX, 0)*scale) / 2,
		offY:   (height - math.Max(spanY, 0)*scale) / 2,
		height: height,
	}
}

func (p projection) point(pos models.Position) (float64, float64) {
	x := p.offX + (pos.Lon-p.sw.Lon)*p.kx*p.scale
	y := p.height - (p.offY + (pos.Lat-p.sw.Lat)*p.scale)
	return x, y
}
