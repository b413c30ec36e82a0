// Package pipeline runs one render: load the tracks, draw them in
// chronological order, write the map and optionally the video, catalog
// entry and report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/combined-routes/internal/loader"
	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/render"
	"github.com/jengzang/combined-routes/internal/report"
	"github.com/jengzang/combined-routes/internal/segmenter"
	"github.com/jengzang/combined-routes/internal/sequencer"
	"github.com/jengzang/combined-routes/internal/service"
	"github.com/jengzang/combined-routes/internal/timeline"
	"github.com/jengzang/combined-routes/internal/timeutil"
	"github.com/jengzang/combined-routes/internal/video"
)

// Frame surfaces
const (
	SurfaceRaster  = "raster"
	SurfaceBrowser = "browser"
)

// DefaultOutput is the map document written when none is configured
const DefaultOutput = "combined-routes.html"

// Options describes one render
type Options struct {
	GPXDir  string
	Output  string
	GeoJSON string
	Report  string

	Theme     render.Theme
	Segmenter segmenter.Options

	// Bounds pins the map viewport. Required for video.
	Bounds       *models.Bounds
	BoundsPreset string

	Video         bool
	VideoOutput   string
	FrameDuration time.Duration
	SettleDelay   time.Duration
	Surface       string // raster or browser
	Browser       string
	FrameWidth    int
	FrameHeight   int

	Workers int
}

// Deps are the collaborators of a render. Everything is optional.
type Deps struct {
	// Catalog records the run when set.
	Catalog *service.CatalogService
	// Encoder overrides the encoder picked from the video file extension.
	Encoder timeline.Encoder
	// Surface overrides the surface named in Options.
	Surface  timeline.Surface
	Progress sequencer.ProgressFunc
	Clock    timeutil.Clock
	Logger   *log.Logger
}

// Result of a render
type Result struct {
	Run     models.RunRecord
	Tracks  []models.TrackRecord
	Summary sequencer.Summary
}

// Run performs the render described by opts
func Run(ctx context.Context, opts Options, deps Deps) (*Result, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	clock := deps.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if opts.Theme.Name == "" {
		opts.Theme = render.Dark
	}

	if err := opts.Segmenter.Validate(); err != nil {
		return nil, err
	}
	if opts.Video && opts.Bounds == nil {
		return nil, &timeline.PreconditionError{Reason: timeline.ReasonNoBounds}
	}

	paths, err := loader.Discover(opts.GPXDir)
	if err != nil {
		return nil, err
	}
	logger.Printf("[Pipeline] Found %d track files in %s", len(paths), opts.GPXDir)

	tracks, err := loader.LoadAll(ctx, paths, opts.Workers, logger)
	if err != nil {
		return nil, err
	}

	canvas := render.NewCanvas(opts.Theme)

	var tl *timeline.Timeline
	var frames sequencer.FrameCapturer
	if opts.Video {
		surface, closeSurface, err := newSurface(opts, deps)
		if err != nil {
			return nil, err
		}
		defer closeSurface()

		if opts.VideoOutput == "" {
			opts.VideoOutput = video.DefaultOutput
		}
		encoder := deps.Encoder
		if encoder == nil {
			if encoder, err = video.EncoderFor(opts.VideoOutput); err != nil {
				return nil, err
			}
		}

		tl, err = timeline.New(timeline.Config{
			Bounds:        opts.Bounds,
			Surface:       surface,
			SettleDelay:   opts.SettleDelay,
			Encoder:       encoder,
			Output:        opts.VideoOutput,
			FrameDuration: opts.FrameDuration,
			Clock:         clock,
			Logger:        logger,
		})
		if err != nil {
			return nil, err
		}
		frames = tl.On(canvas)
	}

	seq, err := sequencer.New(sequencer.Config{
		Options:  opts.Segmenter,
		Sink:     canvas,
		Frames:   frames,
		Progress: deps.Progress,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	summary, err := seq.Run(ctx, tracks)
	if err != nil {
		return nil, err
	}

	if opts.Bounds != nil {
		canvas.FitBounds(*opts.Bounds)
	}
	if canvas.Pinned() {
		if n := canvas.Outside(); n > 0 {
			logger.Printf("[Pipeline] %d of %d points fall outside the pinned bounds", n, canvas.Points())
		}
	}

	if err := writeFile(opts.Output, func(w io.Writer) error {
		return render.WriteHTML(w, canvas, render.HTMLOptions{})
	}); err != nil {
		return nil, err
	}
	logger.Printf("[Pipeline] Saved %s", opts.Output)

	if opts.GeoJSON != "" {
		if err := writeFile(opts.GeoJSON, func(w io.Writer) error {
			return render.WriteGeoJSON(w, canvas)
		}); err != nil {
			return nil, err
		}
		logger.Printf("[Pipeline] Saved %s", opts.GeoJSON)
	}

	if tl != nil {
		if err := tl.Assemble(ctx); err != nil {
			return nil, err
		}
		logger.Printf("[Pipeline] Saved %s", opts.VideoOutput)
	}

	result := &Result{Summary: summary}
	result.Run, result.Tracks = records(opts, canvas, summary, clock.Now())

	if deps.Catalog != nil {
		stored, err := deps.Catalog.RecordRun(result.Run, result.Tracks)
		if err != nil {
			return nil, err
		}
		result.Run = *stored
		for i := range result.Tracks {
			result.Tracks[i].RunID = stored.ID
		}
		logger.Printf("[Pipeline] Recorded run %s", stored.ID)
	}

	if opts.Report != "" {
		if err := writeFile(opts.Report, func(w io.Writer) error {
			return report.Write(w, result.Run, result.Tracks)
		}); err != nil {
			return nil, err
		}
		logger.Printf("[Pipeline] Saved %s", opts.Report)
	}

	return result, nil
}

func newSurface(opts Options, deps Deps) (timeline.Surface, func(), error) {
	if deps.Surface != nil {
		return deps.Surface, func() {}, nil
	}
	switch opts.Surface {
	case "", SurfaceRaster:
		return render.NewRasterizer(opts.FrameWidth, opts.FrameHeight), func() {}, nil
	case SurfaceBrowser:
		b, err := render.NewBrowserSurface(opts.Browser, opts.FrameWidth, opts.FrameHeight)
		if err != nil {
			return nil, nil, err
		}
		if opts.SettleDelay > 0 {
			b.Budget = opts.SettleDelay
		}
		return b, func() { b.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown frame surface %q", opts.Surface)
	}
}

func records(opts Options, canvas *render.Canvas, summary sequencer.Summary, now time.Time) (models.RunRecord, []models.TrackRecord) {
	run := models.RunRecord{
		ID:           uuid.NewString(),
		InputDir:     opts.GPXDir,
		MapPath:      opts.Output,
		TrackCount:   summary.TracksDrawn,
		SegmentCount: summary.SegmentsDrawn,
		PointCount:   summary.PointsDrawn,
		FrameCount:   summary.FramesCaptured,
		Filter:       opts.Segmenter.Filter,
		Threshold:    opts.Segmenter.Threshold,
		MinLength:    opts.Segmenter.MinLength,
		BoundsPreset: opts.BoundsPreset,
		Theme:        opts.Theme.Name,
		CreatedAt:    now,
	}
	if opts.Video {
		run.VideoPath = opts.VideoOutput
	}
	if vp, ok := canvas.Viewport(); ok {
		run.South, run.West = vp.SouthWest.Lat, vp.SouthWest.Lon
		run.North, run.East = vp.NorthEast.Lat, vp.NorthEast.Lon
	}

	tracks := make([]models.TrackRecord, len(summary.Tracks))
	for i, s := range summary.Tracks {
		tracks[i] = models.TrackRecord{
			RunID:        run.ID,
			DrawOrder:    s.Order,
			Name:         s.Name,
			Path:         s.Path,
			StartTime:    s.StartTime,
			Points:       s.Points,
			Segments:     s.Segments,
			KeptPoints:   s.KeptPoints,
			LengthMeters: s.LengthMeters,
			FrameIndex:   s.FrameIndex,
		}
	}
	return run, tracks
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
