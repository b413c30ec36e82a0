// Command combined-routes draws every GPX track in a directory onto one
// map, optionally with a video that adds the tracks in the order they
// were recorded.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jengzang/combined-routes/internal/config"
	"github.com/jengzang/combined-routes/internal/database"
	"github.com/jengzang/combined-routes/internal/loader"
	"github.com/jengzang/combined-routes/internal/logging"
	"github.com/jengzang/combined-routes/internal/pipeline"
	"github.com/jengzang/combined-routes/internal/render"
	"github.com/jengzang/combined-routes/internal/segmenter"
	"github.com/jengzang/combined-routes/internal/sequencer"
	"github.com/jengzang/combined-routes/internal/service"
	"github.com/jengzang/combined-routes/internal/timeline"
	"github.com/jengzang/combined-routes/internal/video"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("combined-routes", flag.ContinueOnError)
	fs.SetOutput(stderr)

	gpxDir := fs.String("gpx-dir", cfg.GPXDir, "directory containing the .gpx files")
	output := fs.String("output", pipeline.DefaultOutput, "map document to write")
	light := fs.Bool("light", false, "use the light map theme")
	withVideo := fs.Bool("video", false, "also write a video adding one track per frame")
	bounds := fs.String("bounds", "", "map bounds: a preset name or south,west,north,east")
	boundsFile := fs.String("bounds-file", cfg.PresetsFile, "YAML file with additional bounds presets")
	videoOutput := fs.String("video-output", video.DefaultOutput, "video file to write (.gif or anything ffmpeg supports)")
	threshold := fs.Float64("threshold", segmenter.DefaultThreshold, "coordinate distance that splits a track")
	minSegment := fs.Int("min-segment", segmenter.DefaultMinLength, "fewest points a drawn segment may have")
	noFilter := fs.Bool("no-filter", false, "draw every track as a single line")
	settle := fs.Duration("settle", cfg.SettleDelay, "time a frame gets to settle before capture (browser virtual time budget)")
	frameDuration := fs.Duration("frame-duration", timeline.DefaultFrameDuration, "how long each frame is shown")
	surface := fs.String("surface", pipeline.SurfaceRaster, "frame surface: raster or browser")
	browser := fs.String("browser", render.DefaultBrowser, "headless browser used by the browser surface")
	frameWidth := fs.Int("frame-width", render.DefaultFrameWidth, "frame width in pixels")
	frameHeight := fs.Int("frame-height", render.DefaultFrameHeight, "frame height in pixels")
	workers := fs.Int("workers", cfg.Workers, "files loaded in parallel")
	geojson := fs.String("geojson", "", "also write the drawn segments as GeoJSON")
	dbPath := fs.String("db", "", "record the run in this catalog database")
	reportPath := fs.String("report", "", "write an xlsx report of the run")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *gpxDir == "" {
		fmt.Fprintln(stderr, "--gpx-dir is required")
		fs.Usage()
		return 2
	}

	logger := logging.New(stderr, *verbose)

	opts := pipeline.Options{
		GPXDir:  *gpxDir,
		Output:  *output,
		GeoJSON: *geojson,
		Report:  *reportPath,
		Theme:   render.Dark,
		Segmenter: segmenter.Options{
			Filter:    !*noFilter,
			Threshold: *threshold,
			MinLength: *minSegment,
		},
		Video:         *withVideo,
		VideoOutput:   *videoOutput,
		FrameDuration: *frameDuration,
		SettleDelay:   *settle,
		Surface:       *surface,
		Browser:       *browser,
		FrameWidth:    *frameWidth,
		FrameHeight:   *frameHeight,
		Workers:       *workers,
	}
	if *light {
		opts.Theme = render.Light
	}

	if *bounds != "" {
		presets, err := config.LoadPresets(*boundsFile)
		if err != nil {
			logger.Printf("[Main] %v", err)
			return 1
		}
		b, name, err := presets.Resolve(*bounds)
		if err != nil {
			logger.Printf("[Main] %v", err)
			return 1
		}
		opts.Bounds = &b
		opts.BoundsPreset = name
	}

	deps := pipeline.Deps{Logger: logger}

	if *dbPath == "" && os.Getenv("DB_PATH") != "" {
		*dbPath = cfg.DBPath
	}
	if *dbPath != "" {
		db, err := database.Open(database.Config{Path: *dbPath, Logger: logger})
		if err != nil {
			logger.Printf("[Main] %v", err)
			return 1
		}
		defer db.Close()
		deps.Catalog = service.NewCatalogService(db)
	}

	var bar *progressbar.ProgressBar
	deps.Progress = func(done, total int, stats sequencer.TrackStats) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(stderr),
				progressbar.OptionSetDescription("Drawing tracks"),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(stderr) }),
			)
		}
		_ = bar.Add(1)
	}

	result, err := pipeline.Run(ctx, opts, deps)
	if err != nil {
		return fail(stderr, logger.Printf, err)
	}

	fmt.Fprintf(stdout, "Saved %s\n", opts.Output)
	if opts.GeoJSON != "" {
		fmt.Fprintf(stdout, "Saved %s\n", opts.GeoJSON)
	}
	if opts.Video {
		fmt.Fprintf(stdout, "Saved %s\n", result.Run.VideoPath)
	}
	if opts.Report != "" {
		fmt.Fprintf(stdout, "Saved %s\n", opts.Report)
	}
	if deps.Catalog != nil {
		fmt.Fprintf(stdout, "Recorded run %s\n", result.Run.ID)
	}
	return 0
}

func fail(stderr io.Writer, logf func(string, ...interface{}), err error) int {
	var noInput *loader.NoInputError
	var precondition *timeline.PreconditionError
	switch {
	case errors.As(err, &noInput):
		fmt.Fprintln(stderr, "No .gpx files found. Exiting")
	case errors.As(err, &precondition):
		fmt.Fprintf(stderr, "%v (use --bounds)\n", err)
	default:
		logf("[Main] %v", err)
	}
	return 1
}
