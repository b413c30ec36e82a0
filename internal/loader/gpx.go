// Package loader discovers GPX files and turns them into tracks.
package loader

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/combined-routes/internal/models"
)

// Extension of the track files picked up from the input directory
const Extension = ".gpx"

// Discover lists the track files directly inside dir, sorted by name.
// Subdirectories are not searched.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, &NoInputError{Dir: dir}
	}
	return paths, nil
}

// LoadFile reads one GPX file. The start time comes from the file
// metadata; positions are every track point of every track segment, in
// file order.
func LoadFile(path string) (models.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Track{}, &LoadError{Path: path, Reason: "unreadable", Err: err}
	}
	return Parse(path, data)
}

// Parse builds a track from GPX content. path is only used for naming and
// error reporting.
func Parse(path string, data []byte) (models.Track, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return models.Track{}, &LoadError{Path: path, Reason: "malformed gpx", Err: err}
	}
	if doc.Time == nil || doc.Time.IsZero() {
		return models.Track{}, &LoadError{Path: path, Reason: "no start time in metadata"}
	}

	var positions []models.Position
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				positions = append(positions, models.Position{Lat: p.Latitude, Lon: p.Longitude})
			}
		}
	}
	if len(positions) == 0 {
		return models.Track{}, &LoadError{Path: path, Reason: "no track points"}
	}

	return models.Track{
		Name:      filepath.Base(path),
		Path:      path,
		StartTime: doc.Time.UTC(),
		Positions: positions,
	}, nil
}

// LoadAll loads the files concurrently, at most workers at a time, and
// returns the tracks in the order of paths. The first failure cancels the
// remaining loads and is returned.
func LoadAll(ctx context.Context, paths []string, workers int, logger *log.Logger) ([]models.Track, error) {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	tracks := make([]models.Track, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			logger.Printf("[Loader] Loading %s", path)
			track, err := LoadFile(path)
			if err != nil {
				return err
			}
			tracks[i] = track
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tracks, nil
}
