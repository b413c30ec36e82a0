// Package sequencer draws tracks in chronological order, segmenting each
// one and capturing a video frame after every track when asked to.
package sequencer

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/segmenter"
	"github.com/jengzang/combined-routes/internal/spatial"
)

// RenderSink receives segments in draw order.
type RenderSink interface {
	AddSegment(track *models.Track, seg models.Segment) error
}

// FrameCapturer captures one frame per drawn track.
type FrameCapturer interface {
	BeginTrack(name string) error
	CaptureFrame(ctx context.Context) (models.Frame, error)
}

// TrackStats describes one drawn track.
type TrackStats struct {
	Order        int
	Name         string
	Path         string
	StartTime    time.Time
	Points       int
	Segments     int
	KeptPoints   int
	LengthMeters float64 // haversine length of the kept segments
	FrameIndex   *int
}

// Summary of a run
type Summary struct {
	TracksDrawn    int
	SegmentsDrawn  int
	PointsDrawn    int
	FramesCaptured int
	Tracks         []TrackStats
}

// ProgressFunc is called after each track is drawn.
type ProgressFunc func(done, total int, stats TrackStats)

// Config configures a Sequencer
type Config struct {
	Options segmenter.Options
	Sink    RenderSink
	// Frames is nil when no video is requested.
	Frames   FrameCapturer
	Progress ProgressFunc
	Logger   *log.Logger
}

// Sequencer drives segmentation, drawing and frame capture. Calls into the
// sink and the frame capturer are made from the goroutine running Run.
type Sequencer struct {
	options  segmenter.Options
	sink     RenderSink
	frames   FrameCapturer
	progress ProgressFunc
	logger   *log.Logger
}

// New creates a sequencer
func New(cfg Config) (*Sequencer, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sequencer needs a render sink")
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sequencer{
		options:  cfg.Options,
		sink:     cfg.Sink,
		frames:   cfg.Frames,
		progress: cfg.Progress,
		logger:   logger,
	}, nil
}

// Order returns the tracks sorted by start time. Tracks starting at the
// same instant keep their input order. The input slice is not modified.
func Order(tracks []models.Track) []models.Track {
	ordered := make([]models.Track, len(tracks))
	copy(ordered, tracks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})
	return ordered
}

// Run draws the tracks oldest first. Every segment of a track reaches the
// sink before that track's frame is captured, and a track that yields no
// segments still gets its frame. The first failure stops the run.
func (s *Sequencer) Run(ctx context.Context, tracks []models.Track) (Summary, error) {
	ordered := Order(tracks)
	summary := Summary{Tracks: make([]TrackStats, 0, len(ordered))}

	for order := range ordered {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		track := &ordered[order]

		stats, err := s.draw(ctx, order, track)
		if err != nil {
			return summary, err
		}

		summary.TracksDrawn++
		summary.SegmentsDrawn += stats.Segments
		summary.PointsDrawn += stats.KeptPoints
		if stats.FrameIndex != nil {
			summary.FramesCaptured++
		}
		summary.Tracks = append(summary.Tracks, stats)

		if s.progress != nil {
			s.progress(order+1, len(ordered), stats)
		}
	}
	return summary, nil
}

func (s *Sequencer) draw(ctx context.Context, order int, track *models.Track) (TrackStats, error) {
	stats := TrackStats{
		Order:     order,
		Name:      track.Name,
		Path:      track.Path,
		StartTime: track.StartTime,
		Points:    track.Len(),
	}

	if s.frames != nil {
		if err := s.frames.BeginTrack(track.Name); err != nil {
			return stats, err
		}
	}

	segments := s.options.Apply(track.Positions)
	s.logger.Printf("[Sequencer] Adding %s (%s, %d segments)", track.Name, track.StartTime.Format(time.RFC3339), len(segments))

	for _, seg := range segments {
		seg.Track = order
		if err := s.sink.AddSegment(track, seg); err != nil {
			return stats, fmt.Errorf("failed to draw %s: %w", track.Name, err)
		}
		stats.Segments++
		stats.KeptPoints += seg.Len()
		stats.LengthMeters += spatial.PathLength(seg.Positions)
	}

	if s.frames != nil {
		frame, err := s.frames.CaptureFrame(ctx)
		if err != nil {
			return stats, err
		}
		index := frame.Index
		stats.FrameIndex = &index
	}
	return stats, nil
}
