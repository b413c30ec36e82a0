// Package timeline captures one frame per drawn track and assembles the
// frames into a fixed-rate video once every track has been drawn.
package timeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"sort"
	"time"

	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/render"
	"github.com/jengzang/combined-routes/internal/timeutil"
)

// Defaults
const (
	DefaultFrameDuration = time.Second
	DefaultSettleDelay   = time.Second
)

// State of the timeline
type State int

// Timeline states
const (
	Idle State = iota
	RenderingTrack
	CapturingFrame
	Assembling
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RenderingTrack:
		return "rendering_track"
	case CapturingFrame:
		return "capturing_frame"
	case Assembling:
		return "assembling"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when an operation is called in a state
// that does not allow it.
var ErrInvalidTransition = errors.New("invalid timeline transition")

// PreconditionError reports a video request that cannot be honoured.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// ReasonNoBounds is the reason used when video is requested without a fixed
// viewport.
const ReasonNoBounds = "video output needs explicit map bounds"

// Surface is a rendering target frames are captured from.
type Surface interface {
	// Load puts the canvas onto the surface.
	Load(ctx context.Context, c *render.Canvas) error
	// Snapshot captures what the surface currently shows.
	Snapshot(ctx context.Context) (image.Image, error)
}

// Settler is implemented by surfaces that can report when what they show
// has become stable.
type Settler interface {
	WaitSettled(ctx context.Context) error
}

// FixedDelay settles by waiting a fixed duration.
type FixedDelay struct {
	Delay time.Duration
	Clock timeutil.Clock
}

// WaitSettled sleeps for the configured delay.
func (d FixedDelay) WaitSettled(ctx context.Context) error {
	clock := d.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return clock.Sleep(ctx, d.Delay)
}

// Encoder turns ordered frames into a video file.
type Encoder interface {
	Encode(ctx context.Context, frames []models.Frame, frameDuration time.Duration, output string) error
}

// Config configures a Timeline
type Config struct {
	// Bounds pins the viewport for every frame. Required.
	Bounds *models.Bounds

	Surface Surface
	// Settler overrides how the timeline waits before a snapshot. When nil,
	// the surface's own Settler is used if it has one, otherwise a
	// FixedDelay of SettleDelay.
	Settler     Settler
	SettleDelay time.Duration

	Encoder       Encoder
	Output        string
	FrameDuration time.Duration

	Clock  timeutil.Clock
	Logger *log.Logger
}

// Timeline is the frame capture state machine. It is driven from a single
// goroutine and is not safe for concurrent use.
type Timeline struct {
	bounds        models.Bounds
	surface       Surface
	settler       Settler
	encoder       Encoder
	output        string
	frameDuration time.Duration
	clock         timeutil.Clock
	logger        *log.Logger

	state  State
	track  string
	frames []models.Frame
}

// New validates cfg and returns a timeline in the Idle state.
func New(cfg Config) (*Timeline, error) {
	if cfg.Bounds == nil {
		return nil, &PreconditionError{Reason: ReasonNoBounds}
	}
	if cfg.Surface == nil {
		return nil, errors.New("timeline needs a surface")
	}
	if cfg.Encoder == nil {
		return nil, errors.New("timeline needs an encoder")
	}
	if cfg.Output == "" {
		return nil, errors.New("timeline needs a video output path")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	frameDuration := cfg.FrameDuration
	if frameDuration <= 0 {
		frameDuration = DefaultFrameDuration
	}

	settler := cfg.Settler
	if settler == nil {
		if s, ok := cfg.Surface.(Settler); ok {
			settler = s
		} else {
			delay := cfg.SettleDelay
			if delay <= 0 {
				delay = DefaultSettleDelay
			}
			settler = FixedDelay{Delay: delay, Clock: clock}
		}
	}

	return &Timeline{
		bounds:        *cfg.Bounds,
		surface:       cfg.Surface,
		settler:       settler,
		encoder:       cfg.Encoder,
		output:        cfg.Output,
		frameDuration: frameDuration,
		clock:         clock,
		logger:        logger,
		state:         Idle,
	}, nil
}

// State returns the current state.
func (t *Timeline) State() State {
	return t.state
}

// Bounds returns the pinned viewport.
func (t *Timeline) Bounds() models.Bounds {
	return t.bounds
}

// Frames returns the frames captured so far, in index order.
func (t *Timeline) Frames() []models.Frame {
	return t.frames
}

// Output returns the video path.
func (t *Timeline) Output() string {
	return t.output
}

func (t *Timeline) transition(from, to State) error {
	if t.state != from {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, from, to, t.state)
	}
	t.state = to
	return nil
}

// BeginTrack marks the start of drawing the named track.
func (t *Timeline) BeginTrack(name string) error {
	if err := t.transition(Idle, RenderingTrack); err != nil {
		return err
	}
	t.track = name
	return nil
}

// Capture snapshots the canvas after the current track's segments have all
// been drawn. The canvas viewport is pinned to the timeline bounds first.
func (t *Timeline) Capture(ctx context.Context, c *render.Canvas) (models.Frame, error) {
	if err := t.transition(RenderingTrack, CapturingFrame); err != nil {
		return models.Frame{}, err
	}

	index := len(t.frames)
	t.logger.Printf("[Timeline] Adding video frame %d (%s)", index, t.track)

	c.FitBounds(t.bounds)
	if err := t.surface.Load(ctx, c); err != nil {
		return models.Frame{}, fmt.Errorf("failed to load frame %d: %w", index, err)
	}
	if err := t.settler.WaitSettled(ctx); err != nil {
		return models.Frame{}, fmt.Errorf("failed waiting for frame %d to settle: %w", index, err)
	}
	img, err := t.surface.Snapshot(ctx)
	if err != nil {
		return models.Frame{}, fmt.Errorf("failed to capture frame %d: %w", index, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return models.Frame{}, fmt.Errorf("failed to encode frame %d: %w", index, err)
	}

	frame := models.Frame{
		Index:      index,
		Track:      t.track,
		PNG:        buf.Bytes(),
		CapturedAt: t.clock.Now(),
	}
	t.frames = append(t.frames, frame)
	t.track = ""
	t.state = Idle
	return frame, nil
}

// Assemble encodes every captured frame, in index order and each for the
// same duration, into the output video.
func (t *Timeline) Assemble(ctx context.Context) error {
	if err := t.transition(Idle, Assembling); err != nil {
		return err
	}

	frames := make([]models.Frame, len(t.frames))
	copy(frames, t.frames)
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	for i, f := range frames {
		if f.Index != i {
			return fmt.Errorf("frame sequence has a gap at index %d", i)
		}
	}
	if len(frames) == 0 {
		return errors.New("no frames captured")
	}

	t.logger.Printf("[Timeline] Writing %d frames to %s", len(frames), t.output)
	if err := t.encoder.Encode(ctx, frames, t.frameDuration, t.output); err != nil {
		return fmt.Errorf("failed to write video %s: %w", t.output, err)
	}

	t.state = Done
	return nil
}

// CanvasCapture binds a timeline to the canvas its frames are taken from.
type CanvasCapture struct {
	*Timeline
	Canvas *render.Canvas
}

// On returns the timeline bound to c.
func (t *Timeline) On(c *render.Canvas) CanvasCapture {
	return CanvasCapture{Timeline: t, Canvas: c}
}

// CaptureFrame captures the bound canvas.
func (cc CanvasCapture) CaptureFrame(ctx context.Context) (models.Frame, error) {
	return cc.Capture(ctx, cc.Canvas)
}
