package timeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/render"
	"github.com/jengzang/combined-routes/internal/timeutil"
)

var stockholm = models.Bounds{
	SouthWest: models.Position{Lat: 59.303377, Lon: 18.030198},
	NorthEast: models.Position{Lat: 59.361293, Lon: 18.154801},
}

// fakeSurface records the calls made to it and snapshots a 1x1 image whose
// red channel is the number of lines on the last loaded canvas.
type fakeSurface struct {
	calls   []string
	lines   int
	loadErr error
}

func (s *fakeSurface) Load(_ context.Context, c *render.Canvas) error {
	s.calls = append(s.calls, "load")
	if s.loadErr != nil {
		return s.loadErr
	}
	s.lines = len(c.Lines())
	return nil
}

func (s *fakeSurface) Snapshot(context.Context) (image.Image, error) {
	s.calls = append(s.calls, "snapshot")
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: uint8(s.lines), A: 255})
	return img, nil
}

type settlingSurface struct {
	fakeSurface
}

func (s *settlingSurface) WaitSettled(context.Context) error {
	s.calls = append(s.calls, "settled")
	return nil
}

type fakeEncoder struct {
	frames   []models.Frame
	duration time.Duration
	output   string
	err      error
}

func (e *fakeEncoder) Encode(_ context.Context, frames []models.Frame, d time.Duration, out string) error {
	e.frames, e.duration, e.output = frames, d, out
	return e.err
}

func newTimeline(t *testing.T, surface Surface, enc Encoder, clock timeutil.Clock) *Timeline {
	t.Helper()
	b := stockholm
	tl, err := New(Config{Bounds: &b, Surface: surface, Encoder: enc, Output: "out.mp4", Clock: clock})
	require.NoError(t, err)
	return tl
}

func drawTrack(t *testing.T, c *render.Canvas, name string) {
	t.Helper()
	seg := models.Segment{Positions: []models.Position{{Lat: 59.33, Lon: 18.06}}}
	require.NoError(t, c.AddSegment(&models.Track{Name: name}, seg))
}

func TestNew_RequiresBounds(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Surface: &fakeSurface{}, Encoder: &fakeEncoder{}, Output: "x.mp4"})

	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ReasonNoBounds, pe.Reason)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	b := stockholm
	_, err := New(Config{Bounds: &b, Encoder: &fakeEncoder{}, Output: "x.mp4"})
	assert.Error(t, err)
	_, err = New(Config{Bounds: &b, Surface: &fakeSurface{}, Output: "x.mp4"})
	assert.Error(t, err)
	_, err = New(Config{Bounds: &b, Surface: &fakeSurface{}, Encoder: &fakeEncoder{}})
	assert.Error(t, err)
}

func TestTimeline_FullCycle(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	surface := &fakeSurface{}
	enc := &fakeEncoder{}
	tl := newTimeline(t, surface, enc, clock)
	c := render.NewCanvas(render.Dark)

	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, tl.BeginTrack(name))
		assert.Equal(t, RenderingTrack, tl.State())
		drawTrack(t, c, name)

		frame, err := tl.Capture(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, i, frame.Index)
		assert.Equal(t, name, frame.Track)
		assert.Equal(t, Idle, tl.State())

		img, err := png.Decode(bytes.NewReader(frame.PNG))
		require.NoError(t, err)
		r, _, _, _ := img.At(0, 0).RGBA()
		assert.Equal(t, uint32(i+1), r>>8, "frame shows the cumulative canvas")
	}

	// Settling used the fixed delay once per frame.
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, clock.Sleeps())
	assert.Equal(t, []string{"load", "snapshot", "load", "snapshot", "load", "snapshot"}, surface.calls)

	vp, ok := c.Viewport()
	require.True(t, ok)
	assert.Equal(t, stockholm, vp)

	require.NoError(t, tl.Assemble(context.Background()))
	assert.Equal(t, Done, tl.State())
	require.Len(t, enc.frames, 3)
	for i, f := range enc.frames {
		assert.Equal(t, i, f.Index)
	}
	assert.Equal(t, DefaultFrameDuration, enc.duration)
	assert.Equal(t, "out.mp4", enc.output)
}

func TestTimeline_UsesSurfaceSettler(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Time{})
	surface := &settlingSurface{}
	tl := newTimeline(t, surface, &fakeEncoder{}, clock)
	c := render.NewCanvas(render.Dark)

	require.NoError(t, tl.BeginTrack("a"))
	_, err := tl.Capture(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, []string{"load", "settled", "snapshot"}, surface.calls)
	assert.Empty(t, clock.Sleeps())
}

func TestNew_SettlerSelection(t *testing.T) {
	t.Parallel()

	t.Run("browser surface settles itself", func(t *testing.T) {
		t.Parallel()
		browser, err := render.NewBrowserSurface("", 0, 0)
		require.NoError(t, err)
		defer browser.Close()

		clock := timeutil.NewMockClock(time.Time{})
		tl := newTimeline(t, browser, &fakeEncoder{}, clock)
		assert.Same(t, browser, tl.settler)

		require.NoError(t, tl.settler.WaitSettled(context.Background()))
		assert.Empty(t, clock.Sleeps())
	})

	t.Run("raster surface settles itself", func(t *testing.T) {
		t.Parallel()
		raster := render.NewRasterizer(0, 0)
		tl := newTimeline(t, raster, &fakeEncoder{}, timeutil.NewMockClock(time.Time{}))
		assert.Same(t, raster, tl.settler)
	})

	t.Run("surface without settler waits the fixed delay", func(t *testing.T) {
		t.Parallel()
		tl := newTimeline(t, &fakeSurface{}, &fakeEncoder{}, timeutil.NewMockClock(time.Time{}))
		assert.IsType(t, FixedDelay{}, tl.settler)
	})
}

func TestTimeline_InvalidTransitions(t *testing.T) {
	t.Parallel()

	tl := newTimeline(t, &fakeSurface{}, &fakeEncoder{}, timeutil.NewMockClock(time.Time{}))
	c := render.NewCanvas(render.Dark)

	_, err := tl.Capture(context.Background(), c)
	assert.ErrorIs(t, err, ErrInvalidTransition, "capture before a track started")

	require.NoError(t, tl.BeginTrack("a"))
	assert.ErrorIs(t, tl.BeginTrack("b"), ErrInvalidTransition, "track started twice")
	assert.ErrorIs(t, tl.Assemble(context.Background()), ErrInvalidTransition, "assemble mid-track")

	_, err = tl.Capture(context.Background(), c)
	require.NoError(t, err)
	require.NoError(t, tl.Assemble(context.Background()))

	assert.ErrorIs(t, tl.BeginTrack("c"), ErrInvalidTransition, "done is terminal")
	assert.ErrorIs(t, tl.Assemble(context.Background()), ErrInvalidTransition)
}

func TestTimeline_AssembleWithoutFrames(t *testing.T) {
	t.Parallel()

	tl := newTimeline(t, &fakeSurface{}, &fakeEncoder{}, timeutil.NewMockClock(time.Time{}))
	assert.Error(t, tl.Assemble(context.Background()))
}

func TestTimeline_SurfaceFailureAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tl := newTimeline(t, &fakeSurface{loadErr: boom}, &fakeEncoder{}, timeutil.NewMockClock(time.Time{}))

	require.NoError(t, tl.BeginTrack("a"))
	_, err := tl.Capture(context.Background(), render.NewCanvas(render.Dark))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, tl.Frames())
}

func TestTimeline_EncoderFailureIsSurfaced(t *testing.T) {
	t.Parallel()

	boom := errors.New("encoder failed")
	tl := newTimeline(t, &fakeSurface{}, &fakeEncoder{err: boom}, timeutil.NewMockClock(time.Time{}))

	require.NoError(t, tl.BeginTrack("a"))
	_, err := tl.Capture(context.Background(), render.NewCanvas(render.Dark))
	require.NoError(t, err)

	assert.ErrorIs(t, tl.Assemble(context.Background()), boom)
	assert.Equal(t, Assembling, tl.State())
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "capturing_frame", CapturingFrame.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func TestCanvasCapture(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	tl := newTimeline(t, surface, &fakeEncoder{}, timeutil.NewMockClock(time.Now()))
	c := render.NewCanvas(render.Dark)
	capture := tl.On(c)

	require.NoError(t, capture.BeginTrack("only"))
	drawTrack(t, c, "only")
	frame, err := capture.CaptureFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, frame.Index)
	assert.Equal(t, 1, surface.lines)
	assert.True(t, c.Pinned())
}
