package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultBrowser is the headless browser binary used for screenshots.
const DefaultBrowser = "chromium"

// BrowserSurface renders the map document in a headless browser and
// screenshots it, so frames include the basemap tiles. Tiles load inside
// the browser process that Snapshot starts, so settling happens there: the
// page gets Budget of virtual time before the screenshot is taken.
type BrowserSurface struct {
	Binary string
	Width  int
	Height int
	// Budget is the virtual time the browser is given to load the page.
	Budget time.Duration

	dir    string
	page   string
	loaded bool
}

// NewBrowserSurface creates a surface writing its pages into a fresh
// temporary directory. Close removes it.
func NewBrowserSurface(binary string, width, height int) (*BrowserSurface, error) {
	if binary == "" {
		binary = DefaultBrowser
	}
	if width <= 0 {
		width = DefaultFrameWidth
	}
	if height <= 0 {
		height = DefaultFrameHeight
	}

	dir, err := os.MkdirTemp("", "combined-routes-frames-")
	if err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	return &BrowserSurface{
		Binary: binary,
		Width:  width,
		Height: height,
		Budget: 5 * time.Second,
		dir:    dir,
		page:   filepath.Join(dir, "frame.html"),
	}, nil
}

// Load writes the canvas as a static map document.
func (b *BrowserSurface) Load(ctx context.Context, c *Canvas) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := WriteHTML(&buf, c, HTMLOptions{Static: true}); err != nil {
		return err
	}
	if err := os.WriteFile(b.page, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write frame page: %w", err)
	}
	b.loaded = true
	return nil
}

// WaitSettled returns immediately. The page settles within the virtual
// time budget of the browser run in Snapshot, so no wall-clock wait
// between Load and Snapshot helps.
func (b *BrowserSurface) WaitSettled(ctx context.Context) error {
	return ctx.Err()
}

// Snapshot screenshots the last loaded page.
func (b *BrowserSurface) Snapshot(ctx context.Context) (image.Image, error) {
	if !b.loaded {
		return nil, ErrNothingLoaded
	}

	shot := filepath.Join(b.dir, "frame.png")
	cmd := exec.CommandContext(ctx, b.Binary,
		"--headless",
		"--disable-gpu",
		"--hide-scrollbars",
		fmt.Sprintf("--window-size=%d,%d", b.Width, b.Height),
		fmt.Sprintf("--virtual-time-budget=%d", b.Budget.Milliseconds()),
		"--screenshot="+shot,
		"file://"+b.page,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to screenshot frame with %s: %w: %s", b.Binary, err, bytes.TrimSpace(stderr.Bytes()))
	}

	f, err := os.Open(shot)
	if err != nil {
		return nil, fmt.Errorf("failed to open screenshot: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return img, nil
}

// Close removes the surface's temporary directory.
func (b *BrowserSurface) Close() error {
	if b.dir == "" {
		return nil
	}
	err := os.RemoveAll(b.dir)
	b.dir = ""
	return err
}
