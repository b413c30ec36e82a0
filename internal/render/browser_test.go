package render

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/combined-routes/internal/models"
)

func TestBrowserSurface_LoadWritesStaticPage(t *testing.T) {
	b, err := NewBrowserSurface("", 0, 0)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, DefaultBrowser, b.Binary)
	assert.Equal(t, DefaultFrameWidth, b.Width)

	_, err = b.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNothingLoaded)

	c := NewCanvas(Dark)
	require.NoError(t, c.AddSegment(&models.Track{Name: "a"}, segment(0, 0, models.Position{Lat: 1, Lon: 1})))
	require.NoError(t, b.Load(context.Background(), c))

	page, err := os.ReadFile(b.page)
	require.NoError(t, err)
	assert.Regexp(t, `zoomControl:\s*false`, string(page))

	dir := b.dir
	require.NoError(t, b.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestBrowserSurface_MissingBinary(t *testing.T) {
	b, err := NewBrowserSurface("combined-routes-no-such-browser", 10, 10)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Load(context.Background(), NewCanvas(Dark)))
	_, err = b.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestBrowserSurface_WaitSettledDoesNotBlock(t *testing.T) {
	b, err := NewBrowserSurface("", 0, 0)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.WaitSettled(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.WaitSettled(ctx), context.Canceled)
}
