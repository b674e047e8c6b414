package screenshot

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, width, height int, fill color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
	path := filepath.Join(t.TempDir(), "screenshot.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestPrepareSplitsIntoBands(t *testing.T) {
	path := writeTestImage(t, 40, 250, color.NRGBA{R: 240, G: 240, B: 240, A: 255})

	p := NewPreparer(100)
	bands, err := p.Prepare(context.Background(), path)
	require.NoError(t, err)
	defer Cleanup(bands)

	require.Len(t, bands, 3)

	total := 0
	for i, b := range bands {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, 40, b.Width)
		assert.FileExists(t, b.Path)
		total += b.Height
	}
	assert.Equal(t, 250, total)
	assert.Equal(t, 100, bands[0].Height)
	assert.Equal(t, 100, bands[1].Height)
	assert.Equal(t, 50, bands[2].Height)
}

func TestPrepareSingleBandForShortImage(t *testing.T) {
	path := writeTestImage(t, 40, 80, color.NRGBA{R: 240, G: 240, B: 240, A: 255})

	p := NewPreparer(100)
	bands, err := p.Prepare(context.Background(), path)
	require.NoError(t, err)
	defer Cleanup(bands)

	require.Len(t, bands, 1)
	assert.Equal(t, 80, bands[0].Height)
}

func TestPrepareInvertsDarkImages(t *testing.T) {
	// A mostly black screenshot must come out light.
	path := writeTestImage(t, 64, 64, color.NRGBA{R: 10, G: 10, B: 10, A: 255})

	p := NewPreparer(0)
	bands, err := p.Prepare(context.Background(), path)
	require.NoError(t, err)
	defer Cleanup(bands)

	require.Len(t, bands, 1)
	band, err := imaging.Open(bands[0].Path)
	require.NoError(t, err)
	assert.Greater(t, meanBrightness(imaging.Clone(band)), float64(darkThreshold))
}

func TestPrepareKeepsLightImages(t *testing.T) {
	path := writeTestImage(t, 64, 64, color.NRGBA{R: 230, G: 230, B: 230, A: 255})

	p := NewPreparer(0)
	bands, err := p.Prepare(context.Background(), path)
	require.NoError(t, err)
	defer Cleanup(bands)

	band, err := imaging.Open(bands[0].Path)
	require.NoError(t, err)
	assert.Greater(t, meanBrightness(imaging.Clone(band)), float64(darkThreshold))
}

func TestPrepareMissingFile(t *testing.T) {
	p := NewPreparer(0)
	_, err := p.Prepare(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestPrepareUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image at all"), 0o644))

	p := NewPreparer(0)
	_, err := p.Prepare(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadableImage)
}

func TestCleanupRemovesBandFiles(t *testing.T) {
	path := writeTestImage(t, 40, 250, color.NRGBA{R: 240, G: 240, B: 240, A: 255})

	p := NewPreparer(100)
	bands, err := p.Prepare(context.Background(), path)
	require.NoError(t, err)

	Cleanup(bands)
	for _, b := range bands {
		assert.NoFileExists(t, b.Path)
	}

	// Safe to call again and with nil.
	Cleanup(bands)
	Cleanup(nil)
}
