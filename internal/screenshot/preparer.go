// Package screenshot prepares reading-tracker screenshots for OCR.
//
// Screenshots arrive in whatever state the user's phone produced them:
// sometimes dark mode, sometimes tens of thousands of pixels tall,
// occasionally corrupt. The Preparer loads them through a chain of
// fallback decoders, normalizes polarity so text is dark-on-light, and
// slices oversized images into bounded-height bands that downstream OCR
// can process independently.
package screenshot

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"fable2md/internal/logger"
)

// DefaultBandHeight is the maximum band height in pixels. Anything
// taller is sliced into contiguous bands of this height.
const DefaultBandHeight = 8000

// darkThreshold is the mean-brightness cutoff below which a screenshot
// is considered dark mode and gets inverted. OCR engines are tuned for
// dark text on a light background.
const darkThreshold = 128

// Band is one horizontal slice of a prepared screenshot, written to a
// temporary file for the OCR pass. Bands are short-lived: the caller
// must remove them with Cleanup after OCR, on success and on failure.
type Band struct {
	Index  int    // 0-based position, top to bottom
	Path   string // temporary PNG file
	Width  int    // pixels
	Height int    // pixels
}

// Preparer loads and normalizes screenshots into OCR-ready bands.
type Preparer struct {
	bandHeight int
	loaders    []loader
	log        zerolog.Logger
}

// NewPreparer creates a Preparer with the production loader chain.
// bandHeight <= 0 selects DefaultBandHeight.
func NewPreparer(bandHeight int) *Preparer {
	if bandHeight <= 0 {
		bandHeight = DefaultBandHeight
	}
	return &Preparer{
		bandHeight: bandHeight,
		loaders:    defaultLoaders(),
		log:        logger.WithComponent("screenshot"),
	}
}

// Prepare loads the screenshot at path and returns its OCR bands.
// An image of height H produces ceil(H/bandHeight) bands whose heights
// sum to H; the last band may be shorter. Band boundaries do not
// overlap, so a list entry straddling a boundary may be split across
// two bands; that is an accepted limitation of the banding scheme.
func (p *Preparer) Prepare(ctx context.Context, path string) ([]Band, error) {
	const op = "Prepare"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, wrapPrepareError(op, ErrImageNotFound, path)
		}
		return nil, wrapPrepareError(op, err, path)
	}

	img, err := p.loadWithFallback(ctx, path)
	if err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(img)
	if mean := meanBrightness(gray); mean < darkThreshold {
		p.log.Info().
			Float64("mean_brightness", mean).
			Msg("Dark mode detected, inverting image")
		gray = imaging.Invert(gray)
	}

	bands, err := p.sliceBands(gray)
	if err != nil {
		// Half-written band sets must not leak temp files.
		Cleanup(bands)
		return nil, err
	}

	p.log.Info().
		Str("image", path).
		Int("width", gray.Bounds().Dx()).
		Int("height", gray.Bounds().Dy()).
		Int("bands", len(bands)).
		Msg("Screenshot prepared")

	return bands, nil
}

// loadWithFallback tries every loader in order and fails only when all
// strategies are exhausted.
func (p *Preparer) loadWithFallback(ctx context.Context, path string) (image.Image, error) {
	const op = "loadWithFallback"

	var lastErr error
	for _, l := range p.loaders {
		img, err := l.load(ctx, path)
		if err == nil {
			p.log.Debug().
				Str("loader", l.name()).
				Str("image", path).
				Msg("Image loaded")
			return img, nil
		}
		lastErr = err
		p.log.Warn().
			Err(err).
			Str("loader", l.name()).
			Str("image", path).
			Msg("Loader failed, trying next strategy")
	}

	return nil, wrapPrepareError(op, ErrUnreadableImage,
		fmt.Sprintf("%s (last error: %v)", path, lastErr))
}

// sliceBands cuts the image into contiguous horizontal bands of at most
// bandHeight pixels and writes each to a temporary PNG.
func (p *Preparer) sliceBands(img image.Image) ([]Band, error) {
	const op = "sliceBands"

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var bands []Band
	for top := 0; top < height; top += p.bandHeight {
		h := p.bandHeight
		if top+h > height {
			h = height - top
		}

		slice := imaging.Crop(img, image.Rect(bounds.Min.X, bounds.Min.Y+top,
			bounds.Min.X+width, bounds.Min.Y+top+h))

		f, err := os.CreateTemp("", fmt.Sprintf("fable2md-band-%03d-*.png", len(bands)))
		if err != nil {
			return bands, wrapPrepareError(op, ErrBandWrite, err.Error())
		}
		bandPath := f.Name()
		f.Close()

		if err := imaging.Save(slice, bandPath); err != nil {
			os.Remove(bandPath)
			return bands, wrapPrepareError(op, ErrBandWrite, err.Error())
		}

		bands = append(bands, Band{
			Index:  len(bands),
			Path:   bandPath,
			Width:  width,
			Height: h,
		})
	}

	return bands, nil
}

// Cleanup removes all band temp files. Safe to call with a partial or
// nil slice; missing files are ignored.
func Cleanup(bands []Band) {
	for _, b := range bands {
		if b.Path != "" {
			os.Remove(b.Path)
		}
	}
}

// meanBrightness samples the grayscale image and returns the mean pixel
// value in [0, 255].
func meanBrightness(img *image.NRGBA) float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 255
	}

	// Sampling every few pixels is plenty for a polarity decision.
	step := 4
	if w*h < 64*64 {
		step = 1
	}

	var sum, count uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			// Grayscale NRGBA has R == G == B.
			sum += uint64(img.NRGBAAt(x, y).R)
			count++
		}
	}
	return float64(sum) / float64(count)
}
