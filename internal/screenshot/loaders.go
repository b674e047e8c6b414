package screenshot

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"

	// Register stdlib decoders for the fallback loader.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// loader is one strategy for getting pixels out of a possibly corrupt or
// oversized screenshot. Loaders are tried in order; each one catches its
// own failure class and the next is tried only when the previous failed.
type loader interface {
	name() string
	load(ctx context.Context, path string) (image.Image, error)
}

// imagingLoader is the primary strategy: the imaging library's decoder
// with EXIF orientation handling.
type imagingLoader struct{}

func (imagingLoader) name() string { return "imaging" }

func (imagingLoader) load(_ context.Context, path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// stdlibLoader decodes with Go's registered image decoders. Some files
// that trip imaging's orientation pass still decode cleanly here.
type stdlibLoader struct{}

func (stdlibLoader) name() string { return "stdlib" }

func (stdlibLoader) load(_ context.Context, path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// magickLoader shells out to ImageMagick to rewrite the file, repairing
// truncated or malformed encodings, then decodes the repaired copy.
type magickLoader struct{}

func (magickLoader) name() string { return "magick-repair" }

func (magickLoader) load(ctx context.Context, path string) (image.Image, error) {
	convert, err := exec.LookPath("convert")
	if err != nil {
		return nil, fmt.Errorf("imagemagick convert not found in PATH: %w", err)
	}

	tmp, err := os.CreateTemp("", "fable2md-repair-*.png")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, convert, filepath.Clean(path), "-strip", tmpPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("convert failed: %w (output: %s)", err, out)
	}

	return imaging.Open(tmpPath)
}

// defaultLoaders is the production fallback chain.
func defaultLoaders() []loader {
	return []loader{imagingLoader{}, stdlibLoader{}, magickLoader{}}
}
