package ocr

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"fable2md/internal/logger"
)

// TesseractService implements Service using a local Tesseract 5 engine
// through gosseract. This is the default backend: screenshots never
// leave the machine and there is no API size limit to work around.
type TesseractService struct {
	language string
	log      zerolog.Logger
}

// NewTesseractService creates the Tesseract-backed OCR service.
// language is a Tesseract language code ("eng" if empty).
func NewTesseractService(language string) *TesseractService {
	if language == "" {
		language = "eng"
	}
	return &TesseractService{
		language: language,
		log:      logger.WithComponent("ocr-tesseract"),
	}
}

// ExtractText extracts line-ordered text from the image at path.
func (t *TesseractService) ExtractText(ctx context.Context, path string) (string, error) {
	result, err := t.ExtractTextWithMetadata(ctx, path)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractTextWithMetadata extracts text with recognition metadata.
func (t *TesseractService) ExtractTextWithMetadata(ctx context.Context, path string) (*Result, error) {
	const op = "ExtractTextWithMetadata"
	startTime := time.Now()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, WrapOCRError(op, ErrImageNotFound, path)
		}
		return nil, WrapOCRError(op, err, path)
	}
	if err := ctx.Err(); err != nil {
		return nil, WrapOCRError(op, err, "context done before OCR")
	}

	prepared, cleanup, err := t.preprocess(path)
	if err != nil {
		return nil, WrapOCRError(op, err, "preprocessing failed")
	}
	defer cleanup()

	// gosseract clients are not safe for concurrent use; one per call.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return nil, WrapOCRError(op, ErrEngineUnavailable, err.Error())
	}
	// Single uniform block of text matches a tracker's list layout.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, WrapOCRError(op, err, "failed to set page segmentation mode")
	}
	if err := client.SetImage(prepared); err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, err.Error())
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, err.Error())
	}

	words := make([]recognizedWord, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, recognizedWord{
			Text:       box.Word,
			Confidence: box.Confidence,
			Block:      box.BlockNum,
			Paragraph:  box.ParNum,
			Line:       box.LineNum,
			Top:        box.Box.Min.Y,
		})
	}

	lines := assembleLines(words)
	result := &Result{
		Text:               strings.Join(lines, "\n"),
		LineCount:          len(lines),
		Confidence:         averageConfidence(words, 100),
		ProcessedAt:        time.Now(),
		ProcessingDuration: time.Since(startTime),
	}

	t.log.Debug().
		Str("image", path).
		Int("lines", result.LineCount).
		Float64("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Tesseract pass completed")

	return result, nil
}

// preprocess denoises the band before recognition: a light blur knocks
// out compression speckle, the sharpen pass restores glyph edges. The
// cleaned copy goes to a temp file Tesseract can read.
func (t *TesseractService) preprocess(path string) (string, func(), error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", nil, err
	}

	cleaned := imaging.Sharpen(imaging.Blur(img, 0.6), 1.2)

	f, err := os.CreateTemp("", "fable2md-ocr-*.png")
	if err != nil {
		return "", nil, err
	}
	tmpPath := f.Name()
	f.Close()

	if err := imaging.Save(cleaned, tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", nil, err
	}

	return tmpPath, func() { os.Remove(tmpPath) }, nil
}
