package ocr

import (
	"context"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"fable2md/internal/logger"
)

// GoogleVisionService implements Service using the Google Cloud Vision
// document text detection API. It is the fallback backend for
// screenshots the local engine reads poorly.
type GoogleVisionService struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewGoogleVisionService creates an OCR service with credentials from
// the environment. It expects either GOOGLE_APPLICATION_CREDENTIALS
// (file path) or GOOGLE_CREDENTIALS (inline JSON).
func NewGoogleVisionService(ctx context.Context) (*GoogleVisionService, error) {
	const op = "NewGoogleVisionService"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionService{
		client: client,
		log:    logger.WithComponent("ocr-vision"),
	}, nil
}

// NewGoogleVisionServiceWithClient creates the service with an explicit
// client (for testing).
func NewGoogleVisionServiceWithClient(client *vision.ImageAnnotatorClient) *GoogleVisionService {
	return &GoogleVisionService{
		client: client,
		log:    logger.WithComponent("ocr-vision"),
	}
}

// ExtractText extracts line-ordered text from the image at path.
func (g *GoogleVisionService) ExtractText(ctx context.Context, path string) (string, error) {
	result, err := g.ExtractTextWithMetadata(ctx, path)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractTextWithMetadata extracts text with recognition metadata.
func (g *GoogleVisionService) ExtractTextWithMetadata(ctx context.Context, path string) (*Result, error) {
	const op = "ExtractTextWithMetadata"
	startTime := time.Now()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, WrapOCRError(op, ErrImageNotFound, path)
		}
		return nil, WrapOCRError(op, err, path)
	}
	defer f.Close()

	img, err := vision.NewImageFromReader(f)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read image data")
	}

	annotation, err := g.client.DetectDocumentText(ctx, img, nil)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, err.Error())
	}

	words := collectVisionWords(annotation)
	lines := assembleLines(words)

	result := &Result{
		Text:               strings.Join(lines, "\n"),
		LineCount:          len(lines),
		Confidence:         averageConfidence(words, 1),
		ProcessedAt:        time.Now(),
		ProcessingDuration: time.Since(startTime),
	}

	g.log.Debug().
		Str("image", path).
		Int("lines", result.LineCount).
		Float64("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Vision pass completed")

	return result, nil
}

// collectVisionWords flattens the Vision document hierarchy into words
// tagged with paragraph identity. Vision does not number lines; each
// paragraph of a screenshot list renders as one visual line, so the
// paragraph index serves as the line index.
func collectVisionWords(annotation *visionpb.TextAnnotation) []recognizedWord {
	var words []recognizedWord
	if annotation == nil {
		return words
	}

	for _, page := range annotation.Pages {
		for blockIdx, block := range page.Blocks {
			for parIdx, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					var sb strings.Builder
					for _, symbol := range word.Symbols {
						sb.WriteString(symbol.Text)
					}
					words = append(words, recognizedWord{
						Text:       sb.String(),
						Confidence: float64(word.Confidence),
						Block:      blockIdx,
						Paragraph:  parIdx,
						Line:       parIdx,
						Top:        topOfPoly(word.BoundingBox),
					})
				}
			}
		}
	}
	return words
}

func topOfPoly(poly *visionpb.BoundingPoly) int {
	if poly == nil || len(poly.Vertices) == 0 {
		return 0
	}
	top := poly.Vertices[0].Y
	for _, v := range poly.Vertices[1:] {
		if v.Y < top {
			top = v.Y
		}
	}
	return int(top)
}

// Close closes the underlying Vision client.
func (g *GoogleVisionService) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
