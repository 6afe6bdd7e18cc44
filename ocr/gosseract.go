//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract recognizes words through the Tesseract C API.
type Gosseract struct {
	Language    string
	PageSegMode PageSegMode
}

// NewGosseract creates a gosseract engine for the given language ("" means
// "eng").
func NewGosseract(language string) (*Gosseract, error) {
	if language == "" {
		language = "eng"
	}
	return &Gosseract{Language: language}, nil
}

// Name implements Engine.
func (g *Gosseract) Name() string { return "gosseract" }

// Recognize implements Engine. A client is created per call because
// gosseract clients are not safe for concurrent use.
func (g *Gosseract) Recognize(ctx context.Context, png []byte) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(g.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if g.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(g.PageSegMode)); err != nil {
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			Line:       lineKey(b.BlockNum, b.ParNum, b.LineNum),
			Box:        b.Box,
		})
	}
	return words, nil
}
