//go:build !ocr

package ocr

import (
	"context"
	"errors"
)

// ErrOCRNotEnabled is returned when the gosseract engine is used but OCR
// support was not compiled in. Rebuild with -tags ocr to enable it, or use
// TesseractCLI.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Gosseract is the stub engine used when the "ocr" build tag is not set.
type Gosseract struct {
	Language    string
	PageSegMode PageSegMode
}

// NewGosseract returns ErrOCRNotEnabled.
// To enable it, rebuild with: go build -tags ocr
func NewGosseract(language string) (*Gosseract, error) {
	return nil, ErrOCRNotEnabled
}

// Name implements Engine.
func (g *Gosseract) Name() string { return "gosseract" }

// Recognize returns ErrOCRNotEnabled.
func (g *Gosseract) Recognize(ctx context.Context, png []byte) ([]Word, error) {
	return nil, ErrOCRNotEnabled
}
