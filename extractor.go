package papertrail

import (
	"context"

	"go.uber.org/zap"

	"github.com/tsawler/papertrail/model"
	"github.com/tsawler/papertrail/ocr"
	"github.com/tsawler/papertrail/rag"
)

// Extractor provides a fluent interface for ingesting one PDF.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	path    string
	options Options
	logger  *zap.Logger
	extra   []Option
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		path:    e.path,
		options: e.options.clone(),
		logger:  e.logger,
		extra:   append([]Option(nil), e.extra...),
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// MaxPages limits ingestion to the first n pages. Zero means all pages.
//
// Example:
//
//	doc, err := papertrail.Open("paper.pdf").MaxPages(10).Document(ctx)
func (e *Extractor) MaxPages(n int) *Extractor {
	newExt := e.clone()
	newExt.options.MaxPages = n
	return newExt
}

// WithoutOCR disables the OCR fallback. Scanned documents then fail with
// ErrExtractionFailed instead of being recognized.
func (e *Extractor) WithoutOCR() *Extractor {
	newExt := e.clone()
	newExt.options.OCR.Enabled = false
	newExt.extra = append(newExt.extra, WithOCR(nil))
	return newExt
}

// OCRThresholds sets the word confidence (0-100) and alphanumeric ratio
// below which recognized words are dropped.
func (e *Extractor) OCRThresholds(wordConfidence, alnumRatio float64) *Extractor {
	newExt := e.clone()
	newExt.options.OCR.WordConfidence = wordConfidence
	newExt.options.OCR.MinAlnumRatio = alnumRatio
	return newExt
}

// OCRDPI sets the OCR rendering resolution.
func (e *Extractor) OCRDPI(dpi int) *Extractor {
	newExt := e.clone()
	newExt.options.OCR.DPI = dpi
	return newExt
}

// WithoutLayout skips layout analysis; Document.Layout stays empty.
func (e *Extractor) WithoutLayout() *Extractor {
	newExt := e.clone()
	newExt.options.Layout.Enabled = false
	return newExt
}

// LayoutModel enables the learned layout classifier from an ONNX model.
func (e *Extractor) LayoutModel(path string) *Extractor {
	newExt := e.clone()
	newExt.options.Layout.ModelPath = path
	return newExt
}

// ChunkSize sets the chunk size and overlap recorded on the document.
func (e *Extractor) ChunkSize(size, overlap int) *Extractor {
	newExt := e.clone()
	newExt.options.Chunk.ChunkSize = size
	newExt.options.Chunk.ChunkOverlap = overlap
	return newExt
}

// LocatorThreshold sets the minimum block score for an evidence match.
func (e *Extractor) LocatorThreshold(threshold float64) *Extractor {
	newExt := e.clone()
	newExt.options.Locator.Threshold = threshold
	return newExt
}

// WithOptions replaces all settings.
func (e *Extractor) WithOptions(opts Options) *Extractor {
	newExt := e.clone()
	newExt.options = opts.clone()
	return newExt
}

// WithLogger sets the logger used during ingestion.
func (e *Extractor) WithLogger(logger *zap.Logger) *Extractor {
	newExt := e.clone()
	newExt.logger = logger
	return newExt
}

// With appends ingester options such as WithBackends or WithOCR.
func (e *Extractor) With(options ...Option) *Extractor {
	newExt := e.clone()
	newExt.extra = append(newExt.extra, options...)
	return newExt
}

// Options returns a copy of the current settings.
func (e *Extractor) Options() Options {
	return e.options.clone()
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Ingester builds the Ingester this Extractor would use.
func (e *Extractor) Ingester() *Ingester {
	options := []Option{WithLogger(e.logger)}
	options = append(options, e.extra...)
	return New(e.options, options...)
}

// Document ingests the file.
//
// Example:
//
//	doc, err := papertrail.Open("paper.pdf").WithoutOCR().Document(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, c := range doc.Citations {
//	    fmt.Println(c.Number, c.Title)
//	}
func (e *Extractor) Document(ctx context.Context) (*model.Document, error) {
	return e.Ingester().Ingest(ctx, e.path)
}

// Text ingests the file and returns its normalized text with any warnings.
func (e *Extractor) Text(ctx context.Context) (string, []model.Warning, error) {
	doc, err := e.Document(ctx)
	if err != nil {
		return "", nil, err
	}
	return doc.Text, doc.Warnings, nil
}

// Citations ingests the file and returns its parsed reference list.
func (e *Extractor) Citations(ctx context.Context) ([]model.Citation, []model.Warning, error) {
	doc, err := e.Document(ctx)
	if err != nil {
		return nil, nil, err
	}
	return doc.Citations, doc.Warnings, nil
}

// Chunks ingests the file and splits its text with the configured chunk
// size and overlap.
func (e *Extractor) Chunks(ctx context.Context) ([]rag.Chunk, []model.Warning, error) {
	doc, err := e.Document(ctx)
	if err != nil {
		return nil, nil, err
	}
	return doc.Chunks(), doc.Warnings, nil
}

// OCRConfig returns the OCR settings the Extractor would apply.
func (e *Extractor) OCRConfig() ocr.Config {
	return e.options.OCR.Config
}
