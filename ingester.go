package papertrail

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/tsawler/papertrail/backend"
	"github.com/tsawler/papertrail/citations"
	"github.com/tsawler/papertrail/layout"
	"github.com/tsawler/papertrail/model"
	"github.com/tsawler/papertrail/ocr"
	"github.com/tsawler/papertrail/sections"
	"github.com/tsawler/papertrail/textnorm"
)

const pdfMIME = "application/pdf"

// PageCounter reports how many pages a PDF has. It sizes OCR runs when no
// backend produced pages.
type PageCounter interface {
	PageCount(ctx context.Context, path string) (int, error)
}

// Ingester turns PDF files into Documents. It holds no per-call state and
// is safe for concurrent use.
type Ingester struct {
	options    Options
	backends   []backend.Backend
	ocr        *ocr.Processor
	ocrSet     bool
	counter    PageCounter
	classifier layout.Classifier
	logger     *zap.Logger

	segmenter *sections.Segmenter
	citer     *citations.Extractor
	analyzer  *layout.Analyzer
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithBackends sets the extraction backends, tried in order.
func WithBackends(backends ...backend.Backend) Option {
	return func(in *Ingester) { in.backends = backends }
}

// WithOCR sets the OCR processor. A nil processor makes OCR unavailable.
func WithOCR(p *ocr.Processor) Option {
	return func(in *Ingester) {
		in.ocr = p
		in.ocrSet = true
	}
}

// WithPageCounter sets how page counts are read for OCR-only documents.
func WithPageCounter(c PageCounter) Option {
	return func(in *Ingester) { in.counter = c }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(in *Ingester) { in.logger = logger }
}

// WithLayoutClassifier attaches a learned layout classifier.
func WithLayoutClassifier(c layout.Classifier) Option {
	return func(in *Ingester) { in.classifier = c }
}

// DefaultBackends returns the backend chain: ledongthuc (with coordinates),
// then pdfcpu, then poppler's pdftotext.
func DefaultBackends(logger *zap.Logger) []backend.Backend {
	return []backend.Backend{
		backend.NewLedongthuc(logger),
		backend.NewPDFCPU(logger),
		backend.NewPdftotext(logger),
	}
}

// DefaultOCR builds the OCR processor described by opts: the configured
// engine over pdftoppm rendering, falling back to the page's embedded scan.
// The gosseract engine falls back to the tesseract CLI in builds without
// the ocr tag.
func DefaultOCR(opts OCROptions, logger *zap.Logger) *ocr.Processor {
	if logger == nil {
		logger = zap.NewNop()
	}

	var engine ocr.Engine = ocr.NewTesseractCLI(opts.Language, logger)
	if opts.Engine == "gosseract" {
		g, err := ocr.NewGosseract(opts.Language)
		if err != nil {
			logger.Warn("gosseract unavailable, using tesseract CLI", zap.Error(err))
		} else {
			engine = g
		}
	}

	rasterizer := ocr.Chain{ocr.NewPoppler(logger), ocr.Embedded{}, ocr.Inline{}}
	return ocr.NewProcessor(engine, rasterizer, opts.Config, logger)
}

// New creates an Ingester. Unset collaborators default to DefaultBackends,
// DefaultOCR when opts.OCR.Enabled, pdfcpu page counting, and the ONNX
// classifier when opts.Layout.ModelPath is set.
func New(opts Options, options ...Option) *Ingester {
	in := &Ingester{options: opts.clone()}
	for _, o := range options {
		o(in)
	}

	if in.logger == nil {
		in.logger = zap.NewNop()
	}
	if in.backends == nil {
		in.backends = DefaultBackends(in.logger)
	}
	if !in.ocrSet && in.options.OCR.Enabled {
		in.ocr = DefaultOCR(in.options.OCR, in.logger)
	}
	if in.counter == nil {
		in.counter = backend.PDFCPUPageCounter{}
	}
	if in.classifier == nil && in.options.Layout.ModelPath != "" {
		c, err := layout.NewONNXClassifier(in.options.Layout.ModelPath)
		if err != nil {
			in.logger.Warn("layout classifier unavailable",
				zap.String("model", in.options.Layout.ModelPath),
				zap.Error(err),
			)
		} else {
			in.classifier = c
		}
	}

	in.segmenter = sections.NewSegmenterWithConfig(in.options.Sections)
	in.citer = citations.NewExtractorWithConfig(in.options.Citation)
	in.analyzer = layout.NewAnalyzerWithConfig(in.options.Layout.Config, in.classifier, in.logger)
	return in
}

// Options returns a copy of the ingester's settings.
func (in *Ingester) Options() Options {
	return in.options.clone()
}

// ingestion carries the per-call state of one Ingest.
type ingestion struct {
	path     string
	warnings []model.Warning
}

func (st *ingestion) warn(kind model.WarningKind, page int, format string, args ...any) {
	st.warnings = append(st.warnings, model.Warning{Kind: kind, Page: page, Message: fmt.Sprintf(format, args...)})
}

// Ingest reads the PDF at path and returns its Document. The only errors
// are *IngestError values for a missing file, a non-PDF file, or a file no
// backend or OCR could read; everything else becomes a warning.
func (in *Ingester) Ingest(ctx context.Context, path string) (*model.Document, error) {
	start := time.Now()
	st := &ingestion{path: path}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ingestError(KindFileNotFound, path, err)
		}
		return nil, ingestError(KindExtractionFailed, path, err)
	}
	if info.IsDir() {
		return nil, ingestError(KindUnsupportedFormat, path, fmt.Errorf("is a directory"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ingestError(KindExtractionFailed, path, err)
	}
	if mt := mimetype.Detect(data); !mt.Is(pdfMIME) {
		return nil, ingestError(KindUnsupportedFormat, path, fmt.Errorf("detected %s", mt.String()))
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	raw, meta, backendName := in.extract(ctx, st)

	ocrApplied := false
	if in.needsOCR(raw) {
		if ocrPages, ok := in.runOCR(ctx, st, raw); ok {
			raw = ocrPages
			ocrApplied = true
		}
	}

	if !backend.HasText(raw) {
		cause := backend.ErrNoText
		if in.ocr == nil {
			cause = ocr.ErrUnavailable
		}
		if err := ctx.Err(); err != nil {
			cause = err
		}
		return nil, ingestError(KindExtractionFailed, path, fmt.Errorf("no text from any backend or OCR: %w", cause))
	}

	doc := in.assemble(raw, ocrApplied)
	doc.ID = model.DocumentID(hash)
	doc.Backend = backendName
	if ocrApplied {
		doc.Backend = "ocr"
	}
	doc.Metadata = model.Metadata{
		Title:            meta.Title,
		Authors:          meta.Authors,
		Subject:          meta.Subject,
		Creator:          meta.Creator,
		Producer:         meta.Producer,
		CreationDate:     meta.CreationDate,
		ModificationDate: meta.ModificationDate,
		FileSize:         info.Size(),
		ContentHash:      hash,
	}
	doc.Warnings = append(st.warnings, doc.Warnings...)

	in.logger.Debug("ingested document",
		zap.String("path", path),
		zap.String("backend", doc.Backend),
		zap.Int("pages", doc.PageCount()),
		zap.Int("sections", len(doc.Sections)),
		zap.Int("citations", len(doc.Citations)),
		zap.Int("warnings", len(doc.Warnings)),
		zap.Duration("duration", time.Since(start)),
	)
	return doc, nil
}

// extract tries each backend in order. The first one returning text wins;
// otherwise the first non-empty page set is kept so OCR can reuse its page
// count and sizes.
func (in *Ingester) extract(ctx context.Context, st *ingestion) ([]backend.RawPage, backend.RawMetadata, string) {
	var (
		fallback     []backend.RawPage
		fallbackMeta backend.RawMetadata
		fallbackName string
	)

	for _, b := range in.backends {
		if ctx.Err() != nil {
			break
		}
		pages, meta, err := b.Extract(ctx, st.path, in.options.MaxPages)
		if err != nil {
			in.logger.Warn("backend failed",
				zap.String("backend", b.Name()),
				zap.String("path", st.path),
				zap.Error(err),
			)
			st.warn(model.WarnBackendFailed, 0, "%s: %v", b.Name(), err)
		}
		if backend.HasText(pages) {
			for _, p := range pages {
				if p.DroppedBlocks > 0 {
					st.warn(model.WarnMalformedBlock, p.Number, "%s: dropped %d blocks with invalid geometry", b.Name(), p.DroppedBlocks)
				}
			}
			return pages, meta, b.Name()
		}
		if err == nil {
			st.warn(model.WarnBackendFailed, 0, "%s: %v", b.Name(), backend.ErrNoText)
		}
		if fallback == nil && len(pages) > 0 {
			fallback, fallbackMeta, fallbackName = pages, meta, b.Name()
		}
	}
	return fallback, fallbackMeta, fallbackName
}

// needsOCR reports whether the extracted pages look like a scan: too few
// characters per page on average, or too many nearly empty pages.
func (in *Ingester) needsOCR(pages []backend.RawPage) bool {
	if len(pages) == 0 {
		return true
	}
	threshold := in.options.OCR.CharsPerPageThreshold

	total, low := 0, 0
	for _, p := range pages {
		n := utf8.RuneCountInString(strings.TrimSpace(p.Text))
		total += n
		if n < threshold {
			low++
		}
	}
	avg := float64(total) / float64(len(pages))
	ratio := float64(low) / float64(len(pages))
	return avg < float64(threshold) || ratio > in.options.OCR.LowTextPageRatio
}

// runOCR recognizes every page and returns the OCR pages, or false when OCR
// is unavailable or produced no text. Backend page sizes are carried over.
func (in *Ingester) runOCR(ctx context.Context, st *ingestion, raw []backend.RawPage) ([]backend.RawPage, bool) {
	if in.ocr == nil {
		st.warn(model.WarnOCRUnavailable, 0, "document needs OCR: %v", ocr.ErrUnavailable)
		return nil, false
	}

	count := len(raw)
	if count == 0 {
		n, err := in.counter.PageCount(ctx, st.path)
		if err != nil {
			st.warn(model.WarnOCRUnavailable, 0, "count pages: %v", err)
			return nil, false
		}
		count = n
		if limit := in.options.MaxPages; limit > 0 && count > limit {
			count = limit
		}
	}

	results, err := in.ocr.Process(ctx, st.path, count)
	if err != nil {
		st.warn(model.WarnOCRUnavailable, 0, "%v", err)
		return nil, false
	}

	pages := make([]backend.RawPage, len(results))
	for i, r := range results {
		pages[i] = backend.RawPage{Number: i + 1, Text: r.Text}
		if i < len(raw) {
			pages[i].Width, pages[i].Height = raw[i].Width, raw[i].Height
		}
		if r.Err != nil {
			st.warn(model.WarnOCRPageFailed, i+1, "%v", r.Err)
		}
	}

	if !backend.HasText(pages) {
		st.warn(model.WarnOCRNoText, 0, "OCR produced no text for %d pages", len(pages))
		return nil, false
	}
	return pages, true
}

// assemble normalizes text and runs the structure extractors.
func (in *Ingester) assemble(raw []backend.RawPage, ocrApplied bool) *model.Document {
	doc := &model.Document{
		Pages:        make([]*model.Page, len(raw)),
		OCRApplied:   ocrApplied,
		ChunkSize:    in.options.Chunk.ChunkSize,
		ChunkOverlap: in.options.Chunk.ChunkOverlap,
	}

	texts := make([]string, 0, len(raw))
	for i, r := range raw {
		page := &model.Page{
			Number:       r.Number,
			Text:         textnorm.Normalize(r.Text),
			Width:        r.Width,
			Height:       r.Height,
			OCRProcessed: ocrApplied,
		}
		if !ocrApplied {
			page.Blocks = r.Blocks
		}
		if page.Number == 0 {
			page.Number = i + 1
		}
		doc.Pages[i] = page
		if page.Text != "" {
			texts = append(texts, page.Text)
		}
	}
	doc.Text = textnorm.Normalize(strings.Join(texts, "\n\n"))

	doc.Sections = in.segmenter.Segment(doc.Text)
	doc.MethodologyContext = in.segmenter.MethodologyContext(doc.Text, doc.Sections)

	res := in.citer.Extract(doc.Text, doc.Sections)
	doc.Citations = res.Citations
	doc.ReferencesText = res.ReferencesText
	if res.Err != nil {
		doc.Warnings = append(doc.Warnings, model.Warning{Kind: model.WarnReferencesNotFound, Message: res.Err.Error()})
	}
	for _, rej := range res.Rejected {
		doc.Warnings = append(doc.Warnings, model.Warning{
			Kind:    model.WarnMalformedCitation,
			Message: fmt.Sprintf("%s: %s", rej.Reason, truncate(rej.Raw, 80)),
		})
	}

	if in.options.Layout.Enabled {
		doc.Layout = in.analyzer.Analyze(doc.Pages)
	}

	doc.DOIs = citations.ExtractDOIs(doc.Text)
	doc.URLs = citations.ExtractURLs(doc.Text)
	doc.CaptionCues = layout.CaptionCues(doc.Text)
	return doc
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
