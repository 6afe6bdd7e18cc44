package ocr

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// PageResult is the OCR outcome for one page. Index is zero-based.
type PageResult struct {
	Index int
	Text  string
	Err   error
}

// Processor runs OCR over the pages of a PDF.
type Processor struct {
	engine     Engine
	rasterizer Rasterizer
	config     Config
	logger     *zap.Logger
}

// NewProcessor creates a processor. Zero config fields take their defaults.
func NewProcessor(engine Engine, rasterizer Rasterizer, cfg Config, logger *zap.Logger) *Processor {
	def := DefaultConfig()
	if cfg.DPI <= 0 {
		cfg.DPI = def.DPI
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.WordConfidence <= 0 {
		cfg.WordConfidence = def.WordConfidence
	}
	if cfg.MinAlnumRatio <= 0 {
		cfg.MinAlnumRatio = def.MinAlnumRatio
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{engine: engine, rasterizer: rasterizer, config: cfg, logger: logger}
}

// Config returns the processor's settings.
func (p *Processor) Config() Config {
	return p.config
}

// Process recognizes pageCount pages of the PDF at path. The result has one
// entry per page in page order; pages that failed carry an Err and empty
// Text. An error is returned only when OCR cannot run at all.
func (p *Processor) Process(ctx context.Context, path string, pageCount int) ([]PageResult, error) {
	if p.engine == nil || p.rasterizer == nil {
		return nil, ErrUnavailable
	}
	if pageCount <= 0 {
		return nil, nil
	}

	workers := p.config.Workers
	if workers <= 0 {
		workers = WorkerCount(runtime.NumCPU(), pageCount)
	}

	start := time.Now()
	results := RunSlots(ctx, pageCount, workers, func(ctx context.Context, i int) PageResult {
		text, err := p.page(ctx, path, i)
		if err != nil {
			p.logger.Warn("OCR page failed", zap.Int("page", i+1), zap.Error(err))
			return PageResult{Err: err}
		}
		return PageResult{Text: text}
	})

	p.logger.Debug("OCR finished",
		zap.String("path", path),
		zap.String("engine", p.engine.Name()),
		zap.String("rasterizer", p.rasterizer.Name()),
		zap.Int("pages", pageCount),
		zap.Int("workers", clampWorkers(workers, pageCount)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

func (p *Processor) page(ctx context.Context, path string, i int) (string, error) {
	img, err := p.rasterizer.Rasterize(ctx, path, i, p.config.DPI)
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}
	words, err := p.engine.Recognize(ctx, img)
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return JoinWords(FilterWords(words, p.config)), nil
}
