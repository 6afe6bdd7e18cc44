package backend

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/tsawler/papertrail/contentstream"
)

// PDFCPU extracts text-only pages by decoding page content streams read with
// github.com/pdfcpu/pdfcpu.
type PDFCPU struct {
	Logger *zap.Logger
}

// NewPDFCPU creates the pdfcpu backend.
func NewPDFCPU(logger *zap.Logger) *PDFCPU {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFCPU{Logger: logger}
}

// Name implements Backend.
func (b *PDFCPU) Name() string { return "pdfcpu" }

// Extract implements Backend.
func (b *PDFCPU) Extract(ctx context.Context, path string, maxPages int) (pages []RawPage, meta RawMetadata, err error) {
	defer recoverError(b.Name(), &err)

	pctx, err := ReadContext(path)
	if err != nil {
		return nil, RawMetadata{}, err
	}

	// Context embeds both the configuration and the xref table, and each
	// carries a CreationDate, so the info fields are read from the table.
	info := pctx.XRefTable
	meta = RawMetadata{
		Title:            info.Title,
		Authors:          info.Author,
		Subject:          info.Subject,
		Creator:          info.Creator,
		Producer:         info.Producer,
		CreationDate:     info.CreationDate,
		ModificationDate: info.ModDate,
	}

	dims, dimErr := pctx.PageDims()
	if dimErr != nil {
		b.Logger.Debug("page dimensions unavailable", zap.String("path", path), zap.Error(dimErr))
	}

	n := limitPages(pctx.PageCount, maxPages)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, meta, err
		}
		page := RawPage{Number: i, Width: defaultPageWidth, Height: defaultPageHeight}
		if i-1 < len(dims) {
			page.Width, page.Height = dims[i-1].Width, dims[i-1].Height
		}

		text, err := pageText(pctx, i)
		if err != nil {
			b.Logger.Debug("page content partially decoded",
				zap.String("path", path),
				zap.Int("page", i),
				zap.Error(err),
			)
		}
		page.Text = text
		pages = append(pages, page)
	}

	if !HasText(pages) {
		return pages, meta, ErrNoText
	}
	return pages, meta, nil
}

// ReadContext reads and validates a PDF with pdfcpu's default configuration.
func ReadContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return pctx, nil
}

func pageText(pctx *model.Context, pageNr int) (string, error) {
	data, err := PageContent(pctx, pageNr)
	if err != nil || len(data) == 0 {
		return "", err
	}
	return contentstream.ExtractText(data)
}

// PageContent returns the decoded content stream of a 1-indexed page, or nil
// for a page without content.
func PageContent(pctx *model.Context, pageNr int) ([]byte, error) {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}

// PDFCPUPageCounter counts pages with pdfcpu. It is used to size OCR runs
// when no backend produced pages.
type PDFCPUPageCounter struct{}

// PageCount returns the number of pages in the file at path.
func (PDFCPUPageCounter) PageCount(ctx context.Context, path string) (n int, err error) {
	defer recoverError("pdfcpu", &err)
	return api.PageCountFile(path)
}
