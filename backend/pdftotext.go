package backend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/papertrail/internal/execx"
)

// Pdftotext extracts text-only pages with poppler's pdftotext.
type Pdftotext struct {
	Binary string // Defaults to "pdftotext"
	Runner execx.Runner
	Logger *zap.Logger
}

// NewPdftotext creates the pdftotext backend running the real binary.
func NewPdftotext(logger *zap.Logger) *Pdftotext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pdftotext{Binary: "pdftotext", Runner: execx.NewExecRunner(logger), Logger: logger}
}

// Name implements Backend.
func (b *Pdftotext) Name() string { return "pdftotext" }

// Extract implements Backend.
func (b *Pdftotext) Extract(ctx context.Context, path string, maxPages int) ([]RawPage, RawMetadata, error) {
	bin := b.Binary
	if bin == "" {
		bin = "pdftotext"
	}

	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if maxPages > 0 {
		args = append(args, "-l", fmt.Sprint(maxPages))
	}
	args = append(args, path, "-")

	out, errb, err := b.Runner.Run(ctx, bin, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return nil, RawMetadata{}, fmt.Errorf("pdftotext: %w: %s", err, msg)
		}
		return nil, RawMetadata{}, fmt.Errorf("pdftotext: %w", err)
	}

	pages := SplitFormFeeds(string(out))
	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	if !HasText(pages) {
		return pages, RawMetadata{}, ErrNoText
	}
	return pages, RawMetadata{}, nil
}

// SplitFormFeeds splits pdftotext output into pages. pdftotext ends every
// page with a form feed, so a trailing empty piece is dropped.
func SplitFormFeeds(out string) []RawPage {
	parts := strings.Split(out, "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	pages := make([]RawPage, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, RawPage{
			Number: i + 1,
			Text:   p,
			Width:  defaultPageWidth,
			Height: defaultPageHeight,
		})
	}
	return pages
}
