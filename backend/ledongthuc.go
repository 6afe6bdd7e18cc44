package backend

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Default page size (US Letter) used when a page has no readable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Ledongthuc extracts text with per-line and per-span coordinates using
// github.com/ledongthuc/pdf.
type Ledongthuc struct {
	Config GroupConfig
	Logger *zap.Logger
}

// NewLedongthuc creates the coordinate-capable backend with default grouping
// thresholds.
func NewLedongthuc(logger *zap.Logger) *Ledongthuc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledongthuc{Config: DefaultGroupConfig(), Logger: logger}
}

// Name implements Backend.
func (b *Ledongthuc) Name() string { return "ledongthuc" }

// Extract implements Backend.
func (b *Ledongthuc) Extract(ctx context.Context, path string, maxPages int) (pages []RawPage, meta RawMetadata, err error) {
	defer recoverError(b.Name(), &err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, RawMetadata{}, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	meta = readInfo(r)
	n := limitPages(r.NumPage(), maxPages)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, meta, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, RawPage{Number: i, Width: defaultPageWidth, Height: defaultPageHeight})
			continue
		}
		pages = append(pages, b.extractPage(page, i))
	}

	if !HasText(pages) {
		return pages, meta, ErrNoText
	}
	return pages, meta, nil
}

// extractPage reads one page. A panic inside the reader only loses that page.
func (b *Ledongthuc) extractPage(page pdf.Page, number int) (out RawPage) {
	box := mediaBox(page)
	out = RawPage{Number: number, Width: box.Width, Height: box.Height}

	defer func() {
		if r := recover(); r != nil {
			b.logger().Warn("page content unreadable",
				zap.Int("page", number),
				zap.Any("panic", r),
			)
			out = RawPage{Number: number, Width: box.Width, Height: box.Height}
		}
	}()

	content := page.Content()
	glyphs := make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{S: t.S, X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, Font: t.Font})
	}

	blocks, text, dropped := GroupGlyphs(glyphs, box, b.Config)
	if dropped > 0 {
		b.logger().Debug("dropped malformed blocks",
			zap.Int("page", number),
			zap.Int("count", dropped),
		)
	}
	out.Blocks = blocks
	out.Text = text
	out.DroppedBlocks = dropped

	if text == "" {
		if plain, err := page.GetPlainText(nil); err == nil {
			out.Text = plain
		}
	}
	return out
}

func (b *Ledongthuc) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// mediaBox reads the page MediaBox, walking up the page tree for inherited
// values, and falls back to US Letter.
func mediaBox(page pdf.Page) (box PageBox) {
	box = PageBox{Width: defaultPageWidth, Height: defaultPageHeight}
	defer func() {
		if r := recover(); r != nil {
			box = PageBox{Width: defaultPageWidth, Height: defaultPageHeight}
		}
	}()

	v := page.V
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		mb := v.Key("MediaBox")
		if mb.Kind() == pdf.Array && mb.Len() == 4 {
			llx, lly := mb.Index(0).Float64(), mb.Index(1).Float64()
			urx, ury := mb.Index(2).Float64(), mb.Index(3).Float64()
			if llx > urx {
				llx, urx = urx, llx
			}
			if lly > ury {
				lly, ury = ury, lly
			}
			if urx-llx > 0 && ury-lly > 0 {
				return PageBox{LLX: llx, LLY: lly, Width: urx - llx, Height: ury - lly}
			}
			return box
		}
		v = v.Key("Parent")
	}
	return box
}

// readInfo reads the trailer Info dictionary.
func readInfo(r *pdf.Reader) (meta RawMetadata) {
	defer func() {
		if rec := recover(); rec != nil {
			meta = RawMetadata{}
		}
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return RawMetadata{}
	}
	return RawMetadata{
		Title:            info.Key("Title").Text(),
		Authors:          info.Key("Author").Text(),
		Subject:          info.Key("Subject").Text(),
		Creator:          info.Key("Creator").Text(),
		Producer:         info.Key("Producer").Text(),
		CreationDate:     info.Key("CreationDate").Text(),
		ModificationDate: info.Key("ModDate").Text(),
	}
}
