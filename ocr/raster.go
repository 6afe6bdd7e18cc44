package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/jpeg" // decode embedded JPEG scans

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // decode embedded TIFF scans

	"github.com/tsawler/papertrail/backend"
	"github.com/tsawler/papertrail/internal/execx"
	"github.com/tsawler/papertrail/model"
)

// ErrNoImage is returned by Embedded when a page carries no image.
var ErrNoImage = errors.New("page has no embedded image")

// Rasterizer renders one PDF page into a PNG image. pageIndex is zero-based.
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, path string, pageIndex, dpi int) ([]byte, error)
}

// ============================================================================
// Poppler
// ============================================================================

// Poppler renders pages with poppler's pdftoppm.
type Poppler struct {
	Binary string // Defaults to "pdftoppm"
	Runner execx.Runner
}

// NewPoppler creates a rasterizer that runs the real pdftoppm binary.
func NewPoppler(logger *zap.Logger) *Poppler {
	return &Poppler{Binary: "pdftoppm", Runner: execx.NewExecRunner(logger)}
}

// Name implements Rasterizer.
func (p *Poppler) Name() string { return "pdftoppm" }

// Rasterize implements Rasterizer.
func (p *Poppler) Rasterize(ctx context.Context, path string, pageIndex, dpi int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "papertrail-raster-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	bin := p.Binary
	if bin == "" {
		bin = "pdftoppm"
	}
	page := strconv.Itoa(pageIndex + 1)
	prefix := filepath.Join(dir, "page")
	args := []string{"-r", strconv.Itoa(dpi), "-f", page, "-l", page, "-png", "-singlefile", path, prefix}

	_, errb, err := p.Runner.Run(ctx, bin, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return nil, fmt.Errorf("pdftoppm: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}

	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image: %w", err)
	}
	return data, nil
}

// ============================================================================
// Embedded
// ============================================================================

// Embedded rasterizes scanned pages by extracting the largest image on the
// page with pdfcpu and scaling it to the page size at the requested DPI.
// Pages drawn with vector text are not rendered.
type Embedded struct{}

// Name implements Rasterizer.
func (Embedded) Name() string { return "embedded" }

// Rasterize implements Rasterizer.
func (Embedded) Rasterize(ctx context.Context, path string, pageIndex, dpi int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("embedded image extraction panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := backend.ReadContext(path)
	if err != nil {
		return nil, err
	}

	images, err := pdfcpu.ExtractPageImages(pctx, pageIndex+1, false)
	if err != nil {
		return nil, fmt.Errorf("extract images: %w", err)
	}

	var best image.Image
	for _, img := range images {
		if img.Reader == nil {
			continue
		}
		decoded, _, err := image.Decode(img)
		if err != nil {
			continue
		}
		if best == nil || area(decoded.Bounds()) > area(best.Bounds()) {
			best = decoded
		}
	}
	if best == nil {
		return nil, ErrNoImage
	}

	w, h := pageSize(pctx, pageIndex, dpi, best.Bounds())
	return encodeScaled(best, w, h)
}

// pageSize returns the page's pixel size at dpi, or the size of fallback
// when the page dimensions are unknown.
func pageSize(pctx *pdfmodel.Context, pageIndex, dpi int, fallback image.Rectangle) (int, int) {
	w, h := float64(fallback.Dx()), float64(fallback.Dy())
	if dims, err := pctx.PageDims(); err == nil && pageIndex < len(dims) {
		size := model.RenderMatrix(dpi).Transform(model.Point{X: dims[pageIndex].Width, Y: dims[pageIndex].Height})
		w, h = size.X, size.Y
	}
	return int(w + 0.5), int(h + 0.5)
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// encodeScaled resamples src to w x h pixels and encodes it as PNG.
func encodeScaled(src image.Image, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", w, h)
	}

	var dst draw.Image = image.NewGray(image.Rect(0, 0, w, h))
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================================
// Chain
// ============================================================================

// Chain tries each rasterizer in order and returns the first image produced.
type Chain []Rasterizer

// Name implements Rasterizer.
func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, r := range c {
		names[i] = r.Name()
	}
	return strings.Join(names, ",")
}

// Rasterize implements Rasterizer.
func (c Chain) Rasterize(ctx context.Context, path string, pageIndex, dpi int) ([]byte, error) {
	if len(c) == 0 {
		return nil, errors.New("no rasterizer configured")
	}
	var errs []error
	for _, r := range c {
		data, err := r.Rasterize(ctx, path, pageIndex, dpi)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
	}
	return nil, errors.Join(errs...)
}
