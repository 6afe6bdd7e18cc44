package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/tsawler/papertrail/backend"
	"github.com/tsawler/papertrail/contentstream"
	"github.com/tsawler/papertrail/internal/filters"
)

// ErrUnsupportedImage is returned for inline images whose color space,
// sample depth or filter chain cannot be turned into a grayscale bitmap.
var ErrUnsupportedImage = errors.New("unsupported inline image")

// Inline rasterizes pages whose scan is drawn as an inline image (BI/ID/EI)
// in the page content stream. Fax-style scanners emit CCITT-compressed
// pages this way, and they carry no image resource for [Embedded] to find.
type Inline struct{}

// Name implements Rasterizer.
func (Inline) Name() string { return "inline" }

// Rasterize implements Rasterizer.
func (Inline) Rasterize(ctx context.Context, path string, pageIndex, dpi int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inline image extraction panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := backend.ReadContext(path)
	if err != nil {
		return nil, err
	}
	content, err := backend.PageContent(pctx, pageIndex+1)
	if err != nil {
		return nil, fmt.Errorf("page content: %w", err)
	}

	// A parse error past the last image still leaves usable images.
	images, perr := contentstream.InlineImages(content)
	if len(images) == 0 {
		if perr != nil {
			return nil, fmt.Errorf("parse content: %w", perr)
		}
		return nil, ErrNoImage
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Area() > images[j].Area()
	})

	var errs []error
	for _, img := range images {
		decoded, err := decodeInlineImage(img)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		w, h := pageSize(pctx, pageIndex, dpi, decoded.Bounds())
		return encodeScaled(decoded, w, h)
	}
	return nil, errors.Join(errs...)
}

// decodeInlineImage runs the image's filter chain and converts the samples
// to grayscale.
func decodeInlineImage(img contentstream.InlineImage) (image.Image, error) {
	w, h := img.Width(), img.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: missing dimensions", ErrUnsupportedImage)
	}

	names := img.Filters()
	chain := make([]filters.Filter, 0, len(names))
	jpeg := false
	for i, name := range names {
		if filters.Canonical(name) == filters.DCT {
			if i != len(names)-1 {
				return nil, fmt.Errorf("%w: DCT must be the last filter", ErrUnsupportedImage)
			}
			jpeg = true
			break
		}
		params := filterParams(img.DecodeParams(i))
		if filters.Canonical(name) == filters.CCITTFax {
			if _, ok := params["Columns"]; !ok {
				params["Columns"] = w
			}
			if _, ok := params["Rows"]; !ok {
				params["Rows"] = h
			}
		}
		chain = append(chain, filters.Filter{Name: name, Params: params})
	}

	data, err := filters.Decode(img.Data, chain)
	if err != nil {
		return nil, err
	}
	if jpeg {
		decoded, _, err := image.Decode(bytes.NewReader(data))
		return decoded, err
	}

	bpc := int(paramNumber(img.Params["BitsPerComponent"], 8))
	comps := 1
	if mask, _ := img.Params["ImageMask"].(contentstream.Bool); mask {
		bpc = 1
	} else {
		comps, err = components(img.Params["ColorSpace"])
		if err != nil {
			return nil, err
		}
	}
	return grayFromSamples(data, w, h, comps, bpc, inverted(img.Params["Decode"]))
}

func filterParams(d contentstream.Dict) filters.Params {
	params := filters.Params{}
	for k, v := range d {
		switch v := v.(type) {
		case contentstream.Number:
			params[k] = float64(v)
		case contentstream.Bool:
			params[k] = bool(v)
		}
	}
	return params
}

func paramNumber(o contentstream.Operand, def float64) float64 {
	if n, ok := o.(contentstream.Number); ok {
		return float64(n)
	}
	return def
}

func components(cs contentstream.Operand) (int, error) {
	name, _ := cs.(contentstream.Name)
	switch name {
	case "", "DeviceGray", "CalGray":
		return 1, nil
	case "DeviceRGB", "CalRGB":
		return 3, nil
	case "DeviceCMYK":
		return 4, nil
	}
	return 0, fmt.Errorf("%w: color space %v", ErrUnsupportedImage, cs)
}

// inverted reports whether a Decode array maps the first component from 1
// to 0.
func inverted(decode contentstream.Operand) bool {
	arr, ok := decode.(contentstream.Array)
	return ok && len(arr) >= 2 && paramNumber(arr[0], 0) == 1 && paramNumber(arr[1], 1) == 0
}

// grayFromSamples unpacks rows of byte-aligned samples into a gray image.
func grayFromSamples(data []byte, w, h, comps, bpc int, invert bool) (*image.Gray, error) {
	switch bpc {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("%w: %d bits per component", ErrUnsupportedImage, bpc)
	}

	stride := (w*comps*bpc + 7) / 8
	if len(data) < stride*h {
		return nil, fmt.Errorf("%w: %d bytes of samples, want %d", ErrUnsupportedImage, len(data), stride*h)
	}

	maxValue := 1<<bpc - 1
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := data[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			var c [4]int
			for k := 0; k < comps; k++ {
				c[k] = sample(row, x*comps+k, bpc) * 255 / maxValue
			}

			var v int
			switch comps {
			case 1:
				v = c[0]
			case 3:
				v = (299*c[0] + 587*c[1] + 114*c[2]) / 1000
			case 4:
				v = 255 - min(255, (30*c[0]+59*c[1]+11*c[2])/100+c[3])
			}
			if invert {
				v = 255 - v
			}
			gray.Pix[y*gray.Stride+x] = uint8(v)
		}
	}
	return gray, nil
}

// sample reads the idx-th bpc-bit sample of a row, MSB first.
func sample(row []byte, idx, bpc int) int {
	if bpc == 8 {
		return int(row[idx])
	}
	bit := idx * bpc
	shift := 8 - bpc - bit%8
	return int(row[bit/8]>>shift) & (1<<bpc - 1)
}
