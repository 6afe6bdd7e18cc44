package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and undoes a PNG predictor when the
// Predictor parameter asks for one.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}

	switch predictor := params.Int("Predictor", 1); {
	case predictor == 1:
		return out, nil
	case predictor >= 10 && predictor <= 15:
		return unpredictPNG(out, params)
	default:
		return nil, fmt.Errorf("unsupported predictor %d", predictor)
	}
}

// unpredictPNG reverses PNG row filtering. Every row carries a leading
// filter-type byte, which is dropped from the output.
func unpredictPNG(data []byte, params Params) ([]byte, error) {
	colors := params.Int("Colors", 1)
	bpc := params.Int("BitsPerComponent", 8)
	columns := params.Int("Columns", 1)

	bpp := max(1, colors*bpc/8)
	rowLen := (columns*colors*bpc + 7) / 8
	stride := rowLen + 1
	if rowLen <= 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of row length %d", len(data), stride)
	}

	out := make([]byte, 0, len(data)/stride*rowLen)
	prev := make([]byte, rowLen)
	for off := 0; off < len(data); off += stride {
		kind := data[off]
		row := make([]byte, rowLen)
		copy(row, data[off+1:off+stride])

		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left = row[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]

			switch kind {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter type %d in row %d", kind, off/stride)
			}
		}
		out = append(out, row...)
		prev = row
	}
	return out, nil
}

// paeth picks whichever of left, up and upLeft is closest to left+up-upLeft.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
