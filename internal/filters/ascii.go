package filters

import (
	"bytes"
	"encoding/ascii85"
	"encoding/hex"
	"io"
)

// ASCIIHexDecode decodes hex digit pairs up to the > marker. Whitespace is
// ignored and an odd final digit is padded with 0.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	if i := bytes.IndexByte(data, '>'); i >= 0 {
		data = data[:i]
	}
	digits := bytes.Map(func(r rune) rune {
		if isWhitespace(byte(r)) {
			return -1
		}
		return r
	}, data)
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, err
	}
	return out, nil
}

// ASCII85Decode decodes base-85 data up to the ~> marker.
func ASCII85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("<~"))
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}
	return io.ReadAll(ascii85.NewDecoder(bytes.NewReader(data)))
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
