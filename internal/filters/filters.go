// Package filters decodes the PDF stream filters found on inline images.
//
// Filters run in the order the image dictionary lists them:
//
//	data, err := filters.Decode(raw, []filters.Filter{
//	    {Name: "AHx"},
//	    {Name: "CCF", Params: filters.Params{"K": -1, "Columns": 1728}},
//	})
//
// Both full names (FlateDecode) and inline abbreviations (Fl) are accepted.
// DCTDecode is not handled here; callers decode JPEG data with image/jpeg.
package filters

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for filters this package cannot decode.
var ErrUnsupported = errors.New("unsupported filter")

// Canonical filter names.
const (
	Flate    = "FlateDecode"
	ASCIIHex = "ASCIIHexDecode"
	ASCII85  = "ASCII85Decode"
	CCITTFax = "CCITTFaxDecode"
	DCT      = "DCTDecode"
	RunLen   = "RunLengthDecode"
	LZW      = "LZWDecode"
)

var abbreviations = map[string]string{
	"Fl":  Flate,
	"AHx": ASCIIHex,
	"A85": ASCII85,
	"CCF": CCITTFax,
	"DCT": DCT,
	"RL":  RunLen,
	"LZW": LZW,
}

// Canonical returns the full filter name for an inline abbreviation, or
// name unchanged.
func Canonical(name string) string {
	if full, ok := abbreviations[name]; ok {
		return full
	}
	return name
}

// Params holds the decode parameters of one filter. Numbers may be any of
// int, int64 or float64.
type Params map[string]any

// Int returns the integer value of key, or def when missing or not numeric.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the boolean value of key, or def when missing.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Filter is one step of a decode chain.
type Filter struct {
	Name   string
	Params Params
}

// Decode runs data through chain in order.
func Decode(data []byte, chain []Filter) ([]byte, error) {
	var err error
	for _, f := range chain {
		name := Canonical(f.Name)
		switch name {
		case Flate:
			data, err = FlateDecode(data, f.Params)
		case ASCIIHex:
			data, err = ASCIIHexDecode(data)
		case ASCII85:
			data, err = ASCII85Decode(data)
		case CCITTFax:
			data, err = CCITTFaxDecode(data, f.Params)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return data, nil
}
