package contentstream

// InlineImage is an image embedded directly in a content stream between the
// BI, ID and EI operators. Params holds the image dictionary with
// abbreviated keys and values expanded to their full names.
type InlineImage struct {
	Params Dict
	Data   []byte
}

// Width returns the image width in samples, or 0 when missing.
func (img InlineImage) Width() int {
	return int(number(img.Params["Width"]))
}

// Height returns the image height in samples, or 0 when missing.
func (img InlineImage) Height() int {
	return int(number(img.Params["Height"]))
}

// Area returns Width times Height.
func (img InlineImage) Area() int {
	return img.Width() * img.Height()
}

// Filters returns the image's filter names in application order.
func (img InlineImage) Filters() []string {
	switch v := img.Params["Filter"].(type) {
	case Name:
		return []string{string(v)}
	case Array:
		var names []string
		for _, o := range v {
			if n, ok := o.(Name); ok {
				names = append(names, string(n))
			}
		}
		return names
	}
	return nil
}

// DecodeParams returns the decode parameter dictionary for the i-th filter,
// or nil.
func (img InlineImage) DecodeParams(i int) Dict {
	switch v := img.Params["DecodeParms"].(type) {
	case Dict:
		if i == 0 {
			return v
		}
	case Array:
		if i < len(v) {
			if d, ok := v[i].(Dict); ok {
				return d
			}
		}
	}
	return nil
}

var inlineKeys = map[string]string{
	"BPC": "BitsPerComponent",
	"CS":  "ColorSpace",
	"D":   "Decode",
	"DP":  "DecodeParms",
	"F":   "Filter",
	"H":   "Height",
	"IM":  "ImageMask",
	"I":   "Interpolate",
	"W":   "Width",
}

var inlineColorSpaces = map[Name]Name{
	"G":    "DeviceGray",
	"RGB":  "DeviceRGB",
	"CMYK": "DeviceCMYK",
	"I":    "Indexed",
}

// InlineImages parses data and returns every inline image it contains, in
// stream order. On a parse error the images found before it are returned
// with the error.
func InlineImages(data []byte) ([]InlineImage, error) {
	ops, err := NewParser(data).Parse()

	var images []InlineImage
	for _, op := range ops {
		if op.Operator != "ID" {
			continue
		}
		images = append(images, InlineImage{Params: inlineParams(op.Operands), Data: op.Data})
	}
	return images, err
}

// inlineParams pairs up /Key value operands, expanding abbreviations.
func inlineParams(operands []Operand) Dict {
	params := Dict{}
	for i := 0; i+1 < len(operands); i += 2 {
		key, ok := operands[i].(Name)
		if !ok {
			continue
		}
		k := string(key)
		if full, ok := inlineKeys[k]; ok {
			k = full
		}
		value := operands[i+1]
		if k == "ColorSpace" {
			if cs, ok := value.(Name); ok {
				if full, ok := inlineColorSpaces[cs]; ok {
					value = full
				}
			}
		}
		params[k] = value
	}
	return params
}
