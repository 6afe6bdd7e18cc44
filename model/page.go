package model

// Granularity tells whether a block covers a whole line or a single span.
type Granularity int

const (
	GranularityLine Granularity = iota
	GranularitySpan
)

func (g Granularity) String() string {
	if g == GranularitySpan {
		return "span"
	}
	return "line"
}

// TextBlock is a piece of page text with its position.
type TextBlock struct {
	Text        string
	BBox        BBox // Normalized, top-left origin
	RawBBox     BBox // PDF units, bottom-left origin
	Granularity Granularity
	FontSize    float64
}

// Page represents a single page of an ingested document
type Page struct {
	Number       int         // 1-indexed page number
	Text         string      // Page text as extracted (normalized by the ingester)
	Blocks       []TextBlock // Empty when the backend has no coordinates
	Width        float64     // Page width in source units
	Height       float64     // Page height in source units
	OCRProcessed bool
}

// HasCoordinates reports whether the page carries any positioned blocks.
func (p *Page) HasCoordinates() bool {
	return len(p.Blocks) > 0
}

// Lines returns the line-granularity blocks in page order.
func (p *Page) Lines() []TextBlock {
	return p.blocksOf(GranularityLine)
}

// Spans returns the span-granularity blocks in page order.
func (p *Page) Spans() []TextBlock {
	return p.blocksOf(GranularitySpan)
}

func (p *Page) blocksOf(g Granularity) []TextBlock {
	var out []TextBlock
	for _, b := range p.Blocks {
		if b.Granularity == g {
			out = append(out, b)
		}
	}
	return out
}
