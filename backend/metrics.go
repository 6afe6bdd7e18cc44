package backend

import "strings"

// helveticaWidths holds the standard Helvetica advance widths for the
// printable ASCII range, in thousandths of the font size, starting at space.
var helveticaWidths = [...]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // space to /
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, // 0 to 9
	278, 278, 584, 584, 584, 556, 1015, // : to @
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, // A to M
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, // N to Z
	278, 278, 278, 469, 556, 333, // [ to `
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, // a to m
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, // n to z
	334, 260, 334, 584, // { to ~
}

// courierWidth is the fixed advance of every Courier glyph.
const courierWidth = 600

// estimateAdvance returns the horizontal advance of s in PDF units for a
// reader that reported no width. Courier faces are monospaced; every other
// font is measured with Helvetica metrics, and runes outside printable ASCII
// take fallback times the font size.
func estimateAdvance(s, font string, size, fallback float64) float64 {
	if size <= 0 {
		size = 1
	}
	if fallback <= 0 {
		fallback = 0.5
	}
	mono := strings.Contains(strings.ToLower(font), "courier")

	var width float64
	for _, r := range s {
		switch {
		case mono:
			width += courierWidth / 1000.0
		case r >= ' ' && r <= '~':
			width += float64(helveticaWidths[r-' ']) / 1000
		default:
			width += fallback
		}
	}
	return width * size
}

// placeUnadvanced gives zero-width glyphs an estimated advance. Readers
// without metrics for the standard fonts report every glyph of a text run
// at the run's starting X; consecutive glyphs that share a baseline and a
// starting X are laid out one after another from the previous glyph's end.
// The input slice is not modified.
func placeUnadvanced(glyphs []Glyph, cfg GroupConfig) []Glyph {
	out := make([]Glyph, len(glyphs))
	copy(out, glyphs)

	var prevX, prevY, prevEnd float64
	havePrev := false
	for i := range out {
		g := &out[i]
		if g.S == "" || !finite(g.X, g.Y, g.W, g.FontSize) {
			continue
		}
		origX := g.X
		if g.W <= 0 {
			if havePrev && origX == prevX && g.Y == prevY {
				g.X = prevEnd
			}
			g.W = estimateAdvance(g.S, g.Font, g.FontSize, cfg.FallbackAdvance)
		}
		prevX, prevY, prevEnd, havePrev = origX, g.Y, g.X+g.W, true
	}
	return out
}
