package backend

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/papertrail/model"
)

// Glyph is one positioned character run as reported by a PDF reader. X and Y
// locate the baseline start in PDF units (bottom-left origin).
type Glyph struct {
	S        string
	X        float64
	Y        float64
	W        float64
	FontSize float64
	Font     string
}

// GroupConfig holds the thresholds used to group glyphs into spans and lines.
type GroupConfig struct {
	// LineTolerance is the baseline difference, as a fraction of the font
	// size, within which glyphs share a line
	LineTolerance float64 `yaml:"line_tolerance"`

	// WordGap is the horizontal gap, as a fraction of the font size, above
	// which a space is inserted
	WordGap float64 `yaml:"word_gap"`

	// SpanGap is the horizontal gap, as a fraction of the font size, above
	// which a new span starts
	SpanGap float64 `yaml:"span_gap"`

	// MinSpanWidth and MinSpanHeight drop tiny spans (normalized units).
	// Lines are never dropped for size.
	MinSpanWidth  float64 `yaml:"min_span_width"`
	MinSpanHeight float64 `yaml:"min_span_height"`

	// FallbackAdvance is the width, as a fraction of the font size, given to
	// a zero-width glyph rune that has no standard metric
	FallbackAdvance float64 `yaml:"fallback_advance"`
}

// DefaultGroupConfig returns the grouping thresholds used by the ledongthuc
// backend.
func DefaultGroupConfig() GroupConfig {
	return GroupConfig{
		LineTolerance:   0.5,
		WordGap:         0.2,
		SpanGap:         1.5,
		MinSpanWidth:    0.005,
		MinSpanHeight:   0.004,
		FallbackAdvance: 0.5,
	}
}

// PageBox is the page MediaBox in PDF units.
type PageBox struct {
	LLX, LLY float64
	Width    float64
	Height   float64
}

type span struct {
	text     strings.Builder
	font     string
	fontSize float64
	x0, x1   float64
	baseline float64
}

func (s *span) box() model.BBox {
	// Descenders sit roughly a fifth of the font size below the baseline.
	return model.BBox{
		X:      s.x0,
		Y:      s.baseline - 0.2*s.fontSize,
		Width:  s.x1 - s.x0,
		Height: s.fontSize,
	}
}

type line struct {
	baseline float64
	fontSize float64
	glyphs   []Glyph
}

// GroupGlyphs merges glyphs into spans and lines and returns both as text
// blocks in reading order (top to bottom, each line followed by its spans),
// the page text built from the lines, and the number of blocks dropped for
// inconsistent geometry. Glyphs reported without a width get an estimated
// advance first.
func GroupGlyphs(glyphs []Glyph, page PageBox, cfg GroupConfig) ([]model.TextBlock, string, int) {
	lines, dropped := groupLines(placeUnadvanced(glyphs, cfg), cfg)

	var blocks []model.TextBlock
	var text []string

	for _, ln := range lines {
		spans := splitSpans(ln, cfg)

		var lineParts []string
		var lineBox model.BBox
		var spanBlocks []model.TextBlock
		haveBox := false

		for _, sp := range spans {
			st := strings.TrimSpace(sp.text.String())
			if st == "" {
				continue
			}
			raw := sp.box()
			if !raw.IsValid() {
				dropped++
				continue
			}
			lineParts = append(lineParts, st)
			if haveBox {
				lineBox = lineBox.Union(raw)
			} else {
				lineBox, haveBox = raw, true
			}

			norm := normalizeBox(raw, page)
			if norm.Width < cfg.MinSpanWidth || norm.Height < cfg.MinSpanHeight {
				continue
			}
			spanBlocks = append(spanBlocks, model.TextBlock{
				Text:        st,
				BBox:        norm,
				RawBBox:     raw,
				Granularity: model.GranularitySpan,
				FontSize:    sp.fontSize,
			})
		}

		if !haveBox {
			continue
		}
		lineText := strings.Join(lineParts, " ")
		text = append(text, lineText)

		norm := normalizeBox(lineBox, page)
		if !norm.IsValid() {
			dropped++
			continue
		}
		blocks = append(blocks, model.TextBlock{
			Text:        lineText,
			BBox:        norm,
			RawBBox:     lineBox,
			Granularity: model.GranularityLine,
			FontSize:    ln.fontSize,
		})
		blocks = append(blocks, spanBlocks...)
	}

	return blocks, strings.Join(text, "\n"), dropped
}

func normalizeBox(raw model.BBox, page PageBox) model.BBox {
	shifted := model.BBox{X: raw.X - page.LLX, Y: raw.Y - page.LLY, Width: raw.Width, Height: raw.Height}
	return shifted.Normalize(page.Width, page.Height)
}

// groupLines buckets glyphs by baseline and orders lines top to bottom and
// glyphs left to right. Glyphs with non-finite geometry are counted and
// skipped.
func groupLines(glyphs []Glyph, cfg GroupConfig) ([]*line, int) {
	var lines []*line
	bad := 0
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if !finite(g.X, g.Y, g.W, g.FontSize) {
			bad++
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 1
		}

		var target *line
		for _, ln := range lines {
			tol := cfg.LineTolerance * math.Max(ln.fontSize, size)
			if math.Abs(ln.baseline-g.Y) <= tol {
				target = ln
				break
			}
		}
		if target == nil {
			target = &line{baseline: g.Y, fontSize: size}
			lines = append(lines, target)
		}
		target.glyphs = append(target.glyphs, g)
		if size > target.fontSize {
			target.fontSize = size
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].baseline > lines[j].baseline
	})
	for _, ln := range lines {
		sort.SliceStable(ln.glyphs, func(i, j int) bool {
			return ln.glyphs[i].X < ln.glyphs[j].X
		})
	}
	return lines, bad
}

// splitSpans cuts a line into spans at font changes and wide gaps, adding a
// space where a narrower gap separates words.
func splitSpans(ln *line, cfg GroupConfig) []*span {
	var spans []*span
	var cur *span

	for _, g := range ln.glyphs {
		size := g.FontSize
		if size <= 0 {
			size = ln.fontSize
		}
		if cur != nil {
			gap := g.X - cur.x1
			sameFont := g.Font == cur.font && math.Abs(size-cur.fontSize) < 0.5
			if !sameFont || gap > cfg.SpanGap*size {
				cur = nil
			} else if gap > cfg.WordGap*size && !strings.HasSuffix(cur.text.String(), " ") && g.S != " " {
				cur.text.WriteByte(' ')
			}
		}
		if cur == nil {
			cur = &span{font: g.Font, fontSize: size, x0: g.X, x1: g.X, baseline: ln.baseline}
			spans = append(spans, cur)
		}
		cur.text.WriteString(g.S)
		if end := g.X + g.W; end > cur.x1 {
			cur.x1 = end
		}
	}
	return spans
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
