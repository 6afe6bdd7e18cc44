package layout

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tsawler/papertrail/model"
)

// Config holds layout analysis settings. Bands and widths are fractions of
// the page size.
type Config struct {
	HeaderBand           float64 `yaml:"header_band"`            // Top share of the page
	FooterBand           float64 `yaml:"footer_band"`            // Bottom share of the page
	ColumnMergeThreshold float64 `yaml:"column_merge_threshold"` // Max left-edge gap within one column
	MinColumnLines       int     `yaml:"min_column_lines"`
	MinColumnWidth       float64 `yaml:"min_column_width"`
	ShortText            int     `yaml:"short_text"`      // Max runes of a header/footer block
	TableLineRatio       float64 `yaml:"table_line_ratio"` // Share of lines with cell structure
	TableCellGap         float64 `yaml:"table_cell_gap"`   // Min horizontal gap between cell spans
	TitleFontRatio       float64 `yaml:"title_font_ratio"` // Font size over page median for a title
}

// DefaultConfig returns the default layout settings.
func DefaultConfig() Config {
	return Config{
		HeaderBand:           0.15,
		FooterBand:           0.15,
		ColumnMergeThreshold: 0.05,
		MinColumnLines:       3,
		MinColumnWidth:       0.15,
		ShortText:            40,
		TableLineRatio:       0.6,
		TableCellGap:         0.02,
		TitleFontRatio:       1.3,
	}
}

// Block is what a rule sees of one text block.
type Block struct {
	model.TextBlock
	Index      int
	PageNumber int
	Stats      PageStats
	Config     Config
}

// Rule assigns Role with Confidence to blocks that satisfy Match.
type Rule struct {
	Name       string
	Role       model.Role
	Confidence float64
	Match      func(b Block) bool
}

var (
	captionPattern    = regexp.MustCompile(`(?i)^\s*(?:fig(?:ure)?\.?|table|tab\.|scheme|plate)\s*[0-9ivx]+[a-z]?\s*(?:[.:|\-]|$|\s)`)
	pageNumberPattern = regexp.MustCompile(`(?i)^(?:page\s*|p\.\s*|pg\.?\s*|-\s*)?\d{1,4}(?:\s*(?:of|/)\s*\d{1,4})?(?:\s*-)?$`)
	cellSeparator     = regexp.MustCompile(`\t|\||\S {2,}\S`)
	titleKeywords     = regexp.MustCompile(`(?i)\b(?:study|analysis|effects?|evaluation|trial|review|towards?|approach|impact|assessment|survey|investigation)\b`)
	abstractKeywords  = []string{"background", "objective", "methods", "results", "conclusion"}

	refYear    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	refDOI     = regexp.MustCompile(`(?i)\b10\.\d{4,9}/\S+`)
	refVol     = regexp.MustCompile(`(?i)\bvol\.`)
	refPages   = regexp.MustCompile(`(?i)\bpp\.`)
	refJournal = regexp.MustCompile(`(?i)\b(?:journal|proceedings|proc\.|transactions|review|letters)\b`)
	refAuthor  = regexp.MustCompile(`^(?:\[\d+\]\s*|\d+\.\s+)?[A-Z][A-Za-z'\-]+,\s+[A-Z]\.`)
)

// DefaultRules returns the classification rules in priority order. The
// first matching rule decides the role.
func DefaultRules() []Rule {
	return []Rule{
		{"empty", model.RoleUnknown, 0.3, func(b Block) bool {
			return strings.TrimSpace(b.Text) == ""
		}},
		{"header_page_number", model.RoleHeader, 0.95, func(b Block) bool {
			return inHeader(b) && isPageNumber(b.Text)
		}},
		{"footer_page_number", model.RoleFooter, 0.95, func(b Block) bool {
			return inFooter(b) && isPageNumber(b.Text)
		}},
		{"header_short", model.RoleHeader, 0.9, func(b Block) bool {
			return inHeader(b) && isShort(b) && b.PageNumber > 1
		}},
		{"footer_short", model.RoleFooter, 0.9, func(b Block) bool {
			return inFooter(b) && isShort(b)
		}},
		{"caption", model.RoleCaption, 0.95, func(b Block) bool {
			return captionPattern.MatchString(b.Text)
		}},
		{"table", model.RoleTable, 0.8, isTable},
		{"title", model.RoleTitle, 0.85, isTitle},
		{"abstract", model.RoleAbstract, 0.85, isAbstract},
		{"reference", model.RoleReference, 0.8, isReference},
		{"column", model.RoleColumn, 0.75, inSecondaryColumn},
		{"body_text", model.RoleBodyText, 0.7, func(Block) bool { return true }},
	}
}

func inHeader(b Block) bool {
	return b.BBox.Y < b.Stats.HeaderBand
}

func inFooter(b Block) bool {
	return b.BBox.Bottom() > b.Stats.FooterBand
}

func isShort(b Block) bool {
	return len([]rune(strings.TrimSpace(b.Text))) <= b.Config.ShortText
}

func isPageNumber(s string) bool {
	return pageNumberPattern.MatchString(strings.TrimSpace(s))
}

// isTable reports whether a block belongs to a run of tabular lines, or is
// a multi-line block with cell structure on enough of its lines.
func isTable(b Block) bool {
	if b.Stats.TableBlocks[b.Index] {
		return true
	}
	lines := strings.Split(strings.TrimSpace(b.Text), "\n")
	if len(lines) < 2 {
		return false
	}
	cells := 0
	for _, l := range lines {
		if cellSeparator.MatchString(l) {
			cells++
		}
	}
	return float64(cells)/float64(len(lines)) >= b.Config.TableLineRatio
}

func isTitle(b Block) bool {
	if b.PageNumber != 1 || b.BBox.Y >= 0.3 {
		return false
	}
	text := strings.TrimSpace(b.Text)
	n := len([]rune(text))
	if n < 10 || n > 250 || strings.HasSuffix(text, ".") {
		return false
	}
	if isAllCaps(text) {
		return true
	}
	if b.Stats.MedianFontSize > 0 && b.FontSize >= b.Stats.MedianFontSize*b.Config.TitleFontRatio {
		return true
	}
	return titleKeywords.MatchString(text)
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 4
}

func isAbstract(b Block) bool {
	if b.PageNumber != 1 || b.BBox.Y <= 0.1 || b.BBox.Y >= 0.4 {
		return false
	}
	lower := strings.ToLower(b.Text)
	hits := 0
	for _, kw := range abstractKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits >= 2
}

func isReference(b Block) bool {
	if refAuthor.MatchString(strings.TrimSpace(b.Text)) {
		return true
	}
	hits := 0
	for _, p := range []*regexp.Regexp{refYear, refDOI, refVol, refPages, refJournal} {
		if p.MatchString(b.Text) {
			hits++
		}
	}
	return hits >= 2
}

func inSecondaryColumn(b Block) bool {
	if !b.Stats.MultiColumn() {
		return false
	}
	for i, col := range b.Stats.Columns {
		if i != b.Stats.Primary && col.Covers(b.BBox.X, b.BBox.Right(), b.Config.ColumnMergeThreshold) {
			return true
		}
	}
	return false
}
