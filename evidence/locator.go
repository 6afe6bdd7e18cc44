package evidence

import (
	"math"
	"strings"
	"unicode"

	"github.com/tsawler/papertrail/model"
	"github.com/tsawler/papertrail/textnorm"
)

// Config holds locator settings.
type Config struct {
	// Threshold is the minimum block score for a match (0-1)
	Threshold float64 `yaml:"threshold"`

	// AdjacencyWindow is the largest block-index gap between matches that
	// are merged into one box
	AdjacencyWindow int `yaml:"adjacency_window"`

	// MinTokenLength is the shortest word counted as a token
	MinTokenLength int `yaml:"min_token_length"`
}

// DefaultConfig returns the default locator settings.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.5,
		AdjacencyWindow: 3,
		MinTokenLength:  3,
	}
}

// Locator maps text snippets back to a page and a normalized bounding box.
// It only reads the pages it was built from and is safe for concurrent use.
type Locator struct {
	pages  []*model.Page
	config Config
}

// Match is the outcome of a lookup.
type Match struct {
	Page    int
	BBox    model.BBox
	Score   float64
	Matched bool // False when BBox is the fallback estimate
}

// NewLocator creates a locator over pages.
func NewLocator(pages []*model.Page, config Config) *Locator {
	if config.AdjacencyWindow < 0 {
		config.AdjacencyWindow = 0
	}
	return &Locator{pages: pages, config: config}
}

// Locate returns the page and box of snippet. hint is a 1-indexed page
// searched first; pass 0 when unknown. Locate never fails: when nothing
// matches it returns a deterministic estimate.
//
// Block and snippet are both canonicalized with [textnorm.Normalize] and
// compared case-insensitively. A block scores 1 when it contains the
// snippet, or when the snippet contains the block and the block has at
// least two tokens; a one-word block inside the snippet only scores by
// token overlap.
func (l *Locator) Locate(snippet string, hint int) (int, model.BBox) {
	m := l.Find(snippet, hint)
	return m.Page, m.BBox
}

// Evidence locates snippet and wraps the result with caller metadata.
func (l *Locator) Evidence(snippet string, hint int, meta map[string]any) model.EvidenceItem {
	m := l.Find(snippet, hint)
	return model.EvidenceItem{
		Snippet:  snippet,
		Page:     m.Page,
		BBox:     m.BBox,
		Score:    m.Score,
		Matched:  m.Matched,
		Metadata: meta,
	}
}

// Find is Locate with the match score.
func (l *Locator) Find(snippet string, hint int) Match {
	q := newQuery(snippet, l.config.MinTokenLength)

	if q.text != "" {
		hinted := l.pageByNumber(hint)
		if hinted != nil {
			if m, ok := l.searchPage(hinted, q); ok {
				return m
			}
		}

		var best Match
		for _, p := range l.pages {
			if p == nil || p == hinted {
				continue
			}
			if m, ok := l.searchPage(p, q); ok && m.Score > best.Score {
				best = m
			}
		}
		if best.Matched {
			return best
		}
	}

	page := 1
	if l.pageByNumber(hint) != nil || (hint >= 1 && len(l.pages) == 0) {
		page = hint
	}
	return Match{Page: page, BBox: Estimate(snippet, page)}
}

func (l *Locator) pageByNumber(n int) *model.Page {
	if n < 1 {
		return nil
	}
	for _, p := range l.pages {
		if p != nil && p.Number == n {
			return p
		}
	}
	return nil
}

// candidates returns the blocks a page is searched over: its lines, or all
// blocks when the backend produced no line blocks.
func candidates(p *model.Page) []model.TextBlock {
	if lines := p.Lines(); len(lines) > 0 {
		return lines
	}
	return p.Blocks
}

// searchPage scores every block and groups index-adjacent matches. The
// group with the highest score wins; its box is the envelope of its blocks.
func (l *Locator) searchPage(p *model.Page, q query) (Match, bool) {
	blocks := candidates(p)

	var (
		best      Match
		found     bool
		group     []model.BBox
		groupBest float64
		lastIdx   = -1
	)
	flush := func() {
		if len(group) > 0 && (!found || groupBest > best.Score) {
			best = Match{Page: p.Number, BBox: model.Envelope(group...), Score: groupBest, Matched: true}
			found = true
		}
		group = group[:0]
		groupBest = 0
	}

	for i, b := range blocks {
		s := l.score(q, b.Text)
		if s < l.config.Threshold || s == 0 {
			continue
		}
		if lastIdx >= 0 && i-lastIdx > l.config.AdjacencyWindow {
			flush()
		}
		group = append(group, b.BBox)
		groupBest = max(groupBest, s)
		lastIdx = i
	}
	flush()
	return best, found
}

// score rates how well a block matches the query. Containment either way
// scores 1; a block contained in the snippet needs at least two tokens so
// stray words do not match everywhere. Otherwise the score is the token
// overlap over the larger token set.
func (l *Locator) score(q query, blockText string) float64 {
	text := normalize(blockText)
	if text == "" {
		return 0
	}
	btoks := tokenSet(text, l.config.MinTokenLength)
	if strings.Contains(text, q.text) {
		return 1
	}
	if len(btoks) >= 2 && strings.Contains(q.text, text) {
		return 1
	}
	if len(q.tokens) == 0 || len(btoks) == 0 {
		return 0
	}
	common := 0
	for tok := range q.tokens {
		if btoks[tok] {
			common++
		}
	}
	return float64(common) / float64(max(len(q.tokens), len(btoks)))
}

// Estimate is the box used when a snippet cannot be located: a full-width
// band whose height grows with snippet length (one line per 50 characters)
// and whose vertical position varies by page.
func Estimate(snippet string, page int) model.BBox {
	if page < 1 {
		page = 1
	}
	lines := float64(len([]rune(snippet))) / 50
	h := math.Min(math.Max(lines*0.03, 0.05), 0.3)
	y := 0.2 + math.Mod(float64(page-1)*0.1, 0.5)
	return model.NewBBox(0.1, y, 0.8, h)
}

type query struct {
	text   string
	tokens map[string]bool
}

func newQuery(snippet string, minLen int) query {
	text := normalize(snippet)
	return query{text: text, tokens: tokenSet(text, minLen)}
}

// normalize canonicalizes ligatures, quotes and dashes, lowercases s and
// collapses whitespace runs to one space.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(textnorm.Normalize(s))), " ")
}

func tokenSet(s string, minLen int) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) >= minLen {
			set[w] = true
		}
	}
	return set
}
