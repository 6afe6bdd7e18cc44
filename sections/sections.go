package sections

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/papertrail/model"
)

// Names of the synthetic sections.
const (
	Preamble = "Preamble"
	Body     = "Body"
)

// HeadingRule names a section and the pattern that recognizes its heading.
type HeadingRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// numbering matches optional heading prefixes like "3.", "3.2 ", "IV." or "(2)".
const numbering = `(?:\(?(?:\d+(?:\.\d+)*|[ivxlc]+)[.)]?[ \t]+)?`

// lineHeading builds a pattern for a heading that occupies its own line,
// optionally followed by a colon or period.
func lineHeading(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*` + numbering + `(?:` + alternatives + `)[ \t]*[:.]?[ \t]*$`)
}

// inlineHeading builds a pattern for a heading that may be followed by
// body text on the same line ("Abstract: We study...").
func inlineHeading(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*` + numbering + `(?:` + alternatives + `)(?:[ \t]*[:.\-][ \t]*|[ \t]*$)`)
}

// DefaultHeadingRules returns the heading table in priority order. When two
// rules match at the same position the earlier one wins.
func DefaultHeadingRules() []HeadingRule {
	return []HeadingRule{
		{"Abstract", inlineHeading(`abstract|summary`)},
		{"Keywords", inlineHeading(`key[ \t]?words|index terms`)},
		{"Introduction", lineHeading(`introduction`)},
		{"Background", lineHeading(`background`)},
		{"Related Work", lineHeading(`related work|literature review|prior work`)},
		{"Methods", lineHeading(`methods?|methodology|materials and methods|methods and materials|patients and methods|participants and methods|data and methods|study design|research design|experimental (?:design|setup|procedures?)`)},
		{"Results", lineHeading(`results|findings|results and discussion`)},
		{"Discussion", lineHeading(`discussion|general discussion`)},
		{"Limitations", lineHeading(`limitations|strengths and limitations|limitations of the study`)},
		{"Conclusion", lineHeading(`conclusions?|concluding remarks|summary and conclusions?`)},
		{"Acknowledgments", lineHeading(`acknowledge?ments?`)},
		{"Funding", lineHeading(`funding|funding sources|financial support`)},
		{"References", lineHeading(`references|bibliography|works cited|literature cited|reference list`)},
		{"Appendix", lineHeading(`appendix(?:[ \t]+[a-z0-9]+)?|appendices|supplementary (?:materials?|information)`)},
	}
}

// Config holds segmentation settings.
type Config struct {
	// Rules is the ordered heading table
	Rules []HeadingRule

	// MinPreambleChars is the amount of non-blank text that must precede
	// the first heading for it to become a Preamble section. Shorter
	// leading text is absorbed by the first section.
	MinPreambleChars int

	// MethodologyHeading matches headings of sections that describe how a
	// study was carried out
	MethodologyHeading *regexp.Regexp

	// MethodologyPhrases are the lowercase phrases that mark a methodology
	// paragraph when no methodology section exists
	MethodologyPhrases []string

	// MaxMethodologyParagraphs caps the fallback paragraph scan
	MaxMethodologyParagraphs int
}

// DefaultConfig returns sensible default segmentation settings.
func DefaultConfig() Config {
	return Config{
		Rules:                    DefaultHeadingRules(),
		MinPreambleChars:         50,
		MethodologyHeading:       regexp.MustCompile(`(?i)method|procedure|design|material|participant|subject|sampling|data collection`),
		MethodologyPhrases:       DefaultMethodologyPhrases(),
		MaxMethodologyParagraphs: 10,
	}
}

// DefaultMethodologyPhrases returns phrases that indicate a paragraph
// describing study methods.
func DefaultMethodologyPhrases() []string {
	return []string{
		"we conducted",
		"we performed",
		"we recruited",
		"participants were",
		"patients were",
		"subjects were",
		"data were collected",
		"data was collected",
		"were randomized",
		"were randomly assigned",
		"study design",
		"inclusion criteria",
		"exclusion criteria",
		"sample size",
		"statistical analysis",
		"was approved by",
	}
}

// Segmenter splits text into sections.
type Segmenter struct {
	config Config
}

// NewSegmenter creates a segmenter with default configuration.
func NewSegmenter() *Segmenter {
	return &Segmenter{config: DefaultConfig()}
}

// NewSegmenterWithConfig creates a segmenter with custom configuration.
func NewSegmenterWithConfig(config Config) *Segmenter {
	return &Segmenter{config: config}
}

// Segment splits text with the default configuration.
func Segment(text string) []model.Section {
	return NewSegmenter().Segment(text)
}

type headingMatch struct {
	name       string
	start, end int
}

// Segment splits text into sections. The result is never empty: text
// without any recognized heading is a single Body section.
func (s *Segmenter) Segment(text string) []model.Section {
	matches := s.findHeadings(text)
	if len(matches) == 0 {
		return []model.Section{{Name: Body, Start: 0, End: len(text), Text: text}}
	}

	var out []model.Section
	absorb := false
	if lead := text[:matches[0].start]; len(strings.TrimSpace(lead)) > s.config.MinPreambleChars {
		out = append(out, model.Section{Name: Preamble, Start: 0, End: len(lead), Text: lead})
	} else {
		absorb = true
	}

	for i, m := range matches {
		start, end := m.start, len(text)
		if i == 0 && absorb {
			start = 0
		}
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		out = append(out, model.Section{
			Name:    m.name,
			Heading: strings.TrimSpace(text[m.start:m.end]),
			Start:   start,
			End:     end,
			Text:    text[m.end:end],
		})
	}
	return out
}

// findHeadings returns heading matches sorted by position. A match that
// starts inside an earlier one is discarded.
func (s *Segmenter) findHeadings(text string) []headingMatch {
	var all []headingMatch
	for _, rule := range s.config.Rules {
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			all = append(all, headingMatch{name: rule.Name, start: loc[0], end: loc[1]})
		}
	}

	// Stable sort keeps rule order for equal starts.
	sort.SliceStable(all, func(i, j int) bool { return all[i].start < all[j].start })

	var out []headingMatch
	for _, m := range all {
		if len(out) > 0 && m.start < out[len(out)-1].end {
			continue
		}
		out = append(out, m)
	}
	return out
}
