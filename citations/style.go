package citations

import (
	"regexp"

	"github.com/tsawler/papertrail/model"
)

// StyleRule assigns Style to entries that match every pattern in All.
type StyleRule struct {
	Style model.CitationStyle
	All   []*regexp.Regexp
}

// Matches reports whether every pattern of the rule matches s.
func (r StyleRule) Matches(s string) bool {
	if len(r.All) == 0 {
		return false
	}
	for _, p := range r.All {
		if !p.MatchString(s) {
			return false
		}
	}
	return true
}

var (
	apaYearTitle     = regexp.MustCompile(`\(\s*(?:19|20)\d{2}[a-z]?\s*\)\.\s+\S`)
	vancouverVolume  = regexp.MustCompile(`\.\s*(?:19|20)\d{2}(?:\s+[A-Z][a-z]{2}(?:\s+\d{1,2})?)?;\s*\d+(?:\([^)]*\))?:\s*[A-Za-z]?\d+`)
	quotedTitleComma = regexp.MustCompile(`"[^"]+,"`)
	quotedTitleStop  = regexp.MustCompile(`"[^"]+\."`)
	volMarker        = regexp.MustCompile(`(?i)\bvol\.\s*\d+`)
	inProceedings    = regexp.MustCompile(`"[^"]+,"\s+in\s+`)
	chicagoYearPages = regexp.MustCompile(`\(\s*(?:19|20)\d{2}\s*\)\s*:\s*\d+`)
)

// DefaultStyleRules returns the style table in priority order.
func DefaultStyleRules() []StyleRule {
	return []StyleRule{
		{model.StyleAPA, []*regexp.Regexp{apaYearTitle}},
		{model.StyleVancouver, []*regexp.Regexp{vancouverVolume}},
		{model.StyleIEEE, []*regexp.Regexp{quotedTitleComma, volMarker}},
		{model.StyleIEEE, []*regexp.Regexp{inProceedings}},
		{model.StyleMLA, []*regexp.Regexp{quotedTitleStop, volMarker}},
		{model.StyleChicago, []*regexp.Regexp{chicagoYearPages}},
	}
}

// ClassifyStyle returns the style of the first matching default rule.
func ClassifyStyle(raw string) model.CitationStyle {
	return classify(DefaultStyleRules(), raw)
}

func classify(rules []StyleRule, raw string) model.CitationStyle {
	for _, r := range rules {
		if r.Matches(raw) {
			return r.Style
		}
	}
	return model.StyleUnknown
}
