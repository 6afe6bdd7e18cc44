package citations

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/papertrail/model"
)

// Year forms in priority order: (2020), [2020], "; 2020;" and bare.
var yearForms = []*regexp.Regexp{
	regexp.MustCompile(`\(\s*(\d{4})[a-z]?\s*\)`),
	regexp.MustCompile(`\[\s*(\d{4})\s*\]`),
	regexp.MustCompile(`[.;,]\s*(\d{4})[a-z]?\s*[;.:,)]`),
	regexp.MustCompile(`\b(\d{4})\b`),
}

var (
	apaParts   = regexp.MustCompile(`^(.+?)\s*\(\s*(?:19|20)\d{2}[a-z]?\s*\)\.\s*(.+?[.?!])(?:\s+(.*))?$`)
	apaSource  = regexp.MustCompile(`^([^,]+),\s*(\d+)(?:\s*\(([^)]+)\))?(?:,\s*([A-Za-z]?\d+(?:\s*-\s*[A-Za-z]?\d+)?))?`)
	apaAuthor  = regexp.MustCompile(`[A-Z][A-Za-z'\-]+(?:[ \t][A-Z][A-Za-z'\-]+)*,[ \t]*(?:[A-Z]\.[ \t]?-?)+`)
	vancTail   = regexp.MustCompile(`\.\s*(?:19|20)\d{2}[^;]*;\s*(\d+)(?:\(([^)]*)\))?:\s*([A-Za-z]?\d+(?:-[A-Za-z]?\d+)?)`)
	ieeeParts  = regexp.MustCompile(`^(.+?),\s*"([^"]+?),?"\s*(?:in\s+)?([^,]+)`)
	mlaParts   = regexp.MustCompile(`^(.+?)\.\s*"([^"]+?)\.?"\s*([^,]+)`)
	chicagoQ   = regexp.MustCompile(`^(.+?)\.\s*"([^"]+?)\.?"\s*([^0-9]+?)\s*(\d+)(?:,\s*no\.\s*(\d+))?\s*\(\s*(?:19|20)\d{2}\s*\)\s*:\s*(\d+(?:-\d+)?)`)
	chicagoU   = regexp.MustCompile(`^(.+?)\.\s*([^."]+)\.\s*([^0-9]+?)\s*(\d+)(?:,\s*no\.\s*(\d+))?\s*\(\s*(?:19|20)\d{2}\s*\)\s*:\s*(\d+(?:-\d+)?)`)
	quotedAny  = regexp.MustCompile(`"([^"]{10,})"`)
	leadNames  = regexp.MustCompile(`^([A-Z][^.]{1,150}?)\.\s`)
	shortName  = regexp.MustCompile(`^[A-Z][A-Za-z'\-]+ [A-Z]{1,3}$`)
	volumeMark = regexp.MustCompile(`(?i)\bvol(?:ume)?\.?\s*(\d+)`)
	issueMark  = regexp.MustCompile(`(?i)\b(?:no|issue)\.?\s*(\d+)`)
	pagesMark  = regexp.MustCompile(`(?i)\bpp?\.\s*([A-Za-z]?\d+(?:\s*-\s*[A-Za-z]?\d+)?)`)
	andSplit   = regexp.MustCompile(`\s*,?\s+and\s+|\s*&\s*|\s*;\s*`)
	etAl       = regexp.MustCompile(`(?i),?\s*et\s+al\.?$`)
)

// Parse classifies raw with the extractor's style table and extracts its
// fields. Fields that cannot be found are left empty.
func (e *Extractor) Parse(raw string) model.Citation {
	c := model.Citation{
		Raw:   raw,
		Style: classify(e.config.StyleRules, raw),
		Year:  ExtractYear(raw),
		DOI:   firstDOI(raw),
		URL:   firstURL(raw),
	}

	switch c.Style {
	case model.StyleAPA:
		parseAPA(raw, &c)
	case model.StyleVancouver:
		parseVancouver(raw, &c)
	case model.StyleIEEE:
		parseIEEE(raw, &c)
	case model.StyleMLA:
		parseMLA(raw, &c)
	case model.StyleChicago:
		parseChicago(raw, &c)
	}
	parseGeneric(raw, &c)
	return c
}

// Parse parses one entry with the default configuration.
func Parse(raw string) model.Citation {
	return NewExtractor().Parse(raw)
}

// ExtractYear returns the first year between 1900 and 2100, trying
// parenthesized, bracketed, punctuated and bare forms in that order.
func ExtractYear(s string) string {
	for _, form := range yearForms {
		for _, m := range form.FindAllStringSubmatch(s, -1) {
			if y, err := strconv.Atoi(m[1]); err == nil && y >= 1900 && y <= 2100 {
				return m[1]
			}
		}
	}
	return ""
}

func firstDOI(s string) string {
	if m := doiPattern.FindString(s); m != "" {
		return trimIdentifier(m)
	}
	return ""
}

func firstURL(s string) string {
	if m := urlPattern.FindString(s); m != "" {
		return trimIdentifier(m)
	}
	return ""
}

func parseAPA(raw string, c *model.Citation) {
	m := apaParts.FindStringSubmatch(raw)
	if m == nil {
		return
	}
	for _, a := range apaAuthor.FindAllString(m[1], -1) {
		c.Authors = append(c.Authors, strings.TrimRight(strings.TrimSpace(a), ","))
	}
	c.Title = trimField(m[2])
	if s := apaSource.FindStringSubmatch(m[3]); s != nil {
		c.Journal = trimField(s[1])
		c.Volume = s[2]
		c.Issue = s[3]
		c.Pages = compactRange(s[4])
	}
}

func parseVancouver(raw string, c *model.Citation) {
	loc := vancTail.FindStringSubmatchIndex(raw)
	if loc == nil {
		return
	}
	c.Volume = raw[loc[2]:loc[3]]
	if loc[4] >= 0 {
		c.Issue = raw[loc[4]:loc[5]]
	}
	c.Pages = raw[loc[6]:loc[7]]

	parts := strings.Split(raw[:loc[0]], ". ")
	c.Authors = splitAuthors(parts[0], true)
	if len(parts) > 1 {
		c.Title = trimField(parts[1])
	}
	if len(parts) > 2 {
		c.Journal = trimField(strings.Join(parts[2:], ". "))
	}
}

func parseIEEE(raw string, c *model.Citation) {
	m := ieeeParts.FindStringSubmatch(raw)
	if m == nil {
		return
	}
	c.Authors = splitAuthors(m[1], true)
	c.Title = trimField(m[2])
	c.Journal = trimField(m[3])
}

func parseMLA(raw string, c *model.Citation) {
	m := mlaParts.FindStringSubmatch(raw)
	if m == nil {
		return
	}
	c.Authors = splitAuthors(m[1], false)
	c.Title = trimField(m[2])
	c.Journal = trimField(m[3])
}

func parseChicago(raw string, c *model.Citation) {
	m := chicagoQ.FindStringSubmatch(raw)
	if m == nil {
		m = chicagoU.FindStringSubmatch(raw)
	}
	if m == nil {
		return
	}
	c.Authors = splitAuthors(m[1], false)
	c.Title = trimField(m[2])
	c.Journal = trimField(m[3])
	c.Volume = m[4]
	c.Issue = m[5]
	c.Pages = m[6]
}

// parseGeneric fills fields the style parser left empty.
func parseGeneric(raw string, c *model.Citation) {
	if c.Title == "" {
		if m := quotedAny.FindStringSubmatch(raw); m != nil {
			c.Title = trimField(m[1])
		} else if parts := strings.Split(raw, ". "); len(parts) > 2 && len(parts[1]) >= 10 {
			c.Title = trimField(parts[1])
		}
	}
	if len(c.Authors) == 0 {
		head := raw
		if len(head) > 200 {
			head = head[:200]
		}
		for _, a := range apaAuthor.FindAllString(head, -1) {
			c.Authors = append(c.Authors, strings.TrimRight(strings.TrimSpace(a), ","))
		}
		if len(c.Authors) == 0 {
			if m := leadNames.FindStringSubmatch(raw); m != nil {
				c.Authors = splitAuthors(m[1], true)
			}
		}
	}
	if c.Volume == "" {
		if m := volumeMark.FindStringSubmatch(raw); m != nil {
			c.Volume = m[1]
		}
	}
	if c.Issue == "" {
		if m := issueMark.FindStringSubmatch(raw); m != nil {
			c.Issue = m[1]
		}
	}
	if c.Pages == "" {
		if m := pagesMark.FindStringSubmatch(raw); m != nil {
			c.Pages = compactRange(m[1])
		}
	}
}

// splitAuthors splits an author list on "and", "&" and ";". When
// commaSeparated is set, commas separate authors too; otherwise a comma may
// sit inside one name ("Smith, John"), except between "Last F" forms.
func splitAuthors(s string, commaSeparated bool) []string {
	s = etAl.ReplaceAllString(strings.TrimSpace(s), "")
	var out []string
	for _, part := range andSplit.Split(s, -1) {
		var names []string
		if commaSeparated || allShortNames(part) {
			names = strings.Split(part, ",")
		} else {
			names = []string{part}
		}
		for _, n := range names {
			if n = trimField(n); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

func allShortNames(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if !shortName.MatchString(strings.TrimSpace(p)) {
			return false
		}
	}
	return true
}

func trimField(s string) string {
	return strings.Trim(strings.TrimSpace(s), ` ,.;:"`)
}

func compactRange(s string) string {
	return strings.Join(strings.Fields(s), "")
}
