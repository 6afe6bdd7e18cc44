package model

// CitationStyle is a bibliographic formatting convention.
type CitationStyle string

const (
	StyleAPA       CitationStyle = "apa"
	StyleVancouver CitationStyle = "vancouver"
	StyleIEEE      CitationStyle = "ieee"
	StyleMLA       CitationStyle = "mla"
	StyleChicago   CitationStyle = "chicago"
	StyleUnknown   CitationStyle = "unknown"
)

// Citation is one parsed bibliography entry. Every field other than Raw,
// Number and Style is best effort and may be empty.
type Citation struct {
	Raw     string
	Number  int // Sequential, 1-indexed
	Style   CitationStyle
	Authors []string
	Title   string
	Journal string
	Year    string
	Volume  string
	Issue   string
	Pages   string
	DOI     string
	URL     string
}

// HasYear reports whether a publication year was parsed.
func (c Citation) HasYear() bool {
	return c.Year != ""
}
