package citations

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	doiPattern    = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[^\s"<>]+`)
	yearPattern   = regexp.MustCompile(`\b(?:19\d{2}|20\d{2}|2100)\b`)
	venuePattern  = regexp.MustCompile(`(?i)\b(?:journal|proceedings|proc\.|conference|conf\.|symposium|workshop|transactions|trans\.|review|letters|press|publishers?|university|arxiv|preprint|vol\.|pp\.)`)
	authorPattern = regexp.MustCompile(`\b[A-Z][A-Za-z'\-]+,\s*[A-Z]\.|\b[A-Z][a-z'\-]+ [A-Z]{1,3}[,.]`)
)

// DefaultProofPhrases returns lowercase phrases that mark mathematical
// argument rather than a bibliographic entry.
func DefaultProofPhrases() []string {
	return []string{
		"by induction",
		"we prove that",
		"we show that",
		"it follows that",
		"without loss of generality",
		"q.e.d",
		"suppose that",
		"proof of theorem",
		"proof of lemma",
		"hence we obtain",
		"which completes the proof",
		"∎",
	}
}

// HasCitationSignal reports whether s contains a DOI, a plausible year, a
// venue keyword or a "Last, F." style author.
func HasCitationSignal(s string) bool {
	return doiPattern.MatchString(s) ||
		yearPattern.MatchString(s) ||
		venuePattern.MatchString(s) ||
		authorPattern.MatchString(s)
}

// GreekRatio returns the share of letters in s that are Greek.
func GreekRatio(s string) float64 {
	letters, greek := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Greek, r) {
			greek++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(greek) / float64(letters)
}

// IsPlausible reports whether s looks like a bibliographic entry under the
// default configuration.
func IsPlausible(s string) bool {
	return DefaultConfig().rejectReason(s) == ""
}

// rejectReason returns why s is not a plausible citation, or "". An entry
// carrying a DOI is exempt from the minimum length.
func (c Config) rejectReason(s string) string {
	s = strings.TrimSpace(s)
	n := len([]rune(s))
	hasDOI := doiPattern.MatchString(s)
	if n < c.MinEntryChars && !hasDOI {
		return "too short"
	}
	if c.MaxEntryChars > 0 && n > c.MaxEntryChars {
		return "too long"
	}
	lower := strings.ToLower(s)
	for _, phrase := range c.ProofPhrases {
		if strings.Contains(lower, phrase) {
			return "proof language: " + phrase
		}
	}
	if GreekRatio(s) > c.MaxGreekRatio {
		return "too many Greek letters"
	}
	if !hasDOI && !HasCitationSignal(s) {
		return "no citation signal"
	}
	return ""
}
