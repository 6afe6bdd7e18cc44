package citations

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tsawler/papertrail/model"
)

// ErrReferencesNotFound is returned when a document has no recognizable
// reference list.
var ErrReferencesNotFound = errors.New("references section not found")

// Config holds citation extraction settings.
type Config struct {
	// MinReferenceChars is the minimum length of a references section
	MinReferenceChars int `yaml:"min_reference_chars"`

	// MinEntryChars is the minimum length of a single entry
	MinEntryChars int `yaml:"min_entry_chars"`

	// MaxEntryChars rejects runaway entries that swallowed body text
	MaxEntryChars int `yaml:"max_entry_chars"`

	// MinEntries is the number of accepted entries a split strategy must
	// produce before the next strategy is skipped
	MinEntries int `yaml:"min_entries"`

	// LongEntryChars is the length after which a capitalized name at the
	// start of a line begins a new entry during line grouping
	LongEntryChars int `yaml:"long_entry_chars"`

	// MaxGreekRatio rejects entries whose letters are mostly Greek
	MaxGreekRatio float64 `yaml:"max_greek_ratio"`

	// ProofPhrases are lowercase phrases that disqualify an entry
	ProofPhrases []string `yaml:"proof_phrases"`

	// StyleRules is the ordered style classification table
	StyleRules []StyleRule `yaml:"-"`
}

// DefaultConfig returns sensible default extraction settings.
func DefaultConfig() Config {
	return Config{
		MinReferenceChars: 50,
		MinEntryChars:     25,
		MaxEntryChars:     2000,
		MinEntries:        3,
		LongEntryChars:    60,
		MaxGreekRatio:     0.1,
		ProofPhrases:      DefaultProofPhrases(),
		StyleRules:        DefaultStyleRules(),
	}
}

// Rejection records a candidate entry that was skipped.
type Rejection struct {
	Raw    string
	Reason string
}

// Result is the outcome of citation extraction. Err is
// ErrReferencesNotFound when no reference list was found; it is never fatal.
type Result struct {
	Citations      []model.Citation
	ReferencesText string
	Rejected       []Rejection
	Strategy       string
	Err            error
}

// Extractor extracts citations from normalized document text.
type Extractor struct {
	config Config
}

// NewExtractor creates an extractor with default configuration.
func NewExtractor() *Extractor {
	return &Extractor{config: DefaultConfig()}
}

// NewExtractorWithConfig creates an extractor with custom configuration.
// Missing style rules fall back to the defaults.
func NewExtractorWithConfig(config Config) *Extractor {
	if len(config.StyleRules) == 0 {
		config.StyleRules = DefaultStyleRules()
	}
	return &Extractor{config: config}
}

// Config returns the extractor's settings.
func (e *Extractor) Config() Config {
	return e.config
}

// Extract finds the reference list in text and parses its entries. secs
// may be nil. Citation numbers are assigned 1, 2, 3... in list order.
func (e *Extractor) Extract(text string, secs []model.Section) Result {
	refs, err := e.FindReferences(text, secs)
	if err != nil {
		return Result{Err: err}
	}

	res := Result{ReferencesText: refs}
	split := e.split(refs)
	res.Strategy = split.name
	res.Rejected = split.rejected
	for i, raw := range split.accepted {
		c := e.Parse(raw)
		c.Number = i + 1
		res.Citations = append(res.Citations, c)
	}
	return res
}

var (
	referenceSectionNames = []string{"references", "bibliography", "works cited", "literature cited", "reference list"}

	referencesHeading = regexp.MustCompile(`(?im)^[ \t]*(?:\d+\.?[ \t]+)?(?:references|bibliography|works cited|literature cited|reference list)[ \t]*:?[ \t]*$`)
	structuralCue     = regexp.MustCompile(`(?im)^[ \t]*(?:appendix|appendices|supplementary|supporting information|fig(?:ure|\.)[ \t]*\d+|table[ \t]+\d+)\b`)
)

// FindReferences returns the text of the references section. A segmented
// section named like a reference list is preferred; otherwise the last
// references heading in text is used. The candidate is cut at the next
// appendix, supplementary or figure/table cue and must be long enough and
// carry a citation signal.
func (e *Extractor) FindReferences(text string, secs []model.Section) (string, error) {
	for i := len(secs) - 1; i >= 0; i-- {
		if !isReferenceSection(secs[i]) {
			continue
		}
		if refs := boundAtCue(secs[i].Text); e.validReferences(refs) {
			return refs, nil
		}
	}

	locs := referencesHeading.FindAllStringIndex(text, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		if refs := boundAtCue(text[locs[i][1]:]); e.validReferences(refs) {
			return refs, nil
		}
	}
	return "", ErrReferencesNotFound
}

// FindReferences locates the references section with the default
// configuration.
func FindReferences(text string, secs []model.Section) (string, error) {
	return NewExtractor().FindReferences(text, secs)
}

func isReferenceSection(s model.Section) bool {
	for _, name := range referenceSectionNames {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func boundAtCue(s string) string {
	if loc := structuralCue.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

func (e *Extractor) validReferences(s string) bool {
	return len(s) >= e.config.MinReferenceChars && HasCitationSignal(s)
}
