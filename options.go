package papertrail

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/papertrail/citations"
	"github.com/tsawler/papertrail/evidence"
	"github.com/tsawler/papertrail/layout"
	"github.com/tsawler/papertrail/ocr"
	"github.com/tsawler/papertrail/rag"
	"github.com/tsawler/papertrail/sections"
)

// Options holds ingestion settings. Start from DefaultOptions and override
// fields, or load a YAML file with LoadOptions.
type Options struct {
	// MaxPages limits how many pages are read (0 means all)
	MaxPages int `yaml:"max_pages"`

	// Chunk is recorded on the document for Document.Chunks
	Chunk rag.ChunkerConfig `yaml:"chunk"`

	OCR      OCROptions       `yaml:"ocr"`
	Layout   LayoutOptions    `yaml:"layout"`
	Locator  evidence.Config  `yaml:"locator"`
	Citation citations.Config `yaml:"citation"`

	// Sections holds compiled heading rules and is not loaded from YAML
	Sections sections.Config `yaml:"-"`
}

// OCROptions controls when and how OCR runs.
type OCROptions struct {
	// Enabled builds the default OCR processor when no other is supplied
	Enabled bool `yaml:"enabled"`

	// Engine selects the default engine: "tesseract" (CLI) or "gosseract"
	Engine string `yaml:"engine"`

	// CharsPerPageThreshold marks a page as low-text below this many
	// characters
	CharsPerPageThreshold int `yaml:"chars_per_page_threshold"`

	// LowTextPageRatio triggers OCR when more than this share of pages is
	// low-text
	LowTextPageRatio float64 `yaml:"low_text_page_ratio"`

	ocr.Config `yaml:",inline"`
}

// LayoutOptions controls layout analysis.
type LayoutOptions struct {
	Enabled bool `yaml:"enabled"`

	// ModelPath is an ONNX model for the learned classifier; empty disables it
	ModelPath string `yaml:"model_path"`

	layout.Config `yaml:",inline"`
}

// DefaultOptions returns the default ingestion settings.
func DefaultOptions() Options {
	return Options{
		Chunk: rag.DefaultChunkerConfig(),
		OCR: OCROptions{
			Enabled:               true,
			Engine:                "tesseract",
			CharsPerPageThreshold: 50,
			LowTextPageRatio:      0.7,
			Config:                ocr.DefaultConfig(),
		},
		Layout: LayoutOptions{
			Enabled: true,
			Config:  layout.DefaultConfig(),
		},
		Locator:  evidence.DefaultConfig(),
		Citation: citations.DefaultConfig(),
		Sections: sections.DefaultConfig(),
	}
}

// LoadOptions reads a YAML file over DefaultOptions. Fields missing from
// the file keep their defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse options: %w", err)
	}
	return opts, nil
}

// clone creates a deep copy of Options.
func (o Options) clone() Options {
	c := o
	c.Citation.ProofPhrases = append([]string(nil), o.Citation.ProofPhrases...)
	c.Citation.StyleRules = append([]citations.StyleRule(nil), o.Citation.StyleRules...)
	c.Sections.Rules = append([]sections.HeadingRule(nil), o.Sections.Rules...)
	c.Sections.MethodologyPhrases = append([]string(nil), o.Sections.MethodologyPhrases...)
	return c
}
