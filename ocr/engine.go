package ocr

import (
	"context"
	"errors"
	"image"
	"strings"
	"unicode"
)

// ErrUnavailable means no OCR capability was configured.
var ErrUnavailable = errors.New("OCR unavailable")

// Word is one recognized word.
type Word struct {
	Text       string
	Confidence float64 // 0-100
	Line       int     // Words sharing a Line value were read on the same line
	Box        image.Rectangle
}

// Engine recognizes words in a PNG image. Implementations must be safe for
// concurrent use; each call owns its own recognition state.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, png []byte) ([]Word, error)
}

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes. Zero leaves the engine default.
const (
	PSM_AUTO          PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK  PageSegMode = 6  // Single uniform block of text
	PSM_SPARSE_TEXT   PageSegMode = 11 // Find as much text as possible
)

// Config holds OCR settings.
type Config struct {
	// DPI is the rendering resolution
	DPI int `yaml:"dpi"`

	// WordConfidence drops words recognized with lower confidence (0-100)
	WordConfidence float64 `yaml:"word_confidence"`

	// MinAlnumRatio drops words longer than two characters whose share of
	// letters and digits is below this ratio
	MinAlnumRatio float64 `yaml:"min_alnum_ratio"`

	// Language is the Tesseract language, e.g. "eng" or "eng+fra"
	Language string `yaml:"language"`

	// Workers overrides the pool size; 0 derives it from the CPU count
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default OCR settings.
func DefaultConfig() Config {
	return Config{
		DPI:            300,
		WordConfidence: 60,
		MinAlnumRatio:  0.5,
		Language:       "eng",
	}
}

// FilterWords drops low-confidence words and symbol-heavy artifacts.
// Tokens of at most two characters are kept whatever their composition.
func FilterWords(words []Word, cfg Config) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" || w.Confidence < cfg.WordConfidence {
			continue
		}
		runes := []rune(text)
		if len(runes) > 2 && AlnumRatio(text) < cfg.MinAlnumRatio {
			continue
		}
		w.Text = text
		out = append(out, w)
	}
	return out
}

// AlnumRatio returns the fraction of runes in s that are letters or digits.
func AlnumRatio(s string) float64 {
	total, alnum := 0, 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(alnum) / float64(total)
}

// JoinWords rebuilds page text: words on the same line are joined by a
// space, lines by a newline.
func JoinWords(words []Word) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			if w.Line != words[i-1].Line {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(w.Text)
	}
	return sb.String()
}

// lineKey folds Tesseract's block, paragraph and line numbers into one id.
func lineKey(block, par, line int) int {
	return block*1_000_000 + par*1_000 + line
}
