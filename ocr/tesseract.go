package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/papertrail/internal/execx"
)

// TesseractCLI recognizes words by running the tesseract binary and parsing
// its TSV output.
type TesseractCLI struct {
	Binary      string // Defaults to "tesseract"
	Language    string
	PageSegMode PageSegMode
	Runner      execx.Runner
}

// NewTesseractCLI creates an engine that runs the real tesseract binary.
func NewTesseractCLI(language string, logger *zap.Logger) *TesseractCLI {
	if language == "" {
		language = "eng"
	}
	return &TesseractCLI{
		Binary:   "tesseract",
		Language: language,
		Runner:   execx.NewExecRunner(logger),
	}
}

// Name implements Engine.
func (t *TesseractCLI) Name() string { return "tesseract" }

// Recognize implements Engine.
func (t *TesseractCLI) Recognize(ctx context.Context, png []byte) ([]Word, error) {
	dir, err := os.MkdirTemp("", "papertrail-ocr-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "page.png")
	if err := os.WriteFile(in, png, 0o600); err != nil {
		return nil, err
	}

	bin := t.Binary
	if bin == "" {
		bin = "tesseract"
	}
	lang := t.Language
	if lang == "" {
		lang = "eng"
	}
	args := []string{in, "stdout", "-l", lang}
	if t.PageSegMode > 0 {
		args = append(args, "--psm", strconv.Itoa(int(t.PageSegMode)))
	}
	args = append(args, "tsv")

	out, errb, err := t.Runner.Run(ctx, bin, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return nil, fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	return ParseTSV(string(out))
}

// Column positions in tesseract's TSV output.
const (
	tsvLevel = iota
	tsvPage
	tsvBlock
	tsvPar
	tsvLine
	tsvWord
	tsvLeft
	tsvTop
	tsvWidth
	tsvHeight
	tsvConf
	tsvText
	tsvColumns
)

// tsvWordLevel is the level value of word rows.
const tsvWordLevel = 5

// ParseTSV converts tesseract TSV output into words. The header row, non-word
// rows and rows with a negative confidence are skipped.
func ParseTSV(tsv string) ([]Word, error) {
	var words []Word
	for n, line := range strings.Split(tsv, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "level") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < tsvColumns-1 {
			return nil, fmt.Errorf("tsv line %d: got %d columns, want %d", n+1, len(fields), tsvColumns)
		}
		ints := make([]int, tsvConf)
		for i := 0; i < tsvConf; i++ {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("tsv line %d column %d: %w", n+1, i+1, err)
			}
			ints[i] = v
		}
		if ints[tsvLevel] != tsvWordLevel {
			continue
		}
		conf, err := strconv.ParseFloat(fields[tsvConf], 64)
		if err != nil {
			return nil, fmt.Errorf("tsv line %d confidence: %w", n+1, err)
		}
		if conf < 0 {
			continue
		}
		text := ""
		if len(fields) > tsvText {
			text = fields[tsvText]
		}
		words = append(words, Word{
			Text:       text,
			Confidence: conf,
			Line:       lineKey(ints[tsvBlock], ints[tsvPar], ints[tsvLine]),
			Box: image.Rect(
				ints[tsvLeft], ints[tsvTop],
				ints[tsvLeft]+ints[tsvWidth], ints[tsvTop]+ints[tsvHeight],
			),
		})
	}
	return words, nil
}
