package papertrail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/papertrail/model"
)

func TestOpen(t *testing.T) {
	// Test with non-existent file
	_, _, err := Open("nonexistent.pdf").Text(context.Background())
	if err == nil {
		t.Error("expected error for non-existent file")
	}
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestOpen_Document(t *testing.T) {
	path := writeFixturePDF(t)

	text, warnings, err := Open(path).
		WithoutOCR().
		With(WithBackends(&fakeBackend{name: "fake", pages: textPages(pageOneText, pageTwoText)})).
		Text(context.Background())
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if !strings.HasPrefix(text, "A Study of Sleep") {
		t.Errorf("text = %q", text)
	}
	for _, w := range warnings {
		if w.Kind == model.WarnReferencesNotFound || w.Kind == model.WarnBackendFailed {
			t.Errorf("unexpected warning %v", w)
		}
	}

	cites, _, err := Open(path).
		WithoutOCR().
		With(WithBackends(&fakeBackend{name: "fake", pages: textPages(pageOneText, pageTwoText)})).
		Citations(context.Background())
	if err != nil {
		t.Fatalf("Citations() error = %v", err)
	}
	if len(cites) != 3 {
		t.Errorf("got %d citations, want 3", len(cites))
	}
}

func TestOpen_Chunks(t *testing.T) {
	path := writeFixturePDF(t)

	chunks, _, err := Open(path).
		WithoutOCR().
		ChunkSize(60, 10).
		With(WithBackends(&fakeBackend{name: "fake", pages: textPages(pageOneText, pageTwoText)})).
		Chunks(context.Background())
	if err != nil {
		t.Fatalf("Chunks() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Errorf("got %d chunks, want several", len(chunks))
	}
}

func TestExtractorImmutability(t *testing.T) {
	base := Open("paper.pdf")
	limited := base.MaxPages(3)
	noOCR := limited.WithoutOCR()
	noLayout := noOCR.WithoutLayout()
	tuned := base.OCRThresholds(70, 0.6).OCRDPI(200)

	if base.Options().MaxPages != 0 {
		t.Errorf("base MaxPages = %d, want 0", base.Options().MaxPages)
	}
	if limited.Options().MaxPages != 3 || noOCR.Options().MaxPages != 3 {
		t.Error("MaxPages not carried through the chain")
	}
	if !limited.Options().OCR.Enabled || noOCR.Options().OCR.Enabled {
		t.Error("WithoutOCR changed the receiver or did not apply")
	}
	if !noOCR.Options().Layout.Enabled || noLayout.Options().Layout.Enabled {
		t.Error("WithoutLayout changed the receiver or did not apply")
	}
	if len(noOCR.extra) != 1 || len(limited.extra) != 0 {
		t.Errorf("ingester options leaked between instances: %d, %d", len(noOCR.extra), len(limited.extra))
	}
	cfg := tuned.OCRConfig()
	if cfg.WordConfidence != 70 || cfg.MinAlnumRatio != 0.6 || cfg.DPI != 200 {
		t.Errorf("OCRConfig() = %+v", cfg)
	}
	if base.OCRConfig().DPI != 300 {
		t.Errorf("base DPI = %d, want 300", base.OCRConfig().DPI)
	}
}

func TestExtractorOptionsAreDeepCopies(t *testing.T) {
	e := Open("paper.pdf")
	opts := e.Options()
	opts.Citation.ProofPhrases[0] = "changed"

	if e.Options().Citation.ProofPhrases[0] == "changed" {
		t.Error("Options() exposed internal slices")
	}
}

func TestMust(t *testing.T) {
	if got := Must(42, nil); got != 42 {
		t.Errorf("Must() = %d, want 42", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Must(0, errors.New("boom"))
}

func TestIngestError(t *testing.T) {
	cause := errors.New("read failed")
	err := &IngestError{Kind: KindExtractionFailed, Path: "a.pdf", Err: cause}

	if err.Error() != "extraction failed: a.pdf: read failed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrExtractionFailed) || !errors.Is(err, cause) {
		t.Error("errors.Is failed for kind or cause")
	}
	if errors.Is(err, ErrFileNotFound) {
		t.Error("matched the wrong kind")
	}

	bare := &IngestError{Kind: KindFileNotFound, Path: "b.pdf"}
	if bare.Error() != "file not found: b.pdf" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

// ============================================================================
// Options
// ============================================================================

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.OCR.Enabled || opts.OCR.DPI != 300 || opts.OCR.WordConfidence != 60 {
		t.Errorf("OCR = %+v", opts.OCR)
	}
	if opts.OCR.CharsPerPageThreshold != 50 || opts.OCR.LowTextPageRatio != 0.7 {
		t.Errorf("OCR heuristic = %d, %v", opts.OCR.CharsPerPageThreshold, opts.OCR.LowTextPageRatio)
	}
	if opts.Layout.ColumnMergeThreshold != 0.05 || !opts.Layout.Enabled {
		t.Errorf("Layout = %+v", opts.Layout)
	}
	if opts.Locator.Threshold != 0.5 || opts.Locator.AdjacencyWindow != 3 {
		t.Errorf("Locator = %+v", opts.Locator)
	}
	if len(opts.Sections.Rules) == 0 || len(opts.Citation.StyleRules) == 0 {
		t.Error("rule tables missing from defaults")
	}
}

func TestLoadOptions(t *testing.T) {
	yml := `
max_pages: 5
ocr:
  dpi: 200
  chars_per_page_threshold: 80
layout:
  header_band: 0.1
  model_path: layout.onnx
locator:
  threshold: 0.6
citation:
  min_entries: 2
`
	path := filepath.Join(t.TempDir(), "papertrail.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"max pages", opts.MaxPages, 5},
		{"ocr dpi", opts.OCR.DPI, 200},
		{"ocr threshold", opts.OCR.CharsPerPageThreshold, 80},
		{"ocr word confidence default", opts.OCR.WordConfidence, 60.0},
		{"ocr enabled default", opts.OCR.Enabled, true},
		{"layout header band", opts.Layout.HeaderBand, 0.1},
		{"layout footer band default", opts.Layout.FooterBand, 0.15},
		{"layout model", opts.Layout.ModelPath, "layout.onnx"},
		{"locator threshold", opts.Locator.Threshold, 0.6},
		{"locator window default", opts.Locator.AdjacencyWindow, 3},
		{"citation min entries", opts.Citation.MinEntries, 2},
		{"citation max entry default", opts.Citation.MaxEntryChars, 2000},
		{"chunk size default", opts.Chunk.ChunkSize, 4000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if len(opts.Sections.Rules) == 0 {
		t.Error("section rules lost while loading")
	}
}

func TestLoadOptions_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadOptions(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("ocr: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOptions(bad); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
