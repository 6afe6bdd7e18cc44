package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/tsawler/papertrail/contentstream"
	"github.com/tsawler/papertrail/internal/execx"
)

// ============================================================================
// Word Filtering Tests
// ============================================================================

func TestFilterWords(t *testing.T) {
	cfg := DefaultConfig()
	words := []Word{
		{Text: "Results", Confidence: 91, Line: 1},
		{Text: "blurry", Confidence: 40, Line: 1},
		{Text: "#$%&*", Confidence: 95, Line: 1},
		{Text: "%)", Confidence: 95, Line: 1},
		{Text: "  ", Confidence: 99, Line: 1},
		{Text: " p<0.05 ", Confidence: 80, Line: 2},
	}

	got := FilterWords(words, cfg)
	var texts []string
	for _, w := range got {
		texts = append(texts, w.Text)
	}
	want := "Results|%)|p<0.05"
	if strings.Join(texts, "|") != want {
		t.Errorf("FilterWords() = %v, want %s", texts, want)
	}
}

func TestAlnumRatio(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"abc", 1},
		{"a-b-", 0.5},
		{"±µ", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := AlnumRatio(tt.in); got != tt.want {
				t.Errorf("AlnumRatio(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinWords(t *testing.T) {
	words := []Word{
		{Text: "Patients", Line: lineKey(1, 1, 1)},
		{Text: "were", Line: lineKey(1, 1, 1)},
		{Text: "randomized", Line: lineKey(1, 1, 2)},
		{Text: "Table", Line: lineKey(2, 1, 1)},
	}
	want := "Patients were\nrandomized\nTable"
	if got := JoinWords(words); got != want {
		t.Errorf("JoinWords() = %q, want %q", got, want)
	}
	if JoinWords(nil) != "" {
		t.Error("JoinWords(nil) should be empty")
	}
}

// ============================================================================
// TSV Tests
// ============================================================================

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t2550\t3300\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t100\t200\t400\t30\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t100\t200\t120\t30\t96.5\tAbstract\n" +
	"5\t1\t1\t1\t1\t2\t230\t200\t90\t30\t91\tWe\n" +
	"5\t1\t1\t1\t2\t1\t100\t240\t90\t30\t88\tstudy\n" +
	"5\t1\t1\t1\t2\t2\t200\t240\t10\t30\t-1\t\n"

func TestParseTSV(t *testing.T) {
	words, err := ParseTSV(sampleTSV)
	if err != nil {
		t.Fatalf("ParseTSV() error = %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3: %+v", len(words), words)
	}
	if words[0].Text != "Abstract" || words[0].Confidence != 96.5 {
		t.Errorf("word 0 = %+v", words[0])
	}
	if words[0].Box != image.Rect(100, 200, 220, 230) {
		t.Errorf("word 0 box = %v", words[0].Box)
	}
	if words[0].Line != words[1].Line || words[1].Line == words[2].Line {
		t.Error("line grouping is wrong")
	}
	if got := JoinWords(words); got != "Abstract We\nstudy" {
		t.Errorf("JoinWords() = %q", got)
	}
}

func TestParseTSVErrors(t *testing.T) {
	tests := []struct {
		name string
		tsv  string
	}{
		{"too few columns", "5\t1\t1\n"},
		{"bad integer", "5\t1\tx\t1\t1\t1\t0\t0\t1\t1\t90\tword\n"},
		{"bad confidence", "5\t1\t1\t1\t1\t1\t0\t0\t1\t1\thigh\tword\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTSV(tt.tsv); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTesseractCLIArgs(t *testing.T) {
	var gotName string
	var gotArgs []string
	engine := &TesseractCLI{
		Language:    "eng+fra",
		PageSegMode: PSM_SINGLE_COLUMN,
		Runner: execx.RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			gotName, gotArgs = name, args
			if _, err := os.Stat(args[0]); err != nil {
				t.Errorf("input image not written: %v", err)
			}
			return []byte(sampleTSV), nil, nil
		}),
	}

	words, err := engine.Recognize(context.Background(), createPNG(t, 10, 10))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(words) != 3 {
		t.Errorf("got %d words, want 3", len(words))
	}
	if gotName != "tesseract" {
		t.Errorf("binary = %q", gotName)
	}
	if strings.Join(gotArgs[1:], " ") != "stdout -l eng+fra --psm 4 tsv" {
		t.Errorf("args = %v", gotArgs)
	}
}

func TestTesseractCLIFailure(t *testing.T) {
	engine := &TesseractCLI{
		Runner: execx.RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			return nil, nil, execx.ErrNotInstalled
		}),
	}
	if _, err := engine.Recognize(context.Background(), nil); !errors.Is(err, execx.ErrNotInstalled) {
		t.Errorf("Recognize() error = %v, want ErrNotInstalled", err)
	}
}

// ============================================================================
// Pool Tests
// ============================================================================

func TestWorkerCount(t *testing.T) {
	tests := []struct {
		cores, pages, want int
	}{
		{4, 10, 2},
		{16, 100, 14},
		{8, 3, 3},
		{2, 5, 1},
		{0, 5, 1},
		{4, 0, 1},
	}
	for _, tt := range tests {
		if got := WorkerCount(tt.cores, tt.pages); got != tt.want {
			t.Errorf("WorkerCount(%d, %d) = %d, want %d", tt.cores, tt.pages, got, tt.want)
		}
	}
}

func TestRunSlotsKeepsPageOrder(t *testing.T) {
	const n = 12
	var running, peak int32

	results := RunSlots(context.Background(), n, 3, func(ctx context.Context, i int) PageResult {
		cur := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		// Early pages finish last.
		time.Sleep(time.Duration(n-i) * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return PageResult{Text: string(rune('a' + i))}
	})

	if len(results) != n {
		t.Fatalf("got %d results, want %d", len(results), n)
	}
	for i, r := range results {
		if r.Index != i || r.Text != string(rune('a'+i)) {
			t.Errorf("slot %d = %+v", i, r)
		}
	}
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestRunSlotsFailureDoesNotCancelOthers(t *testing.T) {
	results := RunSlots(context.Background(), 4, 2, func(ctx context.Context, i int) PageResult {
		if i == 1 {
			return PageResult{Err: errors.New("boom")}
		}
		return PageResult{Text: "ok"}
	})
	for i, r := range results {
		if i == 1 {
			if r.Err == nil {
				t.Error("slot 1 should carry the error")
			}
			continue
		}
		if r.Err != nil || r.Text != "ok" {
			t.Errorf("slot %d = %+v", i, r)
		}
	}
}

func TestRunSlotsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	results := RunSlots(ctx, 3, 2, func(ctx context.Context, i int) PageResult {
		called = true
		return PageResult{Text: "x"}
	})
	if called {
		t.Error("fn should not run after cancellation")
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) || r.Text != "" || r.Index != i {
			t.Errorf("slot %d = %+v", i, r)
		}
	}
}

// ============================================================================
// Processor Tests
// ============================================================================

type fakeRasterizer struct {
	fail map[int]bool
}

func (f fakeRasterizer) Name() string { return "fake" }

func (f fakeRasterizer) Rasterize(ctx context.Context, path string, pageIndex, dpi int) ([]byte, error) {
	if f.fail[pageIndex] {
		return nil, errors.New("render failed")
	}
	return []byte{byte(pageIndex)}, nil
}

type fakeEngine struct{}

func (fakeEngine) Name() string { return "fake" }

func (fakeEngine) Recognize(ctx context.Context, img []byte) ([]Word, error) {
	page := int(img[0]) + 1
	return []Word{
		{Text: "page", Confidence: 90, Line: 1},
		{Text: string(rune('0' + page)), Confidence: 90, Line: 1},
		{Text: "noise", Confidence: 10, Line: 2},
	}, nil
}

func TestProcessorProcess(t *testing.T) {
	p := NewProcessor(fakeEngine{}, fakeRasterizer{fail: map[int]bool{1: true}}, Config{Workers: 2}, nil)
	if p.Config().DPI != 300 {
		t.Errorf("DPI = %d, want default 300", p.Config().DPI)
	}

	results, err := p.Process(context.Background(), "scan.pdf", 3)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Text != "page 1" || results[2].Text != "page 3" {
		t.Errorf("results = %+v", results)
	}
	if results[1].Err == nil || results[1].Text != "" {
		t.Errorf("page 2 should fail, got %+v", results[1])
	}
}

func TestNewProcessorDefaults(t *testing.T) {
	def := DefaultConfig()
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{"zero config", Config{}, def},
		{"negative thresholds", Config{WordConfidence: -1, MinAlnumRatio: -0.5}, def},
		{
			name: "explicit values kept",
			in:   Config{DPI: 150, WordConfidence: 80, MinAlnumRatio: 0.7, Language: "fra", Workers: 3},
			want: Config{DPI: 150, WordConfidence: 80, MinAlnumRatio: 0.7, Language: "fra", Workers: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewProcessor(nil, nil, tt.in, nil).Config()
			if got != tt.want {
				t.Errorf("Config() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProcessorUnavailable(t *testing.T) {
	p := NewProcessor(nil, nil, DefaultConfig(), nil)
	if _, err := p.Process(context.Background(), "scan.pdf", 1); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Process() error = %v, want ErrUnavailable", err)
	}
}

// ============================================================================
// Rasterizer Tests
// ============================================================================

func createPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPopplerRasterize(t *testing.T) {
	var gotArgs []string
	r := &Poppler{
		Runner: execx.RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			gotArgs = args
			prefix := args[len(args)-1]
			return nil, nil, os.WriteFile(prefix+".png", []byte("png-bytes"), 0o600)
		}),
	}

	data, err := r.Rasterize(context.Background(), "in.pdf", 2, 150)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("data = %q", data)
	}
	if strings.Join(gotArgs[:9], " ") != "-r 150 -f 3 -l 3 -png -singlefile in.pdf" {
		t.Errorf("args = %v", gotArgs)
	}
}

func TestPopplerMissingOutput(t *testing.T) {
	r := &Poppler{
		Runner: execx.RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			return nil, nil, nil
		}),
	}
	if _, err := r.Rasterize(context.Background(), "in.pdf", 0, 300); err == nil {
		t.Error("expected error when pdftoppm writes nothing")
	}
}

func TestChainFallsThrough(t *testing.T) {
	failing := &Poppler{
		Runner: execx.RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			return nil, nil, execx.ErrNotInstalled
		}),
	}
	chain := Chain{failing, fakeRasterizer{}}
	if chain.Name() != "pdftoppm,fake" {
		t.Errorf("Name() = %q", chain.Name())
	}
	data, err := chain.Rasterize(context.Background(), "in.pdf", 4, 300)
	if err != nil || len(data) != 1 || data[0] != 4 {
		t.Errorf("Rasterize() = %v, %v", data, err)
	}

	all := Chain{failing, fakeRasterizer{fail: map[int]bool{0: true}}}
	_, err = all.Rasterize(context.Background(), "in.pdf", 0, 300)
	if !errors.Is(err, execx.ErrNotInstalled) {
		t.Errorf("Rasterize() error = %v, want joined ErrNotInstalled", err)
	}
	if _, err := (Chain{}).Rasterize(context.Background(), "in.pdf", 0, 300); err == nil {
		t.Error("empty chain should fail")
	}
}

func TestEncodeScaled(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 20, 10))
	data, err := encodeScaled(src, 40, 20)
	if err != nil {
		t.Fatalf("encodeScaled() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("size = %v, want 40x20", img.Bounds())
	}
	if _, err := encodeScaled(src, 0, 10); err == nil {
		t.Error("expected error for empty target")
	}
}

func TestEmbeddedNoImage(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(72, 100, "vector text only")
	path := filepath.Join(t.TempDir(), "text.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatal(err)
	}

	if _, err := (Embedded{}).Rasterize(context.Background(), path, 0, 300); err == nil {
		t.Error("expected error for page without images")
	}
}

// ============================================================================
// Inline Image Tests
// ============================================================================

func TestDecodeInlineImage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []uint8 // row-major gray values
		w, h    int
	}{
		{
			name:    "one bit gray hex",
			content: "BI /W 4 /H 2 /BPC 1 /CS /G /F /AHx ID 50A0> EI",
			want:    []uint8{0, 255, 0, 255, 255, 0, 255, 0},
			w:       4, h: 2,
		},
		{
			name:    "eight bit gray",
			content: "BI /W 2 /H 1 /BPC 8 /CS /G /F /AHx ID 10f0> EI",
			want:    []uint8{0x10, 0xf0},
			w:       2, h: 1,
		},
		{
			name:    "inverted decode array",
			content: "BI /W 2 /H 1 /BPC 8 /CS /G /D [1 0] /F /AHx ID 00ff> EI",
			want:    []uint8{255, 0},
			w:       2, h: 1,
		},
		{
			name:    "image mask",
			content: "BI /W 8 /H 1 /IM true /F /AHx ID 0f> EI",
			want:    []uint8{0, 0, 0, 0, 255, 255, 255, 255},
			w:       8, h: 1,
		},
		{
			name:    "rgb to gray",
			content: "BI /W 2 /H 1 /BPC 8 /CS /RGB /F /AHx ID ffffff000000> EI",
			want:    []uint8{255, 0},
			w:       2, h: 1,
		},
		{
			name:    "two bit gray",
			content: "BI /W 4 /H 1 /BPC 2 /CS /G /F /AHx ID 1b> EI",
			want:    []uint8{0, 85, 170, 255},
			w:       4, h: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := contentstream.InlineImages([]byte(tt.content))
			if err != nil || len(images) != 1 {
				t.Fatalf("InlineImages() = %d images, %v", len(images), err)
			}
			img, err := decodeInlineImage(images[0])
			if err != nil {
				t.Fatalf("decodeInlineImage() error = %v", err)
			}
			if img.Bounds().Dx() != tt.w || img.Bounds().Dy() != tt.h {
				t.Fatalf("size = %v, want %dx%d", img.Bounds(), tt.w, tt.h)
			}
			for i, want := range tt.want {
				x, y := i%tt.w, i/tt.w
				if got := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y; got != want {
					t.Errorf("pixel (%d,%d) = %d, want %d", x, y, got, want)
				}
			}
		})
	}
}

func TestDecodeInlineImage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no size", "BI /BPC 8 /CS /G ID \x00 EI"},
		{"indexed color", "BI /W 1 /H 1 /BPC 8 /CS /I ID \x00 EI"},
		{"odd depth", "BI /W 1 /H 1 /BPC 16 /CS /G ID \x00\x00 EI"},
		{"short data", "BI /W 4 /H 4 /BPC 8 /CS /G ID \x00\x00 EI"},
		{"unsupported filter", "BI /W 1 /H 1 /BPC 8 /CS /G /F /RL ID \x00 EI"},
		{"dct not last", "BI /W 1 /H 1 /BPC 8 /CS /G /F [/DCT /AHx] ID \x00 EI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := contentstream.InlineImages([]byte(tt.content))
			if err != nil || len(images) != 1 {
				t.Fatalf("InlineImages() = %d images, %v", len(images), err)
			}
			if _, err := decodeInlineImage(images[0]); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecodeInlineImage_CCITTDefaultsToImageSize(t *testing.T) {
	// Two all-white Group 4 rows; Columns and Rows come from /W and /H.
	content := "BI /W 8 /H 2 /IM true /F [/AHx /CCF] /DP [null << /K -1 >>] ID c0> EI"
	images, err := contentstream.InlineImages([]byte(content))
	if err != nil || len(images) != 1 {
		t.Fatalf("InlineImages() = %d images, %v", len(images), err)
	}
	img, err := decodeInlineImage(images[0])
	if err != nil {
		t.Fatalf("decodeInlineImage() error = %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 2 {
		t.Errorf("size = %v, want 8x2", img.Bounds())
	}
	if got := color.GrayModel.Convert(img.At(3, 1)).(color.Gray).Y; got != 255 {
		t.Errorf("pixel = %d, want white", got)
	}
}

func TestInlineNoImage(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(72, 100, "vector text only")
	path := filepath.Join(t.TempDir(), "text.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatal(err)
	}

	_, err := (Inline{}).Rasterize(context.Background(), path, 0, 300)
	if !errors.Is(err, ErrNoImage) {
		t.Errorf("err = %v, want ErrNoImage", err)
	}
}
