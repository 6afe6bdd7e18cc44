package layout

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tsawler/papertrail/model"
)

func line(text string, x, y, w, h, fontSize float64) model.TextBlock {
	return model.TextBlock{
		Text:        text,
		BBox:        model.NewBBox(x, y, w, h),
		Granularity: model.GranularityLine,
		FontSize:    fontSize,
	}
}

func page(number int, blocks ...model.TextBlock) *model.Page {
	return &model.Page{Number: number, Blocks: blocks, Width: 612, Height: 792}
}

// ============================================================================
// Stats
// ============================================================================

func TestComputeStats_Bands(t *testing.T) {
	p := page(1,
		line("one", 0.1, 0.3, 0.8, 0.02, 10),
		line("two", 0.1, 0.33, 0.8, 0.02, 12),
		line("three", 0.1, 0.36, 0.8, 0.02, 20),
	)
	stats := ComputeStats(p, DefaultConfig())

	if stats.HeaderBand != 0.15 {
		t.Errorf("HeaderBand = %v, want 0.15", stats.HeaderBand)
	}
	if stats.FooterBand != 0.85 {
		t.Errorf("FooterBand = %v, want 0.85", stats.FooterBand)
	}
	if stats.MedianFontSize != 12 {
		t.Errorf("MedianFontSize = %v, want 12", stats.MedianFontSize)
	}
	if len(stats.Columns) != 1 || stats.Primary != 0 {
		t.Errorf("Columns = %v, Primary = %d, want one primary column", stats.Columns, stats.Primary)
	}
	if stats.MultiColumn() {
		t.Error("single column page reported as multi-column")
	}
}

func TestComputeStats_TwoColumns(t *testing.T) {
	p := twoColumnPage()
	stats := ComputeStats(p, DefaultConfig())

	if len(stats.Columns) != 2 {
		t.Fatalf("got %d columns, want 2: %v", len(stats.Columns), stats.Columns)
	}
	if stats.Primary != 0 {
		t.Errorf("Primary = %d, want 0", stats.Primary)
	}
	if stats.Columns[0].End > stats.Columns[1].Start {
		t.Errorf("columns overlap: %v", stats.Columns)
	}
	if !stats.MultiColumn() {
		t.Error("expected MultiColumn")
	}
}

func TestComputeStats_NarrowClustersIgnored(t *testing.T) {
	p := page(2,
		line("a", 0.1, 0.3, 0.05, 0.02, 10),
		line("b", 0.1, 0.33, 0.05, 0.02, 10),
		line("c", 0.1, 0.36, 0.05, 0.02, 10),
	)
	stats := ComputeStats(p, DefaultConfig())
	if len(stats.Columns) != 0 || stats.Primary != -1 {
		t.Errorf("Columns = %v, Primary = %d, want none", stats.Columns, stats.Primary)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{nil, 0},
		{[]float64{3}, 3},
		{[]float64{4, 1, 3}, 3},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		if got := median(tt.in); got != tt.want {
			t.Errorf("median(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func twoColumnPage() *model.Page {
	return page(3,
		line("left column line one", 0.1, 0.3, 0.35, 0.02, 10),
		line("left column line two", 0.1, 0.33, 0.35, 0.02, 10),
		line("left column line three", 0.1, 0.36, 0.35, 0.02, 10),
		line("left column line four", 0.1, 0.39, 0.35, 0.02, 10),
		line("right column line one", 0.55, 0.3, 0.35, 0.02, 10),
		line("right column line two", 0.55, 0.33, 0.35, 0.02, 10),
		line("right column line three", 0.55, 0.36, 0.35, 0.02, 10),
	)
}

func span(text string, x, y, w, h float64) model.TextBlock {
	return model.TextBlock{Text: text, BBox: model.NewBBox(x, y, w, h), Granularity: model.GranularitySpan, FontSize: 9}
}

// tableRow is a line block followed by one span per cell, the way glyph
// grouping emits a line whose words sit in separate columns.
func tableRow(y float64, cells ...string) []model.TextBlock {
	text := ""
	blocks := []model.TextBlock{{}}
	for i, c := range cells {
		if i > 0 {
			text += " "
		}
		text += c
		blocks = append(blocks, span(c, 0.1+float64(i)*0.2, y, 0.1, 0.02))
	}
	blocks[0] = line(text, 0.1, y, 0.2*float64(len(cells)-1)+0.1, 0.02, 9)
	return blocks
}

func tablePage() *model.Page {
	blocks := []model.TextBlock{line("Participants were randomized into two groups.", 0.1, 0.3, 0.8, 0.02, 9)}
	blocks = append(blocks, tableRow(0.40, "Group", "N", "Mean")...)
	blocks = append(blocks, tableRow(0.425, "Control", "40", "3.2")...)
	blocks = append(blocks, tableRow(0.45, "Treated", "42", "4.1")...)
	blocks = append(blocks, line("Both groups improved over the study period.", 0.1, 0.6, 0.8, 0.02, 9))
	return page(2, blocks...)
}

func TestComputeStats_TableBlocks(t *testing.T) {
	p := tablePage()
	stats := ComputeStats(p, DefaultConfig())

	for i, b := range p.Blocks {
		want := i >= 1 && i <= 12
		if stats.TableBlocks[i] != want {
			t.Errorf("block %d %q: in table = %v, want %v", i, b.Text, stats.TableBlocks[i], want)
		}
	}
}

func TestComputeStats_TableBlocksNeedCellStructure(t *testing.T) {
	tests := []struct {
		name   string
		blocks []model.TextBlock
	}{
		{
			name: "prose paragraph",
			blocks: []model.TextBlock{
				line("Sleep was measured with actigraphy over", 0.1, 0.3, 0.8, 0.02, 9),
				line("two weeks and compared against diaries", 0.1, 0.325, 0.8, 0.02, 9),
				line("kept by each of the participants.", 0.1, 0.35, 0.8, 0.02, 9),
			},
		},
		{
			name: "font change spans sit close together",
			blocks: []model.TextBlock{
				line("the effect in vivo was small", 0.1, 0.3, 0.5, 0.02, 9),
				span("the effect in", 0.1, 0.3, 0.2, 0.02),
				span("vivo", 0.305, 0.3, 0.05, 0.02),
				span("was small", 0.36, 0.3, 0.2, 0.02),
				line("and the result in vitro matched", 0.1, 0.325, 0.5, 0.02, 9),
				span("and the result in", 0.1, 0.325, 0.25, 0.02),
				span("vitro", 0.355, 0.325, 0.05, 0.02),
				span("matched", 0.41, 0.325, 0.1, 0.02),
			},
		},
		{
			name: "cell rows far apart",
			blocks: []model.TextBlock{
				line("Name\tValue", 0.1, 0.3, 0.5, 0.02, 9),
				line("Alpha\t1", 0.1, 0.6, 0.5, 0.02, 9),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStats(page(2, tt.blocks...), DefaultConfig())
			if len(stats.TableBlocks) != 0 {
				t.Errorf("TableBlocks = %v, want none", stats.TableBlocks)
			}
		})
	}
}

func TestAnalyzePage_TableFromLineRuns(t *testing.T) {
	p := tablePage()
	pl := NewAnalyzer().AnalyzePage(p)
	if len(pl.Labels) != len(p.Blocks) {
		t.Fatalf("got %d labels, want %d", len(pl.Labels), len(p.Blocks))
	}

	for i, label := range pl.Labels {
		want := model.RoleTable
		if i == 0 || i == len(p.Blocks)-1 {
			want = model.RoleBodyText
		}
		if label.Role != want {
			t.Errorf("block %d %q: Role = %q, want %q", i, p.Blocks[i].Text, label.Role, want)
		}
	}
}

// ============================================================================
// Heuristic rules
// ============================================================================

func TestAnalyzePage_Roles(t *testing.T) {
	tests := []struct {
		name     string
		page     *model.Page
		index    int
		wantRole model.Role
		wantConf float64
	}{
		{
			name:     "page number in header",
			page:     page(2, line("3", 0.5, 0.03, 0.02, 0.02, 9)),
			wantRole: model.RoleHeader,
			wantConf: 0.95,
		},
		{
			name:     "page number in footer",
			page:     page(4, line("Page 4 of 10", 0.45, 0.92, 0.1, 0.02, 9)),
			wantRole: model.RoleFooter,
			wantConf: 0.95,
		},
		{
			name:     "short running head",
			page:     page(2, line("Running Head Text", 0.1, 0.05, 0.3, 0.02, 9)),
			wantRole: model.RoleHeader,
			wantConf: 0.9,
		},
		{
			name:     "short text on first page top is not a header",
			page:     page(1, line("Running Head Text", 0.1, 0.05, 0.3, 0.02, 9)),
			wantRole: model.RoleBodyText,
			wantConf: 0.7,
		},
		{
			name:     "short footer",
			page:     page(2, line("Preprint copy", 0.1, 0.9, 0.3, 0.02, 9)),
			wantRole: model.RoleFooter,
			wantConf: 0.9,
		},
		{
			name:     "figure caption",
			page:     page(2, line("Figure 2. Results of the trial", 0.1, 0.5, 0.8, 0.02, 9)),
			wantRole: model.RoleCaption,
			wantConf: 0.95,
		},
		{
			name:     "tab separated table",
			page:     page(2, line("Name\tValue\nAlpha\t1\nBeta\t2", 0.1, 0.5, 0.8, 0.1, 9)),
			wantRole: model.RoleTable,
			wantConf: 0.8,
		},
		{
			name:     "all caps title",
			page:     page(1, line("DEEP LEARNING FOR CATS", 0.1, 0.1, 0.8, 0.04, 18)),
			wantRole: model.RoleTitle,
			wantConf: 0.85,
		},
		{
			name: "large font title",
			page: page(1,
				line("A Cohort of Patients With Diabetes", 0.1, 0.2, 0.8, 0.04, 20),
				line("body one", 0.1, 0.4, 0.8, 0.02, 10),
				line("body two", 0.1, 0.43, 0.8, 0.02, 10),
				line("body three", 0.1, 0.46, 0.8, 0.02, 10),
			),
			wantRole: model.RoleTitle,
			wantConf: 0.85,
		},
		{
			name:     "abstract",
			page:     page(1, line("Background: we studied sleep. Methods: a survey. Results: none.", 0.1, 0.25, 0.8, 0.1, 10)),
			wantRole: model.RoleAbstract,
			wantConf: 0.85,
		},
		{
			name:     "reference entry",
			page:     page(5, line("Smith, J. (2020). A thing. Journal of Stuff, 3, 1-10.", 0.1, 0.5, 0.8, 0.02, 9)),
			wantRole: model.RoleReference,
			wantConf: 0.8,
		},
		{
			name:     "secondary column",
			page:     twoColumnPage(),
			index:    5,
			wantRole: model.RoleColumn,
			wantConf: 0.75,
		},
		{
			name:     "primary column",
			page:     twoColumnPage(),
			index:    1,
			wantRole: model.RoleBodyText,
			wantConf: 0.7,
		},
		{
			name:     "empty block",
			page:     page(2, line("   ", 0.1, 0.5, 0.8, 0.02, 9)),
			wantRole: model.RoleUnknown,
			wantConf: 0.3,
		},
	}

	analyzer := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := analyzer.AnalyzePage(tt.page)
			if len(pl.Labels) != len(tt.page.Blocks) {
				t.Fatalf("got %d labels, want %d", len(pl.Labels), len(tt.page.Blocks))
			}
			got := pl.Labels[tt.index]
			if got.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", got.Role, tt.wantRole)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
			if got.Source != SourceHeuristic {
				t.Errorf("Source = %q, want %q", got.Source, SourceHeuristic)
			}
			if got.BlockIndex != tt.index {
				t.Errorf("BlockIndex = %d, want %d", got.BlockIndex, tt.index)
			}
		})
	}
}

func TestAnalyzePage_EmptyPage(t *testing.T) {
	pl := NewAnalyzer().AnalyzePage(page(7))
	if pl.PageNumber != 7 {
		t.Errorf("PageNumber = %d, want 7", pl.PageNumber)
	}
	if len(pl.Labels) != 0 || len(pl.Columns) != 0 {
		t.Errorf("expected empty layout, got %+v", pl)
	}
}

func TestAnalyzePage_ColumnsReported(t *testing.T) {
	pl := NewAnalyzer().AnalyzePage(twoColumnPage())
	if len(pl.Columns) != 2 {
		t.Errorf("got %d columns, want 2", len(pl.Columns))
	}
	if got := pl.BlocksWithRole(model.RoleColumn); !reflect.DeepEqual(got, []int{4, 5, 6}) {
		t.Errorf("column blocks = %v, want [4 5 6]", got)
	}
}

func TestAnalyze_AllPages(t *testing.T) {
	pages := []*model.Page{page(1), twoColumnPage()}
	out := NewAnalyzer().Analyze(pages)
	if len(out) != 2 {
		t.Fatalf("got %d layouts, want 2", len(out))
	}
	if out[1].PageNumber != 3 {
		t.Errorf("PageNumber = %d, want 3", out[1].PageNumber)
	}
}

func TestHeuristic_CustomRules(t *testing.T) {
	rules := []Rule{
		{"everything", model.RoleCaption, 0.5, func(Block) bool { return true }},
	}
	h := NewHeuristicWithRules(DefaultConfig(), rules)
	p := page(1, line("x", 0.1, 0.5, 0.2, 0.02, 9))
	got, err := h.Classify(p, ComputeStats(p, DefaultConfig()), 0)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Role != model.RoleCaption || got.Confidence != 0.5 {
		t.Errorf("got %+v", got)
	}
}

// ============================================================================
// Learned classifiers
// ============================================================================

type fakeClassifier struct {
	role model.Role
	conf float64
	err  error
}

func (f fakeClassifier) Name() string { return "fake" }

func (f fakeClassifier) Classify(_ *model.Page, _ PageStats, index int) (model.BlockLabel, error) {
	if f.err != nil {
		return model.BlockLabel{}, f.err
	}
	return model.BlockLabel{BlockIndex: index, Role: f.role, Confidence: f.conf}, nil
}

// learnedTestPage holds a header (0.95), body text (0.7) and an empty
// block (unknown, 0.3).
func learnedTestPage() *model.Page {
	return page(2,
		line("3", 0.5, 0.03, 0.02, 0.02, 9),
		line("plain body text of the page", 0.1, 0.5, 0.8, 0.02, 10),
		line("   ", 0.1, 0.6, 0.8, 0.02, 10),
	)
}

func TestAnalyzePage_LearnedOverridesOnlyWeakLabels(t *testing.T) {
	a := NewAnalyzerWithConfig(DefaultConfig(), fakeClassifier{role: model.RoleTable, conf: 0.9}, nil)
	pl := a.AnalyzePage(learnedTestPage())

	if pl.Labels[0].Role != model.RoleHeader || pl.Labels[0].Source != SourceHeuristic {
		t.Errorf("header relabelled: %+v", pl.Labels[0])
	}
	for _, i := range []int{1, 2} {
		got := pl.Labels[i]
		if got.Role != model.RoleTable || got.Source != "fake" || got.BlockIndex != i {
			t.Errorf("label %d = %+v, want table from fake", i, got)
		}
	}
}

func TestAnalyzePage_LearnedNeedsHigherConfidence(t *testing.T) {
	a := NewAnalyzerWithConfig(DefaultConfig(), fakeClassifier{role: model.RoleTable, conf: 0.5}, nil)
	pl := a.AnalyzePage(learnedTestPage())

	if pl.Labels[1].Role != model.RoleBodyText {
		t.Errorf("body label = %+v, want body_text kept", pl.Labels[1])
	}
	if pl.Labels[2].Role != model.RoleTable {
		t.Errorf("unknown label = %+v, want table (0.5 > 0.3)", pl.Labels[2])
	}
}

func TestAnalyzePage_LearnedErrorKeepsHeuristic(t *testing.T) {
	a := NewAnalyzerWithConfig(DefaultConfig(), fakeClassifier{err: errors.New("boom")}, nil)
	pl := a.AnalyzePage(learnedTestPage())

	want := []model.Role{model.RoleHeader, model.RoleBodyText, model.RoleUnknown}
	for i, role := range want {
		if pl.Labels[i].Role != role {
			t.Errorf("label %d = %q, want %q", i, pl.Labels[i].Role, role)
		}
	}
}

func TestFeatures(t *testing.T) {
	p := learnedTestPage()
	stats := ComputeStats(p, DefaultConfig())
	f := Features(p, stats, 1)

	if len(f) != FeatureCount {
		t.Fatalf("got %d features, want %d", len(f), FeatureCount)
	}
	if f[0] != float32(0.1) || f[1] != float32(0.5) {
		t.Errorf("position features = %v, %v", f[0], f[1])
	}
	if f[9] != 0 {
		t.Errorf("first-page flag = %v on page 2", f[9])
	}
	if f[10] != 0.5 {
		t.Errorf("relative index = %v, want 0.5", f[10])
	}
}

// ============================================================================
// Caption cues
// ============================================================================

func TestCaptionCues(t *testing.T) {
	text := "Intro\nFigure 1: A plot\n  Table 2. Data  \nFigure 1: A plot\nTablespoon of salt\nFig. 3a shows the setup\nTable IV"
	want := []string{"Figure 1: A plot", "Table 2. Data", "Fig. 3a shows the setup", "Table IV"}

	got := CaptionCues(text)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CaptionCues() = %q, want %q", got, want)
	}
}

func TestCaptionCues_None(t *testing.T) {
	if got := CaptionCues("no captions\nhere at all"); got != nil {
		t.Errorf("CaptionCues() = %q, want nil", got)
	}
}
