package layout

import (
	"go.uber.org/zap"

	"github.com/tsawler/papertrail/model"
)

// SourceHeuristic is the BlockLabel.Source of rule-based labels.
const SourceHeuristic = "heuristic"

// Classifier assigns a role to one block of a page.
type Classifier interface {
	Name() string
	Classify(page *model.Page, stats PageStats, index int) (model.BlockLabel, error)
}

// Heuristic classifies blocks with an ordered rule table.
type Heuristic struct {
	rules  []Rule
	config Config
}

// NewHeuristic creates a heuristic classifier with the default rules.
func NewHeuristic(config Config) *Heuristic {
	return &Heuristic{rules: DefaultRules(), config: config}
}

// NewHeuristicWithRules creates a heuristic classifier with custom rules.
func NewHeuristicWithRules(config Config, rules []Rule) *Heuristic {
	return &Heuristic{rules: rules, config: config}
}

// Name implements Classifier.
func (h *Heuristic) Name() string { return SourceHeuristic }

// Classify implements Classifier. It never fails; a block no rule matches is
// unknown.
func (h *Heuristic) Classify(page *model.Page, stats PageStats, index int) (model.BlockLabel, error) {
	b := Block{
		TextBlock:  page.Blocks[index],
		Index:      index,
		PageNumber: page.Number,
		Stats:      stats,
		Config:     h.config,
	}
	for _, r := range h.rules {
		if r.Match(b) {
			return model.BlockLabel{BlockIndex: index, Role: r.Role, Confidence: r.Confidence, Source: SourceHeuristic}, nil
		}
	}
	return model.BlockLabel{BlockIndex: index, Role: model.RoleUnknown, Confidence: 0.3, Source: SourceHeuristic}, nil
}

// Analyzer labels every block of a page. The heuristic always runs; a
// learned classifier, when set, may only relabel blocks the heuristic left
// as body text or unknown, and only with higher confidence.
type Analyzer struct {
	config    Config
	heuristic *Heuristic
	learned   Classifier
	logger    *zap.Logger
}

// NewAnalyzer creates an analyzer with default configuration and no learned
// classifier.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(DefaultConfig(), nil, nil)
}

// NewAnalyzerWithConfig creates an analyzer. learned and logger may be nil.
func NewAnalyzerWithConfig(config Config, learned Classifier, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		config:    config,
		heuristic: NewHeuristic(config),
		learned:   learned,
		logger:    logger,
	}
}

// AnalyzePage returns the layout of one page. Pages without blocks get an
// empty layout.
func (a *Analyzer) AnalyzePage(page *model.Page) model.PageLayout {
	out := model.PageLayout{PageNumber: page.Number}
	if len(page.Blocks) == 0 {
		return out
	}

	stats := ComputeStats(page, a.config)
	out.Columns = stats.Columns
	out.Labels = make([]model.BlockLabel, len(page.Blocks))

	for i := range page.Blocks {
		label, _ := a.heuristic.Classify(page, stats, i)
		if a.learned != nil && (label.Role == model.RoleBodyText || label.Role == model.RoleUnknown) {
			pred, err := a.learned.Classify(page, stats, i)
			switch {
			case err != nil:
				a.logger.Debug("learned classifier failed",
					zap.String("classifier", a.learned.Name()),
					zap.Int("page", page.Number),
					zap.Int("block", i),
					zap.Error(err),
				)
			case pred.Confidence > label.Confidence:
				pred.BlockIndex = i
				if pred.Source == "" {
					pred.Source = a.learned.Name()
				}
				label = pred
			}
		}
		out.Labels[i] = label
	}
	return out
}

// Analyze returns the layout of every page in order.
func (a *Analyzer) Analyze(pages []*model.Page) []model.PageLayout {
	out := make([]model.PageLayout, len(pages))
	for i, p := range pages {
		out[i] = a.AnalyzePage(p)
	}
	return out
}
