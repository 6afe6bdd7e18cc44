package papertrail

import (
	"context"

	"github.com/tsawler/papertrail/evidence"
	"github.com/tsawler/papertrail/model"
)

// NewLocator creates an evidence locator over the document's pages with
// default settings. Use [Ingester.Locator] to apply the locator section of
// the ingester's Options.
func NewLocator(doc *model.Document) *evidence.Locator {
	return NewLocatorWithConfig(doc, evidence.DefaultConfig())
}

// NewLocatorWithConfig creates an evidence locator with custom settings.
func NewLocatorWithConfig(doc *model.Document, config evidence.Config) *evidence.Locator {
	if doc == nil {
		return evidence.NewLocator(nil, config)
	}
	return evidence.NewLocator(doc.Pages, config)
}

// Locate maps snippet to a page and normalized bounding box in doc. hint is
// the 1-indexed page to search first, or 0. It never fails; unlocatable
// snippets get an estimated box.
//
// Example:
//
//	page, box := papertrail.Locate(doc, "randomized controlled trial", 0)
func Locate(doc *model.Document, snippet string, hint int) (int, model.BBox) {
	return NewLocator(doc).Locate(snippet, hint)
}

// Evidence locates snippet in doc and wraps the result with meta.
func Evidence(doc *model.Document, snippet string, hint int, meta map[string]any) model.EvidenceItem {
	return NewLocator(doc).Evidence(snippet, hint, meta)
}

// Locator creates an evidence locator over doc with the ingester's locator
// settings.
func (in *Ingester) Locator(doc *model.Document) *evidence.Locator {
	return NewLocatorWithConfig(doc, in.options.Locator)
}

// Locate ingests the file and maps snippet to a page and normalized
// bounding box using the Extractor's locator settings.
//
// Example:
//
//	page, box, err := papertrail.Open("paper.pdf").
//	    LocatorThreshold(0.7).
//	    Locate(ctx, "randomized controlled trial", 0)
func (e *Extractor) Locate(ctx context.Context, snippet string, hint int) (int, model.BBox, error) {
	in := e.Ingester()
	doc, err := in.Ingest(ctx, e.path)
	if err != nil {
		return 0, model.BBox{}, err
	}
	page, box := in.Locator(doc).Locate(snippet, hint)
	return page, box, nil
}
