// Package evidence maps text snippets back to where they appear in a
// document.
//
// A [Locator] is built from a document's pages and answers "which page, and
// where on it" for any snippet, typically a quote produced by a downstream
// analysis. Blocks are scored by containment (1.0) or by token overlap, and
// only scores at or above [Config.Threshold] count. Matching blocks within
// [Config.AdjacencyWindow] positions of each other are merged into one
// envelope box, so a quote spanning several lines gets one box.
//
//	loc := evidence.NewLocator(doc.Pages, evidence.DefaultConfig())
//	page, box := loc.Locate("randomized controlled trial", 3)
//
// Lookups never fail. When the document has no coordinates or nothing
// scores high enough, the result is a deterministic [Estimate] on the
// hinted page (or page 1).
package evidence
