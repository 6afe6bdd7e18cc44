// Package model provides the data structures produced by ingestion.
//
// A [Document] is built once from a PDF and is read-only afterwards. It holds
// the normalized full text, the ordered [Page] list with positioned
// [TextBlock] values, the [Section] partition of the text, parsed
// [Citation] entries and per-page [PageLayout] results.
//
// # Geometry
//
// [BBox] is used in two coordinate systems. Raw boxes are in PDF units with
// the origin at the bottom-left of the page. Normalized boxes are fractions
// of the page size with the origin at the top-left:
//
//	raw := model.NewBBox(72, 700, 200, 12)
//	norm := raw.Normalize(612, 792) // X=0.118, Y=0.101, ...
//
// Every normalized box satisfies [BBox.InUnitSquare].
//
// # Warnings
//
// Failures that only affect one unit of work (a page, a citation, a block)
// are recorded as [Warning] values on the document instead of failing the
// whole ingestion.
package model
