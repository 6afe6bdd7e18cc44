// Package papertrail ingests PDF documents, scanned or text-native, into a
// structured Document and maps text snippets back to where they appear.
//
// Basic usage:
//
//	doc, err := papertrail.Open("paper.pdf").Document(ctx)
//	if err != nil {
//	    // handle error
//	}
//	for _, w := range doc.Warnings {
//	    log.Println(w)
//	}
//
// With options:
//
//	doc, err := papertrail.Open("paper.pdf").
//	    MaxPages(20).
//	    WithoutOCR().
//	    Document(ctx)
//
// A Document carries normalized text, named sections, parsed citations,
// per-page block coordinates and layout roles, and the DOIs, URLs and
// figure/table caption cues found in the text. Evidence lookups run against
// the document's coordinates:
//
//	page, box := papertrail.Locate(doc, "randomized controlled trial", 0)
//
// For full control over backends, OCR and logging, build an Ingester with
// New and the With* options.
package papertrail

import "github.com/tsawler/papertrail/model"

// Open returns an Extractor for fluent configuration of one ingestion.
//
// Example:
//
//	doc, err := papertrail.Open("document.pdf").Document(ctx)
func Open(path string) *Extractor {
	return &Extractor{
		path:    path,
		options: DefaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	doc := papertrail.Must(papertrail.Open("document.pdf").Document(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text() or Citations() and panics
// if the error is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	text := papertrail.MustText(papertrail.Open("document.pdf").Text(ctx))
func MustText[T any](val T, _ []model.Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
