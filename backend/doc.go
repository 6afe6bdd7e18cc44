// Package backend provides interchangeable PDF text extractors.
//
// Every extractor implements [Backend]. They are tried in order by the
// ingester, best fidelity first:
//
//   - [Ledongthuc] reads glyph positions and produces line and span
//     model.TextBlock values with normalized coordinates.
//   - [PDFCPU] decodes page content streams and produces text only.
//   - [Pdftotext] runs poppler's pdftotext and produces text only.
//
// A backend that opens the file but finds no text returns its pages together
// with [ErrNoText].
package backend
