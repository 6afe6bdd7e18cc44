// Package ocr recognizes text on scanned PDF pages.
//
// A [Processor] renders every page with a [Rasterizer], recognizes words
// with an [Engine], filters unreliable words with [FilterWords] and joins the
// rest into page text. Pages run in parallel on a bounded pool; results are
// written into a page-indexed slot array so their order never depends on
// completion order (see [RunSlots]).
//
// Engines:
//
//   - [Gosseract] links Tesseract through gosseract. It is only functional
//     when built with the "ocr" tag; otherwise it returns
//     [ErrOCRNotEnabled].
//   - [TesseractCLI] runs the tesseract binary and parses its TSV output.
//
// Rasterizers:
//
//   - [Poppler] renders pages with pdftoppm.
//   - [Embedded] extracts the largest embedded page image with pdfcpu,
//     which covers most scanner output without external tools.
//   - [Inline] decodes scans drawn as inline images in the content stream,
//     including CCITT fax data.
//   - [Chain] tries several rasterizers in order.
//
// Tesseract itself must be installed for either engine. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr
