// Package contentstream tokenizes PDF content streams and recovers the text
// they show.
//
// Content streams contain the instructions for rendering page content.
// Operands precede their operator:
//
//	ops, err := contentstream.NewParser(data).Parse()
//	for _, op := range ops {
//	    fmt.Printf("Operator: %s, Operands: %v\n", op.Operator, op.Operands)
//	}
//
// [ExtractText] walks the text operators (BT, ET, Td, TD, Tm, T*, Tj, TJ, '
// and ") and turns positioning into spaces and line breaks. It does not
// resolve font encodings or ToUnicode maps; it is used for the text-only
// extraction path where a coordinate-aware reader is not available.
//
// [InlineImages] collects the images drawn with BI/ID/EI. Scanners sometimes
// emit a whole page this way, where image extraction based on the page's
// XObject resources finds nothing.
package contentstream
