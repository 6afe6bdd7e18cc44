// Package layout assigns a semantic role to every text block of a page.
//
// Roles are header, footer, title, abstract, caption, table, reference,
// column, body_text and unknown. Each page is first measured
// ([ComputeStats]): header and footer bands, column bands found by
// clustering the left edges of lines, and the median font size. An ordered
// table of [Rule] values then labels each block; the first rule that
// matches decides the role and its confidence.
//
// # Analysis
//
//	analyzer := layout.NewAnalyzer()
//	pl := analyzer.AnalyzePage(page)
//	for _, idx := range pl.BlocksWithRole(model.RoleCaption) {
//	    fmt.Println(page.Blocks[idx].Text)
//	}
//
// # Learned Classifiers
//
// Any [Classifier] can be attached with [NewAnalyzerWithConfig]. It is only
// consulted for blocks the rules labelled body_text or unknown, and its
// label wins only when its confidence is higher. Classifier errors are
// logged and the rule label is kept.
//
// [ONNXClassifier] runs an ONNX model over the [Features] vector. It
// requires the onnx build tag and the onnxruntime shared library:
//
//	go build -tags onnx
//
// Without the tag, [NewONNXClassifier] returns [ErrONNXNotEnabled].
package layout
