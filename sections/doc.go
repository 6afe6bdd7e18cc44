// Package sections splits normalized document text into named sections.
//
// Headings are recognized by an ordered table of [HeadingRule] values, each
// a case-insensitive regular expression anchored to the start of a line and
// tolerant of numbering prefixes such as "2.", "2.1" or "IV.". Every match
// starts a new section which runs until the next match. The resulting
// sections always partition the text: offsets are sorted, never overlap and
// together cover [0, len(text)).
//
// Basic usage:
//
//	secs := sections.Segment(text)
//	for _, s := range secs {
//	    fmt.Println(s.Name, s.Start, s.End)
//	}
//
// [Segmenter.MethodologyContext] collects the text describing how a study was
// carried out, for consumers that assess study design.
package sections
