// Package citations finds the reference list of a paper and parses its
// entries.
//
// Extraction runs in three steps:
//
//  1. [FindReferences] locates the references section, preferring a segmented
//     section by name and falling back to a heading search bounded by the
//     next appendix, supplementary or figure/table cue.
//  2. The section is split into candidate entries by numbered markers, then
//     by line grouping, then by paragraph boundaries, keeping the first
//     strategy that yields enough entries. Every candidate must pass
//     [IsPlausible].
//  3. Each entry is classified with the ordered [StyleRule] table and parsed
//     into a [model.Citation] by a style-specific parser, with generic
//     fallbacks for fields the style parser could not find.
//
// [ExtractDOIs] and [ExtractURLs] collect identifiers from arbitrary text.
package citations
