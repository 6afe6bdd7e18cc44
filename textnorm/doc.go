// Package textnorm canonicalizes raw text extracted from PDFs.
//
// [Normalize] expands ligatures, rejoins words hyphenated across line breaks,
// strips zero-width characters, composes Unicode to NFC, folds typographic
// dashes and quotes to ASCII, unifies line endings, trims every line,
// collapses long runs of blank lines and repairs spacing inside common
// abbreviations such as "et al." and "e.g.".
package textnorm
