package rag

import (
	"strings"
	"unicode"
)

// BoundaryType represents the kind of break a chunk may end on
type BoundaryType int

const (
	BoundaryNone BoundaryType = iota
	BoundaryWord
	BoundarySentence
	BoundaryParagraph
)

// String returns a human-readable representation of the boundary type
func (bt BoundaryType) String() string {
	switch bt {
	case BoundaryWord:
		return "word"
	case BoundarySentence:
		return "sentence"
	case BoundaryParagraph:
		return "paragraph"
	default:
		return "none"
	}
}

// FindBoundary returns the end offset of the strongest break in
// text[minPos:maxPos], scanning back from maxPos. The returned offset is just
// past the break. It returns -1 when the range holds no break.
func FindBoundary(text string, minPos, maxPos int) int {
	if maxPos > len(text) {
		maxPos = len(text)
	}
	if minPos < 0 {
		minPos = 0
	}

	best, bestType := -1, BoundaryNone
	for i := maxPos - 1; i >= minPos && bestType < BoundaryParagraph; i-- {
		bt := boundaryAt(text, i)
		if bt > bestType {
			best, bestType = i+1, bt
		}
	}
	return best
}

func boundaryAt(text string, i int) BoundaryType {
	switch {
	case text[i] == '\n' && i > 0 && text[i-1] == '\n':
		return BoundaryParagraph
	case isSentenceEnd(text, i):
		return BoundarySentence
	case isSpace(text[i]):
		return BoundaryWord
	}
	return BoundaryNone
}

// isSentenceEnd checks if position i in text is a sentence ending
func isSentenceEnd(text string, i int) bool {
	if i >= len(text) {
		return false
	}

	r := rune(text[i])
	if r != '.' && r != '!' && r != '?' {
		return false
	}

	if r == '.' && i >= 1 {
		prev := rune(text[i-1])
		// Initials such as "J."
		if unicode.IsUpper(prev) && (i < 2 || !unicode.IsLetter(rune(text[i-2]))) {
			return false
		}
		if isAbbreviation(text, i) {
			return false
		}
		// Decimal numbers
		if unicode.IsDigit(prev) && i+1 < len(text) && unicode.IsDigit(rune(text[i+1])) {
			return false
		}
	}

	if i+1 >= len(text) {
		return true
	}
	return isSpace(text[i+1])
}

var abbreviations = []string{
	"mr.", "mrs.", "ms.", "dr.", "prof.",
	"vs.", "etc.", "e.g.", "i.e.", "cf.", "al.",
	"fig.", "eq.", "no.", "vol.", "pp.",
}

// isAbbreviation checks if the period at position i is part of an abbreviation
func isAbbreviation(text string, i int) bool {
	start := i
	for start > 0 && (unicode.IsLetter(rune(text[start-1])) || text[start-1] == '.') {
		start--
	}
	if start >= i {
		return false
	}

	word := strings.ToLower(text[start : i+1])
	for _, abbr := range abbreviations {
		if word == abbr {
			return true
		}
	}
	return false
}
