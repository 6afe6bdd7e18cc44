package citations

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Split strategy names reported in Result.Strategy.
const (
	StrategyNumbered  = "numbered"
	StrategyLines     = "lines"
	StrategyParagraph = "paragraph"
)

var (
	// [12] anywhere after whitespace, "12." or "(12)" at a line start.
	numberedMarker = regexp.MustCompile(`(?m)(?:^|\s)\[(\d{1,3})\][ \t]*|^[ \t]*\((\d{1,3})\)[ \t]+|^[ \t]*(\d{1,3})\.[ \t]+`)

	entryStart   = regexp.MustCompile(`^(?:\[?\d{1,3}[.\])][ \t]|\(\d{1,3}\)[ \t]|[•\-*][ \t])`)
	nameStart    = regexp.MustCompile(`^[A-Z][A-Za-z'\-]+(?:,[ \t]*[A-Z]|[ \t][A-Z]{1,3}[,.])`)
	blankLine    = regexp.MustCompile(`\n[ \t]*\n`)
	leadingLabel = regexp.MustCompile(`^(?:\[\d{1,3}\]|\(\d{1,3}\)|\d{1,3}\.|[•\-*])[ \t]*`)
)

type splitResult struct {
	name     string
	accepted []string
	rejected []Rejection
}

// split runs the strategies in order and keeps the first one that yields
// MinEntries accepted entries, or else the one that yields the most.
func (e *Extractor) split(refs string) splitResult {
	strategies := []struct {
		name string
		fn   func(string) []string
	}{
		{StrategyNumbered, SplitNumbered},
		{StrategyLines, e.SplitLines},
		{StrategyParagraph, SplitParagraphs},
	}

	var best splitResult
	for i, s := range strategies {
		res := e.filter(s.name, s.fn(refs))
		if len(res.accepted) >= e.config.MinEntries {
			return res
		}
		if i == 0 || len(res.accepted) > len(best.accepted) {
			best = res
		}
	}
	return best
}

func (e *Extractor) filter(name string, candidates []string) splitResult {
	res := splitResult{name: name}
	for _, c := range candidates {
		c = cleanEntry(c)
		if c == "" {
			continue
		}
		if reason := e.config.rejectReason(c); reason != "" {
			res.rejected = append(res.rejected, Rejection{Raw: c, Reason: reason})
			continue
		}
		res.accepted = append(res.accepted, c)
	}
	return res
}

// cleanEntry joins wrapped lines and removes the list marker.
func cleanEntry(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(leadingLabel.ReplaceAllString(s, ""))
}

// SplitNumbered splits at "[n]", "(n)" or "n." markers. A marker only counts
// when its number follows the previous one, so numbers inside an entry
// (volumes, page ranges) are not boundaries.
func SplitNumbered(refs string) []string {
	var starts []int
	expect := 0
	for _, m := range numberedMarker.FindAllStringSubmatchIndex(refs, -1) {
		n := -1
		for g := 1; g <= 3; g++ {
			if m[2*g] >= 0 {
				n, _ = strconv.Atoi(refs[m[2*g]:m[2*g+1]])
				break
			}
		}
		if n < 0 || (expect > 0 && n != expect) {
			continue
		}
		start := m[0]
		for start < len(refs) && unicode.IsSpace(rune(refs[start])) {
			start++
		}
		starts = append(starts, start)
		expect = n + 1
	}

	var out []string
	for i, start := range starts {
		end := len(refs)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		out = append(out, refs[start:end])
	}
	return out
}

// SplitLines groups lines into entries. A new entry starts after a blank
// line, at a line that begins with a list marker, or at a line that begins
// with a capitalized name once the current entry is already long.
func (e *Extractor) SplitLines(refs string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(refs, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
			continue
		case entryStart.MatchString(line):
			flush()
		case nameStart.MatchString(line) && cur.Len() >= e.config.LongEntryChars:
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(line)
	}
	flush()
	return out
}

// SplitParagraphs splits on blank lines. When that yields a single block it
// splits lines that end a sentence and are followed by a line starting with
// a capital letter.
func SplitParagraphs(refs string) []string {
	parts := blankLine.Split(refs, -1)
	if len(parts) > 1 {
		return parts
	}

	var out []string
	var cur strings.Builder
	lines := strings.Split(refs, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(line)
		if i+1 < len(lines) && strings.HasSuffix(line, ".") && startsUpper(strings.TrimSpace(lines[i+1])) {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
