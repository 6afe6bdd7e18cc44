package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxPasses bounds the fixed-point loop in Normalize. Every pass after the
// first only removes bytes, so real input settles in two or three passes.
const maxPasses = 8

var ligatures = strings.NewReplacer(
	"ﬀ", "ff",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬅ", "ft",
	"ﬆ", "st",
	"Ĳ", "IJ",
	"ĳ", "ij",
)

var punctuation = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‟", `"`,
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// invisible lists zero-width characters and the soft hyphen.
var invisible = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00AD, Hi: 0x00AD, Stride: 1},
		{Lo: 0x034F, Hi: 0x034F, Stride: 1},
		{Lo: 0x200B, Hi: 0x200F, Stride: 1},
		{Lo: 0x2060, Hi: 0x2064, Stride: 1},
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1},
	},
}

var (
	hyphenBreak   = regexp.MustCompile(`([\p{L}\p{N}])-[ \t]*\n[ \t]*([\p{L}\p{N}])`)
	inlineSpaces  = regexp.MustCompile(`[ \t]{2,}`)
	manyNewlines  = regexp.MustCompile(`\n{4,}`)
	abbreviations = []struct {
		pattern *regexp.Regexp
		repl    string
	}{
		{regexp.MustCompile(`\bet al[ \t]+\.`), "et al."},
		{regexp.MustCompile(`\be[ \t]*\.[ \t]*g[ \t]*\.`), "e.g."},
		{regexp.MustCompile(`\bi[ \t]*\.[ \t]*e[ \t]*\.`), "i.e."},
		{regexp.MustCompile(`\bcf[ \t]+\.`), "cf."},
		{regexp.MustCompile(`\bvs[ \t]+\.`), "vs."},
	}
)

// Normalize canonicalizes extracted text. It is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	cur := text
	for i := 0; i < maxPasses; i++ {
		next := pass(cur)
		if next == cur {
			return next
		}
		cur = next
	}
	return cur
}

func pass(text string) string {
	text = ligatures.Replace(text)
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = stripInvisible(text)
	text = inlineSpaces.ReplaceAllString(text, " ")
	text = punctuation.Replace(text)
	text = lineEndings.Replace(text)
	text = trimLines(text)
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	for _, a := range abbreviations {
		text = a.pattern.ReplaceAllString(text, a.repl)
	}
	return strings.TrimSpace(text)
}

// stripInvisible removes zero-width characters and composes to NFC.
func stripInvisible(text string) string {
	t := transform.Chain(runes.Remove(runes.In(invisible)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func trimLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
