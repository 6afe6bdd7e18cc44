package textnorm

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"ligatures", "ﬁrst ﬂow eﬃcient", "first flow efficient"},
		{"hyphen break", "exam-\nple", "example"},
		{"hyphen break with spaces", "exam- \n  ple text", "example text"},
		{"hyphen before punctuation kept", "well-\n(known)", "well-\n(known)"},
		{"inline hyphen kept", "state-of-the-art", "state-of-the-art"},
		{"zero width", "zero\u200bwidth soft\u00adhyphen", "zerowidth softhyphen"},
		{"nfc", "cafe\u0301", "caf\u00e9"},
		{"collapse spaces", "a  b\t\tc \t d", "a b c d"},
		{"single tab kept", "a\tb", "a\tb"},
		{"dashes", "1990–2000 — done", "1990-2000 - done"},
		{"quotes", "“quoted” and ‘single’", `"quoted" and 'single'`},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"trim lines", "  a  \n  b  ", "a\nb"},
		{"three newlines kept", "a\n\n\nb", "a\n\n\nb"},
		{"four newlines collapsed", "a\n\n\n\nb", "a\n\nb"},
		{"many newlines collapsed", "a\n\n\n\n\n\n\nb", "a\n\nb"},
		{"et al", "Smith et al . (2020)", "Smith et al. (2020)"},
		{"e.g.", "for e .g . this", "for e.g. this"},
		{"i.e.", "that i . e . this", "that i.e. this"},
		{"cf and vs", "cf . Jones vs . Smith", "cf. Jones vs. Smith"},
		{"trim all", "\n\n  text  \n\n", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"exam-\n-ple",
		"a-\nb-\nc-\nd",
		"co-\r\noperation",
		"\u00ad\u200b",
		"x —\n y",
		"word–\nnext",
		"e\u200b .g .",
		"et  al  .",
		"  \t  \n\n\n\n\n\t  ",
		"ﬁ-\nﬂ",
		"Title\r\n\r\n\r\n\r\nBody  text  here",
		"cafe\u200b\u0301",
		strings.Repeat("line  \n", 10) + "\n\n\n\n\nend",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeChainedHyphens(t *testing.T) {
	if got := Normalize("a-\nb-\nc"); got != "abc" {
		t.Errorf("Normalize() = %q, want %q", got, "abc")
	}
}
