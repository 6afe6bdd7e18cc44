package contentstream

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// TJ adjustments more negative than this (in thousandths of a text space
// unit) are read as a word gap.
const tjSpaceThreshold = -200

// ExtractText recovers the text shown by a content stream. Text positioning
// operators become spaces and newlines; font encodings are not resolved, so
// strings are decoded as UTF-16BE when marked or shaped that way and as
// PDFDocEncoding otherwise.
//
// A parse error ends extraction early; the text recovered up to that point is
// returned together with the error.
func ExtractText(data []byte) (string, error) {
	ops, err := NewParser(data).Parse()
	w := &textWriter{}
	for _, op := range ops {
		w.apply(op)
	}
	return w.String(), err
}

type textWriter struct {
	sb    strings.Builder
	lastY float64
	hasY  bool
}

func (w *textWriter) String() string {
	return strings.TrimSpace(w.sb.String())
}

func (w *textWriter) apply(op Operation) {
	switch op.Operator {
	case "BT":
		w.hasY = false
	case "ET":
		w.newline()
	case "Td", "TD":
		if len(op.Operands) == 2 {
			tx, ty := number(op.Operands[0]), number(op.Operands[1])
			if ty != 0 {
				w.newline()
			} else if tx != 0 {
				w.space()
			}
		}
	case "Tm":
		if len(op.Operands) == 6 {
			y := number(op.Operands[5])
			if w.hasY && y != w.lastY {
				w.newline()
			}
			w.lastY, w.hasY = y, true
		}
	case "T*":
		w.newline()
	case "Tj":
		w.show(op.Operands)
	case "'", "\"":
		w.newline()
		w.show(op.Operands)
	case "TJ":
		if len(op.Operands) == 0 {
			return
		}
		arr, ok := op.Operands[len(op.Operands)-1].(Array)
		if !ok {
			return
		}
		for _, item := range arr {
			switch v := item.(type) {
			case String:
				w.sb.WriteString(DecodeString(v))
			case Number:
				if v < tjSpaceThreshold {
					w.space()
				}
			}
		}
	}
}

// show writes the last string operand of Tj, ' or ".
func (w *textWriter) show(operands []Operand) {
	if len(operands) == 0 {
		return
	}
	if s, ok := operands[len(operands)-1].(String); ok {
		w.sb.WriteString(DecodeString(s))
	}
}

func (w *textWriter) space() {
	if s := w.sb.String(); s != "" && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
		w.sb.WriteByte(' ')
	}
}

func (w *textWriter) newline() {
	if s := w.sb.String(); s != "" && !strings.HasSuffix(s, "\n") {
		w.sb.WriteByte('\n')
	}
}

// DecodeString converts raw string bytes to text. Byte-order-marked or
// zero-padded two-byte strings are read as UTF-16BE; anything else is read
// one byte per character. Control characters are dropped.
func DecodeString(b String) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		return decodeUTF16(b[2:])
	}
	if looksUTF16(b) {
		return decodeUTF16(b)
	}

	var sb strings.Builder
	for _, c := range b {
		r := rune(c)
		if unicode.IsControl(r) && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func looksUTF16(b []byte) bool {
	if len(b) < 2 || len(b)%2 != 0 {
		return false
	}
	for i := 0; i < len(b); i += 2 {
		if b[i] != 0 {
			return false
		}
	}
	return true
}

func decodeUTF16(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	var sb strings.Builder
	for _, r := range utf16.Decode(units) {
		if unicode.IsControl(r) && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func number(o Operand) float64 {
	if n, ok := o.(Number); ok {
		return float64(n)
	}
	return 0
}
