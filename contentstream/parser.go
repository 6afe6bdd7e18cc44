package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Operand is a value preceding an operator in a content stream. It is one of
// Number, String, Name, Array, Dict, Bool or Null.
type Operand interface{}

type (
	// Number is an integer or real operand
	Number float64
	// String holds the raw bytes of a literal or hex string
	String []byte
	// Name is a /Name operand without the slash
	Name string
	// Array is a [...] operand
	Array []Operand
	// Dict is a <<...>> operand
	Dict map[string]Operand
	// Bool is true or false
	Bool bool
	// Null is the null keyword
	Null struct{}
)

// Operation represents a single content stream operation consisting of an
// operator and its operands.
type Operation struct {
	Operator string    // The operator (e.g., "Tj", "Tm", "q")
	Operands []Operand // The operands, in stream order
	Data     []byte    // Raw sample bytes; set only on the ID operator of an inline image
}

// Parser parses PDF content streams into a sequence of operations.
type Parser struct {
	data  []byte
	pos   int
	ops   []Operation
	stack []Operand
}

// NewParser creates a new content stream parser for the given data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse parses the content stream and returns all operations in order.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			break
		}
		if err := p.parseNext(); err != nil {
			return p.ops, err
		}
	}
	return p.ops, nil
}

// parseNext parses one token: operands are pushed on the stack, operators
// consume it.
func (p *Parser) parseNext() error {
	start := p.pos
	c := p.data[p.pos]

	if isLetter(c) || c == '\'' || c == '"' {
		if kw, ok := p.keyword(); ok {
			p.stack = append(p.stack, kw)
			return nil
		}
		return p.parseOperator()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return fmt.Errorf("at position %d: %w", start, err)
	}
	p.stack = append(p.stack, operand)
	return nil
}

// keyword consumes true, false or null when the next token is one of them.
func (p *Parser) keyword() (Operand, bool) {
	end := p.pos
	for end < len(p.data) && !isWhitespace(p.data[end]) && !isDelimiter(p.data[end]) {
		end++
	}
	switch string(p.data[p.pos:end]) {
	case "true":
		p.pos = end
		return Bool(true), true
	case "false":
		p.pos = end
		return Bool(false), true
	case "null":
		p.pos = end
		return Null{}, true
	}
	return nil, false
}

func (p *Parser) parseOperator() error {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isLetter(c) || c == '\'' || c == '"' || c == '*' || (p.pos > start && c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}

	operator := string(p.data[start:p.pos])
	if operator == "" {
		return fmt.Errorf("empty operator at position %d", start)
	}

	p.ops = append(p.ops, Operation{Operator: operator, Operands: p.stack})
	p.stack = nil

	if operator == "ID" {
		p.ops[len(p.ops)-1].Data = p.readInlineImage()
	}
	return nil
}

// readInlineImage consumes binary inline image data up to the EI operator.
// The single whitespace byte on each side of the data is not part of it.
func (p *Parser) readInlineImage() []byte {
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}
	start := p.pos
	for i := p.pos; i+1 < len(p.data); i++ {
		if p.data[i] == 'E' && p.data[i+1] == 'I' &&
			(i == start || isWhitespace(p.data[i-1])) &&
			(i+2 >= len(p.data) || isWhitespace(p.data[i+2])) {
			p.pos = i
			if i == start {
				return nil
			}
			return p.data[start : i-1]
		}
	}
	p.pos = len(p.data)
	return p.data[start:]
}

func (p *Parser) parseOperand() (Operand, error) {
	p.skipWhitespaceAndComments()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '/':
		return p.parseName(), nil
	case c == '[':
		return p.parseArray()
	}

	if kw, ok := p.keyword(); ok {
		return kw, nil
	}
	return nil, fmt.Errorf("unexpected character %q", c)
}

func (p *Parser) parseNumber() (Operand, error) {
	start := p.pos
	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}
	hasDecimal := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDecimal {
			hasDecimal = true
			p.pos++
		} else {
			break
		}
	}

	numStr := string(p.data[start:p.pos])
	if numStr == "-" || numStr == "+" || numStr == "." {
		return Number(0), nil
	}
	val, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", numStr, err)
	}
	return Number(val), nil
}

// parseString parses a literal string (...) with escape sequence handling.
func (p *Parser) parseString() (Operand, error) {
	p.pos++ // skip '('

	var result bytes.Buffer
	depth := 1
	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.data):
			p.pos++
			p.parseEscape(&result)
		case c == '(':
			depth++
			result.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
			p.pos++
		default:
			result.WriteByte(c)
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unclosed string")
	}
	return String(result.Bytes()), nil
}

func (p *Parser) parseEscape(out *bytes.Buffer) {
	next := p.data[p.pos]
	p.pos++
	switch next {
	case 'n':
		out.WriteByte('\n')
	case 'r':
		out.WriteByte('\r')
	case 't':
		out.WriteByte('\t')
	case 'b':
		out.WriteByte('\b')
	case 'f':
		out.WriteByte('\f')
	case '\r':
		// Line continuation
		if p.pos < len(p.data) && p.data[p.pos] == '\n' {
			p.pos++
		}
	case '\n':
	case '0', '1', '2', '3', '4', '5', '6', '7':
		val := int(next - '0')
		for i := 0; i < 2 && p.pos < len(p.data); i++ {
			d := p.data[p.pos]
			if d < '0' || d > '7' {
				break
			}
			val = val*8 + int(d-'0')
			p.pos++
		}
		out.WriteByte(byte(val & 0xFF))
	default:
		// \( \) \\ and unknown escapes keep the character
		out.WriteByte(next)
	}
}

func (p *Parser) parseHexString() (Operand, error) {
	p.pos++ // skip '<'

	var digits []byte
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		if c == '>' {
			return String(decodeHexDigits(digits)), nil
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit: %c", c)
		}
		digits = append(digits, c)
	}
	return nil, fmt.Errorf("unclosed hex string")
}

func decodeHexDigits(digits []byte) []byte {
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexValue(digits[2*i])<<4 | hexValue(digits[2*i+1])
	}
	return out
}

// parseName parses a name object /Name with # escape handling.
func (p *Parser) parseName() Operand {
	p.pos++ // skip '/'

	var result bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		result.WriteByte(c)
		p.pos++
	}
	return Name(result.String())
}

func (p *Parser) parseArray() (Operand, error) {
	p.pos++ // skip '['

	arr := Array{}
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Operand, error) {
	p.pos += 2 // skip '<<'

	dict := Dict{}
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name")
		}
		key := p.parseName().(Name)
		value, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		dict[string(key)] = value
	}
}

func (p *Parser) skipWhitespaceAndComments() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
