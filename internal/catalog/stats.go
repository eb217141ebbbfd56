package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseStats decodes a stats blob such as
//
//	{'community': {'in_wantlist': 12, 'in_collection': 34}}
//
// The blob is a Python-style literal. It is parsed as data only; nothing in it
// is ever evaluated. A missing "community" key yields zero counts, and a
// missing counter yields zero for that counter. Any syntax error, a
// non-mapping where a mapping is expected, or a counter that is not a
// non-negative integer is reported as ErrMalformedStats.
func ParseStats(raw string) (Stats, error) {
	v, err := parseLiteral(raw)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrMalformedStats, err)
	}
	top, ok := v.(map[any]any)
	if !ok {
		return Stats{}, fmt.Errorf("%w: top level is %s, not a mapping", ErrMalformedStats, literalKind(v))
	}
	c, present := top["community"]
	if !present {
		return Stats{}, nil
	}
	community, ok := c.(map[any]any)
	if !ok {
		return Stats{}, fmt.Errorf("%w: community is %s, not a mapping", ErrMalformedStats, literalKind(c))
	}

	var s Stats
	if s.InWantlist, err = counter(community, ColInWantlist); err != nil {
		return Stats{}, err
	}
	if s.InCollection, err = counter(community, ColInCollection); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// StatsOrZero is ParseStats with the error replaced by zero counts.
func StatsOrZero(raw string) Stats {
	s, err := ParseStats(raw)
	if err != nil {
		return Stats{}
	}
	return s
}

func counter(m map[any]any, key string) (int, error) {
	v, ok := m[key]
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case int64:
		if n < 0 || n > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %s out of range: %d", ErrMalformedStats, key, n)
		}
		return int(n), nil
	case float64:
		if n < 0 || n > math.MaxInt32 || n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s is not a count: %v", ErrMalformedStats, key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s is %s", ErrMalformedStats, key, literalKind(v))
	}
}

func literalKind(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case bool:
		return "a bool"
	case int64, float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "a sequence"
	case map[any]any:
		return "a mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// parseLiteral parses a single literal value: dicts, lists, tuples, quoted
// strings, ints, floats, True, False and None.
func parseLiteral(s string) (any, error) {
	p := &literalParser{src: s}
	p.skipSpace()
	if p.eof() {
		return nil, fmt.Errorf("empty input")
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected trailing input")
	}
	return v, nil
}

const maxLiteralDepth = 64

type literalParser struct {
	src   string
	pos   int
	depth int
}

func (p *literalParser) eof() bool { return p.pos >= len(p.src) }

func (p *literalParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) value() (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.peek(); {
	case c == '{':
		return p.dict()
	case c == '[':
		return p.sequence('[', ']')
	case c == '(':
		return p.sequence('(', ')')
	case c == '\'' || c == '"':
		return p.str()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.keyword()
	}
}

func (p *literalParser) enter() error {
	p.depth++
	if p.depth > maxLiteralDepth {
		return p.errorf("nesting too deep")
	}
	return nil
}

func (p *literalParser) dict() (any, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	p.pos++ // {
	out := make(map[any]any)
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		k, err := p.value()
		if err != nil {
			return nil, err
		}
		switch k.(type) {
		case []any, map[any]any:
			return nil, p.errorf("unhashable key")
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[k] = v

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *literalParser) sequence(open, closing byte) (any, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	p.pos++ // open
	out := []any{}
	for {
		p.skipSpace()
		if p.peek() == closing {
			p.pos++
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '%c'", closing)
		}
	}
}

func (p *literalParser) str() (any, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			return nil, p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\n':
			return nil, p.errorf("newline in string")
		case c == '\\':
			p.pos++
			if p.eof() {
				return nil, p.errorf("unterminated escape")
			}
			if err := p.escape(&b); err != nil {
				return nil, err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *literalParser) escape(b *strings.Builder) error {
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case '\n':
		// line continuation
	case 'x', 'u', 'U':
		width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		if p.pos+width > len(p.src) {
			return p.errorf("truncated \\%c escape", c)
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
		if err != nil {
			return p.errorf("bad \\%c escape", c)
		}
		b.WriteRune(rune(n))
		p.pos += width
	default:
		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
scan:
	for !p.eof() {
		c := p.peek()
		switch {
		case c >= '0' && c <= '9', c == '_':
		case c == '.', c == 'e', c == 'E':
			isFloat = true
		case (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E'):
		default:
			break scan
		}
		p.pos++
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("bad number %q", text)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("bad integer %q", text)
	}
	return n, nil
}

func (p *literalParser) keyword() (any, error) {
	for _, kw := range []struct {
		word string
		val  any
	}{{"True", true}, {"False", false}, {"None", nil}} {
		if strings.HasPrefix(p.src[p.pos:], kw.word) && !isIdentByte(p.src, p.pos+len(kw.word)) {
			p.pos += len(kw.word)
			return kw.val, nil
		}
	}
	return nil, p.errorf("unexpected %q", p.peek())
}

func isIdentByte(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
