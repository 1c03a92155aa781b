package tagweave

import "strings"

// ParseAttributes parses an attribute list such as `a="1" b = ["x", "y"]`.
// Duplicate keys are rejected. The returned error is an
// *AttributeParsingError.
func ParseAttributes(text string) (Attributes, error) {
	return parseAttributes(text, "", DuplicateReject)
}

// EncodeValue quotes v, escaping backslash, double quote, newline, tab and
// carriage return.
func EncodeValue(v string) string {
	var sb strings.Builder
	sb.Grow(len(v) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(v); i++ {
		switch c := v[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// attrParser is a cursor over one attribute list.
type attrParser struct {
	text   string
	pos    int
	tag    string
	policy DuplicatePolicy
}

func parseAttributes(text, tag string, policy DuplicatePolicy) (Attributes, error) {
	p := &attrParser{text: text, tag: tag, policy: policy}
	var out Attributes
	for {
		p.skipSpace()
		if p.eof() {
			return out, nil
		}
		attr, err := p.attribute()
		if err != nil {
			return nil, err
		}
		if i := out.index(attr.Key); i >= 0 {
			if p.policy != DuplicateLastWins {
				return nil, p.fail(attr.Key, "duplicate attribute")
			}
			out[i] = attr
		} else {
			out = append(out, attr)
		}
		// tokens must be separated by whitespace
		if !p.eof() && !isSpace(p.text[p.pos]) {
			return nil, p.fail(attr.Key, "expected whitespace after attribute value")
		}
	}
}

func (as Attributes) index(key string) int {
	for i, a := range as {
		if a.Key == key {
			return i
		}
	}
	return -1
}

func (p *attrParser) attribute() (Attribute, error) {
	start := p.pos
	if !isNameStart(p.text[p.pos]) {
		return Attribute{}, p.fail("", "expected attribute name")
	}
	for !p.eof() && isKeyByte(p.text[p.pos]) {
		p.pos++
	}
	key := p.text[start:p.pos]

	p.skipSpace()
	if p.eof() || p.text[p.pos] != '=' {
		return Attribute{}, p.fail(key, "attribute has no value")
	}
	p.pos++
	p.skipSpace()
	if p.eof() {
		return Attribute{}, p.fail(key, "attribute has no value")
	}

	switch p.text[p.pos] {
	case '"':
		v, err := p.quoted(key)
		if err != nil {
			return Attribute{}, err
		}
		return Attr(key, v), nil
	case '[':
		vs, err := p.list(key)
		if err != nil {
			return Attribute{}, err
		}
		return ListAttr(key, vs...), nil
	case '{':
		return Attribute{}, p.fail(key, "nested mapping values are not allowed")
	default:
		return Attribute{}, p.fail(key, "attribute value must be quoted")
	}
}

// list parses ["a", "b"]; the cursor is on '['.
func (p *attrParser) list(key string) ([]string, error) {
	p.pos++
	var values []string
	p.skipSpace()
	if !p.eof() && p.text[p.pos] == ']' {
		p.pos++
		return values, nil
	}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.fail(key, "unterminated list")
		}
		switch p.text[p.pos] {
		case '"':
		case '[', '{':
			return nil, p.fail(key, "nested values are not allowed in lists")
		default:
			return nil, p.fail(key, "list elements must be quoted")
		}
		v, err := p.quoted(key)
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		p.skipSpace()
		if p.eof() {
			return nil, p.fail(key, "unterminated list")
		}
		switch p.text[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return values, nil
		default:
			return nil, p.fail(key, "expected ',' or ']' in list")
		}
	}
}

// quoted decodes a double-quoted string; the cursor is on the opening quote.
func (p *attrParser) quoted(key string) (string, error) {
	p.pos++
	var sb strings.Builder
	for !p.eof() {
		c := p.text[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\n':
			return "", p.fail(key, "newline in attribute value")
		case '\\':
			if p.pos+1 >= len(p.text) {
				return "", p.fail(key, "unterminated escape sequence")
			}
			switch p.text[p.pos+1] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return "", p.fail(key, "invalid escape sequence \\"+string(p.text[p.pos+1]))
			}
			p.pos += 2
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.fail(key, "unterminated attribute value")
}

func (p *attrParser) skipSpace() {
	for !p.eof() && isSpace(p.text[p.pos]) {
		p.pos++
	}
}

func (p *attrParser) eof() bool { return p.pos >= len(p.text) }

func (p *attrParser) fail(key, msg string) error {
	return NewAttributeParsingError(positionAt(p.text, p.pos), p.tag, key, msg, p.text)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isKeyByte(b byte) bool {
	return isNameByte(b) || b == '.' || b == ':'
}
