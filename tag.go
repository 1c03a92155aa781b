package tagweave

import "strings"

// Attribute is a single key with either one string value or a list of
// strings. An attribute holding several values always renders as a list.
type Attribute struct {
	Key    string
	Values []string
	List   bool // value was written as ["a", "b"]
}

// Attr builds a single-valued attribute.
func Attr(key, value string) Attribute {
	return Attribute{Key: key, Values: []string{value}}
}

// ListAttr builds a list-valued attribute.
func ListAttr(key string, values ...string) Attribute {
	return Attribute{Key: key, Values: values, List: true}
}

// Value returns the single value, or the first list element.
func (a Attribute) Value() string {
	if len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}

// String renders the attribute as key="value" or key=["a", "b"].
func (a Attribute) String() string {
	var sb strings.Builder
	a.writeTo(&sb)
	return sb.String()
}

func (a Attribute) writeTo(sb *strings.Builder) {
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	if !a.List && len(a.Values) <= 1 {
		sb.WriteString(EncodeValue(a.Value()))
		return
	}
	sb.WriteByte('[')
	for i, v := range a.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(EncodeValue(v))
	}
	sb.WriteByte(']')
}

// Attributes is an insertion-ordered attribute list with unique keys.
type Attributes []Attribute

// Get returns the attribute with the given key.
func (as Attributes) Get(key string) (Attribute, bool) {
	for _, a := range as {
		if a.Key == key {
			return a, true
		}
	}
	return Attribute{}, false
}

// Value returns the value of key, or "" when absent.
func (as Attributes) Value(key string) string {
	a, _ := as.Get(key)
	return a.Value()
}

// Has reports whether key is present.
func (as Attributes) Has(key string) bool {
	_, ok := as.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (as Attributes) Keys() []string {
	keys := make([]string, len(as))
	for i, a := range as {
		keys[i] = a.Key
	}
	return keys
}

// String renders the attributes separated by single spaces.
func (as Attributes) String() string {
	var sb strings.Builder
	for i, a := range as {
		if i > 0 {
			sb.WriteByte(' ')
		}
		a.writeTo(&sb)
	}
	return sb.String()
}

// Tag is a named, attributed region of a content sequence.
//
// Tags built by the engine remember their original marker text, so rendering
// a parsed tag reproduces the source markers byte for byte. Tags built as
// literals render canonical markers.
type Tag struct {
	Name        string
	Attributes  Attributes
	Body        Content
	SelfClosing bool

	open  string
	close string
}

// OpenMarker returns the opening (or self-closing) marker.
func (t Tag) OpenMarker() string {
	if t.open != "" {
		return t.open
	}
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(t.Name)
	if len(t.Attributes) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(t.Attributes.String())
	}
	if t.SelfClosing {
		sb.WriteString("/>")
	} else {
		sb.WriteByte('>')
	}
	return sb.String()
}

// CloseMarker returns the closing marker, or "" for self-closing tags.
func (t Tag) CloseMarker() string {
	if t.SelfClosing {
		return ""
	}
	if t.close != "" {
		return t.close
	}
	return "</" + t.Name + ">"
}

// Content renders the tag as a content sequence: open marker, body parts and
// close marker.
func (t Tag) Content() Content {
	if t.SelfClosing {
		return Content{Text(t.OpenMarker())}
	}
	out := make(Content, 0, len(t.Body)+2)
	out = append(out, Text(t.OpenMarker()))
	out = append(out, t.Body...)
	return append(out, Text(t.CloseMarker()))
}

// String renders the tag in marker form.
func (t Tag) String() string {
	if t.SelfClosing {
		return t.OpenMarker()
	}
	return t.OpenMarker() + t.Body.String() + t.CloseMarker()
}

// Canonical returns a copy that renders canonical markers instead of the
// source markers it was parsed from.
func (t Tag) Canonical() Tag {
	t.open, t.close = "", ""
	return t
}

// ValidName reports whether name is a tag identifier:
// [A-Za-z_][A-Za-z0-9_-]*.
func ValidName(name string) bool {
	if name == "" || !isNameStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || b == '-' || (b >= '0' && b <= '9')
}
