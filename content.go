package tagweave

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Part is one element of a mixed content sequence. Concrete part types
// implement the unexported isPart marker enabling a closed set: Text,
// Resource and Artifact.
type Part interface {
	fmt.Stringer
	isPart()
}

type (
	// Text is a textual part. Tags are only recognized inside Text parts.
	Text string

	// Resource is an opaque binary blob with its MIME type.
	Resource struct {
		// MimeType describes Data, e.g. "image/png".
		MimeType string
		// Data holds the raw bytes. The engine never reads or mutates it.
		Data []byte
	}

	// Artifact is an opaque payload produced by some upstream component.
	Artifact struct {
		// ID identifies the artifact; NewArtifact fills it with a UUID.
		ID string
		// Kind is a free-form category such as "chart" or "file".
		Kind string
		// Payload is the artifact value.
		Payload any
		// Hidden marks artifacts that must not be rendered to text.
		Hidden bool
	}
)

func (Text) isPart()     {}
func (Resource) isPart() {}
func (Artifact) isPart() {}

// String returns the text itself.
func (t Text) String() string { return string(t) }

// String renders a placeholder for the resource.
func (r Resource) String() string { return "[resource:" + r.MimeType + "]" }

// String renders a placeholder for the artifact, or nothing when hidden.
func (a Artifact) String() string {
	if a.Hidden {
		return ""
	}
	return "[artifact:" + a.Kind + ":" + a.ID + "]"
}

// NewArtifact returns a visible artifact with a fresh random ID.
func NewArtifact(kind string, payload any) Artifact {
	return Artifact{ID: uuid.NewString(), Kind: kind, Payload: payload}
}

// Content is an ordered sequence of parts. Adjacent Text parts are never
// merged by the engine.
type Content []Part

// ContentOf builds a Content from text, parts, contents and tags. Strings
// become Text parts and tags are expanded into their marker form.
func ContentOf(items ...any) Content {
	out := make(Content, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, Text(v))
		case Part:
			out = append(out, v)
		case Content:
			out = append(out, v...)
		case Tag:
			out = append(out, v.Content()...)
		default:
			out = append(out, Text(fmt.Sprint(v)))
		}
	}
	return out
}

// String concatenates the rendering of every part.
func (c Content) String() string {
	var sb strings.Builder
	for _, p := range c {
		sb.WriteString(p.String())
	}
	return sb.String()
}

// Texts concatenates the Text parts only.
func (c Content) Texts() string {
	var sb strings.Builder
	for _, p := range c {
		if t, ok := p.(Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// Clone returns a shallow copy of the sequence. Parts are values, so the copy
// never aliases the original slice.
func (c Content) Clone() Content {
	if c == nil {
		return nil
	}
	out := make(Content, len(c))
	copy(out, c)
	return out
}

// position addresses a byte inside a content sequence. Non-text parts have a
// length of one so that {i, 0} is before and {i, 1} after them.
type position struct {
	part   int
	offset int
}

func (p position) compare(o position) int {
	if p.part != o.part {
		return p.part - o.part
	}
	return p.offset - o.offset
}

func (p position) before(o position) bool { return p.compare(o) < 0 }

func partLen(p Part) int {
	if t, ok := p.(Text); ok {
		return len(t)
	}
	return 1
}

// end returns the position just past the last part.
func (c Content) end() position {
	return position{part: len(c)}
}

// slice returns the parts between from and to. Parts fully covered are
// carried over as-is; Text parts that straddle a boundary are cut.
func (c Content) slice(from, to position) Content {
	var out Content
	for i := from.part; i <= to.part && i < len(c); i++ {
		p := c[i]
		n := partLen(p)
		if n == 0 {
			// empty text parts survive when they sit inside the range
			if (i > from.part || from.offset == 0) && i < to.part {
				out = append(out, p)
			}
			continue
		}
		lo, hi := 0, n
		if i == from.part {
			lo = from.offset
		}
		if i == to.part {
			hi = to.offset
		}
		if lo >= hi {
			continue
		}
		if lo == 0 && hi == n {
			out = append(out, p)
			continue
		}
		if t, ok := p.(Text); ok {
			out = append(out, t[lo:hi])
		}
	}
	return out
}
