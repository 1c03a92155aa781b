package tagweave

import (
	"iter"

	"go.uber.org/zap"
)

func NewEngine(opts ...func(*Engine)) *Engine {
	e := &Engine{log: zap.NewNop(), duplicates: DuplicateReject}
	for _, o := range opts {
		o(e)
	}
	return e
}

// WithLogger routes debug diagnostics (demoted heads, unmatched markers) to l.
func WithLogger(l *zap.Logger) func(*Engine) {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithDuplicatePolicy(p DuplicatePolicy) func(*Engine) {
	return func(e *Engine) { e.duplicates = p }
}

var defaultEngine = NewEngine()

// Scanner returns a scanner over text starting at offset.
func (e *Engine) Scanner(text string, offset int) *Scanner {
	return e.newScanner(text, offset, 0)
}

func (e *Engine) newScanner(text string, offset, part int) *Scanner {
	offset = min(max(offset, 0), len(text))
	return &Scanner{text: text, pos: offset, part: part, log: e.log, policy: e.duplicates}
}

// Tags yields every tag of c in document order, nested tags included. The
// sequence scans lazily: stopping early skips the rest of the content.
func (e *Engine) Tags(c Content) iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		for m := range e.matches(c, "") {
			if !yield(m.build(c)) {
				return
			}
		}
	}
}

// matches yields completed tags in document order, restricted to name
// unless it is empty.
func (e *Engine) matches(c Content, name string) iter.Seq[match] {
	return func(yield func(match) bool) {
		col := newCollector(e, c, name)
		for {
			m, ok := col.pop()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

// Parse returns every tag of c in document order.
func (e *Engine) Parse(c Content) []Tag {
	var out []Tag
	for t := range e.Tags(c) {
		out = append(out, t)
	}
	return out
}

// ParseString parses a single text.
func (e *Engine) ParseString(s string) []Tag {
	return e.Parse(Content{Text(s)})
}

// First returns the first tag named name in document order. Scanning stops
// once that tag is known to be first, even inside an unclosed wrapper.
func (e *Engine) First(c Content, name string) (Tag, bool, error) {
	if err := checkName("first", name); err != nil {
		return Tag{}, false, err
	}
	for m := range e.matches(c, name) {
		return m.build(c), true, nil
	}
	return Tag{}, false, nil
}

// All returns every tag named name, including tags nested in other matches.
func (e *Engine) All(c Content, name string) ([]Tag, error) {
	if err := checkName("all", name); err != nil {
		return nil, err
	}
	var out []Tag
	for m := range e.matches(c, name) {
		out = append(out, m.build(c))
	}
	return out, nil
}

func checkName(op, name string) error {
	if !ValidName(name) {
		return &ContractError{Op: op, Name: name, Err: ErrInvalidName}
	}
	return nil
}

// Tags runs Engine.Tags on the default engine.
func Tags(c Content) iter.Seq[Tag] { return defaultEngine.Tags(c) }

// Parse runs Engine.Parse on the default engine.
func Parse(c Content) []Tag { return defaultEngine.Parse(c) }

// ParseString runs Engine.ParseString on the default engine.
func ParseString(s string) []Tag { return defaultEngine.ParseString(s) }

// First runs Engine.First on the default engine.
func First(c Content, name string) (Tag, bool, error) { return defaultEngine.First(c, name) }

// All runs Engine.All on the default engine.
func All(c Content, name string) ([]Tag, error) { return defaultEngine.All(c, name) }

// Replace runs Engine.Replace on the default engine.
func Replace(c Content, name string, r Replacer, opts ...ReplaceOption) (Content, error) {
	return defaultEngine.Replace(c, name, r, opts...)
}

// Strip runs Engine.Strip on the default engine.
func Strip(c Content, name string, opts ...ReplaceOption) (Content, error) {
	return defaultEngine.Strip(c, name, opts...)
}

// Remove runs Engine.Remove on the default engine.
func Remove(c Content, name string, opts ...ReplaceOption) (Content, error) {
	return defaultEngine.Remove(c, name, opts...)
}
