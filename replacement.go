package tagweave

// Replacer computes the tag that takes the place of a matched tag.
type Replacer func(matched Tag) Tag

// WithBody keeps the matched tag, markers included, and swaps its body.
func WithBody(body Content) Replacer {
	return func(matched Tag) Tag {
		if matched.SelfClosing {
			// a self-closing marker cannot wrap a body
			matched = matched.Canonical()
			matched.SelfClosing = false
		}
		matched.Body = body.Clone()
		return matched
	}
}

// WithText is WithBody with a single text part.
func WithText(text string) Replacer {
	return WithBody(Content{Text(text)})
}

// WithTag replaces the matched tag by t.
func WithTag(t Tag) Replacer {
	return func(Tag) Tag { return t }
}

type replaceConfig struct {
	exhaustive bool
	strip      bool
}

// ReplaceOption tunes Replace.
type ReplaceOption func(*replaceConfig)

// Exhaustive replaces every match instead of only the first one.
func Exhaustive() ReplaceOption {
	return func(c *replaceConfig) { c.exhaustive = true }
}

// StripTags inserts only the body of the replacement tag, without markers.
func StripTags() ReplaceOption {
	return func(c *replaceConfig) { c.strip = true }
}

// Replace returns a new content where tags named name are substituted by
// the tag r returns for them. Matches are visited in one left-to-right pass
// over c; a match nested inside an already replaced one is skipped. Without
// Exhaustive only the first match is replaced.
//
// Parts outside the replaced spans are carried over unchanged; c itself is
// never modified.
func (e *Engine) Replace(c Content, name string, r Replacer, opts ...ReplaceOption) (Content, error) {
	if err := checkName("replace", name); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &ContractError{Op: "replace", Name: name, Err: ErrNilReplacer}
	}
	var cfg replaceConfig
	for _, o := range opts {
		o(&cfg)
	}

	var out Content
	cursor := position{}
	for m := range e.matches(c, name) {
		if m.start.before(cursor) {
			continue
		}
		out = append(out, c.slice(cursor, m.start)...)
		t := r(m.build(c))
		if cfg.strip {
			out = append(out, t.Body...)
		} else {
			out = append(out, t.Content()...)
		}
		cursor = m.end
		if !cfg.exhaustive {
			break
		}
	}
	return append(out, c.slice(cursor, c.end())...), nil
}

// Strip removes the markers of matching tags and keeps their bodies.
func (e *Engine) Strip(c Content, name string, opts ...ReplaceOption) (Content, error) {
	keep := func(t Tag) Tag { return t }
	return e.Replace(c, name, keep, append(opts, StripTags())...)
}

// Remove deletes matching tags, bodies included.
func (e *Engine) Remove(c Content, name string, opts ...ReplaceOption) (Content, error) {
	drop := func(Tag) Tag { return Tag{} }
	return e.Replace(c, name, drop, append(opts, StripTags())...)
}
