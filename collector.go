package tagweave

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

// match is a completed tag together with its location in the content.
// The body is sliced lazily by build.
type match struct {
	tag       Tag
	start     position // first byte of the open marker
	bodyStart position
	bodyEnd   position
	end       position // byte after the close marker
}

func (m match) build(c Content) Tag {
	t := m.tag
	if !t.SelfClosing {
		t.Body = c.slice(m.bodyStart, m.bodyEnd)
	}
	return t
}

// textRun is a maximal sequence of consecutive Text parts scanned as one
// logical text, so markers may straddle part boundaries.
type textRun struct {
	first int    // index of the first part
	ends  []int  // logical end offset of each part
	text  string // concatenated parts
}

func newTextRun(c Content, first int) *textRun {
	r := &textRun{first: first}
	n := 0
	for i := first; i < len(c); i++ {
		t, ok := c[i].(Text)
		if !ok {
			break
		}
		n += len(t)
		r.ends = append(r.ends, n)
	}
	if len(r.ends) == 1 {
		r.text = string(c[first].(Text))
		return r
	}
	var sb strings.Builder
	sb.Grow(n)
	for _, p := range c[first:r.next()] {
		sb.WriteString(string(p.(Text)))
	}
	r.text = sb.String()
	return r
}

// next returns the index of the part following the run.
func (r *textRun) next() int { return r.first + len(r.ends) }

// at maps the logical offset of a byte to the part holding it. Offsets at
// the end of the run map past the last part's last byte.
func (r *textRun) at(off int) position {
	j, _ := slices.BinarySearch(r.ends, off+1)
	return r.position(j, off)
}

// after maps the logical offset just past a byte to the part holding that
// byte, so empty parts following it stay outside the marker.
func (r *textRun) after(off int) position {
	j, _ := slices.BinarySearch(r.ends, off)
	return r.position(j, off)
}

func (r *textRun) position(j, off int) position {
	j = min(j, len(r.ends)-1)
	start := 0
	if j > 0 {
		start = r.ends[j-1]
	}
	return position{part: r.first + j, offset: off - start}
}

type openEntry struct {
	tok       Token
	start     position
	bodyStart position
}

// collector walks a whole content sequence, one scanner per run of Text
// parts, pairing open and close markers with an explicit nesting stack.
// Non-text parts need no handling: they fall inside a body whenever they sit
// between a matched pair.
//
// With a name set, only matches of that name are collected and each is
// released as soon as no earlier open of the same name is pending.
type collector struct {
	engine  *Engine
	content Content
	name    string
	next    int // index of the next part to visit
	run     *textRun
	scanner *Scanner
	stack   []openEntry
	open    map[string][]int // stack indexes by tag name
	ready   []match          // completed, ordered by start
	done    bool
}

func newCollector(e *Engine, c Content, name string) *collector {
	return &collector{engine: e, content: c, name: name, open: make(map[string][]int)}
}

// pop returns the next completed tag in document order. A completed tag is
// held back while an earlier open marker is still waiting for its close.
func (c *collector) pop() (match, bool) {
	for {
		if c.releasable() {
			m := c.ready[0]
			c.ready = c.ready[1:]
			return m, true
		}
		if c.done {
			return match{}, false
		}
		c.advance()
	}
}

func (c *collector) releasable() bool {
	if len(c.ready) == 0 {
		return false
	}
	start := c.ready[0].start
	if c.name == "" {
		return len(c.stack) == 0 || start.before(c.stack[0].start)
	}
	// other names cannot start a match of c.name earlier than this one
	opens := c.open[c.name]
	return len(opens) == 0 || start.before(c.stack[opens[0]].start)
}

func (c *collector) advance() {
	if c.scanner != nil {
		if tok, ok := c.scanner.Next(); ok {
			c.handle(tok)
			return
		}
		c.scanner = nil
	}
	for c.next < len(c.content) {
		if _, ok := c.content[c.next].(Text); !ok {
			c.next++
			continue
		}
		c.run = newTextRun(c.content, c.next)
		c.next = c.run.next()
		c.scanner = c.engine.newScanner(c.run.text, 0, c.run.first)
		c.scanner.run = c.run
		return
	}
	c.finish()
}

// handle applies one token to the stack. A close marker pairs with the
// innermost open of the same name; opens stacked above that one are
// abandoned and stay literal, whatever their names.
func (c *collector) handle(tok Token) {
	switch tok.Kind {
	case TokenOpen:
		if !tok.SelfClosing {
			c.stack = append(c.stack, openEntry{
				tok:       tok,
				start:     c.run.at(tok.Start),
				bodyStart: c.run.after(tok.End),
			})
			c.open[tok.Name] = append(c.open[tok.Name], len(c.stack)-1)
			return
		}
		end := c.run.after(tok.End)
		c.complete(match{
			tag: Tag{
				Name:        tok.Name,
				Attributes:  tok.Attributes,
				SelfClosing: true,
				open:        tok.Raw,
			},
			start:     c.run.at(tok.Start),
			bodyStart: end,
			bodyEnd:   end,
			end:       end,
		})
	case TokenClose:
		i := c.innermost(tok.Name)
		if i < 0 {
			c.unmatched(tok)
			return
		}
		for _, o := range c.stack[i+1:] {
			c.dropped("open tag abandoned by enclosing close", o)
			c.popOpen(o.tok.Name)
		}
		open := c.stack[i]
		c.popOpen(open.tok.Name)
		c.stack = c.stack[:i]
		c.complete(match{
			tag: Tag{
				Name:       open.tok.Name,
				Attributes: open.tok.Attributes,
				open:       open.tok.Raw,
				close:      tok.Raw,
			},
			start:     open.start,
			bodyStart: open.bodyStart,
			bodyEnd:   c.run.at(tok.Start),
			end:       c.run.after(tok.End),
		})
	}
}

func (c *collector) innermost(name string) int {
	opens := c.open[name]
	if len(opens) == 0 {
		return -1
	}
	return opens[len(opens)-1]
}

// popOpen forgets the topmost stack index recorded for name.
func (c *collector) popOpen(name string) {
	opens := c.open[name]
	if len(opens) <= 1 {
		delete(c.open, name)
		return
	}
	c.open[name] = opens[:len(opens)-1]
}

func (c *collector) complete(m match) {
	if c.name != "" && m.tag.Name != c.name {
		return
	}
	i, _ := slices.BinarySearchFunc(c.ready, m.start, func(x match, p position) int {
		return x.start.compare(p)
	})
	c.ready = slices.Insert(c.ready, i, m)
}

// finish drops every open marker still pending at the end of the content;
// its text stays literal.
func (c *collector) finish() {
	for _, o := range c.stack {
		c.dropped("open tag never closed", o)
	}
	c.stack = nil
	clear(c.open)
	c.done = true
}

func (c *collector) unmatched(tok Token) {
	if ce := c.engine.log.Check(zap.DebugLevel, "close tag kept as text"); ce != nil {
		at := c.run.at(tok.Start)
		ce.Write(
			zap.Int("part", at.part),
			zap.Int("offset", at.offset),
			zap.Error(NewUnmatchedTagError(positionAt(c.run.text, tok.Start), tok.Name, c.run.text)),
		)
	}
}

func (c *collector) dropped(msg string, o openEntry) {
	c.engine.log.Debug(msg,
		zap.String("tag", o.tok.Name),
		zap.Int("part", o.start.part),
		zap.Int("offset", o.start.offset),
	)
}
