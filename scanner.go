package tagweave

import (
	"iter"
	"strings"

	"go.uber.org/zap"
)

// TokenKind classifies scanner tokens.
type TokenKind int

const (
	TokenText  TokenKind = iota // run of literal text
	TokenOpen                   // <name ...> or <name .../>
	TokenClose                  // </name>
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenOpen:
		return "open"
	case TokenClose:
		return "close"
	default:
		return "unknown"
	}
}

// Token is one scan event. Start and End are byte offsets into the scanned
// text and Raw is text[Start:End].
type Token struct {
	Kind        TokenKind
	Name        string
	Attributes  Attributes
	SelfClosing bool
	Start       int
	End         int
	Raw         string
}

// Scanner tokenizes a single text. It is single use: once exhausted it
// must be recreated to scan again.
//
// Anything that looks like a tag but fails to parse is reported as text; the
// scanner never fails.
type Scanner struct {
	text    string
	pos     int
	part    int
	run     *textRun // set when scanning a run of parts
	pending *Token
	log     *zap.Logger
	policy  DuplicatePolicy
}

// NewScanner returns a scanner over text starting at offset, using default
// engine settings.
func NewScanner(text string, offset int) *Scanner {
	return defaultEngine.Scanner(text, offset)
}

// Next returns the next token, or false when the text is exhausted.
func (s *Scanner) Next() (Token, bool) {
	if s.pending != nil {
		tok := *s.pending
		s.pending = nil
		return tok, true
	}
	if s.pos >= len(s.text) {
		return Token{}, false
	}

	start := s.pos
	for i := s.pos; ; {
		j := strings.IndexByte(s.text[i:], '<')
		if j < 0 {
			s.pos = len(s.text)
			return s.textToken(start, s.pos), true
		}
		at := i + j
		tok, d := s.head(at)
		if d != nil {
			s.demoted(at, d)
			i = at + 1
			continue
		}
		s.pos = tok.End
		if at > start {
			s.pending = &tok
			return s.textToken(start, at), true
		}
		return tok, true
	}
}

// Tokens returns the remaining tokens as a sequence.
func (s *Scanner) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok, ok := s.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

func (s *Scanner) textToken(start, end int) Token {
	return Token{Kind: TokenText, Start: start, End: end, Raw: s.text[start:end]}
}

// demotion explains why a '<' was kept as text.
type demotion struct {
	name    string
	reason  string
	attrErr error
}

func (d *demotion) err(text string, at int) error {
	switch {
	case d.attrErr != nil:
		return d.attrErr
	case d.name == "":
		return NewParseError(positionAt(text, at), d.reason, text)
	default:
		return NewMalformedTagError(positionAt(text, at), d.name, d.reason, text)
	}
}

func (s *Scanner) demoted(at int, d *demotion) {
	if ce := s.log.Check(zap.DebugLevel, "tag head demoted to text"); ce != nil {
		pos := position{part: s.part, offset: at}
		if s.run != nil {
			pos = s.run.at(at)
		}
		ce.Write(
			zap.Int("part", pos.part),
			zap.Int("offset", pos.offset),
			zap.String("tag", d.name),
			zap.Error(d.err(s.text, at)),
		)
	}
}

// head parses the tag head starting at the '<' at offset at.
func (s *Scanner) head(at int) (Token, *demotion) {
	text := s.text
	n := len(text)
	i := at + 1
	closing := i < n && text[i] == '/'
	if closing {
		i++
	}
	if i >= n || !isNameStart(text[i]) {
		return Token{}, &demotion{reason: "invalid tag name"}
	}
	nameStart := i
	for i < n && isNameByte(text[i]) {
		i++
	}
	name := text[nameStart:i]

	if closing {
		for i < n && isSpace(text[i]) {
			i++
		}
		if i >= n || text[i] != '>' {
			return Token{}, &demotion{name: name, reason: "closing tag is not terminated"}
		}
		i++
		return Token{Kind: TokenClose, Name: name, Start: at, End: i, Raw: text[at:i]}, nil
	}

	if i >= n {
		return Token{}, &demotion{name: name, reason: "tag is not terminated"}
	}
	if c := text[i]; c != '>' && c != '/' && !isSpace(c) {
		return Token{}, &demotion{name: name, reason: "invalid character after tag name"}
	}

	end, selfClosing, reason := headEnd(text, i)
	if reason != "" {
		return Token{}, &demotion{name: name, reason: reason}
	}
	attrEnd := end - 1
	if selfClosing {
		attrEnd = end - 2
	}
	attrs, err := parseAttributes(text[i:attrEnd], name, s.policy)
	if err != nil {
		return Token{}, &demotion{name: name, attrErr: err}
	}
	return Token{
		Kind:        TokenOpen,
		Name:        name,
		Attributes:  attrs,
		SelfClosing: selfClosing,
		Start:       at,
		End:         end,
		Raw:         text[at:end],
	}, nil
}

// headEnd finds the byte after the terminating '>' of a tag head, skipping
// over quoted values.
func headEnd(text string, i int) (end int, selfClosing bool, reason string) {
	var inString, escape bool
	for ; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			case c == '\n':
				return 0, false, "newline in attribute value"
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '>':
			return i + 1, false, ""
		case '/':
			if i+1 < len(text) && text[i+1] == '>' {
				return i + 2, true, ""
			}
		case '<':
			return 0, false, "unexpected '<' in tag"
		}
	}
	return 0, false, "tag is not terminated"
}
