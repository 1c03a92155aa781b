package tagweave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTokens(s *Scanner) []Token {
	var out []Token
	for tok := range s.Tokens() {
		out = append(out, tok)
	}
	return out
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func Test_Scanner(t *testing.T) {
	t.Run("should emit text, open and close tokens with offsets", func(t *testing.T) {
		input := `hi <note kind="a">body</note> bye`
		toks := collectTokens(NewScanner(input, 0))
		require.Equal(t, []TokenKind{TokenText, TokenOpen, TokenText, TokenClose, TokenText}, kinds(toks))

		open := toks[1]
		assert.Equal(t, "note", open.Name)
		assert.Equal(t, `<note kind="a">`, open.Raw)
		assert.Equal(t, input[open.Start:open.End], open.Raw)
		assert.Equal(t, "a", open.Attributes.Value("kind"))
		assert.False(t, open.SelfClosing)

		assert.Equal(t, "body", toks[2].Raw)
		assert.Equal(t, "</note>", toks[3].Raw)
		assert.Equal(t, " bye", toks[4].Raw)
	})

	t.Run("should recognize self-closing tags", func(t *testing.T) {
		toks := collectTokens(NewScanner(`<img src="x.png"/><br/><hr />`, 0))
		require.Len(t, toks, 3)
		for _, tok := range toks {
			assert.Equal(t, TokenOpen, tok.Kind)
			assert.True(t, tok.SelfClosing, tok.Raw)
		}
		assert.Equal(t, "x.png", toks[0].Attributes.Value("src"))
		assert.Equal(t, "hr", toks[2].Name)
	})

	t.Run("should demote malformed heads to text", func(t *testing.T) {
		inputs := []string{
			`<a attr=bad>text`,
			`a < b and c > d`,
			`<1tag>`,
			`<a!>`,
			`<a href="x`,
			`<a b="1" <`,
			`</a`,
			`</ a>`,
			`<>`,
			`<a x="1" x="2">`,
		}
		for _, input := range inputs {
			toks := collectTokens(NewScanner(input, 0))
			for _, tok := range toks {
				assert.Equal(t, TokenText, tok.Kind, "input %q produced %s token %q", input, tok.Kind, tok.Raw)
			}
		}
	})

	t.Run("should resume right after a demoted bracket", func(t *testing.T) {
		toks := collectTokens(NewScanner(`<<b>x</b>`, 0))
		require.Equal(t, []TokenKind{TokenText, TokenOpen, TokenText, TokenClose}, kinds(toks))
		assert.Equal(t, "<", toks[0].Raw)
	})

	t.Run("should skip quoted closing brackets in heads", func(t *testing.T) {
		toks := collectTokens(NewScanner(`<f cond="a > b" />`, 0))
		require.Len(t, toks, 1)
		assert.True(t, toks[0].SelfClosing)
		assert.Equal(t, "a > b", toks[0].Attributes.Value("cond"))
	})

	t.Run("should allow whitespace before the close bracket of a close tag", func(t *testing.T) {
		toks := collectTokens(NewScanner("</a \n>", 0))
		require.Len(t, toks, 1)
		assert.Equal(t, TokenClose, toks[0].Kind)
		assert.Equal(t, "a", toks[0].Name)
	})

	t.Run("should start at the given offset", func(t *testing.T) {
		input := `<a>skip</a><b/>`
		toks := collectTokens(NewScanner(input, 11))
		require.Len(t, toks, 1)
		assert.Equal(t, "b", toks[0].Name)
		assert.Equal(t, 11, toks[0].Start)
	})

	t.Run("should not restart once exhausted", func(t *testing.T) {
		s := NewScanner(`<a/>`, 0)
		require.Len(t, collectTokens(s), 1)
		_, ok := s.Next()
		assert.False(t, ok)
	})

	t.Run("should honor the engine duplicate policy", func(t *testing.T) {
		e := NewEngine(WithDuplicatePolicy(DuplicateLastWins))
		toks := collectTokens(e.Scanner(`<a x="1" x="2"/>`, 0))
		require.Len(t, toks, 1)
		assert.Equal(t, TokenOpen, toks[0].Kind)
		assert.Equal(t, "2", toks[0].Attributes.Value("x"))
	})
}

func Test_TokenKind_String(t *testing.T) {
	assert.Equal(t, "text", TokenText.String())
	assert.Equal(t, "open", TokenOpen.String())
	assert.Equal(t, "close", TokenClose.String())
	assert.Equal(t, "unknown", TokenKind(42).String())
}
