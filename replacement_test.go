package tagweave

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Replace_Modes(t *testing.T) {
	input := Content{Text(`<v>1</v> and <v>2</v>`)}

	cases := []struct {
		name string
		r    Replacer
		opts []ReplaceOption
		want string
	}{
		{"first match only", WithText("X"), nil, `<v>X</v> and <v>2</v>`},
		{"exhaustive", WithText("X"), []ReplaceOption{Exhaustive()}, `<v>X</v> and <v>X</v>`},
		{"strip tags", WithText("X"), []ReplaceOption{StripTags()}, `X and <v>2</v>`},
		{"strip tags exhaustive", WithText("X"), []ReplaceOption{StripTags(), Exhaustive()}, `X and X`},
		{
			"tag replacement keeps its own markers",
			WithTag(Tag{Name: "w", Attributes: Attributes{Attr("n", "1")}, Body: Content{Text("y")}}),
			nil,
			`<w n="1">y</w> and <v>2</v>`,
		},
		{
			"tag replacement stripped to its body",
			WithTag(Tag{Name: "w", Body: Content{Text("y")}}),
			[]ReplaceOption{StripTags()},
			`y and <v>2</v>`,
		},
		{
			"self-closing tag replacement",
			WithTag(Tag{Name: "hr", SelfClosing: true}),
			[]ReplaceOption{Exhaustive()},
			`<hr/> and <hr/>`,
		},
	}
	for _, tc := range cases {
		t.Run("should replace with "+tc.name, func(t *testing.T) {
			out, err := Replace(input, "v", tc.r, tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.String())
			assert.Equal(t, `<v>1</v> and <v>2</v>`, input.String(), "input must not change")
		})
	}
}

func Test_Replace(t *testing.T) {
	t.Run("should not replace matches nested in a replaced tag", func(t *testing.T) {
		out, err := Replace(Content{Text(`<v>a<v>b</v></v><v>c</v>`)}, "v", WithText("X"), Exhaustive())
		require.NoError(t, err)
		assert.Equal(t, `<v>X</v><v>X</v>`, out.String())
	})

	t.Run("should pass the matched tag to the replacer", func(t *testing.T) {
		upper := func(m Tag) Tag {
			m.Body = Content{Text(strings.ToUpper(m.Body.String()))}
			return m
		}
		out, err := Replace(Content{Text(`<v k="1">ab</v>, <v>cd</v>`)}, "v", upper, Exhaustive())
		require.NoError(t, err)
		assert.Equal(t, `<v k="1">AB</v>, <v>CD</v>`, out.String())
	})

	t.Run("should keep source markers byte for byte", func(t *testing.T) {
		out, err := Replace(Content{Text(`<v  id = "1" >1</v >`)}, "v", WithText("X"))
		require.NoError(t, err)
		assert.Equal(t, `<v  id = "1" >X</v >`, out.String())
	})

	t.Run("should preserve parts around and inside replaced spans", func(t *testing.T) {
		r := Resource{MimeType: "image/png"}
		a := Artifact{ID: "a1", Kind: "table"}
		input := Content{Text("x <v>1</v> y"), r, Text("<v>"), a, Text("</v> z")}
		snapshot := input.Clone()

		out, err := Strip(input, "v", Exhaustive())
		require.NoError(t, err)

		want := Content{Text("x "), Text("1"), Text(" y"), r, a, Text(" z")}
		if diff := cmp.Diff(want, out); diff != "" {
			t.Fatalf("unexpected content (-want +got):\n%s", diff)
		}
		assert.Equal(t, snapshot, input)
	})

	t.Run("should leave untouched parts as they were", func(t *testing.T) {
		input := Content{Text("<v>1</v>"), Text(""), Text("<v>2</v>")}
		out, err := Replace(input, "v", WithText("X"))
		require.NoError(t, err)
		require.Len(t, out, 5)
		assert.Equal(t, Text(""), out[3])
		assert.Equal(t, Text("<v>2</v>"), out[4])
	})

	t.Run("should replace tags whose markers straddle parts", func(t *testing.T) {
		input := Content{Text("a"), Text("<no"), Text("te>x</note>"), Text("b")}

		out, err := Replace(input, "note", WithText("Y"))
		require.NoError(t, err)
		want := Content{Text("a"), Text("<note>"), Text("Y"), Text("</note>"), Text("b")}
		if diff := cmp.Diff(want, out); diff != "" {
			t.Fatalf("unexpected content (-want +got):\n%s", diff)
		}

		out, err = Strip(input, "note")
		require.NoError(t, err)
		assert.Equal(t, Content{Text("a"), Text("x"), Text("b")}, out)
	})

	t.Run("should give self-closing matches a body when replacing it", func(t *testing.T) {
		out, err := Replace(Content{Text(`<img src="a"/>`)}, "img", WithText("alt"))
		require.NoError(t, err)
		assert.Equal(t, `<img src="a">alt</img>`, out.String())
	})

	t.Run("should strip only the first match by default", func(t *testing.T) {
		out, err := Strip(Content{Text(`<b>1</b><b>2</b>`)}, "b")
		require.NoError(t, err)
		assert.Equal(t, `1<b>2</b>`, out.String())
	})

	t.Run("should remove matches with their bodies", func(t *testing.T) {
		out, err := Remove(Content{Text(`a<rm>x</rm>b<rm/>c`)}, "rm", Exhaustive())
		require.NoError(t, err)
		assert.Equal(t, "abc", out.String())
	})

	t.Run("should return a copy when nothing matches", func(t *testing.T) {
		input := Content{Text("nothing"), Resource{MimeType: "a/b"}}
		out, err := Replace(input, "v", WithText("X"), Exhaustive())
		require.NoError(t, err)
		require.Equal(t, input, out)

		out[0] = Text("changed")
		assert.Equal(t, Text("nothing"), input[0])
	})

	t.Run("should reject a nil replacer", func(t *testing.T) {
		_, err := Replace(Content{Text("<v/>")}, "v", nil)
		assert.ErrorIs(t, err, ErrNilReplacer)
	})
}
