package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBlocks() Blocks {
	return Blocks{
		NewTextBlock("t1", "<p>Hello</p>"),
		NewMediaBlock("m1", "https://www.youtube.com/embed/abc", MediaVideo),
		NewMediaBlock("m2", "https://files.test/cat.png", MediaImage),
		NewTextBlock("t2", ""),
	}
}

func TestParse(t *testing.T) {
	modern, err := sampleBlocks().Marshal()
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		want Blocks
	}{
		{name: "empty", raw: "", want: Blocks{}},
		{name: "empty array", raw: "[]", want: Blocks{}},
		{name: "modern", raw: modern, want: sampleBlocks()},
		{name: "html", raw: "<p>Hello</p>", want: Blocks{NewTextBlock(LegacyBlockID, "<p>Hello</p>")}},
		{name: "markdown", raw: "# Intro\n\n* one\n* two", want: Blocks{NewTextBlock(LegacyBlockID, "# Intro\n\n* one\n* two")}},
		{name: "object", raw: "{}", want: Blocks{NewTextBlock(LegacyBlockID, "{}")}},
		{name: "null", raw: "null", want: Blocks{NewTextBlock(LegacyBlockID, "null")}},
		{name: "number", raw: "42", want: Blocks{NewTextBlock(LegacyBlockID, "42")}},
		{name: "string", raw: `"hi"`, want: Blocks{NewTextBlock(LegacyBlockID, `"hi"`)}},
		{name: "truncated", raw: `[{"id":"a","type":"text"`, want: Blocks{NewTextBlock(LegacyBlockID, `[{"id":"a","type":"text"`)}},
		{
			name: "array of scalars",
			raw:  `[1, 2, 3]`,
			want: Blocks{NewTextBlock(LegacyBlockID, `[1, 2, 3]`)},
		},
		{
			name: "unknown type",
			raw:  `[{"id":"a","type":"quiz"}]`,
			want: Blocks{NewTextBlock(LegacyBlockID, `[{"id":"a","type":"quiz"}]`)},
		},
		{
			name: "missing id",
			raw:  `[{"type":"text","content":"x"}]`,
			want: Blocks{NewTextBlock(LegacyBlockID, `[{"type":"text","content":"x"}]`)},
		},
		{
			name: "media without url",
			raw:  `[{"id":"m","type":"media","mediaType":"video"}]`,
			want: Blocks{NewTextBlock(LegacyBlockID, `[{"id":"m","type":"media","mediaType":"video"}]`)},
		},
		{
			name: "media with unknown media type",
			raw:  `[{"id":"m","type":"media","url":"https://x.test/a","mediaType":"audio"}]`,
			want: Blocks{NewTextBlock(LegacyBlockID, `[{"id":"m","type":"media","url":"https://x.test/a","mediaType":"audio"}]`)},
		},
		{
			name: "one bad element among good ones",
			raw:  `[{"id":"a","type":"text","content":"x"},{"id":"b"}]`,
			want: Blocks{NewTextBlock(LegacyBlockID, `[{"id":"a","type":"text","content":"x"},{"id":"b"}]`)},
		},
		{
			name: "text without content",
			raw:  `[{"id":"a","type":"text"}]`,
			want: Blocks{NewTextBlock("a", "")},
		},
		{
			name: "extra fields ignored",
			raw:  `[{"id":"a","type":"text","content":"x","url":"https://x.test"}]`,
			want: Blocks{NewTextBlock("a", "x")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestParse_legacyPreservesBytes(t *testing.T) {
	raw := "  <h1>Fractions</h1>\r\n<p>½ + ¼ = ¾ &amp; more</p>\t"
	blocks := Parse(raw)
	require.Len(t, blocks, 1)
	assert.True(t, blocks.IsLegacy())
	assert.Equal(t, raw, blocks[0].Content)
}

func TestMarshal(t *testing.T) {
	t.Run("wire shape", func(t *testing.T) {
		raw, err := Blocks{
			NewTextBlock("t1", "<p>a</p>"),
			NewMediaBlock("m1", "https://x.test/v", MediaVideo),
		}.Marshal()
		require.NoError(t, err)
		assert.JSONEq(t, `[
			{"id":"t1","type":"text","content":"<p>a</p>"},
			{"id":"m1","type":"media","url":"https://x.test/v","mediaType":"video"}
		]`, raw)
	})

	t.Run("nil", func(t *testing.T) {
		raw, err := Blocks(nil).Marshal()
		require.NoError(t, err)
		assert.Equal(t, "[]", raw)
	})

	t.Run("legacy becomes a one element array", func(t *testing.T) {
		raw, err := Parse("<p>old</p>").Marshal()
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"legacy-1","type":"text","content":"<p>old</p>"}]`, raw)
		assert.Equal(t, Blocks{NewTextBlock(LegacyBlockID, "<p>old</p>")}, Parse(raw))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := Blocks{{ID: "x", Type: "quiz"}}.Marshal()
		assert.Error(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	inputs := []Blocks{
		{},
		sampleBlocks(),
		{NewMediaBlock("a", "blob:http://localhost/1234", MediaVideo)},
		{NewTextBlock("b", `<p class="x">"quoted" & <b>bold</b></p>`)},
	}
	for _, in := range inputs {
		raw, err := in.Marshal()
		require.NoError(t, err)
		out := Parse(raw)
		assert.Equal(t, in, out)

		again, err := out.Marshal()
		require.NoError(t, err)
		assert.Equal(t, raw, again)
	}
}

func TestBlock_UnmarshalJSON(t *testing.T) {
	var blk Block
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m","type":"media","url":"https://x.test","mediaType":"image"}`), &blk))
	assert.Equal(t, NewMediaBlock("m", "https://x.test", MediaImage), blk)

	err := json.Unmarshal([]byte(`{"id":"m","type":"media"}`), &blk)
	assert.Error(t, err)
}

func TestBlocks_Validate(t *testing.T) {
	assert.NoError(t, sampleBlocks().Validate())
	assert.NoError(t, Blocks{}.Validate())

	err := Blocks{NewTextBlock("a", ""), NewTextBlock("a", "")}.Validate()
	assert.ErrorIs(t, err, ErrDuplicateID)

	assert.Error(t, Blocks{NewTextBlock("", "")}.Validate())
	assert.Error(t, Blocks{NewMediaBlock("m", "", MediaImage)}.Validate())
	assert.Error(t, Blocks{NewMediaBlock("m", "https://x.test", "gif")}.Validate())
}

func TestBlocks_helpers(t *testing.T) {
	bs := sampleBlocks()
	assert.Equal(t, []string{"t1", "m1", "m2", "t2"}, bs.IDs())
	assert.Equal(t, 2, bs.Index("m2"))
	assert.Equal(t, -1, bs.Index("nope"))
	assert.Equal(t, []string{"m1", "m2"}, bs.Media().IDs())
	assert.False(t, bs.IsLegacy())
	assert.True(t, Parse("plain").IsLegacy())
}
