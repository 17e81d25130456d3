package codec

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

func TestYAML_Unmarshal(t *testing.T) {
	doc := `
name: demo
count: 3
ratio: 0.5
on: yes
nothing: ~
tags: [a, b]
`
	v, err := YAML.Unmarshal([]byte(doc))
	require.NoError(t, err)

	o, ok := v.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"name", "count", "ratio", "on", "nothing", "tags"}, o.Keys())

	want := value.NewObject().
		Set("name", value.String("demo")).
		Set("count", value.Number(3)).
		Set("ratio", value.Number(0.5)).
		Set("on", value.String("yes")).
		Set("nothing", value.Null()).
		Set("tags", value.Array(value.String("a"), value.String("b"))).
		Value()
	assert.True(t, value.Equal(want, v), "got %s", v)
}

func TestYAML_NonStringKeysBecomeMap(t *testing.T) {
	v, err := YAML.Unmarshal([]byte("1: one\n? [1, 2]\n: pair\n"))
	require.NoError(t, err)

	m, ok := v.AsMap()
	require.True(t, ok)
	got, ok := m.Get(value.Number(1))
	require.True(t, ok)
	assert.True(t, value.Equal(value.String("one"), got))
	assert.Equal(t, 2, m.Len())
}

func TestYAML_Aliases(t *testing.T) {
	v, err := YAML.Unmarshal([]byte("base: &b {x: 1}\ncopy: *b\n"))
	require.NoError(t, err)
	o, _ := v.AsObject()
	base, _ := o.Get("base")
	cp, _ := o.Get("copy")
	assert.True(t, value.Equal(base, cp))
}

func TestYAML_DuplicateKeys(t *testing.T) {
	doc := []byte("a: 1\nb: 2\na: 3\n")

	_, err := YAMLCodec{RejectDuplicateKeys: true}.Unmarshal(doc)
	require.ErrorIs(t, err, errors.ErrSyntax)
	var dup *DuplicateKeyError
	require.True(t, stderrors.As(err, &dup))
	assert.Equal(t, "a", dup.Key)
	assert.Equal(t, 1, dup.FirstLine)
	assert.Equal(t, 3, dup.Line)
}

func TestYAML_Depth(t *testing.T) {
	_, err := YAMLCodec{MaxDepth: 2}.Unmarshal([]byte("a: {b: {c: 1}}"))
	require.ErrorIs(t, err, errors.ErrDepthExceeded)
	assert.Equal(t, "/a/b", errors.From(err).Pointer())
}

func TestYAML_Marshal(t *testing.T) {
	in := value.NewObject().
		Set("name", value.String("demo")).
		Set("flag", value.String("true")).
		Set("count", value.Number(2)).
		Set("f", value.Number(1.5)).
		Set("inf", value.Number(math.Inf(1))).
		Set("skip", value.Undefined()).
		Set("list", value.Array(value.Null())).
		Value()
	out, err := YAML.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, "name: demo\nflag: \"true\"\ncount: 2\nf: 1.5\ninf: .inf\nlist:\n    - null\n", string(out))

	back, err := YAML.Unmarshal(out)
	require.NoError(t, err)
	o, _ := back.AsObject()
	flag, _ := o.Get("flag")
	assert.True(t, value.Equal(value.String("true"), flag))
}

func TestYAML_SetRoundTrip(t *testing.T) {
	in := value.NewSet().Add(value.String("a")).Add(value.String("b")).Value()
	out, err := YAML.Marshal(in)
	require.NoError(t, err)

	back, err := YAML.Unmarshal(out)
	require.NoError(t, err)
	assert.True(t, value.Equal(in, back), "got %s from %q", back, out)
}
