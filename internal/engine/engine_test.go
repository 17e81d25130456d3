package engine

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

type sliceSource struct {
	toks []Token
	i    int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.i >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.i) }

func toks(ts ...Token) *sliceSource { return &sliceSource{toks: ts} }

var (
	bo = Token{Kind: KindBeginObject}
	eo = Token{Kind: KindEndObject}
	ba = Token{Kind: KindBeginArray}
	ea = Token{Kind: KindEndArray}
)

func key(s string) Token    { return Token{Kind: KindKey, String: s} }
func str(s string) Token    { return Token{Kind: KindString, String: s} }
func number(s string) Token { return Token{Kind: KindNumber, Number: s} }

func TestDecodeValue(t *testing.T) {
	v, err := DecodeValue(toks(
		bo,
		key("b"), number("1"),
		key("a"), ba, str("x"), Token{Kind: KindBool, Bool: true}, Token{Kind: KindNull}, ea,
		key("b"), number("2.5"),
		eo,
	))
	require.NoError(t, err)

	want := value.NewObject().
		Set("b", value.Number(2.5)).
		Set("a", value.Array(value.String("x"), value.Bool(true), value.Null())).
		Value()
	assert.True(t, value.Equal(want, v), "got %s", v)

	o, _ := v.AsObject()
	assert.Equal(t, []string{"b", "a"}, o.Keys())
}

func TestDecodeValue_NumberOverflowBecomesInfinity(t *testing.T) {
	v, err := DecodeValue(toks(number("-1e400")))
	require.NoError(t, err)
	n, _ := v.AsNumber()
	assert.True(t, math.IsInf(n, -1))
}

func TestDecodeValue_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  *sliceSource
	}{
		{"empty", toks()},
		{"unterminated object", toks(bo, key("a"), number("1"))},
		{"unterminated array", toks(ba, number("1"))},
		{"trailing value", toks(number("1"), number("2"))},
		{"value where key expected", toks(bo, number("1"), eo)},
		{"bad number", toks(number("1x"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeValue(tt.src)
			require.ErrorIs(t, err, errors.ErrSyntax)
			assert.Equal(t, errors.PhaseParse, errors.From(err).Phase)
		})
	}
}

func TestEnforcement_Depth(t *testing.T) {
	src := WrapWithEnforcement(toks(ba, bo, key("k"), ba, ea, eo, ea), EnforceOptions{MaxDepth: 2})
	_, err := DecodeValue(src)
	require.ErrorIs(t, err, errors.ErrDepthExceeded)
	assert.Equal(t, "/0/k", errors.From(err).Pointer())

	src = WrapWithEnforcement(toks(ba, bo, key("k"), ba, ea, eo, ea), EnforceOptions{MaxDepth: 3})
	_, err = DecodeValue(src)
	require.NoError(t, err)
}

func TestEnforcement_Duplicates(t *testing.T) {
	doc := func() *sliceSource {
		return toks(bo, key("a"), bo, key("x"), number("1"), key("x"), number("2"), eo, eo)
	}

	v, err := DecodeValue(WrapWithEnforcement(doc(), EnforceOptions{OnDuplicate: DupLastWins}))
	require.NoError(t, err)
	want := value.NewObject().Set("a", value.NewObject().Set("x", value.Number(2)).Value()).Value()
	assert.True(t, value.Equal(want, v))

	_, err = DecodeValue(WrapWithEnforcement(doc(), EnforceOptions{OnDuplicate: DupError}))
	require.ErrorIs(t, err, errors.ErrSyntax)
	assert.Equal(t, "/a/x", errors.From(err).Pointer())
	assert.Contains(t, err.Error(), `duplicate key "x"`)
}

func TestEnforcement_SiblingObjectsDoNotShareKeys(t *testing.T) {
	src := toks(ba, bo, key("x"), number("1"), eo, bo, key("x"), number("2"), eo, ea)
	_, err := DecodeValue(WrapWithEnforcement(src, EnforceOptions{OnDuplicate: DupError}))
	require.NoError(t, err)
}

func TestEnforcement_MaxBytes(t *testing.T) {
	src := toks(ba, number("1"), number("2"), number("3"), ea)
	_, err := DecodeValue(WrapWithEnforcement(src, EnforceOptions{MaxBytes: 2}))
	require.ErrorIs(t, err, errors.ErrSyntax)
	assert.Contains(t, err.Error(), "max bytes exceeded")
}
