package gojson_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/dynbridge/internal/engine"
	"github.com/reoring/dynbridge/source/gojson"
)

func drain(t *testing.T, src eng.TokenSource) []eng.Token {
	t.Helper()
	var out []eng.Token
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, tok)
	}
}

func TestTokens_KeysAndValues(t *testing.T) {
	toks := drain(t, gojson.NewBytes([]byte(`{"a":"x","b":["y",1.50,true,null],"c":{}}`)))

	kinds := make([]eng.Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	assert.Equal(t, []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindString,
		eng.KindKey, eng.KindBeginArray, eng.KindString, eng.KindNumber, eng.KindBool, eng.KindNull, eng.KindEndArray,
		eng.KindKey, eng.KindBeginObject, eng.KindEndObject,
		eng.KindEndObject,
	}, kinds)

	assert.Equal(t, "a", toks[1].String)
	assert.Equal(t, "x", toks[2].String)
	assert.Equal(t, "1.50", toks[6].Number)
	assert.True(t, toks[7].Bool)
}

func TestTokens_StringValueAfterNestedObject(t *testing.T) {
	toks := drain(t, gojson.NewReader(strings.NewReader(`{"o":{"k":"v"},"s":"t"}`)))
	require.Len(t, toks, 9)
	assert.Equal(t, eng.KindKey, toks[6].Kind)
	assert.Equal(t, "s", toks[6].String)
	assert.Equal(t, eng.KindString, toks[7].Kind)
}

func TestDecodeValue_WithGoJSON(t *testing.T) {
	v, err := eng.DecodeValue(gojson.NewBytes([]byte(`[1, {"k": [2]}]`)))
	require.NoError(t, err)
	assert.Equal(t, `[1, {"k": [2]}]`, v.String())
	assert.Equal(t, "go-json", gojson.Name)
}
