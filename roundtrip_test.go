package dynbridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/dynbridge"
	"github.com/reoring/dynbridge/datamodel"
	"github.com/reoring/dynbridge/value"
)

func roundTrip[T any](t *testing.T, in T, opts ...dynbridge.Options) T {
	t.Helper()
	v, err := dynbridge.ToValue(in, opts...)
	require.NoError(t, err)
	out, err := dynbridge.FromValue[T](v, opts...)
	require.NoError(t, err)
	return out
}

func TestRoundTrip(t *testing.T) {
	note := "leave at door"
	order := Order{
		ID:      9,
		Items:   []Item{{SKU: "a", Qty: 1}, {SKU: "b", Qty: 255}},
		Note:    &note,
		Tags:    map[string]int{"rush": 1},
		Payload: []byte("hi"),
		Initial: datamodel.Char('ß'),
		Origin:  Point{X: -1, Y: 1},
	}
	assert.Equal(t, order, roundTrip(t, order))

	shapes := []Shape{
		{Empty: &struct{}{}},
		{Circle: ptr(1.25)},
		{Line: &[2]int{1, 2}},
		{Rect: &Rect{W: 2, H: 3}},
	}
	assert.Equal(t, shapes, roundTrip(t, shapes))

	keyed := map[int]string{1: "a", -7: "b"}
	assert.Equal(t, keyed, roundTrip(t, keyed))
	assert.Equal(t, keyed, roundTrip(t, keyed, dynbridge.Options{MapKeys: dynbridge.MapKeysStringify}))
	assert.Equal(t, keyed, roundTrip(t, keyed, dynbridge.Options{MapKeys: dynbridge.MapKeysNative}))

	composite := map[Point]string{{X: 1, Y: 2}: "p", {X: 3}: "q"}
	assert.Equal(t, composite, roundTrip(t, composite))

	assert.Equal(t, Pair{Name: "n", Count: 3}, roundTrip(t, Pair{Name: "n", Count: 3}))
	assert.Equal(t, Meters{V: 9}, roundTrip(t, Meters{V: 9}))
	assert.Equal(t, Celsius(12.5), roundTrip(t, Celsius(12.5)))
	assert.Equal(t, [][]string{{"a"}, {}}, roundTrip(t, [][]string{{"a"}, {}}))
}

type node struct {
	Next *node `json:"next"`
}

func nestedArrays(depth int) value.Value {
	v := value.Array()
	for i := 1; i < depth; i++ {
		v = value.Array(v)
	}
	return v
}

func TestDepthLimit(t *testing.T) {
	opts := dynbridge.Options{MaxDepth: 3}

	t.Run("consume", func(t *testing.T) {
		_, err := dynbridge.FromValue[any](nestedArrays(3), opts)
		require.NoError(t, err)

		_, err = dynbridge.FromValue[any](nestedArrays(4), opts)
		require.ErrorIs(t, err, dynbridge.ErrDepthExceeded)
		e, _ := dynbridge.AsError(err)
		assert.Equal(t, "/0/0/0", e.Pointer())
	})

	t.Run("produce", func(t *testing.T) {
		_, err := dynbridge.ToValue([][][]int{{{1}}}, opts)
		require.NoError(t, err)

		_, err = dynbridge.ToValue([][][][]int{{{{1}}}}, opts)
		require.ErrorIs(t, err, dynbridge.ErrDepthExceeded)
	})

	t.Run("wrappers count apart from containers", func(t *testing.T) {
		in := []*Meters{{V: 1}, {V: 2}}
		v, err := dynbridge.ToValue(in, dynbridge.Options{MaxDepth: 2})
		require.NoError(t, err)
		assert.True(t, value.Equal(value.Array(num(1), num(2)), v), "got %s", v)

		_, err = dynbridge.ToValue([]**Meters{ptr(&Meters{V: 1})}, dynbridge.Options{MaxDepth: 2})
		require.ErrorIs(t, err, dynbridge.ErrDepthExceeded)
	})

	t.Run("wrapper chains reset inside each container", func(t *testing.T) {
		one := ptr(1)
		in := [][]**int{{&one}}
		_, err := dynbridge.ToValue(in, dynbridge.Options{MaxDepth: 2})
		require.NoError(t, err)
	})

	t.Run("self-referencing interface fails", func(t *testing.T) {
		var x any
		x = &x
		_, err := dynbridge.ToValue(x)
		require.ErrorIs(t, err, dynbridge.ErrDepthExceeded)
		_, err = dynbridge.ToValue(&x, dynbridge.Options{MaxDepth: 4})
		require.ErrorIs(t, err, dynbridge.ErrDepthExceeded)
	})

	t.Run("cycles fail instead of recursing forever", func(t *testing.T) {
		n := &node{}
		n.Next = n
		_, err := dynbridge.ToValue(n)
		require.ErrorIs(t, err, dynbridge.ErrDepthExceeded)
	})
}

func TestBridge(t *testing.T) {
	b := dynbridge.New(dynbridge.Options{MapKeys: dynbridge.MapKeysStringify, MaxDepth: 8})
	assert.Equal(t, 8, b.Options().MaxDepth)
	assert.NotNil(t, b.Options().Labels)
	assert.NotNil(t, b.Options().Codec)

	v, err := b.ToValue(map[int]int{1: 2})
	require.NoError(t, err)
	assert.Equal(t, value.KindObject, v.Kind())

	back, err := dynbridge.DecodeAs[map[int]int](b, v)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2}, back)

	var p Point
	require.NoError(t, b.Decode(obj("x", num(3)), &p))
	assert.Equal(t, Point{X: 3}, p)

	s, err := b.ToText(map[int]int{1: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"1":2}`, s)

	var m map[int]int
	require.NoError(t, b.DecodeText(s, &m))
	assert.Equal(t, map[int]int{1: 2}, m)
}

func TestFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	opts := dynbridge.Options{Logger: zap.New(core)}

	_, err := dynbridge.FromValue[Point](value.Array(), opts)
	require.Error(t, err)

	entries := logs.FilterMessage("conversion failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "consume", fields["phase"])
	assert.Equal(t, "type_mismatch", fields["kind"])
	assert.Equal(t, "/", fields["path"])

	_, err = dynbridge.ToValue(Point{}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
}
