package dynbridge_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/dynbridge"
	"github.com/reoring/dynbridge/datamodel"
	"github.com/reoring/dynbridge/value"
)

func TestToValue_Shapes(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want value.Value
	}{
		{"bool", true, value.Bool(true)},
		{"int8", int8(-7), num(-7)},
		{"uint64", uint64(42), num(42)},
		{"float32", float32(1.5), num(1.5)},
		{"char", datamodel.Char('é'), value.String("é")},
		{"string", "hi", value.String("hi")},
		{"bytes", []byte{0, 255}, value.Array(num(0), num(255))},
		{"none", (*int)(nil), value.Null()},
		{"some", ptr(5), num(5)},
		{"nil interface", nil, value.Null()},
		{"unit struct", Marker{}, value.Null()},
		{"newtype", Meters{V: 3.5}, num(3.5)},
		{"nil slice", []int(nil), value.Array()},
		{"array", [3]int{1, 2, 3}, value.Array(num(1), num(2), num(3))},
		{"tuple struct", Pair{Name: "a", Count: 2}, value.Array(value.String("a"), num(2))},
		{"struct", Point{X: 1, Y: -2}, obj("x", num(1), "y", num(-2))},
		{"string map", map[string]bool{"b": true, "a": false}, obj("a", value.Bool(false), "b", value.Bool(true))},
		{"text marshaler", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), value.String("2024-01-02T03:04:05Z")},
		{"serializable", Celsius(21.5), value.String("21.5C")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dynbridge.ToValue(tt.in)
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.want, got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestToValue_OmitsEmptyFields(t *testing.T) {
	got, err := dynbridge.ToValue(Order{ID: 1})
	require.NoError(t, err)

	o, ok := got.AsObject()
	require.True(t, ok)
	assert.False(t, o.Has("note"))
	assert.Equal(t, []string{"id", "items", "tags", "payload", "initial", "origin"}, o.Keys())

	note := "fragile"
	got, err = dynbridge.ToValue(Order{ID: 1, Note: &note})
	require.NoError(t, err)
	o, _ = got.AsObject()
	v, ok := o.Get("note")
	require.True(t, ok)
	assert.True(t, value.Equal(value.String("fragile"), v))
}

func TestToValue_Enum(t *testing.T) {
	tests := []struct {
		name string
		in   Shape
		want value.Value
	}{
		{"unit", Shape{Empty: &struct{}{}}, value.String("empty")},
		{"newtype", Shape{Circle: ptr(2.0)}, obj("circle", num(2))},
		{"tuple", Shape{Line: &[2]int{1, 2}}, obj("line", value.Array(num(1), num(2)))},
		{"struct", Shape{Rect: &Rect{W: 3, H: 4}}, obj("rect", obj("w", num(3), "h", num(4)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dynbridge.ToValue(tt.in)
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.want, got), "got %s", got)
		})
	}

	_, err := dynbridge.ToValue(Shape{})
	assert.Error(t, err)
}

func TestToValue_WidensIntegers(t *testing.T) {
	got, err := dynbridge.ToValue(uint64(1<<53 + 1))
	require.NoError(t, err)
	n, _ := got.AsNumber()
	assert.Equal(t, float64(1<<53), n)

	got, err = dynbridge.ToValue(math.NaN())
	require.NoError(t, err)
	n, _ = got.AsNumber()
	assert.True(t, math.IsNaN(n))
}

func TestToValue_MapKeyPolicies(t *testing.T) {
	in := map[int]string{2: "b", 1: "a"}

	t.Run("auto uses a native map", func(t *testing.T) {
		got, err := dynbridge.ToValue(in)
		require.NoError(t, err)
		m, ok := got.AsMap()
		require.True(t, ok)
		v, ok := m.Get(num(1))
		require.True(t, ok)
		assert.True(t, value.Equal(value.String("a"), v))
		assert.False(t, m.Has(value.String("1")))
	})

	t.Run("native keeps string keys native", func(t *testing.T) {
		got, err := dynbridge.ToValue(map[string]int{"a": 1}, dynbridge.Options{MapKeys: dynbridge.MapKeysNative})
		require.NoError(t, err)
		assert.Equal(t, value.KindMap, got.Kind())
	})

	t.Run("stringify", func(t *testing.T) {
		got, err := dynbridge.ToValue(in, dynbridge.Options{MapKeys: dynbridge.MapKeysStringify})
		require.NoError(t, err)
		assert.True(t, value.Equal(obj("1", value.String("a"), "2", value.String("b")), got), "got %s", got)
	})

	t.Run("stringify rejects composite keys", func(t *testing.T) {
		_, err := dynbridge.ToValue(map[Point]int{{1, 2}: 3}, dynbridge.Options{MapKeys: dynbridge.MapKeysStringify})
		assert.ErrorIs(t, err, dynbridge.ErrUnsupported)
	})

	t.Run("reject", func(t *testing.T) {
		_, err := dynbridge.ToValue(in, dynbridge.Options{MapKeys: dynbridge.MapKeysReject})
		require.ErrorIs(t, err, dynbridge.ErrUnsupported)
		e, ok := dynbridge.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "/1", e.Pointer())

		got, err := dynbridge.ToValue(map[string]int{"a": 1}, dynbridge.Options{MapKeys: dynbridge.MapKeysReject})
		require.NoError(t, err)
		assert.Equal(t, value.KindObject, got.Kind())
	})

	assert.Equal(t, "stringify", dynbridge.MapKeysStringify.String())
}

func TestToValue_Passthrough(t *testing.T) {
	extra := value.NewMap().Set(num(1), value.String("x")).Value()
	got, err := dynbridge.ToValue(Envelope{Kind: "k", Extra: extra})
	require.NoError(t, err)

	o, _ := got.AsObject()
	v, ok := o.Get("extra")
	require.True(t, ok)
	assert.True(t, value.SameValueZero(extra, v))
}

func TestToValue_ErrorPath(t *testing.T) {
	type bad struct {
		Fn func() `json:"fn"`
	}
	_, err := dynbridge.ToValue(map[string][]bad{"list": {{}, {}}})
	require.ErrorIs(t, err, dynbridge.ErrUnsupported)

	e, _ := dynbridge.AsError(err)
	assert.Equal(t, "/list/0/fn", e.Pointer())
	assert.Equal(t, "produce", string(e.Phase))
}
