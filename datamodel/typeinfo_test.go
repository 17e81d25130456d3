package datamodel

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFieldKey(t *testing.T) {
	type sample struct {
		Plain    int
		JSON     int `json:"json_name,omitempty"`
		Both     int `json:"ignored" dynbridge:"wins"`
		OptsOnly int `json:"from_json" dynbridge:",required"`
		Skipped  int `json:"-"`
		Dropped  int `dynbridge:"-"`
	}
	rt := reflect.TypeOf(sample{})
	want := []string{"Plain", "json_name", "wins", "from_json", "-", "-"}
	for i, w := range want {
		assert.Equal(t, w, ResolveFieldKey(rt.Field(i)), rt.Field(i).Name)
	}
}

func TestStructInfo_Shapes(t *testing.T) {
	type unit struct{}
	type point struct {
		Tuple
		X, Y int
	}
	type meters struct {
		V float64 `dynbridge:",newtype"`
	}
	type named struct {
		A   int    `json:"a"`
		B   string `dynbridge:"b,omitempty,required"`
		hid int
	}

	tests := []struct {
		name string
		typ  reflect.Type
		want shape
	}{
		{"unit", reflect.TypeOf(unit{}), shapeUnit},
		{"tuple", reflect.TypeOf(point{}), shapeTuple},
		{"newtype", reflect.TypeOf(meters{}), shapeNewtype},
		{"struct", reflect.TypeOf(named{}), shapeStruct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := structInfo(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.shape)
		})
	}

	info, err := structInfo(reflect.TypeOf(named{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, info.names)
	assert.True(t, info.fields[1].omitEmpty)
	assert.True(t, info.fields[1].required)
}

func TestStructInfo_FlattensEmbedded(t *testing.T) {
	type Base struct {
		ID   int `json:"id"`
		Kind string
	}
	type withBase struct {
		Base
		Name string `json:"name"`
	}
	info, err := structInfo(reflect.TypeOf(withBase{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Kind", "name"}, info.names)
	assert.Equal(t, []int{0, 0}, info.fields[0].index)
}

func TestStructInfo_Variants(t *testing.T) {
	type pair struct {
		Tuple
		A, B int
	}
	type rect struct {
		W, H float64
	}
	type figure struct {
		Enum
		Empty  *struct{}
		Circle *float64
		Line   *[2]float64
		Pair   *pair
		Rect   *rect
		Boxed  *rect `dynbridge:",newtype"`
	}
	info, err := structInfo(reflect.TypeOf(figure{}))
	require.NoError(t, err)
	require.Equal(t, shapeEnum, info.shape)
	assert.Equal(t, []string{"Empty", "Circle", "Line", "Pair", "Rect", "Boxed"}, info.tags)

	kinds := make([]variantKind, len(info.variants))
	for i, v := range info.variants {
		kinds[i] = v.kind
	}
	assert.Equal(t, []variantKind{
		variantUnit, variantNewtype, variantTuple, variantTuple, variantStruct, variantNewtype,
	}, kinds)
}

func TestStructInfo_Errors(t *testing.T) {
	type notPointer struct {
		Enum
		A int
	}
	type empty struct {
		Enum
	}
	type twoNewtype struct {
		A int `dynbridge:",newtype"`
		B int
	}
	type both struct {
		Enum
		Tuple
		A *int
	}
	for _, typ := range []reflect.Type{
		reflect.TypeOf(notPointer{}),
		reflect.TypeOf(empty{}),
		reflect.TypeOf(twoNewtype{}),
		reflect.TypeOf(both{}),
	} {
		_, err := structInfo(typ)
		assert.Error(t, err, typ.String())
	}
}

func TestStructInfo_Cached(t *testing.T) {
	type cached struct{ A int }
	a, err := structInfo(reflect.TypeOf(cached{}))
	require.NoError(t, err)
	b, err := structInfo(reflect.TypeOf(cached{}))
	require.NoError(t, err)
	assert.Same(t, a, b)
}

type stmt struct {
	Enum
	Nop  *struct{}
	Expr *expr
	List *[]stmt
}

type expr struct {
	Enum
	Lit   *int
	Block *stmt
	Pair  *[2]expr
}

func TestStructInfo_MutuallyRecursiveEnums(t *testing.T) {
	si, err := structInfo(reflect.TypeOf(stmt{}))
	require.NoError(t, err)
	ei, err := structInfo(reflect.TypeOf(expr{}))
	require.NoError(t, err)

	assert.Equal(t, variantNewtype, si.variants[si.byTag["Expr"]].kind)
	assert.Equal(t, variantNewtype, si.variants[si.byTag["List"]].kind)
	assert.Equal(t, variantNewtype, ei.variants[ei.byTag["Block"]].kind)
	assert.Equal(t, variantTuple, ei.variants[ei.byTag["Pair"]].kind)
}
