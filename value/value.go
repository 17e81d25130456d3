package value

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindMap
	KindSet
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindArray:     "array",
	KindObject:    "object",
	KindMap:       "map",
	KindSet:       "set",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsContainer reports whether values of this kind hold other values.
func (k Kind) IsContainer() bool {
	return k >= KindArray
}

// Value is a dynamic runtime value. The zero Value is undefined.
//
// Values are treated as immutable once handed to another party: the
// producer gives up every reference to what it returns, and the consumer
// never writes to what it reads. Container kinds share their backing
// storage on copy, so two copies of an array Value are the same array.
type Value struct {
	arr  *[]Value
	obj  *Object
	m    *Map
	set  *Set
	s    string
	n    float64
	kind Kind
	b    bool
}

// Undefined returns the zero Value, the absence of a value.
func Undefined() Value { return Value{} }

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a number value. NaN and infinities are allowed.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps items as an array value. The slice is owned by the result.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: &items}
}

// ObjectValue wraps o; a nil o is an empty object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return o.Value()
}

// MapValue wraps m; a nil m is an empty map.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return m.Value()
}

// SetValue wraps s; a nil s is an empty set.
func SetValue(s *Set) Value {
	if s == nil {
		s = NewSet()
	}
	return s.Value()
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNullish reports whether v is null or undefined.
func (v Value) IsNullish() bool { return v.kind <= KindNull }

// AsBool returns the boolean held by v and whether v is a boolean.
// AsNumber and AsString follow the same pattern.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsArray returns the backing slice of an array value. Callers must not
// modify it.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return *v.arr, true
}

// AsObject returns the object held by v. The result shares storage with v.
func (v Value) AsObject() (*Object, bool) { return v.obj, v.kind == KindObject }

func (v Value) AsMap() (*Map, bool) { return v.m, v.kind == KindMap }

func (v Value) AsSet() (*Set, bool) { return v.set, v.kind == KindSet }

// Len returns the number of elements or entries of a container, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(*v.arr)
	case KindObject:
		return v.obj.Len()
	case KindMap:
		return v.m.Len()
	case KindSet:
		return v.set.Len()
	default:
		return 0
	}
}

// String renders v in a compact, JSON-like debugging form. It is not the
// text codec; see package codec for that.
func (v Value) String() string {
	var b strings.Builder
	writeDebug(&b, v)
	return b.String()
}

func writeDebug(b *strings.Builder, v Value) {
	switch v.kind {
	case KindUndefined:
		b.WriteString("undefined")
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		b.WriteString(FormatNumber(v.n))
	case KindString:
		b.WriteString(strconv.Quote(v.s))
	case KindArray:
		b.WriteByte('[')
		for i, it := range *v.arr {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDebug(b, it)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		i := 0
		v.obj.Range(func(k string, it Value) bool {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			writeDebug(b, it)
			i++
			return true
		})
		b.WriteByte('}')
	case KindMap:
		b.WriteString("Map{")
		i := 0
		v.m.Range(func(k, it Value) bool {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDebug(b, k)
			b.WriteString(" => ")
			writeDebug(b, it)
			i++
			return true
		})
		b.WriteByte('}')
	case KindSet:
		b.WriteString("Set{")
		i := 0
		v.set.Range(func(it Value) bool {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDebug(b, it)
			i++
			return true
		})
		b.WriteByte('}')
	}
}

// FormatNumber renders n the way the host renders numbers as text: integral
// values without a fraction, exponent form outside [1e-6, 1e21).
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	s := strconv.FormatFloat(n, 'e', -1, 64)
	// host form has no zero padding in the exponent: 1e+21, 1e-7
	if i := strings.IndexByte(s, 'e'); i >= 0 && i+2 < len(s) && s[i+2] == '0' {
		s = s[:i+2] + s[i+3:]
	}
	return s
}
