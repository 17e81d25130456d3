package value

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// SameValueZero is the host's key equality: primitives by value with NaN
// equal to itself and -0 equal to +0, containers by identity.
func SameValueZero(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		return a.arr == b.arr
	case KindObject:
		return a.obj == b.obj
	case KindMap:
		return a.m == b.m
	case KindSet:
		return a.set == b.set
	}
	return false
}

// Equal reports deep structural equality. Object, map and set entries are
// compared without regard to order; map keys and set elements match when
// they are deeply equal.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindArray:
		x, y := *a.arr, *b.arr
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		eq := true
		a.obj.Range(func(k string, av Value) bool {
			bv, ok := b.obj.Get(k)
			eq = ok && Equal(av, bv)
			return eq
		})
		return eq
	case KindMap:
		if a.m.Len() != b.m.Len() {
			return false
		}
		eq := true
		a.m.Range(func(ak, av Value) bool {
			eq = false
			b.m.Range(func(bk, bv Value) bool {
				if Equal(ak, bk) && Equal(av, bv) {
					eq = true
					return false
				}
				return true
			})
			return eq
		})
		return eq
	case KindSet:
		if a.set.Len() != b.set.Len() {
			return false
		}
		eq := true
		a.set.Range(func(av Value) bool {
			eq = false
			b.set.Range(func(bv Value) bool {
				if Equal(av, bv) {
					eq = true
					return false
				}
				return true
			})
			return eq
		})
		return eq
	default:
		return SameValueZero(a, b)
	}
}

const describeMaxString = 32

// Describe returns a short description of v's runtime tag for diagnostics,
// for example `number 300`, `string "abc"` or `array of 3`.
func Describe(v Value) string {
	switch v.kind {
	case KindBool:
		return "boolean " + strconv.FormatBool(v.b)
	case KindNumber:
		return "number " + FormatNumber(v.n)
	case KindString:
		s := v.s
		if utf8.RuneCountInString(s) > describeMaxString {
			s = string([]rune(s)[:describeMaxString]) + "..."
		}
		return "string " + strconv.Quote(s)
	case KindArray:
		return "array of " + strconv.Itoa(len(*v.arr))
	case KindObject:
		return "object with " + strconv.Itoa(v.obj.Len()) + " keys"
	case KindMap:
		return "map of " + strconv.Itoa(v.m.Len())
	case KindSet:
		return "set of " + strconv.Itoa(v.set.Len())
	default:
		return v.kind.String()
	}
}
