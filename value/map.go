package value

import "math"

// Map is a native map with arbitrary keys. Keys compare with SameValueZero:
// primitives by value (NaN equals NaN, -0 equals +0), containers by
// identity. Entries keep insertion order.
type Map struct {
	entries []mapEntry
	index   map[primitiveKey]int // primitive keys -> position in entries
	live    int
}

type mapEntry struct {
	key     Value
	val     Value
	deleted bool
}

type primitiveKey struct {
	s    string
	bits uint64
	kind Kind
	b    bool
}

var canonicalNaN = math.Float64bits(math.NaN())

func primitiveKeyOf(v Value) (primitiveKey, bool) {
	switch v.kind {
	case KindUndefined, KindNull:
		return primitiveKey{kind: v.kind}, true
	case KindBool:
		return primitiveKey{kind: v.kind, b: v.b}, true
	case KindNumber:
		bits := math.Float64bits(v.n)
		switch {
		case math.IsNaN(v.n):
			bits = canonicalNaN
		case v.n == 0:
			bits = 0
		}
		return primitiveKey{kind: v.kind, bits: bits}, true
	case KindString:
		return primitiveKey{kind: v.kind, s: v.s}, true
	default:
		return primitiveKey{}, false
	}
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{index: make(map[primitiveKey]int)}
}

func (m *Map) find(k Value) int {
	if m == nil {
		return -1
	}
	if pk, ok := primitiveKeyOf(k); ok {
		if i, ok := m.index[pk]; ok {
			return i
		}
		return -1
	}
	for i := range m.entries {
		if !m.entries[i].deleted && SameValueZero(m.entries[i].key, k) {
			return i
		}
	}
	return -1
}

// Set stores v under k and returns m for chaining. An existing key keeps
// its position.
func (m *Map) Set(k, v Value) *Map {
	if i := m.find(k); i >= 0 {
		m.entries[i].val = v
		return m
	}
	if pk, ok := primitiveKeyOf(k); ok {
		if m.index == nil {
			m.index = make(map[primitiveKey]int)
		}
		m.index[pk] = len(m.entries)
	}
	m.entries = append(m.entries, mapEntry{key: k, val: v})
	m.live++
	return m
}

// Get returns the value stored under a key that is SameValueZero to k.
func (m *Map) Get(k Value) (Value, bool) {
	if i := m.find(k); i >= 0 {
		return m.entries[i].val, true
	}
	return Value{}, false
}

func (m *Map) Has(k Value) bool {
	return m.find(k) >= 0
}

// Delete removes k and reports whether it was present. Iteration order of
// the remaining entries is unchanged.
func (m *Map) Delete(k Value) bool {
	if m == nil {
		return false
	}
	i := m.find(k)
	if i < 0 {
		return false
	}
	if pk, ok := primitiveKeyOf(k); ok {
		delete(m.index, pk)
	}
	m.entries[i] = mapEntry{deleted: true}
	m.live--
	return true
}

// Len returns the number of live entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.live
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(k, v Value) bool) {
	if m == nil {
		return
	}
	for _, e := range m.entries {
		if e.deleted {
			continue
		}
		if !fn(e.key, e.val) {
			return
		}
	}
}

// Value wraps m as a dynamic value.
func (m *Map) Value() Value {
	return Value{kind: KindMap, m: m}
}

// Set is a native set: unique elements under SameValueZero, in insertion
// order.
type Set struct {
	m *Map
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{m: NewMap()}
}

// Add inserts v if absent and returns s for chaining.
func (s *Set) Add(v Value) *Set {
	if s.m == nil {
		s.m = NewMap()
	}
	if !s.m.Has(v) {
		s.m.Set(v, Value{})
	}
	return s
}

func (s *Set) Has(v Value) bool {
	if s == nil {
		return false
	}
	return s.m.Has(v)
}

// Delete removes v and reports whether it was present.
func (s *Set) Delete(v Value) bool {
	if s == nil {
		return false
	}
	return s.m.Delete(v)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.m.Len()
}

// Range calls fn for each element in insertion order until fn returns false.
func (s *Set) Range(fn func(v Value) bool) {
	if s == nil {
		return
	}
	s.m.Range(func(k, _ Value) bool { return fn(k) })
}

// Values returns the elements in insertion order.
func (s *Set) Values() []Value {
	out := make([]Value, 0, s.Len())
	s.Range(func(v Value) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Value wraps s as a dynamic value.
func (s *Set) Value() Value {
	return Value{kind: KindSet, set: s}
}
