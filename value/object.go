package value

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a plain string-keyed object. Keys keep insertion order;
// re-setting an existing key replaces its value in place.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, Value]()}
}

// NewObjectSize preallocates room for n keys.
func NewObjectSize(n int) *Object {
	return &Object{m: orderedmap.New[string, Value](n)}
}

// Set stores v under key and returns o for chaining.
func (o *Object) Set(key string, v Value) *Object {
	if o.m == nil {
		o.m = orderedmap.New[string, Value]()
	}
	o.m.Set(key, v)
	return o
}

// Get returns the value under key. A nil o has no keys.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil || o.m == nil {
		return Value{}, false
	}
	return o.m.Get(key)
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o == nil || o.m == nil {
		return false
	}
	_, ok := o.m.Delete(key)
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil || o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil || o.m == nil {
		return
	}
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// Value wraps o as a dynamic value.
func (o *Object) Value() Value {
	return Value{kind: KindObject, obj: o}
}
