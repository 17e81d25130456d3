// Package value implements the dynamic runtime value bridged to by dynbridge.
//
// A Value is a closed tagged union mirroring the host environment's value
// model:
//
//	Kind        Go payload           Notes
//	─────────────────────────────────────────────────────────────
//	undefined   -                    zero Value
//	null        -
//	boolean     bool
//	number      float64              exact integers only up to 2^53
//	string      string
//	array       []Value
//	object      *Object              string keys, insertion order
//	map         *Map                 any keys, SameValueZero, insertion order
//	set         *Set                 SameValueZero, insertion order
//
// Callers branch on Kind and use the As* accessors:
//
//	switch v.Kind() {
//	case value.KindObject:
//		obj, _ := v.AsObject()
//		...
//	}
//
// Containers are reference types: copying a Value copies the handle, not the
// contents. Equal compares deeply; SameValueZero compares the way the host
// compares map keys.
package value
