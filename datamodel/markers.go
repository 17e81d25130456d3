package datamodel

import "reflect"

// Char is a single Unicode scalar value. It serializes through
// SerializeChar rather than as an integer.
type Char rune

// Enum marks a struct as a sum type when embedded. Every other exported
// field must be a pointer; exactly one of them is set and names the active
// variant:
//
//	type Shape struct {
//		datamodel.Enum
//		Empty  *struct{}          // unit variant
//		Circle *float64           // newtype variant
//		Line   *[2]float64        // tuple variant
//		Rect   *struct{ W, H int } // struct variant
//	}
type Enum struct{}

// Tuple marks a struct as a tuple struct when embedded: its fields are
// encoded positionally as an array.
type Tuple struct{}

var (
	charType  = reflect.TypeOf(Char(0))
	enumType  = reflect.TypeOf(Enum{})
	tupleType = reflect.TypeOf(Tuple{})
)
