// Package datamodel defines the generic serialization protocol that dynbridge
// speaks, and a reflection adapter that maps ordinary Go types onto it.
//
// A Serializer receives one call per shape (bool, integers of a declared
// width, floats, char, string, bytes, option, unit, unit struct, newtype
// struct, seq, tuple, map, struct and the four enum variant forms). A
// Deserializer is driven the other way: the target requests a shape and
// passes a Visitor that is called back with what the input holds.
//
// Go types map onto shapes as follows:
//
//	bool, intN, uintN, floatN    bool, int(bits), uint(bits), float(bits)
//	Char                         char
//	string                       string
//	[]byte                       bytes
//	*T                           option (nil is none)
//	[]T                          seq
//	[N]T                         tuple
//	map[K]V                      map (keys sorted)
//	struct{}                     unit struct
//	struct                       struct with named fields
//	struct embedding Tuple       tuple struct
//	struct, one newtype field    newtype struct
//	struct embedding Enum        enum, one pointer field per variant
//	any                          whatever the input holds
//
// Field names follow the `dynbridge:"name,opts"` tag, then the json tag name,
// then the Go field name. Options are omitempty, required, newtype and tuple.
//
// Types implementing Serializable or Deserializable take over their own
// shape; encoding.TextMarshaler and TextUnmarshaler types travel as strings.
package datamodel
