// Package dynbridge converts between typed Go values and dynamic runtime
// values (package value), the tagged union a scripting host uses for
// null, undefined, booleans, numbers, strings, arrays, objects, Maps and
// Sets.
//
// The producer walks a typed value through the datamodel.Serializer
// protocol and builds a value.Value; the consumer inspects a value.Value's
// kind and drives a datamodel.Visitor to rebuild a typed value. Neither side
// knows concrete Go types, only the shape a type declares.
//
// Encoding rules:
//
//   - integers widen to float64; values beyond 2^53 lose precision and
//     reading back checks the target's range
//   - bytes become an array of numbers
//   - none, unit and unit structs become null; some and newtypes are
//     transparent
//   - seqs and tuples become arrays
//   - structs become objects; omitted fields are left out
//   - maps become objects when every key is a string, native Maps otherwise
//     (see MapKeyPolicy)
//   - unit variants become their tag; other variants become {tag: payload}
//
// Typical usage:
//
//	v, err := dynbridge.ToValue(order)
//	back, err := dynbridge.FromValue[Order](v)
//
//	s, err := dynbridge.ToText(order)
//	o, err := dynbridge.FromText[Order](s)
//
// Every failure is an *Error carrying a kind, the phase and a JSON Pointer
// to the offending position.
package dynbridge
