package datamodel

// Serializer receives exactly one call describing the shape of a value.
// Compound shapes return a builder that receives the children and must be
// closed with End.
//
// Children are passed as any and are walked with Serialize, so a child may
// be a plain Go value, a Serializable, or anything the Serializer accepts
// through PassthroughSerializer.
type Serializer interface {
	SerializeBool(v bool) error
	// SerializeInt receives a signed integer declared with the given width
	// in bits (8, 16, 32 or 64).
	SerializeInt(v int64, bits int) error
	SerializeUint(v uint64, bits int) error
	SerializeFloat(v float64, bits int) error
	SerializeChar(v rune) error
	SerializeString(v string) error
	SerializeBytes(v []byte) error

	SerializeNone() error
	SerializeSome(v any) error
	SerializeUnit() error
	SerializeUnitStruct(name string) error
	SerializeNewtypeStruct(name string, v any) error

	// SerializeSeq starts a variable-length sequence; n is -1 when unknown.
	SerializeSeq(n int) (SeqSerializer, error)
	SerializeTuple(n int) (SeqSerializer, error)
	SerializeMap(n int) (MapSerializer, error)
	SerializeStruct(name string, n int) (StructSerializer, error)

	SerializeUnitVariant(enum string, index int, variant string) error
	SerializeNewtypeVariant(enum string, index int, variant string, v any) error
	SerializeTupleVariant(enum string, index int, variant string, n int) (SeqSerializer, error)
	SerializeStructVariant(enum string, index int, variant string, n int) (StructSerializer, error)
}

// SeqSerializer builds sequences, tuples and tuple variants.
type SeqSerializer interface {
	SerializeElement(v any) error
	End() error
}

// MapSerializer builds maps. Keys may be any serializable value.
type MapSerializer interface {
	SerializeEntry(k, v any) error
	End() error
}

// StructSerializer builds structs and struct variants.
type StructSerializer interface {
	SerializeField(name string, v any) error
	// SkipField records that a declared field was left out on purpose
	// (skip if absent). Nothing is written for it.
	SkipField(name string) error
	End() error
}

// Serializable is implemented by types that describe their own shape, for
// example sum types that map onto enum variants.
type Serializable interface {
	Serialize(s Serializer) error
}

// PassthroughSerializer is implemented by serializers that can take some
// values as-is instead of walking them. Serialize asks it first.
type PassthroughSerializer interface {
	SerializePassthrough(v any) (handled bool, err error)
}
