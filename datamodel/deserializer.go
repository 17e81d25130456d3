package datamodel

import (
	"strconv"

	"github.com/reoring/dynbridge/errors"
)

// Deserializer is driven by the target: each method declares the shape the
// target expects and hands a Visitor that receives whatever the input
// actually holds. A Deserializer that cannot satisfy the request fails with
// a TypeMismatch instead of calling the visitor.
type Deserializer interface {
	DeserializeAny(v Visitor) error
	DeserializeBool(v Visitor) error
	DeserializeInt(bits int, v Visitor) error
	DeserializeUint(bits int, v Visitor) error
	DeserializeFloat(bits int, v Visitor) error
	DeserializeChar(v Visitor) error
	DeserializeString(v Visitor) error
	DeserializeBytes(v Visitor) error
	DeserializeOption(v Visitor) error
	DeserializeUnit(v Visitor) error
	DeserializeUnitStruct(name string, v Visitor) error
	DeserializeNewtypeStruct(name string, v Visitor) error
	DeserializeSeq(v Visitor) error
	DeserializeTuple(n int, v Visitor) error
	DeserializeMap(v Visitor) error
	DeserializeStruct(name string, fields []string, v Visitor) error
	DeserializeEnum(name string, variants []string, v Visitor) error
	// DeserializeIdentifier reads a field name or variant tag.
	DeserializeIdentifier(v Visitor) error
	// DeserializeIgnoredAny skips the input.
	DeserializeIgnoredAny(v Visitor) error
}

// Seed consumes one nested value from d.
type Seed func(d Deserializer) error

// Into returns a Seed that deserializes into ptr.
func Into(ptr any) Seed {
	return func(d Deserializer) error { return Deserialize(d, ptr) }
}

// Ignore is a Seed that discards the value.
var Ignore Seed = func(d Deserializer) error {
	return d.DeserializeIgnoredAny(ignoreVisitor{})
}

// SeqAccess yields the elements of a sequence.
type SeqAccess interface {
	// NextElement feeds the next element to seed; it reports false once
	// the sequence is exhausted.
	NextElement(seed Seed) (bool, error)
	// SizeHint returns the remaining element count, or -1 when unknown.
	SizeHint() int
}

// MapAccess yields the entries of a map or struct.
type MapAccess interface {
	NextKey(seed Seed) (bool, error)
	// NextValue must follow a successful NextKey.
	NextValue(seed Seed) error
	SizeHint() int
}

// EnumAccess exposes the selected variant of an enum.
type EnumAccess interface {
	Variant() (tag string, va VariantAccess, err error)
}

// VariantAccess reads the payload of the variant selected by EnumAccess.
type VariantAccess interface {
	UnitVariant() error
	NewtypeVariant(seed Seed) error
	TupleVariant(n int, v Visitor) error
	StructVariant(fields []string, v Visitor) error
}

// Deserializable is implemented by pointer types that read their own shape.
type Deserializable interface {
	Deserialize(d Deserializer) error
}

// PassthroughDeserializer is implemented by deserializers that can hand
// their raw input to targets they recognize. Deserialize asks it first.
type PassthroughDeserializer interface {
	DeserializePassthrough(target any) (handled bool, err error)
}

// Visitor receives the shape the input actually holds. Embed BaseVisitor to
// reject every shape not explicitly handled.
type Visitor interface {
	// Expecting describes what the visitor accepts, for error messages.
	Expecting() string
	VisitBool(v bool) error
	VisitInt(v int64) error
	VisitUint(v uint64) error
	VisitFloat(v float64) error
	VisitChar(v rune) error
	VisitString(v string) error
	VisitBytes(v []byte) error
	VisitNone() error
	VisitSome(d Deserializer) error
	VisitUnit() error
	VisitNewtypeStruct(d Deserializer) error
	VisitSeq(a SeqAccess) error
	VisitMap(a MapAccess) error
	VisitEnum(a EnumAccess) error
}

// BaseVisitor rejects every shape with a TypeMismatch against Expect.
type BaseVisitor struct {
	Expect string
}

func (b BaseVisitor) Expecting() string { return b.Expect }

func (b BaseVisitor) mismatch(found string) error {
	return errors.TypeMismatch(b.Expect, found)
}

func (b BaseVisitor) VisitBool(v bool) error {
	return b.mismatch("boolean " + strconv.FormatBool(v))
}

func (b BaseVisitor) VisitInt(v int64) error {
	return b.mismatch("integer " + strconv.FormatInt(v, 10))
}

func (b BaseVisitor) VisitUint(v uint64) error {
	return b.mismatch("integer " + strconv.FormatUint(v, 10))
}

func (b BaseVisitor) VisitFloat(v float64) error {
	return b.mismatch("floating point " + strconv.FormatFloat(v, 'g', -1, 64))
}

func (b BaseVisitor) VisitChar(v rune) error {
	return b.mismatch("char " + strconv.QuoteRune(v))
}

func (b BaseVisitor) VisitString(v string) error {
	return b.mismatch("string " + strconv.Quote(v))
}

func (b BaseVisitor) VisitBytes([]byte) error { return b.mismatch("byte array") }

func (b BaseVisitor) VisitNone() error { return b.mismatch("none") }

func (b BaseVisitor) VisitSome(Deserializer) error { return b.mismatch("option") }

func (b BaseVisitor) VisitUnit() error { return b.mismatch("unit") }

func (b BaseVisitor) VisitNewtypeStruct(Deserializer) error { return b.mismatch("newtype struct") }

func (b BaseVisitor) VisitSeq(SeqAccess) error { return b.mismatch("sequence") }

func (b BaseVisitor) VisitMap(MapAccess) error { return b.mismatch("map") }

func (b BaseVisitor) VisitEnum(EnumAccess) error { return b.mismatch("enum") }

// ignoreVisitor accepts anything and keeps nothing.
type ignoreVisitor struct{}

func (ignoreVisitor) Expecting() string                     { return "any value" }
func (ignoreVisitor) VisitBool(bool) error                  { return nil }
func (ignoreVisitor) VisitInt(int64) error                  { return nil }
func (ignoreVisitor) VisitUint(uint64) error                { return nil }
func (ignoreVisitor) VisitFloat(float64) error              { return nil }
func (ignoreVisitor) VisitChar(rune) error                  { return nil }
func (ignoreVisitor) VisitString(string) error              { return nil }
func (ignoreVisitor) VisitBytes([]byte) error               { return nil }
func (ignoreVisitor) VisitNone() error                      { return nil }
func (ignoreVisitor) VisitUnit() error                      { return nil }
func (ignoreVisitor) VisitSome(d Deserializer) error        { return Ignore(d) }
func (ignoreVisitor) VisitNewtypeStruct(d Deserializer) error { return Ignore(d) }

func (ignoreVisitor) VisitSeq(a SeqAccess) error {
	for {
		ok, err := a.NextElement(Ignore)
		if err != nil || !ok {
			return err
		}
	}
}

func (ignoreVisitor) VisitMap(a MapAccess) error {
	for {
		ok, err := a.NextKey(Ignore)
		if err != nil || !ok {
			return err
		}
		if err := a.NextValue(Ignore); err != nil {
			return err
		}
	}
}

func (ignoreVisitor) VisitEnum(a EnumAccess) error {
	_, va, err := a.Variant()
	if err != nil {
		return err
	}
	return va.NewtypeVariant(Ignore)
}
