package datamodel

import (
	"cmp"
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/dynbridge/errors"
)

var (
	serializableType   = reflect.TypeOf((*Serializable)(nil)).Elem()
	textMarshalerType  = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	deserializableType = reflect.TypeOf((*Deserializable)(nil)).Elem()
)

// Serialize describes v to s. Serializable values describe themselves;
// encoding.TextMarshaler values become strings; everything else is walked
// by reflection. Nil pointers and interfaces are None.
func Serialize(v any, s Serializer) error {
	if p, ok := s.(PassthroughSerializer); ok {
		if handled, err := p.SerializePassthrough(v); handled {
			return err
		}
	}
	if v == nil {
		return s.SerializeNone()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return s.SerializeNone()
	}
	switch x := v.(type) {
	case Serializable:
		return x.Serialize(s)
	case encoding.TextMarshaler:
		text, err := x.MarshalText()
		if err != nil {
			return errors.From(err)
		}
		return s.SerializeString(string(text))
	}
	return serializeValue(rv, s)
}

// iface returns rv as an interface, preferring its address when only the
// pointer type implements Serializable or TextMarshaler.
func iface(rv reflect.Value) any {
	if rv.Kind() != reflect.Pointer && rv.CanAddr() {
		pt := rv.Addr().Type()
		t := rv.Type()
		if (pt.Implements(serializableType) && !t.Implements(serializableType)) ||
			(pt.Implements(textMarshalerType) && !t.Implements(textMarshalerType)) {
			return rv.Addr().Interface()
		}
	}
	return rv.Interface()
}

func serializeValue(rv reflect.Value, s Serializer) error {
	switch rv.Kind() {
	case reflect.Bool:
		return s.SerializeBool(rv.Bool())
	case reflect.Int:
		return s.SerializeInt(rv.Int(), strconv.IntSize)
	case reflect.Int32:
		if rv.Type() == charType {
			return s.SerializeChar(rune(rv.Int()))
		}
		return s.SerializeInt(rv.Int(), 32)
	case reflect.Int8, reflect.Int16, reflect.Int64:
		return s.SerializeInt(rv.Int(), rv.Type().Bits())
	case reflect.Uint, reflect.Uintptr:
		return s.SerializeUint(rv.Uint(), strconv.IntSize)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return s.SerializeUint(rv.Uint(), rv.Type().Bits())
	case reflect.Float32, reflect.Float64:
		return s.SerializeFloat(rv.Float(), rv.Type().Bits())
	case reflect.String:
		return s.SerializeString(rv.String())
	case reflect.Slice:
		if isByteSlice(rv.Type()) {
			return s.SerializeBytes(rv.Bytes())
		}
		seq, err := s.SerializeSeq(rv.Len())
		if err != nil {
			return err
		}
		return serializeElements(rv, seq)
	case reflect.Array:
		seq, err := s.SerializeTuple(rv.Len())
		if err != nil {
			return err
		}
		return serializeElements(rv, seq)
	case reflect.Map:
		return serializeMap(rv, s)
	case reflect.Pointer:
		if rv.IsNil() {
			return s.SerializeNone()
		}
		return s.SerializeSome(iface(rv.Elem()))
	case reflect.Interface:
		if rv.IsNil() {
			return s.SerializeNone()
		}
		return Serialize(rv.Elem().Interface(), s)
	case reflect.Struct:
		info, err := structInfo(rv.Type())
		if err != nil {
			return err
		}
		return serializeStruct(rv, info, s)
	default:
		return errors.Unsupported("cannot serialize Go type %s", rv.Type())
	}
}

func isByteSlice(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Uint8 &&
		!e.Implements(serializableType) &&
		!reflect.PointerTo(e).Implements(serializableType)
}

func serializeElements(rv reflect.Value, seq SeqSerializer) error {
	for i := 0; i < rv.Len(); i++ {
		if err := seq.SerializeElement(iface(rv.Index(i))); err != nil {
			return err
		}
	}
	return seq.End()
}

func serializeMap(rv reflect.Value, s Serializer) error {
	keys := rv.MapKeys()
	slices.SortFunc(keys, compareKeys)
	ms, err := s.SerializeMap(len(keys))
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := ms.SerializeEntry(k.Interface(), rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return ms.End()
}

// compareKeys orders map keys so that output does not depend on Go's map
// iteration order.
func compareKeys(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.String:
		return strings.Compare(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case b.Bool():
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(
			fmt.Sprintf("%T:%v", a.Interface(), a.Interface()),
			fmt.Sprintf("%T:%v", b.Interface(), b.Interface()),
		)
	}
}

func serializeStruct(rv reflect.Value, info *typeInfo, s Serializer) error {
	switch info.shape {
	case shapeUnit:
		return s.SerializeUnitStruct(info.name)
	case shapeNewtype:
		return s.SerializeNewtypeStruct(info.name, iface(rv.FieldByIndex(info.fields[0].index)))
	case shapeTuple:
		seq, err := s.SerializeTuple(len(info.fields))
		if err != nil {
			return err
		}
		return serializeTupleFields(rv, info, seq)
	case shapeEnum:
		return serializeEnum(rv, info, s)
	default:
		ss, err := s.SerializeStruct(info.name, len(info.fields))
		if err != nil {
			return err
		}
		return serializeFields(rv, info, ss)
	}
}

func serializeTupleFields(rv reflect.Value, info *typeInfo, seq SeqSerializer) error {
	for _, f := range info.fields {
		if err := seq.SerializeElement(iface(rv.FieldByIndex(f.index))); err != nil {
			return err
		}
	}
	return seq.End()
}

func serializeFields(rv reflect.Value, info *typeInfo, ss StructSerializer) error {
	for _, f := range info.fields {
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			if err := ss.SkipField(f.name); err != nil {
				return err
			}
			continue
		}
		if err := ss.SerializeField(f.name, iface(fv)); err != nil {
			return err
		}
	}
	return ss.End()
}

func serializeEnum(rv reflect.Value, info *typeInfo, s Serializer) error {
	active := -1
	for i, v := range info.variants {
		if rv.FieldByIndex(v.field).IsNil() {
			continue
		}
		if active >= 0 {
			return errors.Custom("enum %s has more than one variant set (%s, %s)",
				info.name, info.variants[active].name, v.name)
		}
		active = i
	}
	if active < 0 {
		return errors.Custom("enum %s has no variant set", info.name)
	}
	v := info.variants[active]
	payload := rv.FieldByIndex(v.field).Elem()
	switch v.kind {
	case variantUnit:
		return s.SerializeUnitVariant(info.name, active, v.name)
	case variantNewtype:
		return s.SerializeNewtypeVariant(info.name, active, v.name, iface(payload))
	case variantTuple:
		if payload.Kind() == reflect.Array {
			seq, err := s.SerializeTupleVariant(info.name, active, v.name, payload.Len())
			if err != nil {
				return err
			}
			return serializeElements(payload, seq)
		}
		pinfo, err := structInfo(payload.Type())
		if err != nil {
			return err
		}
		seq, err := s.SerializeTupleVariant(info.name, active, v.name, len(pinfo.fields))
		if err != nil {
			return err
		}
		return serializeTupleFields(payload, pinfo, seq)
	default:
		pinfo, err := structInfo(payload.Type())
		if err != nil {
			return err
		}
		ss, err := s.SerializeStructVariant(info.name, active, v.name, len(pinfo.fields))
		if err != nil {
			return err
		}
		return serializeFields(payload, pinfo, ss)
	}
}

// isEmptyValue follows encoding/json's omitempty rule, extended to zero
// structs.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}
