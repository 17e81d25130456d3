package datamodel

import (
	"encoding"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/reoring/dynbridge/errors"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// Deserialize reads d into the value ptr points to. The Go type of the
// target decides which shape is requested from d.
func Deserialize(d Deserializer, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Custom("cannot deserialize into %T: need a non-nil pointer", ptr)
	}
	return deserializeValue(d, rv.Elem())
}

func seedFor(rv reflect.Value) Seed {
	return func(d Deserializer) error { return deserializeValue(d, rv) }
}

// deserializeValue fills the addressable rv.
func deserializeValue(d Deserializer, rv reflect.Value) error {
	if p, ok := d.(PassthroughDeserializer); ok {
		if handled, err := p.DeserializePassthrough(rv.Addr().Interface()); handled {
			return err
		}
	}
	pt := reflect.PointerTo(rv.Type())
	if pt.Implements(deserializableType) {
		return rv.Addr().Interface().(Deserializable).Deserialize(d)
	}
	if pt.Implements(textUnmarshalerType) {
		return d.DeserializeString(textVisitor{BaseVisitor{"text for " + rv.Type().String()}, rv})
	}

	switch rv.Kind() {
	case reflect.Bool:
		return d.DeserializeBool(boolVisitor{BaseVisitor{"bool"}, rv})
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Type() == charType {
			return d.DeserializeChar(charVisitor{BaseVisitor{"char"}, rv})
		}
		return d.DeserializeInt(rv.Type().Bits(), intVisitor{BaseVisitor{rv.Kind().String()}, rv})
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return d.DeserializeUint(rv.Type().Bits(), uintVisitor{BaseVisitor{rv.Kind().String()}, rv})
	case reflect.Float32, reflect.Float64:
		return d.DeserializeFloat(rv.Type().Bits(), floatVisitor{BaseVisitor{rv.Kind().String()}, rv})
	case reflect.String:
		return d.DeserializeString(stringVisitor{BaseVisitor{"string"}, rv})
	case reflect.Slice:
		if isByteSlice(rv.Type()) {
			return d.DeserializeBytes(bytesVisitor{BaseVisitor{"byte array"}, rv})
		}
		return d.DeserializeSeq(sliceVisitor{BaseVisitor{"sequence"}, rv})
	case reflect.Array:
		n := rv.Len()
		return d.DeserializeTuple(n, arrayVisitor{BaseVisitor{tupleExpect(n)}, rv})
	case reflect.Map:
		return d.DeserializeMap(mapVisitor{BaseVisitor{"map"}, rv})
	case reflect.Pointer:
		return d.DeserializeOption(optionVisitor{BaseVisitor{"option"}, rv})
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return errors.Unsupported("cannot deserialize into interface type %s", rv.Type())
		}
		return d.DeserializeAny(anyVisitor{BaseVisitor{"any value"}, rv})
	case reflect.Struct:
		return deserializeStruct(d, rv)
	default:
		return errors.Unsupported("cannot deserialize into Go type %s", rv.Type())
	}
}

func tupleExpect(n int) string {
	return "tuple of " + strconv.Itoa(n) + " elements"
}

func deserializeStruct(d Deserializer, rv reflect.Value) error {
	info, err := structInfo(rv.Type())
	if err != nil {
		return err
	}
	switch info.shape {
	case shapeUnit:
		return d.DeserializeUnitStruct(info.name, unitVisitor{BaseVisitor{"unit struct " + info.name}})
	case shapeNewtype:
		field := rv.FieldByIndex(info.fields[0].index)
		return d.DeserializeNewtypeStruct(info.name, newtypeVisitor{BaseVisitor{"newtype struct " + info.name}, field})
	case shapeTuple:
		return d.DeserializeTuple(len(info.fields), tupleStructVisitor{BaseVisitor{"tuple struct " + info.name}, rv, info})
	case shapeEnum:
		return d.DeserializeEnum(info.name, info.tags, enumVisitor{BaseVisitor{"enum " + info.name}, rv, info})
	default:
		return d.DeserializeStruct(info.name, info.names, structVisitor{BaseVisitor{"struct " + info.name}, rv, info})
	}
}

type boolVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v boolVisitor) VisitBool(b bool) error {
	v.rv.SetBool(b)
	return nil
}

type intVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v intVisitor) VisitInt(n int64) error {
	if v.rv.OverflowInt(n) {
		return errors.OutOfRange(v.Expect, "integer "+strconv.FormatInt(n, 10))
	}
	v.rv.SetInt(n)
	return nil
}

func (v intVisitor) VisitUint(n uint64) error {
	if n > math.MaxInt64 || v.rv.OverflowInt(int64(n)) {
		return errors.OutOfRange(v.Expect, "integer "+strconv.FormatUint(n, 10))
	}
	v.rv.SetInt(int64(n))
	return nil
}

type uintVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v uintVisitor) VisitUint(n uint64) error {
	if v.rv.OverflowUint(n) {
		return errors.OutOfRange(v.Expect, "integer "+strconv.FormatUint(n, 10))
	}
	v.rv.SetUint(n)
	return nil
}

func (v uintVisitor) VisitInt(n int64) error {
	if n < 0 {
		return errors.OutOfRange(v.Expect, "integer "+strconv.FormatInt(n, 10))
	}
	return v.VisitUint(uint64(n))
}

type floatVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v floatVisitor) VisitFloat(f float64) error {
	if v.rv.OverflowFloat(f) {
		return errors.OutOfRange(v.Expect, "floating point "+strconv.FormatFloat(f, 'g', -1, 64))
	}
	v.rv.SetFloat(f)
	return nil
}

func (v floatVisitor) VisitInt(n int64) error { return v.VisitFloat(float64(n)) }

func (v floatVisitor) VisitUint(n uint64) error { return v.VisitFloat(float64(n)) }

type charVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v charVisitor) VisitChar(r rune) error {
	v.rv.SetInt(int64(r))
	return nil
}

func (v charVisitor) VisitString(s string) error {
	if utf8.RuneCountInString(s) != 1 {
		return v.BaseVisitor.VisitString(s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return v.VisitChar(r)
}

type stringVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v stringVisitor) VisitString(s string) error {
	v.rv.SetString(s)
	return nil
}

func (v stringVisitor) VisitChar(r rune) error { return v.VisitString(string(r)) }

type textVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v textVisitor) VisitString(s string) error {
	if err := v.rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return errors.From(err)
	}
	return nil
}

type bytesVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v bytesVisitor) VisitBytes(b []byte) error {
	v.rv.SetBytes(append([]byte(nil), b...))
	return nil
}

func (v bytesVisitor) VisitSeq(a SeqAccess) error {
	buf := make([]byte, 0, max(a.SizeHint(), 0))
	for {
		var b uint8
		ok, err := a.NextElement(Into(&b))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		buf = append(buf, b)
	}
	v.rv.SetBytes(buf)
	return nil
}

type sliceVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v sliceVisitor) VisitSeq(a SeqAccess) error {
	t := v.rv.Type()
	out := reflect.MakeSlice(t, 0, max(a.SizeHint(), 0))
	for {
		elem := reflect.New(t.Elem()).Elem()
		ok, err := a.NextElement(seedFor(elem))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = reflect.Append(out, elem)
	}
	v.rv.Set(out)
	return nil
}

type arrayVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v arrayVisitor) VisitSeq(a SeqAccess) error {
	n := v.rv.Len()
	for i := 0; i < n; i++ {
		ok, err := a.NextElement(seedFor(v.rv.Index(i)))
		if err != nil {
			return err
		}
		if !ok {
			return errors.InvalidLength(v.Expect, i)
		}
	}
	return expectSeqEnd(a, v.Expect, n)
}

// expectSeqEnd fails when a still has elements after n were consumed.
func expectSeqEnd(a SeqAccess, expect string, n int) error {
	ok, err := a.NextElement(Ignore)
	if err != nil {
		return err
	}
	if ok {
		return errors.InvalidLength(expect, n+1+max(a.SizeHint(), 0))
	}
	return nil
}

type mapVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v mapVisitor) VisitMap(a MapAccess) error {
	t := v.rv.Type()
	m := reflect.MakeMapWithSize(t, max(a.SizeHint(), 0))
	for {
		k := reflect.New(t.Key()).Elem()
		ok, err := a.NextKey(seedFor(k))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if k.Kind() == reflect.Interface && !k.IsNil() && !k.Elem().Type().Comparable() {
			return errors.Custom("map key of type %s is not comparable", k.Elem().Type())
		}
		val := reflect.New(t.Elem()).Elem()
		if err := a.NextValue(seedFor(val)); err != nil {
			return err
		}
		m.SetMapIndex(k, val)
	}
	v.rv.Set(m)
	return nil
}

type optionVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v optionVisitor) VisitNone() error {
	v.rv.SetZero()
	return nil
}

func (v optionVisitor) VisitUnit() error { return v.VisitNone() }

func (v optionVisitor) VisitSome(d Deserializer) error {
	p := reflect.New(v.rv.Type().Elem())
	if err := deserializeValue(d, p.Elem()); err != nil {
		return err
	}
	v.rv.Set(p)
	return nil
}

// anyVisitor builds plain Go values: bool, int64, uint64, float64, string,
// []byte, []any, map[string]any (or map[any]any for non-string keys) and nil.
type anyVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v anyVisitor) set(x any) error {
	if x == nil {
		v.rv.SetZero()
		return nil
	}
	v.rv.Set(reflect.ValueOf(x))
	return nil
}

func (v anyVisitor) VisitBool(b bool) error     { return v.set(b) }
func (v anyVisitor) VisitInt(n int64) error     { return v.set(n) }
func (v anyVisitor) VisitUint(n uint64) error   { return v.set(n) }
func (v anyVisitor) VisitFloat(f float64) error { return v.set(f) }
func (v anyVisitor) VisitChar(r rune) error     { return v.set(string(r)) }
func (v anyVisitor) VisitString(s string) error { return v.set(s) }
func (v anyVisitor) VisitNone() error           { return v.set(nil) }
func (v anyVisitor) VisitUnit() error           { return v.set(nil) }

func (v anyVisitor) VisitBytes(b []byte) error {
	return v.set(append([]byte(nil), b...))
}

func (v anyVisitor) VisitSome(d Deserializer) error { return d.DeserializeAny(v) }

func (v anyVisitor) VisitNewtypeStruct(d Deserializer) error { return d.DeserializeAny(v) }

func (v anyVisitor) VisitSeq(a SeqAccess) error {
	out := make([]any, 0, max(a.SizeHint(), 0))
	for {
		var elem any
		ok, err := a.NextElement(Into(&elem))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = append(out, elem)
	}
	return v.set(out)
}

func (v anyVisitor) VisitMap(a MapAccess) error {
	var keys, vals []any
	allStrings := true
	for {
		var k any
		ok, err := a.NextKey(Into(&k))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var val any
		if err := a.NextValue(Into(&val)); err != nil {
			return err
		}
		if _, isString := k.(string); !isString {
			allStrings = false
			if k != nil && !reflect.TypeOf(k).Comparable() {
				return errors.Custom("map key of type %T is not comparable", k)
			}
		}
		keys = append(keys, k)
		vals = append(vals, val)
	}
	if allStrings {
		out := make(map[string]any, len(keys))
		for i, k := range keys {
			out[k.(string)] = vals[i]
		}
		return v.set(out)
	}
	out := make(map[any]any, len(keys))
	for i, k := range keys {
		out[k] = vals[i]
	}
	return v.set(out)
}

func (v anyVisitor) VisitEnum(a EnumAccess) error {
	tag, va, err := a.Variant()
	if err != nil {
		return err
	}
	var payload any
	if err := va.NewtypeVariant(Into(&payload)); err != nil {
		return err
	}
	return v.set(map[string]any{tag: payload})
}

type identVisitor struct {
	BaseVisitor
	out *string
}

func (v identVisitor) VisitString(s string) error {
	*v.out = s
	return nil
}

func (v identVisitor) VisitChar(r rune) error { return v.VisitString(string(r)) }

type unitVisitor struct {
	BaseVisitor
}

func (unitVisitor) VisitUnit() error { return nil }

type newtypeVisitor struct {
	BaseVisitor
	field reflect.Value
}

func (v newtypeVisitor) VisitNewtypeStruct(d Deserializer) error {
	return deserializeValue(d, v.field)
}

type tupleStructVisitor struct {
	BaseVisitor
	rv   reflect.Value
	info *typeInfo
}

func (v tupleStructVisitor) VisitSeq(a SeqAccess) error {
	for i, f := range v.info.fields {
		ok, err := a.NextElement(seedFor(v.rv.FieldByIndex(f.index)))
		if err != nil {
			return err
		}
		if !ok {
			return errors.InvalidLength(v.Expect, i)
		}
	}
	return expectSeqEnd(a, v.Expect, len(v.info.fields))
}

type structVisitor struct {
	BaseVisitor
	rv   reflect.Value
	info *typeInfo
}

func (v structVisitor) VisitMap(a MapAccess) error {
	seen := make([]bool, len(v.info.fields))
	for {
		var key string
		ok, err := a.NextKey(func(d Deserializer) error {
			return d.DeserializeIdentifier(identVisitor{BaseVisitor{"field identifier"}, &key})
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		i, known := v.info.byName[key]
		if !known {
			if err := a.NextValue(Ignore); err != nil {
				return err
			}
			continue
		}
		if err := a.NextValue(seedFor(v.rv.FieldByIndex(v.info.fields[i].index))); err != nil {
			return err
		}
		seen[i] = true
	}
	for i, f := range v.info.fields {
		if f.required && !seen[i] {
			return errors.MissingField(f.name)
		}
	}
	return nil
}

type enumVisitor struct {
	BaseVisitor
	rv   reflect.Value
	info *typeInfo
}

func (v enumVisitor) VisitEnum(a EnumAccess) error {
	tag, va, err := a.Variant()
	if err != nil {
		return err
	}
	i, ok := v.info.byTag[tag]
	if !ok {
		return errors.Custom("unknown variant %q, expected one of %q", tag, v.info.tags)
	}
	vr := v.info.variants[i]
	p := reflect.New(vr.payload)
	switch vr.kind {
	case variantUnit:
		err = va.UnitVariant()
	case variantNewtype:
		err = va.NewtypeVariant(seedFor(p.Elem()))
	case variantTuple:
		err = deserializeTupleVariant(va, p.Elem(), v.info.name+"::"+tag)
	default:
		var pinfo *typeInfo
		if pinfo, err = structInfo(vr.payload); err == nil {
			sv := structVisitor{BaseVisitor{"struct variant " + v.info.name + "::" + tag}, p.Elem(), pinfo}
			err = va.StructVariant(pinfo.names, sv)
		}
	}
	if err != nil {
		return err
	}
	for _, other := range v.info.variants {
		v.rv.FieldByIndex(other.field).SetZero()
	}
	v.rv.FieldByIndex(vr.field).Set(p)
	return nil
}

func deserializeTupleVariant(va VariantAccess, payload reflect.Value, name string) error {
	if payload.Kind() == reflect.Array {
		n := payload.Len()
		return va.TupleVariant(n, arrayVisitor{BaseVisitor{"tuple variant " + name}, payload})
	}
	pinfo, err := structInfo(payload.Type())
	if err != nil {
		return err
	}
	return va.TupleVariant(len(pinfo.fields), tupleStructVisitor{BaseVisitor{"tuple variant " + name}, payload, pinfo})
}
