package dynbridge

import (
	"math"
	"slices"
	"unicode/utf8"

	"github.com/reoring/dynbridge/datamodel"
	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

// maxSafeInteger is the largest integer a float64 represents exactly along
// with all smaller ones.
const maxSafeInteger = 1 << 53

// consumer implements datamodel.Deserializer over one dynamic value. It
// inspects the value's kind and either calls the visitor or fails with a
// TypeMismatch naming what the visitor expected.
type consumer struct {
	opts  *Options
	depth int
	v     value.Value
}

var (
	_ datamodel.Deserializer            = (*consumer)(nil)
	_ datamodel.PassthroughDeserializer = (*consumer)(nil)
)

func newConsumer(o *Options, v value.Value) *consumer {
	return &consumer{opts: o, v: v}
}

func (c *consumer) child(v value.Value) *consumer {
	return &consumer{opts: c.opts, depth: c.depth + 1, v: v}
}

// enter guards descending into a container.
func (c *consumer) enter() error {
	if c.depth >= c.opts.MaxDepth {
		return errors.DepthExceeded(c.opts.MaxDepth)
	}
	return nil
}

func (c *consumer) mismatch(vis datamodel.Visitor) error {
	return errors.TypeMismatch(vis.Expecting(), value.Describe(c.v))
}

// DeserializePassthrough hands the raw value to value.Value targets.
func (c *consumer) DeserializePassthrough(target any) (bool, error) {
	if t, ok := target.(*value.Value); ok {
		*t = c.v
		return true, nil
	}
	return false, nil
}

func (c *consumer) DeserializeAny(vis datamodel.Visitor) error {
	switch c.v.Kind() {
	case value.KindUndefined, value.KindNull:
		return vis.VisitUnit()
	case value.KindBool:
		b, _ := c.v.AsBool()
		return vis.VisitBool(b)
	case value.KindNumber:
		n, _ := c.v.AsNumber()
		if isSafeInteger(n) {
			return vis.VisitInt(int64(n))
		}
		return vis.VisitFloat(n)
	case value.KindString:
		s, _ := c.v.AsString()
		return vis.VisitString(s)
	case value.KindArray, value.KindSet:
		return c.DeserializeSeq(vis)
	default:
		return c.DeserializeMap(vis)
	}
}

// isSafeInteger reports whether n is integral, within ±2^53 and not -0.
func isSafeInteger(n float64) bool {
	if n != math.Trunc(n) || math.IsInf(n, 0) {
		return false
	}
	if n == 0 && math.Signbit(n) {
		return false
	}
	return math.Abs(n) <= maxSafeInteger
}

func (c *consumer) DeserializeBool(vis datamodel.Visitor) error {
	b, ok := c.v.AsBool()
	if !ok {
		return c.mismatch(vis)
	}
	return vis.VisitBool(b)
}

// integral returns the number held by c when it has no fractional part.
func (c *consumer) integral(vis datamodel.Visitor) (float64, error) {
	n, ok := c.v.AsNumber()
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, c.mismatch(vis)
	}
	return n, nil
}

func (c *consumer) DeserializeInt(bits int, vis datamodel.Visitor) error {
	n, err := c.integral(vis)
	if err != nil {
		return err
	}
	limit := math.Ldexp(1, bits-1)
	if n < -limit || n >= limit {
		return errors.OutOfRange(vis.Expecting(), value.Describe(c.v))
	}
	return vis.VisitInt(int64(n))
}

func (c *consumer) DeserializeUint(bits int, vis datamodel.Visitor) error {
	n, err := c.integral(vis)
	if err != nil {
		return err
	}
	if n < 0 || n >= math.Ldexp(1, bits) {
		return errors.OutOfRange(vis.Expecting(), value.Describe(c.v))
	}
	return vis.VisitUint(uint64(n))
}

func (c *consumer) DeserializeFloat(_ int, vis datamodel.Visitor) error {
	n, ok := c.v.AsNumber()
	if !ok {
		return c.mismatch(vis)
	}
	return vis.VisitFloat(n)
}

func (c *consumer) DeserializeChar(vis datamodel.Visitor) error {
	s, ok := c.v.AsString()
	if !ok || utf8.RuneCountInString(s) != 1 {
		return c.mismatch(vis)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return vis.VisitChar(r)
}

func (c *consumer) DeserializeString(vis datamodel.Visitor) error {
	s, ok := c.v.AsString()
	if !ok {
		return c.mismatch(vis)
	}
	return vis.VisitString(s)
}

// DeserializeBytes accepts an array of integers in [0, 255].
func (c *consumer) DeserializeBytes(vis datamodel.Visitor) error {
	items, ok := c.v.AsArray()
	if !ok {
		return c.mismatch(vis)
	}
	if err := c.enter(); err != nil {
		return err
	}
	buf := make([]byte, len(items))
	for i, it := range items {
		var b uint8
		if err := datamodel.Deserialize(c.child(it), &b); err != nil {
			return errors.At(err, itoa(i))
		}
		buf[i] = b
	}
	return vis.VisitBytes(buf)
}

func (c *consumer) DeserializeOption(vis datamodel.Visitor) error {
	if c.v.IsNullish() {
		return vis.VisitNone()
	}
	return vis.VisitSome(c)
}

func (c *consumer) DeserializeUnit(vis datamodel.Visitor) error {
	if !c.v.IsNullish() {
		return c.mismatch(vis)
	}
	return vis.VisitUnit()
}

func (c *consumer) DeserializeUnitStruct(_ string, vis datamodel.Visitor) error {
	return c.DeserializeUnit(vis)
}

func (c *consumer) DeserializeNewtypeStruct(_ string, vis datamodel.Visitor) error {
	return vis.VisitNewtypeStruct(c)
}

func (c *consumer) DeserializeSeq(vis datamodel.Visitor) error {
	switch c.v.Kind() {
	case value.KindArray:
		if err := c.enter(); err != nil {
			return err
		}
		items, _ := c.v.AsArray()
		return vis.VisitSeq(&seqAccess{c: c, items: items})
	case value.KindSet:
		if err := c.enter(); err != nil {
			return err
		}
		set, _ := c.v.AsSet()
		return vis.VisitSeq(&seqAccess{c: c, items: set.Values()})
	default:
		return c.mismatch(vis)
	}
}

func (c *consumer) DeserializeTuple(n int, vis datamodel.Visitor) error {
	switch c.v.Kind() {
	case value.KindArray, value.KindSet:
		if got := c.v.Len(); got != n {
			return errors.InvalidLength(vis.Expecting(), got)
		}
		return c.DeserializeSeq(vis)
	default:
		return c.mismatch(vis)
	}
}

func (c *consumer) DeserializeMap(vis datamodel.Visitor) error {
	switch c.v.Kind() {
	case value.KindObject:
		if err := c.enter(); err != nil {
			return err
		}
		obj, _ := c.v.AsObject()
		return vis.VisitMap(newObjectAccess(c, obj))
	case value.KindMap:
		if err := c.enter(); err != nil {
			return err
		}
		m, _ := c.v.AsMap()
		return vis.VisitMap(newNativeMapAccess(c, m))
	default:
		return c.mismatch(vis)
	}
}

// DeserializeStruct looks up each declared field by key. Keys that are not
// declared are never visited.
func (c *consumer) DeserializeStruct(_ string, fields []string, vis datamodel.Visitor) error {
	var lookup func(string) (value.Value, bool)
	switch c.v.Kind() {
	case value.KindObject:
		obj, _ := c.v.AsObject()
		lookup = obj.Get
	case value.KindMap:
		m, _ := c.v.AsMap()
		lookup = func(name string) (value.Value, bool) { return m.Get(value.String(name)) }
	default:
		return c.mismatch(vis)
	}
	if err := c.enter(); err != nil {
		return err
	}
	return vis.VisitMap(&structAccess{c: c, fields: fields, lookup: lookup})
}

// DeserializeEnum accepts a bare tag string for unit variants and a
// single-key object {tag: payload} for the others.
func (c *consumer) DeserializeEnum(_ string, variants []string, vis datamodel.Visitor) error {
	switch c.v.Kind() {
	case value.KindString:
		tag, _ := c.v.AsString()
		if !slices.Contains(variants, tag) {
			return c.unknownVariant(vis)
		}
		return vis.VisitEnum(&enumAccess{c: c, tag: tag, bare: true})
	case value.KindObject:
		obj, _ := c.v.AsObject()
		if obj.Len() != 1 {
			return c.mismatch(vis)
		}
		tag := obj.Keys()[0]
		if !slices.Contains(variants, tag) {
			return c.unknownVariant(vis)
		}
		if err := c.enter(); err != nil {
			return err
		}
		payload, _ := obj.Get(tag)
		return vis.VisitEnum(&enumAccess{c: c, tag: tag, payload: payload})
	default:
		return c.mismatch(vis)
	}
}

func (c *consumer) unknownVariant(vis datamodel.Visitor) error {
	e := errors.TypeMismatch(vis.Expecting(), value.Describe(c.v))
	e.Message = "unknown variant"
	return e
}

func (c *consumer) DeserializeIdentifier(vis datamodel.Visitor) error {
	return c.DeserializeString(vis)
}

func (c *consumer) DeserializeIgnoredAny(vis datamodel.Visitor) error {
	return vis.VisitUnit()
}
