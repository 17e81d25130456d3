package dynbridge

import (
	"strconv"

	"github.com/reoring/dynbridge/datamodel"
	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

// producer implements datamodel.Serializer by building a value.Value. Each
// nested value gets its own producer one level deeper; option and newtype
// wrappers reuse the current one since they are transparent.
type producer struct {
	opts  *Options
	depth int
	// wrappers counts option and newtype hops since the last container;
	// it bounds pointer cycles that never reach one.
	wrappers int
	out      value.Value
}

var (
	_ datamodel.Serializer            = (*producer)(nil)
	_ datamodel.PassthroughSerializer = (*producer)(nil)
)

func newProducer(o *Options) *producer {
	return &producer{opts: o}
}

// enter guards the start of a container.
func (p *producer) enter() error {
	if p.depth >= p.opts.MaxDepth {
		return errors.DepthExceeded(p.opts.MaxDepth)
	}
	return nil
}

// unwrap guards a transparent wrapper.
func (p *producer) unwrap() error {
	p.wrappers++
	if p.wrappers > p.opts.MaxDepth {
		return errors.DepthExceeded(p.opts.MaxDepth)
	}
	return nil
}

// produce serializes a child one level deeper.
func (p *producer) produce(v any) (value.Value, error) {
	c := &producer{opts: p.opts, depth: p.depth + 1}
	if err := datamodel.Serialize(v, c); err != nil {
		return value.Value{}, err
	}
	return c.out, nil
}

func (p *producer) label(s string) string {
	l, _ := p.opts.Labels.Intern(s).AsString()
	return l
}

// SerializePassthrough embeds dynamic values as-is.
func (p *producer) SerializePassthrough(v any) (bool, error) {
	switch x := v.(type) {
	case value.Value:
		p.out = x
		return true, nil
	case *value.Value:
		if x == nil {
			p.out = value.Null()
		} else {
			p.out = *x
		}
		return true, nil
	}
	return false, nil
}

func (p *producer) SerializeBool(v bool) error {
	p.out = value.Bool(v)
	return nil
}

// SerializeInt widens to float64. Magnitudes above 2^53 lose precision.
func (p *producer) SerializeInt(v int64, _ int) error {
	p.out = value.Number(float64(v))
	return nil
}

func (p *producer) SerializeUint(v uint64, _ int) error {
	p.out = value.Number(float64(v))
	return nil
}

func (p *producer) SerializeFloat(v float64, _ int) error {
	p.out = value.Number(v)
	return nil
}

func (p *producer) SerializeChar(v rune) error {
	p.out = value.String(string(v))
	return nil
}

func (p *producer) SerializeString(v string) error {
	p.out = value.String(v)
	return nil
}

// SerializeBytes produces an array of byte values.
func (p *producer) SerializeBytes(v []byte) error {
	if err := p.enter(); err != nil {
		return err
	}
	items := make([]value.Value, len(v))
	for i, b := range v {
		items[i] = value.Number(float64(b))
	}
	p.out = value.Array(items...)
	return nil
}

func (p *producer) SerializeNone() error {
	p.out = value.Null()
	return nil
}

func (p *producer) SerializeSome(v any) error {
	if err := p.unwrap(); err != nil {
		return err
	}
	return datamodel.Serialize(v, p)
}

func (p *producer) SerializeUnit() error {
	p.out = value.Null()
	return nil
}

func (p *producer) SerializeUnitStruct(string) error {
	p.out = value.Null()
	return nil
}

func (p *producer) SerializeNewtypeStruct(_ string, v any) error {
	if err := p.unwrap(); err != nil {
		return err
	}
	return datamodel.Serialize(v, p)
}

func (p *producer) SerializeSeq(n int) (datamodel.SeqSerializer, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	return &seqBuilder{p: p, items: make([]value.Value, 0, max(n, 0))}, nil
}

func (p *producer) SerializeTuple(n int) (datamodel.SeqSerializer, error) {
	return p.SerializeSeq(n)
}

func (p *producer) SerializeMap(n int) (datamodel.MapSerializer, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	return &mapBuilder{p: p, keys: make([]value.Value, 0, max(n, 0)), vals: make([]value.Value, 0, max(n, 0))}, nil
}

func (p *producer) SerializeStruct(_ string, n int) (datamodel.StructSerializer, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	return &structBuilder{p: p, obj: value.NewObjectSize(n)}, nil
}

func (p *producer) SerializeUnitVariant(_ string, _ int, variant string) error {
	p.out = p.opts.Labels.Intern(variant)
	return nil
}

func (p *producer) SerializeNewtypeVariant(_ string, _ int, variant string, v any) error {
	if err := p.enter(); err != nil {
		return err
	}
	payload, err := p.produce(v)
	if err != nil {
		return errors.At(err, variant)
	}
	p.out = p.tagged(variant, payload)
	return nil
}

func (p *producer) SerializeTupleVariant(_ string, _ int, variant string, n int) (datamodel.SeqSerializer, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	// The payload array sits one level below the tag object.
	inner := &producer{opts: p.opts, depth: p.depth + 1}
	if err := inner.enter(); err != nil {
		return nil, err
	}
	return &seqBuilder{p: inner, items: make([]value.Value, 0, max(n, 0)), variant: variant, outer: p}, nil
}

func (p *producer) SerializeStructVariant(_ string, _ int, variant string, n int) (datamodel.StructSerializer, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	inner := &producer{opts: p.opts, depth: p.depth + 1}
	if err := inner.enter(); err != nil {
		return nil, err
	}
	return &structBuilder{p: inner, obj: value.NewObjectSize(n), variant: variant, outer: p}, nil
}

// tagged wraps payload in the single-key object used for non-unit variants.
func (p *producer) tagged(variant string, payload value.Value) value.Value {
	return value.NewObjectSize(1).Set(p.label(variant), payload).Value()
}

type seqBuilder struct {
	p     *producer
	items []value.Value

	// set for tuple variants
	variant string
	outer   *producer
}

func (b *seqBuilder) SerializeElement(v any) error {
	item, err := b.p.produce(v)
	if err != nil {
		return b.at(errors.At(err, strconv.Itoa(len(b.items))))
	}
	b.items = append(b.items, item)
	return nil
}

func (b *seqBuilder) at(err error) error {
	if b.outer != nil {
		return errors.At(err, b.variant)
	}
	return err
}

func (b *seqBuilder) End() error {
	arr := value.Array(b.items...)
	if b.outer != nil {
		b.outer.out = b.outer.tagged(b.variant, arr)
		return nil
	}
	b.p.out = arr
	return nil
}

type structBuilder struct {
	p   *producer
	obj *value.Object

	variant string
	outer   *producer
}

func (b *structBuilder) SerializeField(name string, v any) error {
	field, err := b.p.produce(v)
	if err != nil {
		err = errors.At(err, name)
		if b.outer != nil {
			err = errors.At(err, b.variant)
		}
		return err
	}
	b.obj.Set(b.p.label(name), field)
	return nil
}

func (b *structBuilder) SkipField(string) error { return nil }

func (b *structBuilder) End() error {
	if b.outer != nil {
		b.outer.out = b.outer.tagged(b.variant, b.obj.Value())
		return nil
	}
	b.p.out = b.obj.Value()
	return nil
}

type mapBuilder struct {
	p    *producer
	keys []value.Value
	vals []value.Value
}

func (b *mapBuilder) SerializeEntry(k, v any) error {
	key, err := b.p.produce(k)
	if err != nil {
		return err
	}
	val, err := b.p.produce(v)
	if err != nil {
		return errors.At(err, keySegment(key))
	}
	b.keys = append(b.keys, key)
	b.vals = append(b.vals, val)
	return nil
}

func (b *mapBuilder) End() error {
	switch b.p.opts.MapKeys {
	case MapKeysNative:
		b.p.out = b.native()
		return nil
	case MapKeysStringify:
		obj := value.NewObjectSize(len(b.keys))
		for i, k := range b.keys {
			s, err := stringifyKey(k)
			if err != nil {
				return errors.At(err, keySegment(k))
			}
			obj.Set(s, b.vals[i])
		}
		b.p.out = obj.Value()
		return nil
	default:
		if !b.allStringKeys() {
			if b.p.opts.MapKeys == MapKeysReject {
				k := b.firstNonString()
				return errors.At(errors.Unsupported("map key %s is not a string", value.Describe(k)), keySegment(k))
			}
			b.p.out = b.native()
			return nil
		}
		obj := value.NewObjectSize(len(b.keys))
		for i, k := range b.keys {
			s, _ := k.AsString()
			obj.Set(s, b.vals[i])
		}
		b.p.out = obj.Value()
		return nil
	}
}

func (b *mapBuilder) native() value.Value {
	m := value.NewMap()
	for i, k := range b.keys {
		m.Set(k, b.vals[i])
	}
	return m.Value()
}

func (b *mapBuilder) allStringKeys() bool {
	for _, k := range b.keys {
		if k.Kind() != value.KindString {
			return false
		}
	}
	return true
}

func (b *mapBuilder) firstNonString() value.Value {
	for _, k := range b.keys {
		if k.Kind() != value.KindString {
			return k
		}
	}
	return value.Undefined()
}

// stringifyKey renders a primitive key the way the host converts property
// keys to strings.
func stringifyKey(k value.Value) (string, error) {
	switch k.Kind() {
	case value.KindString:
		s, _ := k.AsString()
		return s, nil
	case value.KindNumber:
		n, _ := k.AsNumber()
		return value.FormatNumber(n), nil
	case value.KindBool:
		b, _ := k.AsBool()
		return strconv.FormatBool(b), nil
	case value.KindNull, value.KindUndefined:
		return k.Kind().String(), nil
	default:
		return "", errors.Unsupported("map key %s cannot be stringified", value.Describe(k))
	}
}

// keySegment renders a map key as a path breadcrumb.
func keySegment(k value.Value) string {
	switch k.Kind() {
	case value.KindString:
		s, _ := k.AsString()
		return s
	case value.KindNumber, value.KindBool, value.KindNull, value.KindUndefined:
		s, _ := stringifyKey(k)
		return s
	default:
		return k.String()
	}
}
