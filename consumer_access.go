package dynbridge

import (
	"strconv"

	"github.com/reoring/dynbridge/datamodel"
	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

func itoa(i int) string { return strconv.Itoa(i) }

// seqAccess walks array (or set) elements, tagging failures with the index.
type seqAccess struct {
	c     *consumer
	items []value.Value
	i     int
}

func (a *seqAccess) NextElement(seed datamodel.Seed) (bool, error) {
	if a.i >= len(a.items) {
		return false, nil
	}
	i := a.i
	a.i++
	if err := seed(a.c.child(a.items[i])); err != nil {
		return false, errors.At(err, itoa(i))
	}
	return true, nil
}

func (a *seqAccess) SizeHint() int { return len(a.items) - a.i }

// objectAccess walks every entry of a plain object in insertion order.
type objectAccess struct {
	c    *consumer
	keys []string
	obj  *value.Object
	i    int
	key  string
}

func newObjectAccess(c *consumer, obj *value.Object) *objectAccess {
	return &objectAccess{c: c, keys: obj.Keys(), obj: obj}
}

func (a *objectAccess) NextKey(seed datamodel.Seed) (bool, error) {
	if a.i >= len(a.keys) {
		return false, nil
	}
	a.key = a.keys[a.i]
	a.i++
	if err := seed(&keyConsumer{consumer: a.c.child(value.String(a.key))}); err != nil {
		return false, errors.At(err, a.key)
	}
	return true, nil
}

func (a *objectAccess) NextValue(seed datamodel.Seed) error {
	v, _ := a.obj.Get(a.key)
	if err := seed(a.c.child(v)); err != nil {
		return errors.At(err, a.key)
	}
	return nil
}

func (a *objectAccess) SizeHint() int { return len(a.keys) - a.i }

// nativeMapAccess walks a native Map. Keys are handed over with their own
// kind, so composite keys reach composite key targets intact.
type nativeMapAccess struct {
	c    *consumer
	keys []value.Value
	vals []value.Value
	i    int
}

func newNativeMapAccess(c *consumer, m *value.Map) *nativeMapAccess {
	a := &nativeMapAccess{c: c, keys: make([]value.Value, 0, m.Len()), vals: make([]value.Value, 0, m.Len())}
	m.Range(func(k, v value.Value) bool {
		a.keys = append(a.keys, k)
		a.vals = append(a.vals, v)
		return true
	})
	return a
}

func (a *nativeMapAccess) NextKey(seed datamodel.Seed) (bool, error) {
	if a.i >= len(a.keys) {
		return false, nil
	}
	k := a.keys[a.i]
	a.i++
	var d datamodel.Deserializer = a.c.child(k)
	if k.Kind() == value.KindString {
		d = &keyConsumer{consumer: a.c.child(k)}
	}
	if err := seed(d); err != nil {
		return false, errors.At(err, keySegment(k))
	}
	return true, nil
}

func (a *nativeMapAccess) NextValue(seed datamodel.Seed) error {
	i := a.i - 1
	if err := seed(a.c.child(a.vals[i])); err != nil {
		return errors.At(err, keySegment(a.keys[i]))
	}
	return nil
}

func (a *nativeMapAccess) SizeHint() int { return len(a.keys) - a.i }

// structAccess yields only the declared fields that are present. A member
// holding undefined counts as absent.
type structAccess struct {
	c      *consumer
	fields []string
	lookup func(string) (value.Value, bool)
	i      int
	name   string
	val    value.Value
}

func (a *structAccess) NextKey(seed datamodel.Seed) (bool, error) {
	for a.i < len(a.fields) {
		name := a.fields[a.i]
		a.i++
		v, ok := a.lookup(name)
		if !ok || v.IsUndefined() {
			continue
		}
		a.name, a.val = name, v
		if err := seed(a.c.child(a.c.opts.Labels.Intern(name))); err != nil {
			return false, errors.At(err, name)
		}
		return true, nil
	}
	return false, nil
}

func (a *structAccess) NextValue(seed datamodel.Seed) error {
	if err := seed(a.c.child(a.val)); err != nil {
		return errors.At(err, a.name)
	}
	return nil
}

func (a *structAccess) SizeHint() int { return -1 }

type enumAccess struct {
	c       *consumer
	tag     string
	payload value.Value
	bare    bool // encoded as a bare tag string
}

func (a *enumAccess) Variant() (string, datamodel.VariantAccess, error) {
	return a.tag, a, nil
}

func (a *enumAccess) UnitVariant() error {
	if a.bare || a.payload.IsNullish() {
		return nil
	}
	return errors.At(errors.TypeMismatch("unit variant", value.Describe(a.payload)), a.tag)
}

func (a *enumAccess) NewtypeVariant(seed datamodel.Seed) error {
	if a.bare {
		return errors.TypeMismatch("newtype variant", "unit variant "+strconv.Quote(a.tag))
	}
	if err := seed(a.c.child(a.payload)); err != nil {
		return errors.At(err, a.tag)
	}
	return nil
}

func (a *enumAccess) TupleVariant(n int, vis datamodel.Visitor) error {
	if a.bare {
		return errors.TypeMismatch(vis.Expecting(), "unit variant "+strconv.Quote(a.tag))
	}
	if err := a.c.child(a.payload).DeserializeTuple(n, vis); err != nil {
		return errors.At(err, a.tag)
	}
	return nil
}

func (a *enumAccess) StructVariant(fields []string, vis datamodel.Visitor) error {
	if a.bare {
		return errors.TypeMismatch(vis.Expecting(), "unit variant "+strconv.Quote(a.tag))
	}
	if err := a.c.child(a.payload).DeserializeStruct("", fields, vis); err != nil {
		return errors.At(err, a.tag)
	}
	return nil
}

// keyConsumer reads an object key. Besides strings it parses the key for
// bool and numeric targets, so maps written with MapKeysStringify (or by the
// host's own JSON encoder) read back into map[int]V and friends.
type keyConsumer struct {
	*consumer
}

func (k *keyConsumer) key() string {
	s, _ := k.v.AsString()
	return s
}

// asNumber re-reads the key as a number consumer, or reports a mismatch.
func (k *keyConsumer) asNumber(vis datamodel.Visitor) (*consumer, error) {
	n, err := strconv.ParseFloat(k.key(), 64)
	if err != nil {
		return nil, k.mismatch(vis)
	}
	return &consumer{opts: k.opts, depth: k.depth, v: value.Number(n)}, nil
}

func (k *keyConsumer) DeserializeInt(bits int, vis datamodel.Visitor) error {
	c, err := k.asNumber(vis)
	if err != nil {
		return err
	}
	return c.DeserializeInt(bits, vis)
}

func (k *keyConsumer) DeserializeUint(bits int, vis datamodel.Visitor) error {
	c, err := k.asNumber(vis)
	if err != nil {
		return err
	}
	return c.DeserializeUint(bits, vis)
}

func (k *keyConsumer) DeserializeFloat(bits int, vis datamodel.Visitor) error {
	c, err := k.asNumber(vis)
	if err != nil {
		return err
	}
	return c.DeserializeFloat(bits, vis)
}

func (k *keyConsumer) DeserializeBool(vis datamodel.Visitor) error {
	switch k.key() {
	case "true":
		return vis.VisitBool(true)
	case "false":
		return vis.VisitBool(false)
	default:
		return k.mismatch(vis)
	}
}

func (k *keyConsumer) DeserializeOption(vis datamodel.Visitor) error {
	return vis.VisitSome(k)
}

func (k *keyConsumer) DeserializeNewtypeStruct(_ string, vis datamodel.Visitor) error {
	return vis.VisitNewtypeStruct(k)
}
