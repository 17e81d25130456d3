package dynbridge

import (
	"github.com/reoring/dynbridge/codec"
	"github.com/reoring/dynbridge/datamodel"
	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

// ToValue converts a typed Go value into a dynamic value. See package
// datamodel for how Go types map onto shapes.
func ToValue(x any, opts ...Options) (value.Value, error) {
	o := resolveOptions(opts)
	return o.toValue(x)
}

func (o *Options) toValue(x any) (value.Value, error) {
	p := newProducer(o)
	if err := datamodel.Serialize(x, p); err != nil {
		return value.Value{}, o.fail(errors.PhaseProduce, err)
	}
	return p.out, nil
}

// FromValue converts a dynamic value into a T. On failure the zero T is
// returned; no partially built value escapes.
func FromValue[T any](v value.Value, opts ...Options) (T, error) {
	var out T
	if err := Decode(v, &out, opts...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Decode converts a dynamic value into the value ptr points to. On failure
// *ptr may have been partly written; use FromValue to avoid that.
func Decode(v value.Value, ptr any, opts ...Options) error {
	o := resolveOptions(opts)
	return o.decode(v, ptr)
}

func (o *Options) decode(v value.Value, ptr any) error {
	if err := datamodel.Deserialize(newConsumer(o, v), ptr); err != nil {
		return o.fail(errors.PhaseConsume, err)
	}
	return nil
}

// ToText converts x to a dynamic value and encodes it with Options.Codec,
// JSON by default.
func ToText(x any, opts ...Options) (string, error) {
	o := resolveOptions(opts)
	return o.toText(x)
}

func (o *Options) toText(x any) (string, error) {
	v, err := o.toValue(x)
	if err != nil {
		return "", err
	}
	b, err := o.Codec.Marshal(v)
	if err != nil {
		return "", o.fail(errors.PhaseFormat, err)
	}
	return string(b), nil
}

// FromText parses s with Options.Codec, JSON by default, and converts the
// result into a T.
func FromText[T any](s string, opts ...Options) (T, error) {
	var out T
	o := resolveOptions(opts)
	if err := o.decodeText(s, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (o *Options) decodeText(s string, ptr any) error {
	v, err := o.Codec.Unmarshal([]byte(s))
	if err != nil {
		return o.fail(errors.PhaseParse, err)
	}
	return o.decode(v, ptr)
}

// ToYAML is ToText with the YAML codec. A YAMLCodec given in opts is used
// as is.
func ToYAML(x any, opts ...Options) (string, error) {
	o := withYAML(resolveOptions(opts))
	return o.toText(x)
}

// FromYAML is FromText with the YAML codec. A YAMLCodec given in opts is
// used as is.
func FromYAML[T any](s string, opts ...Options) (T, error) {
	return FromText[T](s, withYAML(resolveOptions(opts)))
}

func withYAML(o Options) Options {
	if _, ok := o.Codec.(codec.YAMLCodec); !ok {
		o.Codec = codec.YAMLCodec{MaxDepth: o.MaxDepth}
	}
	return o
}

// ToCanonicalText is ToText with RFC 8785 canonical JSON, suitable for
// hashing and signing.
func ToCanonicalText(x any, opts ...Options) (string, error) {
	o := resolveOptions(opts)
	if _, ok := o.Codec.(codec.CanonicalCodec); !ok {
		o.Codec = codec.CanonicalCodec{MaxDepth: o.MaxDepth}
	}
	return o.toText(x)
}

// Bridge holds a fixed set of options. It is safe for concurrent use.
type Bridge struct {
	opts Options
}

// New returns a Bridge using the last of opts.
func New(opts ...Options) *Bridge {
	return &Bridge{opts: resolveOptions(opts)}
}

// Options returns the resolved options of b.
func (b *Bridge) Options() Options { return b.opts }

// ToValue converts x to a dynamic value using b's options.
func (b *Bridge) ToValue(x any) (value.Value, error) {
	o := b.opts
	return o.toValue(x)
}

// Decode converts v into the value ptr points to.
func (b *Bridge) Decode(v value.Value, ptr any) error {
	o := b.opts
	return o.decode(v, ptr)
}

// ToText converts x to text with b's codec.
func (b *Bridge) ToText(x any) (string, error) {
	o := b.opts
	return o.toText(x)
}

// DecodeText parses s with the bridge's codec into ptr.
func (b *Bridge) DecodeText(s string, ptr any) error {
	o := b.opts
	return o.decodeText(s, ptr)
}

// DecodeAs converts v into a T using b's options.
func DecodeAs[T any](b *Bridge, v value.Value) (T, error) {
	return FromValue[T](v, b.opts)
}
