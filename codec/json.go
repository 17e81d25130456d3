package codec

import (
	"bytes"
	"math"
	"strconv"

	j "github.com/goccy/go-json"
	"github.com/valyala/fastjson"

	"github.com/reoring/dynbridge/errors"
	eng "github.com/reoring/dynbridge/internal/engine"
	"github.com/reoring/dynbridge/source/gojson"
	"github.com/reoring/dynbridge/value"
)

// JSONCodec reads and writes JSON text.
type JSONCodec struct {
	// MaxDepth bounds container nesting. Zero means DefaultMaxDepth.
	MaxDepth int
	// MaxBytes rejects larger inputs up front. Zero means unlimited.
	MaxBytes int64
	// RejectDuplicateKeys fails parsing on a repeated object key instead
	// of keeping the last value.
	RejectDuplicateKeys bool
	// Indent, when set, pretty-prints output with this per-level indent.
	Indent string
}

func (JSONCodec) Name() string { return "json" }

// Unmarshal parses exactly one RFC 8259 document. Objects keep key order
// and numbers become float64.
func (c JSONCodec) Unmarshal(data []byte) (value.Value, error) {
	if c.MaxBytes > 0 && int64(len(data)) > c.MaxBytes {
		return value.Value{}, errors.New(errors.KindSyntax).Phase(errors.PhaseParse).
			Message("input of %d bytes exceeds limit of %d", len(data), c.MaxBytes).Build()
	}
	dup := eng.DupLastWins
	if c.RejectDuplicateKeys {
		dup = eng.DupError
	}
	src := eng.WrapWithEnforcement(gojson.NewBytes(data), eng.EnforceOptions{
		OnDuplicate: dup,
		MaxDepth:    depthOrDefault(c.MaxDepth),
	})
	v, err := eng.DecodeValue(src)
	if err != nil {
		return value.Value{}, err
	}
	// The tokenizer tolerates leading zeros, bare fractions and misplaced
	// separators; RFC 8259 does not.
	if err := fastjson.ValidateBytes(data); err != nil {
		return value.Value{}, errors.Syntax(err)
	}
	return v, nil
}

// Marshal writes v the way the host's JSON encoder does: undefined object
// members are dropped, undefined array elements and non-finite numbers are
// written as null, sets become arrays and maps with only string keys become
// objects. A top-level undefined and maps with other keys are unsupported.
func (c JSONCodec) Marshal(v value.Value) ([]byte, error) {
	if v.IsUndefined() {
		return nil, errors.New(errors.KindUnsupported).Phase(errors.PhaseFormat).
			Message("undefined has no JSON representation").Build()
	}
	w := jsonWriter{maxDepth: depthOrDefault(c.MaxDepth)}
	if err := w.write(v, 0); err != nil {
		return nil, errors.WithPhase(err, errors.PhaseFormat)
	}
	if c.Indent == "" {
		return w.buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := j.Indent(&out, w.buf.Bytes(), "", c.Indent); err != nil {
		return nil, errors.WithPhase(err, errors.PhaseFormat)
	}
	return out.Bytes(), nil
}

type jsonWriter struct {
	buf      bytes.Buffer
	maxDepth int
}

func (w *jsonWriter) write(v value.Value, depth int) error {
	switch v.Kind() {
	case value.KindUndefined, value.KindNull:
		w.buf.WriteString("null")
	case value.KindBool:
		b, _ := v.AsBool()
		w.buf.WriteString(strconv.FormatBool(b))
	case value.KindNumber:
		n, _ := v.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			w.buf.WriteString("null")
		} else {
			w.buf.WriteString(value.FormatNumber(n))
		}
	case value.KindString:
		s, _ := v.AsString()
		return w.writeString(s)
	case value.KindArray:
		items, _ := v.AsArray()
		return w.writeArray(items, depth)
	case value.KindSet:
		set, _ := v.AsSet()
		return w.writeArray(set.Values(), depth)
	case value.KindObject:
		if depth >= w.maxDepth {
			return errors.DepthExceeded(w.maxDepth)
		}
		obj, _ := v.AsObject()
		w.buf.WriteByte('{')
		first := true
		var err error
		obj.Range(func(k string, m value.Value) bool {
			if m.IsUndefined() {
				return true
			}
			err = w.writeMember(k, m, depth, &first)
			return err == nil
		})
		if err != nil {
			return err
		}
		w.buf.WriteByte('}')
	case value.KindMap:
		if depth >= w.maxDepth {
			return errors.DepthExceeded(w.maxDepth)
		}
		m, _ := v.AsMap()
		w.buf.WriteByte('{')
		first := true
		var err error
		m.Range(func(k, mv value.Value) bool {
			key, ok := k.AsString()
			if !ok {
				err = errors.Unsupported("map key %s cannot be written as JSON", value.Describe(k))
				return false
			}
			if mv.IsUndefined() {
				return true
			}
			err = w.writeMember(key, mv, depth, &first)
			return err == nil
		})
		if err != nil {
			return err
		}
		w.buf.WriteByte('}')
	}
	return nil
}

func (w *jsonWriter) writeString(s string) error {
	b, err := j.MarshalNoEscape(s)
	if err != nil {
		return errors.From(err)
	}
	w.buf.Write(b)
	return nil
}

func (w *jsonWriter) writeMember(k string, v value.Value, depth int, first *bool) error {
	if !*first {
		w.buf.WriteByte(',')
	}
	*first = false
	if err := w.writeString(k); err != nil {
		return err
	}
	w.buf.WriteByte(':')
	if err := w.write(v, depth+1); err != nil {
		return errors.At(err, k)
	}
	return nil
}

func (w *jsonWriter) writeArray(items []value.Value, depth int) error {
	if depth >= w.maxDepth {
		return errors.DepthExceeded(w.maxDepth)
	}
	w.buf.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if err := w.write(it, depth+1); err != nil {
			return errors.At(err, strconv.Itoa(i))
		}
	}
	w.buf.WriteByte(']')
	return nil
}
