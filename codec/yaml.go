package codec

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

const setTag = "!!set"

// YAMLCodec reads and writes a single YAML document.
//
// Mappings keep their order. A mapping whose keys are all strings becomes
// an object; any other mapping becomes a native Map. Aliases are expanded.
// Native Maps are written with their keys as-is and Sets as !!set mappings.
type YAMLCodec struct {
	MaxDepth int
	// RejectDuplicateKeys fails on a repeated mapping key instead of
	// keeping the last value.
	RejectDuplicateKeys bool
}

func (YAMLCodec) Name() string { return "yaml" }

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// Unmarshal reads a single YAML document. Mappings with only string keys
// become objects; any other key makes the mapping a native map.
func (c YAMLCodec) Unmarshal(data []byte) (value.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return value.Value{}, errors.Syntax(err)
	}
	r := &yamlReader{maxDepth: depthOrDefault(c.MaxDepth), strict: c.RejectDuplicateKeys}
	v, err := r.node(&root, 0)
	if err != nil {
		return value.Value{}, errors.WithPhase(err, errors.PhaseParse)
	}
	return v, nil
}

// maxExpandedNodes caps alias expansion so a small document cannot expand
// into an enormous value.
const maxExpandedNodes = 1 << 22

type yamlReader struct {
	maxDepth int
	strict   bool
	nodes    int
}

func (r *yamlReader) node(n *yaml.Node, depth int) (value.Value, error) {
	r.nodes++
	if r.nodes > maxExpandedNodes {
		return value.Value{}, errors.Unsupported("document expands to more than %d nodes", maxExpandedNodes)
	}
	switch n.Kind {
	case 0:
		return value.Null(), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null(), nil
		}
		return r.node(n.Content[0], depth)
	case yaml.AliasNode:
		return r.node(n.Alias, depth)
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.SequenceNode:
		if depth >= r.maxDepth {
			return value.Value{}, errors.DepthExceeded(r.maxDepth)
		}
		items := make([]value.Value, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := r.node(c, depth+1)
			if err != nil {
				return value.Value{}, errors.At(err, strconv.Itoa(i))
			}
			items = append(items, v)
		}
		return value.Array(items...), nil
	case yaml.MappingNode:
		if depth >= r.maxDepth {
			return value.Value{}, errors.DepthExceeded(r.maxDepth)
		}
		if n.Tag == setTag {
			return r.set(n, depth)
		}
		return r.mapping(n, depth)
	default:
		return value.Value{}, errors.Syntax(fmt.Errorf("unexpected YAML node kind %d", n.Kind))
	}
}

func (r *yamlReader) set(n *yaml.Node, depth int) (value.Value, error) {
	s := value.NewSet()
	for i := 0; i < len(n.Content); i += 2 {
		k, err := r.node(n.Content[i], depth+1)
		if err != nil {
			return value.Value{}, err
		}
		s.Add(k)
	}
	return s.Value(), nil
}

func (r *yamlReader) mapping(n *yaml.Node, depth int) (value.Value, error) {
	keys := make([]value.Value, 0, len(n.Content)/2)
	vals := make([]value.Value, 0, len(n.Content)/2)
	first := make(map[string][2]int, len(n.Content)/2)
	allStrings := true
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		k, err := r.node(kn, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		seg := k.String()
		if s, ok := k.AsString(); ok {
			seg = s
		} else {
			allStrings = false
		}
		if r.strict {
			if pos, dup := first[seg]; dup {
				return value.Value{}, errors.Syntax(&DuplicateKeyError{
					Key: seg, FirstLine: pos[0], FirstCol: pos[1], Line: kn.Line, Col: kn.Column,
				})
			}
			first[seg] = [2]int{kn.Line, kn.Column}
		}
		v, err := r.node(vn, depth+1)
		if err != nil {
			return value.Value{}, errors.At(err, seg)
		}
		keys = append(keys, k)
		vals = append(vals, v)
	}
	if allStrings {
		obj := value.NewObjectSize(len(keys))
		for i, k := range keys {
			s, _ := k.AsString()
			obj.Set(s, vals[i])
		}
		return obj.Value(), nil
	}
	m := value.NewMap()
	for i, k := range keys {
		m.Set(k, vals[i])
	}
	return m.Value(), nil
}

func scalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Value{}, errors.Syntax(err)
		}
		return value.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Value{}, errors.Syntax(err)
		}
		return value.Number(f), nil
	default:
		return value.String(n.Value), nil
	}
}

// Marshal writes v as block-style YAML.
func (c YAMLCodec) Marshal(v value.Value) ([]byte, error) {
	if v.IsUndefined() {
		return nil, errors.New(errors.KindUnsupported).Phase(errors.PhaseFormat).
			Message("undefined has no YAML representation").Build()
	}
	w := yamlWriter{maxDepth: depthOrDefault(c.MaxDepth)}
	n, err := w.node(v, 0)
	if err != nil {
		return nil, errors.WithPhase(err, errors.PhaseFormat)
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return nil, errors.New(errors.KindCustom).Phase(errors.PhaseFormat).Cause(err).
			Message("yaml: %v", err).Build()
	}
	return out, nil
}

type yamlWriter struct {
	maxDepth int
}

func scalarNode(tag, text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
}

func (w yamlWriter) node(v value.Value, depth int) (*yaml.Node, error) {
	switch v.Kind() {
	case value.KindUndefined, value.KindNull:
		return scalarNode("!!null", "null"), nil
	case value.KindBool:
		b, _ := v.AsBool()
		return scalarNode("!!bool", strconv.FormatBool(b)), nil
	case value.KindNumber:
		n, _ := v.AsNumber()
		return numberNode(n), nil
	case value.KindString:
		s, _ := v.AsString()
		return scalarNode("!!str", s), nil
	}

	if depth >= w.maxDepth {
		return nil, errors.DepthExceeded(w.maxDepth)
	}
	switch v.Kind() {
	case value.KindArray:
		items, _ := v.AsArray()
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, it := range items {
			c, err := w.node(it, depth+1)
			if err != nil {
				return nil, errors.At(err, strconv.Itoa(i))
			}
			seq.Content = append(seq.Content, c)
		}
		return seq, nil
	case value.KindSet:
		set, _ := v.AsSet()
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: setTag}
		for _, it := range set.Values() {
			k, err := w.node(it, depth+1)
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, k, scalarNode("!!null", ""))
		}
		return m, nil
	case value.KindObject:
		obj, _ := v.AsObject()
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		obj.Range(func(k string, it value.Value) bool {
			if it.IsUndefined() {
				return true
			}
			var c *yaml.Node
			if c, err = w.node(it, depth+1); err != nil {
				err = errors.At(err, k)
				return false
			}
			m.Content = append(m.Content, scalarNode("!!str", k), c)
			return true
		})
		return m, err
	default:
		nm, _ := v.AsMap()
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		nm.Range(func(k, it value.Value) bool {
			var kn, c *yaml.Node
			if kn, err = w.node(k, depth+1); err != nil {
				return false
			}
			if c, err = w.node(it, depth+1); err != nil {
				return false
			}
			m.Content = append(m.Content, kn, c)
			return true
		})
		return m, err
	}
}

func numberNode(n float64) *yaml.Node {
	switch {
	case math.IsNaN(n):
		return scalarNode("!!float", ".nan")
	case math.IsInf(n, 1):
		return scalarNode("!!float", ".inf")
	case math.IsInf(n, -1):
		return scalarNode("!!float", "-.inf")
	case n == math.Trunc(n) && math.Abs(n) < 1<<53:
		return scalarNode("!!int", strconv.FormatInt(int64(n), 10))
	default:
		return scalarNode("!!float", strconv.FormatFloat(n, 'g', -1, 64))
	}
}
