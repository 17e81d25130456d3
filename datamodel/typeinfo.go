package datamodel

import (
	"reflect"
	"strings"
	"sync"

	"github.com/reoring/dynbridge/errors"
)

// ResolveFieldKey applies the package-wide rule for a struct field's
// external key. Priority: dynbridge tag name > json tag name > field name;
// "-" disables the field.
func ResolveFieldKey(sf reflect.StructField) string {
	return parseFieldTag(sf).name
}

type fieldTag struct {
	name      string
	omitEmpty bool
	required  bool
	newtype   bool
	tuple     bool
	named     bool // name came from a tag
}

func parseFieldTag(sf reflect.StructField) fieldTag {
	tag := fieldTag{name: sf.Name}
	if jt, ok := sf.Tag.Lookup("json"); ok {
		if jt == "-" {
			return fieldTag{name: "-"}
		}
		name, opts, _ := strings.Cut(jt, ",")
		if name != "" {
			tag.name, tag.named = name, true
		}
		tag.omitEmpty = hasOption(opts, "omitempty")
	}
	if dt, ok := sf.Tag.Lookup("dynbridge"); ok {
		if dt == "-" {
			return fieldTag{name: "-"}
		}
		name, opts, _ := strings.Cut(dt, ",")
		if name != "" {
			tag.name, tag.named = name, true
		}
		tag.omitEmpty = tag.omitEmpty || hasOption(opts, "omitempty")
		tag.required = hasOption(opts, "required")
		tag.newtype = hasOption(opts, "newtype")
		tag.tuple = hasOption(opts, "tuple")
	}
	return tag
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if strings.TrimSpace(o) == want {
			return true
		}
	}
	return false
}

type shape uint8

const (
	shapeStruct shape = iota
	shapeUnit
	shapeNewtype
	shapeTuple
	shapeEnum
)

type variantKind uint8

const (
	variantUnit variantKind = iota
	variantNewtype
	variantTuple
	variantStruct
)

type fieldInfo struct {
	name      string
	index     []int
	omitEmpty bool
	required  bool
	newtype   bool
	tuple     bool
	typ       reflect.Type
}

type variantInfo struct {
	name    string
	field   []int
	kind    variantKind
	payload reflect.Type
}

// typeInfo is the compiled shape of a struct type.
type typeInfo struct {
	name     string
	shape    shape
	fields   []fieldInfo
	names    []string
	byName   map[string]int
	variants []variantInfo
	tags     []string
	byTag    map[string]int
}

var typeCache sync.Map // reflect.Type -> *typeInfo

func structInfo(t reflect.Type) (*typeInfo, error) {
	if v, ok := typeCache.Load(t); ok {
		return v.(*typeInfo), nil
	}
	info, err := compileStruct(t)
	if err != nil {
		return nil, err
	}
	actual, _ := typeCache.LoadOrStore(t, info)
	return actual.(*typeInfo), nil
}

func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return "struct"
}

func compileStruct(t reflect.Type) (*typeInfo, error) {
	info := &typeInfo{name: typeName(t)}
	var isEnum, isTuple bool
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			switch sf.Type {
			case enumType:
				isEnum = true
				continue
			case tupleType:
				isTuple = true
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		tag := parseFieldTag(sf)
		if tag.name == "-" {
			continue
		}
		if sf.Anonymous && !tag.named && sf.Type.Kind() == reflect.Struct {
			if err := flattenEmbedded(sf, []int{i}, info); err != nil {
				return nil, err
			}
			continue
		}
		info.fields = append(info.fields, newFieldInfo(sf, []int{i}, tag))
	}

	switch {
	case isEnum && isTuple:
		return nil, errors.Custom("type %s embeds both datamodel.Enum and datamodel.Tuple", t)
	case isEnum:
		info.shape = shapeEnum
		if err := compileVariants(t, info); err != nil {
			return nil, err
		}
	case isTuple:
		info.shape = shapeTuple
	case len(info.fields) == 0:
		info.shape = shapeUnit
	default:
		for _, f := range info.fields {
			if !f.newtype {
				continue
			}
			if len(info.fields) != 1 {
				return nil, errors.Custom("newtype struct %s must have exactly one field", t)
			}
			info.shape = shapeNewtype
		}
	}

	info.byName = make(map[string]int, len(info.fields))
	for i, f := range info.fields {
		if _, dup := info.byName[f.name]; dup {
			return nil, errors.Custom("type %s declares field %q twice", t, f.name)
		}
		info.byName[f.name] = i
		info.names = append(info.names, f.name)
	}
	return info, nil
}

func newFieldInfo(sf reflect.StructField, index []int, tag fieldTag) fieldInfo {
	return fieldInfo{
		name:      tag.name,
		index:     index,
		omitEmpty: tag.omitEmpty,
		required:  tag.required,
		newtype:   tag.newtype,
		tuple:     tag.tuple,
		typ:       sf.Type,
	}
}

// flattenEmbedded promotes the fields of an untagged embedded struct, the
// way encoding/json does.
func flattenEmbedded(parent reflect.StructField, prefix []int, info *typeInfo) error {
	t := parent.Type
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := parseFieldTag(sf)
		if tag.name == "-" {
			continue
		}
		index := append(append([]int(nil), prefix...), i)
		if sf.Anonymous && !tag.named && sf.Type.Kind() == reflect.Struct {
			if err := flattenEmbedded(sf, index, info); err != nil {
				return err
			}
			continue
		}
		info.fields = append(info.fields, newFieldInfo(sf, index, tag))
	}
	return nil
}

func compileVariants(t reflect.Type, info *typeInfo) error {
	info.byTag = make(map[string]int, len(info.fields))
	for _, f := range info.fields {
		if f.typ.Kind() != reflect.Pointer {
			return errors.Custom("enum %s: variant field %s must be a pointer, got %s", t, f.name, f.typ)
		}
		payload := f.typ.Elem()
		v := variantInfo{name: f.name, field: f.index, payload: payload}
		switch {
		case payload.Kind() == reflect.Struct && payload.NumField() == 0:
			v.kind = variantUnit
		case f.newtype, payload == t:
			v.kind = variantNewtype
		case payload.Kind() == reflect.Array:
			v.kind = variantTuple
		case payload.Kind() == reflect.Struct:
			switch ps := payloadShape(payload); {
			case f.tuple || ps == shapeTuple:
				v.kind = variantTuple
			case ps == shapeStruct:
				v.kind = variantStruct
			default:
				v.kind = variantNewtype
			}
		default:
			v.kind = variantNewtype
		}
		if _, dup := info.byTag[v.name]; dup {
			return errors.Custom("enum %s declares variant %q twice", t, v.name)
		}
		info.byTag[v.name] = len(info.variants)
		info.variants = append(info.variants, v)
		info.tags = append(info.tags, v.name)
	}
	if len(info.variants) == 0 {
		return errors.Custom("enum %s declares no variants", t)
	}
	return nil
}

// payloadShape classifies a variant payload from its markers and tags
// without compiling it, so enums that refer to each other terminate.
func payloadShape(t reflect.Type) shape {
	exported := 0
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			switch sf.Type {
			case enumType:
				return shapeEnum
			case tupleType:
				return shapeTuple
			}
		}
		if !sf.IsExported() {
			continue
		}
		tag := parseFieldTag(sf)
		if tag.name == "-" {
			continue
		}
		if tag.newtype {
			return shapeNewtype
		}
		exported++
	}
	if exported == 0 {
		return shapeUnit
	}
	return shapeStruct
}
