package parser

import (
	"strconv"
	"unicode/utf8"

	"github.com/viant/shapely"
)

// Builder materializes parser state trees from shapes. Nodes are memoized by
// canonical key and registered before their children are built, so self
// referential shapes wire back edges into the partially built parent instead
// of recursing forever.
type Builder struct {
	opts       *shapely.Options
	memo       map[string]node
	referenced map[string]*shapely.Shape
	dynamic    *anyNode
}

// NewBuilder creates a plan builder with resolved options.
func NewBuilder(opts *shapely.Options) *Builder {
	if opts == nil {
		opts = shapely.NewOptions()
	}
	return &Builder{
		opts:       opts,
		memo:       map[string]node{},
		referenced: map[string]*shapely.Shape{},
	}
}

// Build compiles the parser plan for a shape.
func (b *Builder) Build(shape *shapely.Shape) (*Plan, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	root, err := b.node(shape)
	if err != nil {
		return nil, err
	}
	return &Plan{shape: shape, key: shape.CanonicalKey(), root: root, opts: b.opts}, nil
}

// Referenced returns named object sub shapes encountered during builds, keyed
// by canonical key, so a mapper can generate their plans transitively.
func (b *Builder) Referenced() map[string]*shapely.Shape {
	return b.referenced
}

func (b *Builder) node(shape *shapely.Shape) (node, error) {
	key := shape.CanonicalKey()
	if ret, ok := b.memo[key]; ok {
		return ret, nil
	}
	switch shape.Kind {
	case shapely.List:
		ret := &listNode{}
		b.memo[key] = ret
		elem, err := b.node(shape.Elem)
		if err != nil {
			return nil, err
		}
		ret.elem = elem
		return ret, nil
	case shapely.Map:
		coerce, stringKey, err := keyCoercionFor(shape.Key.Kind)
		if err != nil {
			return nil, err
		}
		ret := &mapNode{coerce: coerce, stringKey: stringKey, strictDup: b.opts.StrictDuplicates}
		b.memo[key] = ret
		value, err := b.node(shape.Elem)
		if err != nil {
			return nil, err
		}
		ret.value = value
		return ret, nil
	case shapely.Object:
		ret := &objectNode{
			name:          shape.Name,
			fields:        shape.Fields,
			children:      make([]node, len(shape.Fields)),
			trie:          newKeyTrie(shape.Fields),
			skip:          b.anyValue(),
			factory:       shape.New,
			strictDup:     b.opts.StrictDuplicates,
			strictUnknown: b.opts.StrictUnknown,
		}
		b.memo[key] = ret
		if shape.Name != "" {
			b.referenced[key] = shape
		}
		for i := range shape.Fields {
			child, err := b.node(shape.Fields[i].Shape)
			if err != nil {
				return nil, err
			}
			ret.children[i] = child
		}
		return ret, nil
	case shapely.Any:
		return b.anyValue(), nil
	default:
		if !shape.Kind.IsScalar() {
			return nil, shapely.NewPlanError("unsupported shape kind: " + shape.Kind.String())
		}
		ret := &scalarNode{kind: shape.Kind}
		b.memo[key] = ret
		return ret, nil
	}
}

// anyValue returns the shared dynamic value state; its object and list states
// point back at it, the cyclic equivalent of Any = object|list|scalar.
func (b *Builder) anyValue() node {
	if b.dynamic == nil {
		b.dynamic = &anyNode{}
		b.dynamic.object = &mapNode{value: b.dynamic, stringKey: true, strictDup: b.opts.StrictDuplicates}
		b.dynamic.list = &listNode{elem: b.dynamic}
	}
	return b.dynamic
}

// keyCoercionFor resolves the map key conversion; JSON object keys are always
// strings on the wire, non string scalar key shapes coerce from the key text.
func keyCoercionFor(kind shapely.Kind) (keyCoercion, bool, error) {
	switch {
	case kind == shapely.String:
		return nil, true, nil
	case kind == shapely.Char:
		return coerceCharKey, false, nil
	case kind == shapely.Bool:
		return coerceBoolKey, false, nil
	case kind.IsInteger():
		return integerKeyCoercion(kind), false, nil
	case kind.IsFloat():
		return floatKeyCoercion(kind), false, nil
	}
	return nil, false, shapely.NewPlanError("map key shape cannot coerce from string: " + kind.String())
}

func coerceCharKey(c *Context, key string, keyStart int) (interface{}, *shapely.Error) {
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || size != len(key) {
		return nil, errorf(shapely.TypeMismatch, keyStart, "char key expects a single character")
	}
	return r, nil
}

func coerceBoolKey(c *Context, key string, keyStart int) (interface{}, *shapely.Error) {
	switch key {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, errorf(shapely.TypeMismatch, keyStart, "bool key expects true or false, had %q", key)
}

func integerKeyCoercion(kind shapely.Kind) keyCoercion {
	bits := intBits[kind]
	signed := kind.IsSigned()
	return func(c *Context, key string, keyStart int) (interface{}, *shapely.Error) {
		if signed {
			value, err := strconv.ParseInt(key, 10, bits)
			if err != nil {
				return nil, errorf(shapely.TypeMismatch, keyStart, "%v key expected, had %q", kind, key)
			}
			switch kind {
			case shapely.Int8:
				return int8(value), nil
			case shapely.Int16:
				return int16(value), nil
			case shapely.Int32:
				return int32(value), nil
			}
			return value, nil
		}
		value, err := strconv.ParseUint(key, 10, bits)
		if err != nil {
			return nil, errorf(shapely.TypeMismatch, keyStart, "%v key expected, had %q", kind, key)
		}
		switch kind {
		case shapely.Uint8:
			return uint8(value), nil
		case shapely.Uint16:
			return uint16(value), nil
		case shapely.Uint32:
			return uint32(value), nil
		}
		return value, nil
	}
}

func floatKeyCoercion(kind shapely.Kind) keyCoercion {
	bits := 64
	if kind == shapely.Float32 {
		bits = 32
	}
	return func(c *Context, key string, keyStart int) (interface{}, *shapely.Error) {
		value, err := strconv.ParseFloat(key, bits)
		if err != nil {
			return nil, errorf(shapely.TypeMismatch, keyStart, "%v key expected, had %q", kind, key)
		}
		if kind == shapely.Float32 {
			return float32(value), nil
		}
		return value, nil
	}
}
