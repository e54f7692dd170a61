package writer

import "github.com/viant/shapely"

// Builder materializes writer emission plans. Like the parser builder it
// memoizes nodes by canonical key and registers them before descending so
// self referential shapes wire back edges.
type Builder struct {
	opts       *shapely.Options
	memo       map[string]*emitNode
	referenced map[string]*shapely.Shape
	dynamic    *emitNode
}

// NewBuilder creates a writer plan builder with resolved options.
func NewBuilder(opts *shapely.Options) *Builder {
	if opts == nil {
		opts = shapely.NewOptions()
	}
	return &Builder{
		opts:       opts,
		memo:       map[string]*emitNode{},
		referenced: map[string]*shapely.Shape{},
	}
}

// Build compiles the writer plan for a shape.
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

// Referenced returns named object sub shapes encountered during builds.
func (b *Builder) Referenced() map[string]*shapely.Shape {
	return b.referenced
}

func (b *Builder) node(shape *shapely.Shape) (*emitNode, error) {
	key := shape.CanonicalKey()
	if ret, ok := b.memo[key]; ok {
		return ret, nil
	}
	switch shape.Kind {
	case shapely.List:
		ret := &emitNode{kind: emitList}
		b.memo[key] = ret
		elem, err := b.node(shape.Elem)
		if err != nil {
			return nil, err
		}
		ret.elem = elem
		return ret, nil
	case shapely.Map:
		ret := &emitNode{kind: emitMap, keyFmt: shape.Key.Kind}
		b.memo[key] = ret
		elem, err := b.node(shape.Elem)
		if err != nil {
			return nil, err
		}
		ret.elem = elem
		return ret, nil
	case shapely.Object:
		ret := &emitNode{kind: emitObject, name: shape.Name}
		b.memo[key] = ret
		if shape.Name != "" {
			b.referenced[key] = shape
		}
		fields := make([]fieldEmit, len(shape.Fields))
		for i := range shape.Fields {
			field := &shape.Fields[i]
			child, err := b.node(field.Shape)
			if err != nil {
				return nil, err
			}
			keyLit := appendEscaped(nil, field.Name)
			keyLit = append(keyLit, ':')
			fields[i] = fieldEmit{
				name:     field.Name,
				keyLit:   keyLit,
				getter:   field.Getter,
				child:    child,
				optional: field.Optional,
			}
		}
		ret.fields = fields
		return ret, nil
	case shapely.Any:
		return b.anyValue(), nil
	default:
		if !shape.Kind.IsScalar() {
			return nil, shapely.NewPlanError("unsupported shape kind: " + shape.Kind.String())
		}
		ret := &emitNode{kind: emitScalar, scalar: shape.Kind}
		b.memo[key] = ret
		return ret, nil
	}
}

// anyValue returns the shared dynamic emit node; its element plan is itself.
func (b *Builder) anyValue() *emitNode {
	if b.dynamic == nil {
		b.dynamic = &emitNode{kind: emitAny, keyFmt: shapely.String}
		b.dynamic.elem = b.dynamic
	}
	return b.dynamic
}
