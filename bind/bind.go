// Package bind derives shapes from Go types: struct fields become object
// fields with xunsafe backed accessors bound at derivation time, so the
// steady state parse and write paths run without reflective dispatch.
package bind

import (
	"reflect"
	"strings"

	"github.com/viant/shapely"
	"github.com/viant/shapely/internal/lru"
	"github.com/viant/tagly/format/text"
)

// Options control shape derivation.
type Options struct {
	caseFormat text.CaseFormat
	params     []*shapely.Shape
}

// Option mutates derivation options.
type Option func(o *Options)

// WithCaseFormat derives JSON key names from Go field names using the
// supplied case format; an explicit json tag name still wins.
func WithCaseFormat(caseFormat text.CaseFormat) Option {
	return func(o *Options) {
		o.caseFormat = caseFormat
	}
}

// WithParams substitutes interface{} slots with the supplied shapes in
// declaration order, the way a generic type descriptor defeats erasure; slots
// beyond the supplied params derive as Any.
func WithParams(params ...*shapely.Shape) Option {
	return func(o *Options) {
		o.params = params
	}
}

type cacheKey struct {
	rType   reflect.Type
	variant string
}

var shapeCache = lru.New[cacheKey, *shapely.Shape](512)

// TypeOf derives the shape of a value's dynamic type.
func TypeOf(value interface{}, opts ...Option) (*shapely.Shape, error) {
	if value == nil {
		return nil, shapely.NewPlanError("cannot derive shape of nil")
	}
	return ShapeOf(reflect.TypeOf(value), opts...)
}

// ShapeOf derives the shape of a Go type, caching the result per type and
// option variant.
func ShapeOf(rType reflect.Type, opts ...Option) (*shapely.Shape, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	key := cacheKey{rType: rType, variant: variantOf(options)}
	if ret, ok := shapeCache.Get(key); ok {
		return ret, nil
	}
	b := &binder{opts: options, memo: map[reflect.Type]*shapely.Shape{}}
	ret, err := b.shape(rType)
	if err != nil {
		return nil, err
	}
	shapeCache.Set(key, ret)
	return ret, nil
}

func variantOf(options *Options) string {
	if len(options.params) == 0 {
		return string(options.caseFormat)
	}
	parts := make([]string, 0, 1+len(options.params))
	parts = append(parts, string(options.caseFormat))
	for _, param := range options.params {
		parts = append(parts, param.CanonicalKey())
	}
	return strings.Join(parts, "|")
}

type binder struct {
	opts    *Options
	memo    map[reflect.Type]*shapely.Shape
	paramAt int
}

var scalarKinds = map[reflect.Kind]shapely.Kind{
	reflect.Bool:    shapely.Bool,
	reflect.Int:     shapely.Int64,
	reflect.Int8:    shapely.Int8,
	reflect.Int16:   shapely.Int16,
	reflect.Int32:   shapely.Int32,
	reflect.Int64:   shapely.Int64,
	reflect.Uint:    shapely.Uint64,
	reflect.Uint8:   shapely.Uint8,
	reflect.Uint16:  shapely.Uint16,
	reflect.Uint32:  shapely.Uint32,
	reflect.Uint64:  shapely.Uint64,
	reflect.Float32: shapely.Float32,
	reflect.Float64: shapely.Float64,
	reflect.String:  shapely.String,
}

func (b *binder) shape(rType reflect.Type) (*shapely.Shape, error) {
	if kind, ok := scalarKinds[rType.Kind()]; ok {
		return shapely.Scalar(kind), nil
	}
	switch rType.Kind() {
	case reflect.Ptr:
		return b.shape(rType.Elem())
	case reflect.Interface:
		if b.paramAt < len(b.opts.params) {
			ret := b.opts.params[b.paramAt]
			b.paramAt++
			return ret, nil
		}
		return shapely.AnyShape(), nil
	case reflect.Slice, reflect.Array:
		elem, err := b.shape(rType.Elem())
		if err != nil {
			return nil, err
		}
		return shapely.ListOf(elem), nil
	case reflect.Map:
		key, err := b.shape(rType.Key())
		if err != nil {
			return nil, err
		}
		if !key.Kind.IsScalar() {
			return nil, shapely.NewPlanError("unsupported map key type: " + rType.Key().String())
		}
		value, err := b.shape(rType.Elem())
		if err != nil {
			return nil, err
		}
		return shapely.MapOf(key, value), nil
	case reflect.Struct:
		return b.structShape(rType)
	}
	return nil, shapely.NewPlanError("unsupported type: " + rType.String())
}

func (b *binder) structShape(rType reflect.Type) (*shapely.Shape, error) {
	if ret, ok := b.memo[rType]; ok {
		return ret, nil
	}
	ret := &shapely.Shape{Kind: shapely.Object, Name: rType.Name()}
	//registered ahead of field descent so self referential structs reuse it
	b.memo[rType] = ret
	ret.New = factoryOf(rType)
	fields := make([]shapely.Field, 0, rType.NumField())
	for i := 0; i < rType.NumField(); i++ {
		field := rType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := parseJSONTag(field.Tag.Get("json"))
		if tag.ignore {
			continue
		}
		fieldShape, err := b.shape(field.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, shapely.Field{
			Name:     b.fieldName(field.Name, tag),
			Shape:    fieldShape,
			Setter:   newSetter(field),
			Getter:   newGetter(field),
			Optional: tag.omitEmpty || field.Type.Kind() == reflect.Ptr,
		})
	}
	ret.Fields = fields
	return ret, nil
}

func (b *binder) fieldName(fieldName string, tag jsonTag) string {
	if tag.name != "" {
		return tag.name
	}
	if b.opts.caseFormat == "" {
		return fieldName
	}
	src := text.DetectCaseFormat(fieldName)
	if !src.IsDefined() {
		src = text.CaseFormatUpperCamel
	}
	return src.Format(fieldName, b.opts.caseFormat)
}

func factoryOf(rType reflect.Type) shapely.Factory {
	return func() interface{} {
		return reflect.New(rType).Interface()
	}
}
