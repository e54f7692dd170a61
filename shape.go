package shapely

import "fmt"

// Kind discriminates shape variants.
type Kind int

const (
	//scalar kinds
	Bool Kind = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Char
	String
	//composite kinds
	List
	Map
	Object
	//Any materializes heterogeneous JSON as a dynamic value
	Any
)

var kindNames = map[Kind]string{
	Bool:    "bool",
	Int8:    "i8",
	Int16:   "i16",
	Int32:   "i32",
	Int64:   "i64",
	Uint8:   "u8",
	Uint16:  "u16",
	Uint32:  "u32",
	Uint64:  "u64",
	Float32: "f32",
	Float64: "f64",
	Char:    "char",
	String:  "string",
	List:    "list",
	Map:     "map",
	Object:  "object",
	Any:     "any",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsScalar returns true for non composite kinds
func (k Kind) IsScalar() bool {
	return k <= String
}

// IsInteger returns true for integer kinds
func (k Kind) IsInteger() bool {
	return k >= Int8 && k <= Uint64
}

// IsSigned returns true for signed integer kinds
func (k Kind) IsSigned() bool {
	return k >= Int8 && k <= Int64
}

// IsFloat returns true for floating point kinds
func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

type (
	// Shape is a static, language neutral description of a target data structure.
	// A shape is immutable once handed to a mapper; self referential object
	// shapes are allowed, named ones key a cycle by their Name, unnamed ones by
	// a positional back reference.
	Shape struct {
		Kind   Kind
		Name   string
		Elem   *Shape //list element or map value shape
		Key    *Shape //map key shape; String or a scalar coercible from a string key
		Fields []Field
		New    Factory //object target factory; nil defaults to map[string]interface{}
	}

	// Field describes one object field with its accessors.
	Field struct {
		Name     string
		Shape    *Shape
		Setter   Setter
		Getter   Getter
		Optional bool
	}

	// Factory allocates a fresh mutable object target.
	Factory func() interface{}

	// Setter writes a parsed value into a target previously produced by the
	// owning shape factory. Targets are pointer like, the setter mutates in place.
	Setter func(target, value interface{})

	// Getter reads a field value out of a target for emission.
	Getter func(target interface{}) interface{}
)

// Scalar returns a shape for the supplied scalar kind.
func Scalar(kind Kind) *Shape {
	if !kind.IsScalar() {
		panic(fmt.Sprintf("shapely: %v is not a scalar kind", kind))
	}
	return &Shape{Kind: kind}
}

// ListOf returns a list shape with the supplied element shape.
func ListOf(elem *Shape) *Shape {
	return &Shape{Kind: List, Elem: elem}
}

// MapOf returns a map shape; key has to be String or a string coercible scalar.
func MapOf(key, value *Shape) *Shape {
	return &Shape{Kind: Map, Key: key, Elem: value}
}

// ObjectOf returns an object shape with fields in declared order.
func ObjectOf(name string, fields ...Field) *Shape {
	return &Shape{Kind: Object, Name: name, Fields: fields}
}

// AnyShape returns the dynamic value shape.
func AnyShape() *Shape {
	return &Shape{Kind: Any}
}

// FieldByName returns a field spec by its JSON name.
func (s *Shape) FieldByName(name string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Validate checks structural constraints ahead of plan build.
func (s *Shape) Validate() error {
	return s.validate(map[*Shape]bool{})
}

func (s *Shape) validate(visited map[*Shape]bool) error {
	if s == nil {
		return NewPlanError("nil shape")
	}
	if visited[s] {
		return nil
	}
	visited[s] = true
	switch s.Kind {
	case List:
		if s.Elem == nil {
			return NewPlanError("list shape misses element shape")
		}
		return s.Elem.validate(visited)
	case Map:
		if s.Key == nil || s.Elem == nil {
			return NewPlanError("map shape misses key or value shape")
		}
		if !s.Key.Kind.IsScalar() {
			return NewPlanError("map key shape has to be a scalar, had: " + s.Key.Kind.String())
		}
		return s.Elem.validate(visited)
	case Object:
		seen := map[string]bool{}
		for i := range s.Fields {
			field := &s.Fields[i]
			if field.Name == "" {
				return NewPlanError("object " + s.Name + " has an unnamed field")
			}
			if seen[field.Name] {
				return NewPlanError("object " + s.Name + " declares field " + field.Name + " twice")
			}
			seen[field.Name] = true
			if err := field.Shape.validate(visited); err != nil {
				return err
			}
		}
		return nil
	case Any:
		return nil
	default:
		if !s.Kind.IsScalar() {
			return NewPlanError("unsupported shape kind: " + s.Kind.String())
		}
		return nil
	}
}
