package writer

import (
	"io"
	"reflect"
	"sort"
	"strconv"

	"github.com/viant/shapely"
)

type nodeKind int

const (
	emitScalar nodeKind = iota
	emitObject
	emitList
	emitMap
	emitAny
)

// emitNode is one writer plan node mirroring the shape tree.
type emitNode struct {
	kind   nodeKind
	scalar shapely.Kind
	name   string
	fields []fieldEmit //object
	keyFmt shapely.Kind
	elem   *emitNode //list element or map value
}

// fieldEmit carries the pre escaped key literal (quoted name plus colon), the
// opaque getter and the child plan for one object field.
type fieldEmit struct {
	name     string
	keyLit   []byte
	getter   shapely.Getter
	child    *emitNode
	optional bool
}

// Plan is the compiled writer for one shape; immutable after build.
type Plan struct {
	shape *shapely.Shape
	key   string
	root  *emitNode
	opts  *shapely.Options
}

// Key returns the canonical type key the plan was built for.
func (p *Plan) Key() string {
	return p.key
}

// Shape returns the shape the plan was built for.
func (p *Plan) Shape() *shapely.Shape {
	return p.shape
}

// Emit writes the value into the supplied sink without flushing it.
func (p *Plan) Emit(sink Sink, value interface{}) error {
	e := &emitter{sink: sink, emitNull: p.opts.EmitNullForAbsent}
	return p.root.emit(e, value)
}

// WriteBytes renders the value into a fresh buffer.
func (p *Plan) WriteBytes(value interface{}) ([]byte, error) {
	sink := NewBytes(p.opts.InitialOutputCapacity)
	if err := p.Emit(sink, value); err != nil {
		return nil, err
	}
	return sink.Bytes(), nil
}

// WriteString renders the value as a UTF-8 string.
func (p *Plan) WriteString(value interface{}) (string, error) {
	data, err := p.WriteBytes(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteTo renders the value through a buffered stream sink and flushes it.
func (p *Plan) WriteTo(value interface{}, out io.Writer) error {
	sink := NewStream(out, p.opts.StreamChunkSize)
	if err := p.Emit(sink, value); err != nil {
		return err
	}
	return sink.Flush()
}

type emitter struct {
	sink     Sink
	scratch  []byte
	emitNull bool
}

var nullLiteral = []byte("null")
var trueLiteral = []byte("true")
var falseLiteral = []byte("false")

func (e *emitter) write(p []byte) error {
	_, err := e.sink.Write(p)
	return err
}

func mismatch(expected string, value interface{}) error {
	return shapely.NewError(shapely.TypeMismatch, -1, "cannot emit "+reflect.TypeOf(value).String()+" as "+expected)
}

func (n *emitNode) emit(e *emitter, value interface{}) error {
	if value == nil {
		return e.write(nullLiteral)
	}
	switch n.kind {
	case emitScalar:
		return n.emitScalarValue(e, value)
	case emitObject:
		return n.emitObjectValue(e, value)
	case emitList:
		return n.emitListValue(e, value)
	case emitMap:
		return n.emitMapValue(e, value)
	default:
		return n.emitAnyValue(e, value)
	}
}

func (n *emitNode) emitScalarValue(e *emitter, value interface{}) error {
	switch {
	case n.scalar == shapely.Bool:
		flag, ok := value.(bool)
		if !ok {
			return mismatch("bool", value)
		}
		if flag {
			return e.write(trueLiteral)
		}
		return e.write(falseLiteral)
	case n.scalar == shapely.String:
		text, ok := value.(string)
		if !ok {
			return mismatch("string", value)
		}
		e.scratch = appendEscaped(e.scratch[:0], text)
		return e.write(e.scratch)
	case n.scalar == shapely.Char:
		r, ok := value.(rune)
		if !ok {
			return mismatch("char", value)
		}
		e.scratch = appendEscaped(e.scratch[:0], string(r))
		return e.write(e.scratch)
	case n.scalar.IsSigned():
		actual, ok := toInt64(value)
		if !ok {
			return mismatch(n.scalar.String(), value)
		}
		e.scratch = strconv.AppendInt(e.scratch[:0], actual, 10)
		return e.write(e.scratch)
	case n.scalar.IsInteger():
		actual, ok := toUint64(value)
		if !ok {
			return mismatch(n.scalar.String(), value)
		}
		e.scratch = strconv.AppendUint(e.scratch[:0], actual, 10)
		return e.write(e.scratch)
	default:
		actual, ok := toFloat64(value)
		if !ok {
			return mismatch(n.scalar.String(), value)
		}
		bits := 64
		if n.scalar == shapely.Float32 {
			bits = 32
		}
		var err error
		if e.scratch, err = appendFloat(e.scratch[:0], actual, bits); err != nil {
			return err
		}
		return e.write(e.scratch)
	}
}

func (n *emitNode) emitObjectValue(e *emitter, value interface{}) error {
	if err := e.sink.WriteByte('{'); err != nil {
		return err
	}
	defaultTarget, isMap := value.(map[string]interface{})
	emitted := 0
	for i := range n.fields {
		field := &n.fields[i]
		var fieldValue interface{}
		switch {
		case field.getter != nil:
			fieldValue = field.getter(value)
		case isMap:
			fieldValue = defaultTarget[field.name]
		default:
			return mismatch("object "+n.name, value)
		}
		if fieldValue == nil && field.optional && !e.emitNull {
			continue
		}
		if emitted > 0 {
			if err := e.sink.WriteByte(','); err != nil {
				return err
			}
		}
		if err := e.write(field.keyLit); err != nil {
			return err
		}
		if err := field.child.emit(e, fieldValue); err != nil {
			return err
		}
		emitted++
	}
	return e.sink.WriteByte('}')
}

func (n *emitNode) emitListValue(e *emitter, value interface{}) error {
	if err := e.sink.WriteByte('['); err != nil {
		return err
	}
	if items, ok := value.([]interface{}); ok {
		for i, item := range items {
			if i > 0 {
				if err := e.sink.WriteByte(','); err != nil {
					return err
				}
			}
			if err := n.elem.emit(e, item); err != nil {
				return err
			}
		}
		return e.sink.WriteByte(']')
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return mismatch("list", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			if err := e.sink.WriteByte(','); err != nil {
				return err
			}
		}
		if err := n.elem.emit(e, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return e.sink.WriteByte(']')
}

// emitMapValue renders entries sorted by rendered key so output is
// deterministic regardless of map iteration order.
func (n *emitNode) emitMapValue(e *emitter, value interface{}) error {
	type entry struct {
		key  string
		item interface{}
	}
	var entries []entry
	switch actual := value.(type) {
	case map[string]interface{}:
		entries = make([]entry, 0, len(actual))
		for key, item := range actual {
			entries = append(entries, entry{key: key, item: item})
		}
	case map[interface{}]interface{}:
		entries = make([]entry, 0, len(actual))
		for key, item := range actual {
			text, err := keyText(n.keyFmt, key)
			if err != nil {
				return err
			}
			entries = append(entries, entry{key: text, item: item})
		}
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Map {
			return mismatch("map", value)
		}
		entries = make([]entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			text, err := keyText(n.keyFmt, iter.Key().Interface())
			if err != nil {
				return err
			}
			entries = append(entries, entry{key: text, item: iter.Value().Interface()})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	if err := e.sink.WriteByte('{'); err != nil {
		return err
	}
	for i := range entries {
		if i > 0 {
			if err := e.sink.WriteByte(','); err != nil {
				return err
			}
		}
		e.scratch = appendEscaped(e.scratch[:0], entries[i].key)
		if err := e.write(e.scratch); err != nil {
			return err
		}
		if err := e.sink.WriteByte(':'); err != nil {
			return err
		}
		if err := n.elem.emit(e, entries[i].item); err != nil {
			return err
		}
	}
	return e.sink.WriteByte('}')
}

// keyText renders a typed map key to its JSON object key text.
func keyText(kind shapely.Kind, key interface{}) (string, error) {
	switch kind {
	case shapely.String:
		text, ok := key.(string)
		if !ok {
			return "", mismatch("string key", key)
		}
		return text, nil
	case shapely.Char:
		r, ok := key.(rune)
		if !ok {
			return "", mismatch("char key", key)
		}
		return string(r), nil
	case shapely.Bool:
		flag, ok := key.(bool)
		if !ok {
			return "", mismatch("bool key", key)
		}
		return strconv.FormatBool(flag), nil
	default:
		if kind.IsSigned() {
			actual, ok := toInt64(key)
			if !ok {
				return "", mismatch(kind.String()+" key", key)
			}
			return strconv.FormatInt(actual, 10), nil
		}
		if kind.IsInteger() {
			actual, ok := toUint64(key)
			if !ok {
				return "", mismatch(kind.String()+" key", key)
			}
			return strconv.FormatUint(actual, 10), nil
		}
		actual, ok := toFloat64(key)
		if !ok {
			return "", mismatch(kind.String()+" key", key)
		}
		bits := 64
		if kind == shapely.Float32 {
			bits = 32
		}
		rendered, err := appendFloat(nil, actual, bits)
		if err != nil {
			return "", err
		}
		return string(rendered), nil
	}
}

// emitAnyValue renders a dynamic value by its Go representation.
func (n *emitNode) emitAnyValue(e *emitter, value interface{}) error {
	switch actual := value.(type) {
	case bool:
		if actual {
			return e.write(trueLiteral)
		}
		return e.write(falseLiteral)
	case string:
		e.scratch = appendEscaped(e.scratch[:0], actual)
		return e.write(e.scratch)
	case float64:
		var err error
		if e.scratch, err = appendFloat(e.scratch[:0], actual, 64); err != nil {
			return err
		}
		return e.write(e.scratch)
	case float32:
		var err error
		if e.scratch, err = appendFloat(e.scratch[:0], float64(actual), 32); err != nil {
			return err
		}
		return e.write(e.scratch)
	case []interface{}:
		return n.emitListValue(e, actual)
	case map[string]interface{}:
		return n.emitMapValue(e, actual)
	}
	if actual, ok := toInt64(value); ok {
		e.scratch = strconv.AppendInt(e.scratch[:0], actual, 10)
		return e.write(e.scratch)
	}
	if actual, ok := toUint64(value); ok {
		e.scratch = strconv.AppendUint(e.scratch[:0], actual, 10)
		return e.write(e.scratch)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return n.emitListValue(e, value)
	case reflect.Map:
		return n.emitMapValue(e, value)
	}
	return mismatch("dynamic value", value)
}
