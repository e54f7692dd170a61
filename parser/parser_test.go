package parser

import (
	"reflect"
	"strings"
	"testing"

	"github.com/viant/shapely"
)

func mustPlan(t *testing.T, shape *shapely.Shape, opts ...shapely.Option) *Plan {
	t.Helper()
	plan, err := NewBuilder(shapely.NewOptions(opts...)).Build(shape)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return plan
}

func personShape() *shapely.Shape {
	return shapely.ObjectOf("Person",
		shapely.Field{Name: "name", Shape: shapely.Scalar(shapely.String)},
		shapely.Field{Name: "age", Shape: shapely.Scalar(shapely.Int32)},
	)
}

func TestParse_Object(t *testing.T) {
	plan := mustPlan(t, personShape())
	value, err := plan.Parse([]byte(`{"name":"Ada","age":37}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expect := map[string]interface{}{"name": "Ada", "age": int32(37)}
	if !reflect.DeepEqual(expect, value) {
		t.Fatalf("expected %v, had %v", expect, value)
	}
}

func TestParse_ObjectFieldOrderIrrelevant(t *testing.T) {
	plan := mustPlan(t, personShape())
	value, err := plan.Parse([]byte(`{"age":37,"name":"Ada"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expect := map[string]interface{}{"name": "Ada", "age": int32(37)}
	if !reflect.DeepEqual(expect, value) {
		t.Fatalf("expected %v, had %v", expect, value)
	}
}

func TestParse_FloatList(t *testing.T) {
	plan := mustPlan(t, shapely.ListOf(shapely.Scalar(shapely.Float64)))
	value, err := plan.Parse([]byte(`[1, 2.5, -3e2]`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expect := []interface{}{1.0, 2.5, -300.0}
	if !reflect.DeepEqual(expect, value) {
		t.Fatalf("expected %v, had %v", expect, value)
	}
}

func TestParse_EmptyComposites(t *testing.T) {
	plan := mustPlan(t, shapely.ListOf(shapely.Scalar(shapely.Int64)))
	value, err := plan.Parse([]byte(`[]`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !reflect.DeepEqual([]interface{}{}, value) {
		t.Fatalf("expected empty list, had %v", value)
	}
	plan = mustPlan(t, shapely.MapOf(shapely.Scalar(shapely.String), shapely.Scalar(shapely.Bool)))
	value, err = plan.Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !reflect.DeepEqual(map[string]interface{}{}, value) {
		t.Fatalf("expected empty map, had %v", value)
	}
}

func TestParse_MapDuplicates(t *testing.T) {
	shape := shapely.MapOf(shapely.Scalar(shapely.String), shapely.Scalar(shapely.Bool))
	input := `{"a":true,"b":false,"a":true}`

	plan := mustPlan(t, shape)
	value, err := plan.Parse([]byte(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expect := map[string]interface{}{"a": true, "b": false}
	if !reflect.DeepEqual(expect, value) {
		t.Fatalf("expected %v, had %v", expect, value)
	}

	strict := mustPlan(t, shape, shapely.WithStrictDuplicates(true))
	_, err = strict.Parse([]byte(input))
	assertErrorAt(t, err, shapely.DuplicateField, 20)
}

func TestParse_NumberOutOfRange(t *testing.T) {
	plan := mustPlan(t, shapely.ObjectOf("Holder",
		shapely.Field{Name: "id", Shape: shapely.Scalar(shapely.Int32)},
	))
	_, err := plan.Parse([]byte(`{"id":9999999999}`))
	assertErrorAt(t, err, shapely.NumberOutOfRange, 6)
}

func TestParse_IntegerBounds(t *testing.T) {
	var testCases = []struct {
		kind   shapely.Kind
		input  string
		expect interface{}
		fails  bool
	}{
		{kind: shapely.Int8, input: "-128", expect: int8(-128)},
		{kind: shapely.Int8, input: "127", expect: int8(127)},
		{kind: shapely.Int8, input: "128", fails: true},
		{kind: shapely.Int8, input: "-129", fails: true},
		{kind: shapely.Int16, input: "32767", expect: int16(32767)},
		{kind: shapely.Int16, input: "32768", fails: true},
		{kind: shapely.Int32, input: "-2147483648", expect: int32(-2147483648)},
		{kind: shapely.Int32, input: "2147483648", fails: true},
		{kind: shapely.Int64, input: "9223372036854775807", expect: int64(9223372036854775807)},
		{kind: shapely.Int64, input: "9223372036854775808", fails: true},
		{kind: shapely.Uint8, input: "255", expect: uint8(255)},
		{kind: shapely.Uint8, input: "256", fails: true},
		{kind: shapely.Uint16, input: "65535", expect: uint16(65535)},
		{kind: shapely.Uint32, input: "4294967295", expect: uint32(4294967295)},
		{kind: shapely.Uint64, input: "18446744073709551615", expect: uint64(18446744073709551615)},
		{kind: shapely.Uint64, input: "18446744073709551616", fails: true},
		{kind: shapely.Uint8, input: "-1", fails: true},
	}
	for _, testCase := range testCases {
		plan := mustPlan(t, shapely.Scalar(testCase.kind))
		value, err := plan.Parse([]byte(testCase.input))
		if testCase.fails {
			assertErrorKind(t, err, shapely.NumberOutOfRange)
			continue
		}
		if err != nil {
			t.Fatalf("%v %s: parse failed: %v", testCase.kind, testCase.input, err)
		}
		if !reflect.DeepEqual(testCase.expect, value) {
			t.Fatalf("%v %s: expected %v, had %v", testCase.kind, testCase.input, testCase.expect, value)
		}
	}
}

func TestParse_IntegerRejectsFraction(t *testing.T) {
	plan := mustPlan(t, shapely.Scalar(shapely.Int32))
	_, err := plan.Parse([]byte(`1.5`))
	assertErrorKind(t, err, shapely.TypeMismatch)
	_, err = plan.Parse([]byte(`1e2`))
	assertErrorKind(t, err, shapely.TypeMismatch)
}

func TestParse_Escapes(t *testing.T) {
	plan := mustPlan(t, shapely.Scalar(shapely.String))
	value, err := plan.Parse([]byte(`"a\"b\\c\/d\be\ff\ng\rh\tiA"`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if expect := "a\"b\\c/d\be\ff\ng\rh\tiA"; expect != value {
		t.Fatalf("expected %q, had %q", expect, value)
	}
}

func TestParse_SurrogatePair(t *testing.T) {
	plan := mustPlan(t, shapely.Scalar(shapely.String))
	value, err := plan.Parse([]byte(`"😀"`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if expect := "\U0001F600"; expect != value {
		t.Fatalf("expected %q, had %q", expect, value)
	}
	value, err = plan.Parse([]byte(`"\uD83D\uDE00"`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if expect := "\U0001F600"; expect != value {
		t.Fatalf("expected %q, had %q", expect, value)
	}
	value, err = plan.Parse([]byte(`"\u0041\u00e9"`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if expect := "A\u00e9"; expect != value {
		t.Fatalf("expected %q, had %q", expect, value)
	}
	_, err = plan.Parse([]byte(`"\uD83D"`))
	assertErrorKind(t, err, shapely.MalformedEscape)
	_, err = plan.Parse([]byte(`"\uD83Dx"`))
	assertErrorKind(t, err, shapely.MalformedEscape)
	_, err = plan.Parse([]byte(`"\uDE00"`))
	assertErrorKind(t, err, shapely.MalformedEscape)
}

func TestParse_UnknownFieldDiscarded(t *testing.T) {
	plan := mustPlan(t, personShape())
	value, err := plan.Parse([]byte(`{"name":"Ada","extra":{"deep":[1,2,{"x":null}]},"age":37}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expect := map[string]interface{}{"name": "Ada", "age": int32(37)}
	if !reflect.DeepEqual(expect, value) {
		t.Fatalf("expected %v, had %v", expect, value)
	}
}

func TestParse_UnknownFieldStrict(t *testing.T) {
	plan := mustPlan(t, personShape(), shapely.WithStrictUnknown(true))
	_, err := plan.Parse([]byte(`{"name":"Ada","extra":1}`))
	assertErrorKind(t, err, shapely.UnknownField)
}

func TestParse_TrailingData(t *testing.T) {
	plan := mustPlan(t, shapely.Scalar(shapely.Bool))
	if _, err := plan.Parse([]byte("true  \n")); err != nil {
		t.Fatalf("trailing whitespace has to pass: %v", err)
	}
	_, err := plan.Parse([]byte("true x"))
	assertErrorKind(t, err, shapely.UnexpectedToken)

	tolerant := mustPlan(t, shapely.Scalar(shapely.Bool), shapely.WithStrictTrailing(false))
	if _, err := tolerant.Parse([]byte("true x")); err != nil {
		t.Fatalf("tolerant trailing has to pass: %v", err)
	}
}

func TestParse_UnexpectedEndOfInput(t *testing.T) {
	plan := mustPlan(t, personShape())
	_, err := plan.Parse([]byte(`{"name":"Ada"`))
	assertErrorKind(t, err, shapely.UnexpectedEndOfInput)
	_, err = plan.Parse(nil)
	assertErrorKind(t, err, shapely.UnexpectedEndOfInput)
}

func TestParse_DepthGuard(t *testing.T) {
	shape := shapely.AnyShape()
	plan := mustPlan(t, shape, shapely.WithMaxDepth(8))
	input := strings.Repeat("[", 16) + strings.Repeat("]", 16)
	_, err := plan.Parse([]byte(input))
	assertErrorKind(t, err, shapely.UnexpectedToken)
	if _, err = plan.Parse([]byte(`[[[1]]]`)); err != nil {
		t.Fatalf("shallow nesting has to pass: %v", err)
	}
}

func TestParse_Any(t *testing.T) {
	plan := mustPlan(t, shapely.AnyShape())
	value, err := plan.Parse([]byte(`{"a":[1,2.5,"x"],"b":null,"c":true}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expect := map[string]interface{}{
		"a": []interface{}{int64(1), 2.5, "x"},
		"b": nil,
		"c": true,
	}
	if !reflect.DeepEqual(expect, value) {
		t.Fatalf("expected %v, had %v", expect, value)
	}
}

func TestParse_NullValues(t *testing.T) {
	plan := mustPlan(t, personShape())
	value, err := plan.Parse([]byte(`{"name":null,"age":37}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expect := map[string]interface{}{"name": nil, "age": int32(37)}
	if !reflect.DeepEqual(expect, value) {
		t.Fatalf("expected %v, had %v", expect, value)
	}
}

func TestParse_IntMapKeys(t *testing.T) {
	plan := mustPlan(t, shapely.MapOf(shapely.Scalar(shapely.Int32), shapely.Scalar(shapely.String)))
	value, err := plan.Parse([]byte(`{"1":"one","2":"two"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expect := map[interface{}]interface{}{int32(1): "one", int32(2): "two"}
	if !reflect.DeepEqual(expect, value) {
		t.Fatalf("expected %v, had %v", expect, value)
	}
	_, err = plan.Parse([]byte(`{"x":"one"}`))
	assertErrorKind(t, err, shapely.TypeMismatch)
}

func TestParse_Recursive(t *testing.T) {
	node := &shapely.Shape{Kind: shapely.Object, Name: "Node"}
	node.Fields = []shapely.Field{
		{Name: "value", Shape: shapely.Scalar(shapely.Int64)},
		{Name: "children", Shape: shapely.ListOf(node), Optional: true},
	}
	plan := mustPlan(t, node)
	value, err := plan.Parse([]byte(`{"value":1,"children":[{"value":2},{"value":3,"children":[]}]}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	root := value.(map[string]interface{})
	if root["value"] != int64(1) {
		t.Fatalf("unexpected root: %v", root)
	}
	children := root["children"].([]interface{})
	if len(children) != 2 {
		t.Fatalf("expected 2 children, had %v", children)
	}
	if children[0].(map[string]interface{})["value"] != int64(2) {
		t.Fatalf("unexpected child: %v", children[0])
	}
}

func TestParse_Char(t *testing.T) {
	plan := mustPlan(t, shapely.Scalar(shapely.Char))
	value, err := plan.Parse([]byte(`"é"`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if value != 'é' {
		t.Fatalf("expected 'é', had %v", value)
	}
	_, err = plan.Parse([]byte(`"ab"`))
	assertErrorKind(t, err, shapely.TypeMismatch)
}

func TestParse_TypeMismatch(t *testing.T) {
	plan := mustPlan(t, shapely.Scalar(shapely.Int32))
	_, err := plan.Parse([]byte(`"abc"`))
	assertErrorKind(t, err, shapely.TypeMismatch)
	_, err = plan.Parse([]byte(`[1]`))
	assertErrorKind(t, err, shapely.TypeMismatch)

	plan = mustPlan(t, personShape())
	_, err = plan.Parse([]byte(`42`))
	assertErrorKind(t, err, shapely.TypeMismatch)
	_, err = plan.Parse([]byte(`@`))
	assertErrorKind(t, err, shapely.UnexpectedToken)
}

func assertErrorKind(t *testing.T, err error, kind shapely.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error", kind)
	}
	actual, ok := shapely.KindOf(err)
	if !ok {
		t.Fatalf("foreign error: %v", err)
	}
	if actual != kind {
		t.Fatalf("expected %v, had %v (%v)", kind, actual, err)
	}
}

func assertErrorAt(t *testing.T, err error, kind shapely.ErrorKind, offset int) {
	t.Helper()
	assertErrorKind(t, err, kind)
	if actual := err.(*shapely.Error).Offset; actual != offset {
		t.Fatalf("expected %v at %d, had offset %d (%v)", kind, offset, actual, err)
	}
}
