package mapper

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/shapely"
)

func personShape() *shapely.Shape {
	return shapely.ObjectOf("Person",
		shapely.Field{Name: "name", Shape: shapely.Scalar(shapely.String)},
		shapely.Field{Name: "age", Shape: shapely.Scalar(shapely.Int32)},
	)
}

func TestMapper_Scenarios(t *testing.T) {
	var testCases = []struct {
		description string
		shape       *shapely.Shape
		input       string
		expect      interface{}
		written     string
	}{
		{
			description: "object in declared order",
			shape:       personShape(),
			input:       `{"name":"Ada","age":37}`,
			expect:      map[string]interface{}{"name": "Ada", "age": int32(37)},
			written:     `{"name":"Ada","age":37}`,
		},
		{
			description: "object out of declared order writes back declared",
			shape:       personShape(),
			input:       `{"age":37,"name":"Ada"}`,
			expect:      map[string]interface{}{"name": "Ada", "age": int32(37)},
			written:     `{"name":"Ada","age":37}`,
		},
		{
			description: "float list",
			shape:       shapely.ListOf(shapely.Scalar(shapely.Float64)),
			input:       `[1, 2.5, -3e2]`,
			expect:      []interface{}{1.0, 2.5, -300.0},
			written:     `[1.0,2.5,-300.0]`,
		},
		{
			description: "bool map last write wins",
			shape:       shapely.MapOf(shapely.Scalar(shapely.String), shapely.Scalar(shapely.Bool)),
			input:       `{"a":true,"b":false,"a":true}`,
			expect:      map[string]interface{}{"a": true, "b": false},
			written:     `{"a":true,"b":false}`,
		},
	}
	for _, testCase := range testCases {
		m := New()
		value, err := m.ReadString(testCase.input, testCase.shape)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, value, testCase.description)
		written, err := m.WriteString(value, testCase.shape)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.written, written, testCase.description)
	}
}

func TestMapper_RoundTripStability(t *testing.T) {
	m := New()
	shape := shapely.ObjectOf("Doc",
		shapely.Field{Name: "title", Shape: shapely.Scalar(shapely.String)},
		shapely.Field{Name: "score", Shape: shapely.Scalar(shapely.Float64)},
		shapely.Field{Name: "tags", Shape: shapely.ListOf(shapely.Scalar(shapely.String))},
	)
	input := `{"tags":["x","y"],"score":1,"title":"a\tb"}`
	value, err := m.ReadString(input, shape)
	assert.Nil(t, err)
	first, err := m.WriteString(value, shape)
	assert.Nil(t, err)
	again, err := m.ReadString(first, shape)
	assert.Nil(t, err)
	second, err := m.WriteString(again, shape)
	assert.Nil(t, err)
	assert.EqualValues(t, first, second)
}

func TestMapper_PlanIdentity(t *testing.T) {
	m := New()
	first, err := m.ParserFor(personShape())
	assert.Nil(t, err)
	second, err := m.ParserFor(personShape())
	assert.Nil(t, err)
	assert.True(t, first == second, "equal shapes have to share one parser plan")

	firstWriter, err := m.WriterFor(personShape())
	assert.Nil(t, err)
	secondWriter, err := m.WriterFor(personShape())
	assert.Nil(t, err)
	assert.True(t, firstWriter == secondWriter, "equal shapes have to share one writer plan")
}

func TestMapper_ConcurrentBuild(t *testing.T) {
	m := New()
	shape := personShape()
	var wg sync.WaitGroup
	plans := make([]interface{}, 64)
	for i := 0; i < len(plans); i++ {
		wg.Add(1)
		go func(at int) {
			defer wg.Done()
			plan, err := m.ParserFor(shape)
			assert.Nil(t, err)
			plans[at] = plan
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(plans); i++ {
		assert.True(t, plans[0] == plans[i], "all goroutines have to observe one plan")
	}
}

func TestMapper_LookupOnly(t *testing.T) {
	m := New()
	key := personShape().CanonicalKey()
	assert.Nil(t, m.GetParser(key))
	assert.Nil(t, m.GetWriter(key))
	_, err := m.ParserFor(personShape())
	assert.Nil(t, err)
	_, err = m.WriterFor(personShape())
	assert.Nil(t, err)
	assert.NotNil(t, m.GetParser(key))
	assert.NotNil(t, m.GetWriter(key))
}

func TestMapper_TransitiveSubShapes(t *testing.T) {
	child := shapely.ObjectOf("Address",
		shapely.Field{Name: "city", Shape: shapely.Scalar(shapely.String)},
	)
	parent := shapely.ObjectOf("Customer",
		shapely.Field{Name: "id", Shape: shapely.Scalar(shapely.Int64)},
		shapely.Field{Name: "address", Shape: child},
	)
	m := New()
	_, err := m.ParserFor(parent)
	assert.Nil(t, err)
	assert.NotNil(t, m.GetParser(child.CanonicalKey()), "referenced sub shape has to be preregistered")
}

func TestMapper_Preload(t *testing.T) {
	m := New()
	shapes := []*shapely.Shape{
		personShape(),
		shapely.ListOf(shapely.Scalar(shapely.Float64)),
		shapely.MapOf(shapely.Scalar(shapely.String), shapely.AnyShape()),
	}
	assert.Nil(t, m.Preload(shapes...))
	for _, shape := range shapes {
		assert.NotNil(t, m.GetParser(shape.CanonicalKey()))
		assert.NotNil(t, m.GetWriter(shape.CanonicalKey()))
	}
}

func TestMapper_StreamSurface(t *testing.T) {
	m := New(shapely.WithStreamChunkSize(5))
	shape := shapely.ListOf(shapely.Scalar(shapely.String))
	value, err := m.ReadFrom(bytes.NewReader([]byte(`["foo","bar"]`)), shape)
	assert.Nil(t, err)
	assert.EqualValues(t, []interface{}{"foo", "bar"}, value)

	var out bytes.Buffer
	assert.Nil(t, m.WriteTo(value, shape, &out))
	assert.EqualValues(t, `["foo","bar"]`, out.String())
}

func TestMapper_BuildFailureNotCached(t *testing.T) {
	m := New()
	broken := &shapely.Shape{Kind: shapely.List}
	_, err := m.ParserFor(broken)
	assert.NotNil(t, err)
	kind, ok := shapely.KindOf(err)
	assert.True(t, ok)
	assert.EqualValues(t, shapely.PlanBuildFailure, kind)
	assert.Nil(t, m.GetParser(broken.CanonicalKey()))
}

func TestDefaultMapper(t *testing.T) {
	assert.Nil(t, Default())
	m := Init()
	assert.True(t, m == Default())
	value, err := Default().ReadString(`[1]`, shapely.ListOf(shapely.Scalar(shapely.Int64)))
	assert.Nil(t, err)
	assert.EqualValues(t, []interface{}{int64(1)}, value)
	Teardown()
	assert.Nil(t, Default())
}
