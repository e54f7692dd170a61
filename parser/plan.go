// Package parser implements the pull style incremental JSON parser: a
// resumable, byte fed state machine interpreter in which each shape compiles
// to a tree of parser states that the driver advances byte by byte, with mid
// buffer suspension and resumption.
package parser

import (
	"io"

	"github.com/viant/shapely"
)

// Plan is the compiled parser for one shape. Plans are immutable after build
// and safe to share; each parse runs on its own context.
type Plan struct {
	shape *shapely.Shape
	key   string
	root  node
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

// Parse reads a complete value from a fully buffered input.
func (p *Plan) Parse(data []byte) (interface{}, error) {
	return p.NewContext().FinishBytes(data)
}

// ParseString reads a complete value from a JSON string.
func (p *Plan) ParseString(text string) (interface{}, error) {
	return p.Parse([]byte(text))
}

// ParseReader reads the value from a stream in chunks, suspending and
// resuming the state machine across chunk boundaries.
func (p *Plan) ParseReader(reader io.Reader) (interface{}, error) {
	return p.NewContext().FinishReader(reader)
}
