package parser

import "github.com/viant/shapely"

//list sub steps
const (
	listOpen = iota
	listFirst
	listAfterElem
	listSeparator
	listNull
)

// listNode parses a JSON array into a []interface{} target, pushing the
// element state for each item.
type listNode struct {
	elem node
}

func (n *listNode) advance(c *Context, f *frame) status {
	switch f.step {
	case listOpen:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch {
		case b == '[':
			c.pos++
			f.target = []interface{}{}
			f.step = listFirst
		case b == 'n':
			f.lit, f.litPos = litNull, 0
			f.step = listNull
		case isValueStart(b):
			return c.failf(shapely.TypeMismatch, c.offset(), "list expected")
		default:
			return c.failf(shapely.UnexpectedToken, c.offset(), "unexpected %q", b)
		}
		return more
	case listFirst:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		if b == ']' {
			c.pos++
			return c.pop(f.target)
		}
		f.step = listAfterElem
		return c.pushNode(n.elem)
	case listAfterElem:
		f.target = append(f.target.([]interface{}), c.popValue())
		f.step = listSeparator
		return more
	case listSeparator:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch b {
		case ',':
			c.pos++
			f.step = listAfterElem
			return c.pushNode(n.elem)
		case ']':
			c.pos++
			return c.pop(f.target)
		}
		return c.failf(shapely.UnexpectedToken, c.offset(), "expected ',' or ']', had %q", b)
	default:
		done, st := c.matchLiteral(f)
		if !done {
			return st
		}
		return c.pop(nil)
	}
}
