package parser

import (
	"unicode/utf8"

	"github.com/viant/shapely"
)

//literal selectors
const (
	litTrue  = 1
	litFalse = 2
	litNull  = 3
)

var literalWords = [...]string{litTrue: "true", litFalse: "false", litNull: "null"}

// matchLiteral advances byte by byte through the selected literal word,
// suspending at any position.
func (c *Context) matchLiteral(f *frame) (bool, status) {
	word := literalWords[f.lit]
	for int(f.litPos) < len(word) {
		if c.pos >= len(c.buf) {
			if c.eof {
				return false, c.failf(shapely.UnexpectedEndOfInput, c.offset(), "literal incomplete")
			}
			return false, suspend
		}
		if c.buf[c.pos] != word[f.litPos] {
			return false, c.failf(shapely.UnexpectedToken, c.offset(), "malformed literal")
		}
		c.pos++
		f.litPos++
	}
	return true, more
}

// scalarNode is the terminal state for one scalar kind; it delegates to the
// lexical primitives and converts the accumulated token on completion.
type scalarNode struct {
	kind shapely.Kind
}

const (
	scalarDispatch = iota
	scalarNumber
	scalarString
	scalarLiteral
)

func (n *scalarNode) advance(c *Context, f *frame) status {
	switch f.step {
	case scalarDispatch:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch {
		case b == '"' && (n.kind == shapely.String || n.kind == shapely.Char):
			c.pos++
			c.token = c.token[:0]
			c.esc.reset()
			f.tokStart = c.offset() - 1
			f.step = scalarString
		case (b == '-' || isDigit(b)) && (n.kind.IsInteger() || n.kind.IsFloat()):
			c.token = c.token[:0]
			f.tokStart = c.offset()
			f.step = scalarNumber
		case b == 't' && n.kind == shapely.Bool:
			f.lit, f.litPos = litTrue, 0
			f.step = scalarLiteral
		case b == 'f' && n.kind == shapely.Bool:
			f.lit, f.litPos = litFalse, 0
			f.step = scalarLiteral
		case b == 'n':
			f.lit, f.litPos = litNull, 0
			f.step = scalarLiteral
		case isValueStart(b):
			return c.failf(shapely.TypeMismatch, c.offset(), "%v value expected", n.kind)
		default:
			return c.failf(shapely.UnexpectedToken, c.offset(), "unexpected %q", b)
		}
		return more
	case scalarNumber:
		done, st := c.scanNumber()
		if !done {
			return st
		}
		value, err := c.convertNumber(n.kind, f.tokStart)
		if err != nil {
			return c.fail(err)
		}
		return c.pop(value)
	case scalarString:
		done, st := c.scanString()
		if !done {
			return st
		}
		if n.kind == shapely.Char {
			r, size := utf8.DecodeRune(c.token)
			if size == 0 || size != len(c.token) || r == utf8.RuneError && size == 1 {
				return c.failf(shapely.TypeMismatch, f.tokStart, "char value expects a single character")
			}
			return c.pop(r)
		}
		return c.pop(string(c.token))
	default:
		done, st := c.matchLiteral(f)
		if !done {
			return st
		}
		switch f.lit {
		case litTrue:
			return c.pop(true)
		case litFalse:
			return c.pop(false)
		}
		return c.pop(nil)
	}
}

// anyNode materializes heterogeneous JSON: objects as map[string]interface{},
// lists as []interface{}, integral numbers as int64 (falling back to float64),
// the rest as their natural Go scalar. The same node discards unknown object
// fields, the parent simply drops the popped value.
type anyNode struct {
	object node
	list   node
}

const (
	anyDispatch = iota
	anyChild
	anyString
	anyNumber
	anyLiteral
)

func (n *anyNode) advance(c *Context, f *frame) status {
	switch f.step {
	case anyDispatch:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch {
		case b == '{':
			f.step = anyChild
			return c.pushNode(n.object)
		case b == '[':
			f.step = anyChild
			return c.pushNode(n.list)
		case b == '"':
			c.pos++
			c.token = c.token[:0]
			c.esc.reset()
			f.tokStart = c.offset() - 1
			f.step = anyString
		case b == '-' || isDigit(b):
			c.token = c.token[:0]
			f.tokStart = c.offset()
			f.step = anyNumber
		case b == 't':
			f.lit, f.litPos = litTrue, 0
			f.step = anyLiteral
		case b == 'f':
			f.lit, f.litPos = litFalse, 0
			f.step = anyLiteral
		case b == 'n':
			f.lit, f.litPos = litNull, 0
			f.step = anyLiteral
		default:
			return c.failf(shapely.UnexpectedToken, c.offset(), "unexpected %q", b)
		}
		return more
	case anyChild:
		return c.pop(c.popValue())
	case anyString:
		done, st := c.scanString()
		if !done {
			return st
		}
		return c.pop(string(c.token))
	case anyNumber:
		done, st := c.scanNumber()
		if !done {
			return st
		}
		value, err := convertDynamicNumber(c.token, f.tokStart)
		if err != nil {
			return c.fail(err)
		}
		return c.pop(value)
	default:
		done, st := c.matchLiteral(f)
		if !done {
			return st
		}
		switch f.lit {
		case litTrue:
			return c.pop(true)
		case litFalse:
			return c.pop(false)
		}
		return c.pop(nil)
	}
}
