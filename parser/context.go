package parser

import (
	"io"

	"github.com/viant/shapely"
)

// status is the outcome of driving a state against the current buffer.
type status uint8

const (
	//more means the driver shall keep advancing the top of the stack
	more status = iota
	//suspend means the fed buffer is exhausted mid value
	suspend
	//failed means ctx.err holds the failure
	failed
)

// node is one parser state; advance consumes bytes from the context and
// either stays within the frame, pushes a child frame, or pops the frame
// with a produced value.
type node interface {
	advance(c *Context, f *frame) status
}

// frame is one suspended or active state with its sub step progress.
type frame struct {
	node   node
	step   uint8
	lit    uint8 //literal selector: 1 true, 2 false, 3 null
	litPos uint8 //bytes of the literal matched so far

	target interface{} //in progress composite value

	field        int //matched field ordinal, -1 unknown
	trieNode     int32
	trieConsumed int //token bytes already fed to the trie
	keyStart     int //absolute offset of the key token
	key          string
	seen         map[string]bool //strict duplicate tracking

	tokStart int //absolute offset of the scalar token in progress
}

// escapeState tracks a partial escape sequence spanning buffer refills.
type escapeState struct {
	active  bool //saw a backslash
	unicode bool //inside \uXXXX
	digits  uint8
	code    rune
	high    rune  //pending high surrogate, 0 when none
	lowStep uint8 //0 none, 1 expect backslash, 2 expect u
}

func (e *escapeState) reset() {
	*e = escapeState{}
}

// Context is a single parse in progress: buffer cursor, suspension stack,
// token scratchpad and value stack. A context is single threaded and
// discarded after Finish.
type Context struct {
	plan *Plan
	opts *shapely.Options

	buf  []byte
	pos  int
	base int //absolute offset of buf[0] across fed chunks

	frames []frame
	values []interface{}
	token  []byte
	esc    escapeState

	suspended bool
	eof       bool
	done      bool
	err       error
}

// NewContext creates a parse context positioned at the plan root state.
func (p *Plan) NewContext() *Context {
	ctx := &Context{
		plan:   p,
		opts:   p.opts,
		frames: make([]frame, 0, 8),
		values: make([]interface{}, 0, 8),
	}
	ctx.pushNode(p.root)
	return ctx
}

func (c *Context) offset() int {
	return c.base + c.pos
}

func (c *Context) pushNode(n node) status {
	if len(c.frames) >= c.opts.MaxDepth {
		return c.failf(shapely.UnexpectedToken, c.offset(), "maximum nesting depth %d exceeded", c.opts.MaxDepth)
	}
	c.frames = append(c.frames, frame{node: n, field: -1})
	return more
}

// pop completes the top frame with the produced value.
func (c *Context) pop(value interface{}) status {
	c.frames = c.frames[:len(c.frames)-1]
	c.values = append(c.values, value)
	return more
}

func (c *Context) popValue() interface{} {
	value := c.values[len(c.values)-1]
	c.values = c.values[:len(c.values)-1]
	return value
}

func (c *Context) fail(err error) status {
	c.err = err
	return failed
}

func (c *Context) failf(kind shapely.ErrorKind, offset int, format string, args ...interface{}) status {
	return c.fail(errorf(kind, offset, format, args...))
}

// Feed supplies the next input chunk and drives the state machine until the
// chunk is exhausted, the root value completes, or the parse fails.
func (c *Context) Feed(chunk []byte) error {
	if c.err != nil {
		return c.err
	}
	c.base += len(c.buf)
	c.buf = chunk
	c.pos = 0
	c.suspended = false
	if c.done {
		return c.consumeTrailing()
	}
	switch c.drive() {
	case failed:
		return c.err
	case suspend:
		return nil
	}
	c.done = true
	return c.consumeTrailing()
}

// drive advances the top of the state stack until completion or suspension.
func (c *Context) drive() status {
	for len(c.frames) > 0 {
		f := &c.frames[len(c.frames)-1]
		switch f.node.advance(c, f) {
		case suspend:
			c.suspended = true
			c.pos = len(c.buf)
			return suspend
		case failed:
			return failed
		}
	}
	return more
}

// consumeTrailing polices bytes after the root value completed.
func (c *Context) consumeTrailing() error {
	for c.pos < len(c.buf) {
		b := c.buf[c.pos]
		if !isWhitespace(b) {
			if c.opts.StrictTrailing {
				c.err = errorf(shapely.UnexpectedToken, c.offset(), "trailing data")
				return c.err
			}
			c.pos = len(c.buf)
			return nil
		}
		c.pos++
	}
	return nil
}

// Done reports whether the root value completed.
func (c *Context) Done() bool {
	return c.done
}

// Suspended reports whether the last Feed stopped on exhausted input.
func (c *Context) Suspended() bool {
	return c.suspended
}

// Finish signals end of input, drives any state that can terminate on EOF
// (numbers at top level) and returns the root value.
func (c *Context) Finish() (interface{}, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.eof = true
	if !c.done {
		switch c.drive() {
		case failed:
			return nil, c.err
		case suspend:
			return nil, errorf(shapely.UnexpectedEndOfInput, c.offset(), "value incomplete")
		}
		c.done = true
	}
	if len(c.frames) != 0 || len(c.values) != 1 {
		return nil, errorf(shapely.UnexpectedEndOfInput, c.offset(), "value incomplete")
	}
	return c.values[0], nil
}

// FinishBytes feeds a complete buffer and finishes in one shot.
func (c *Context) FinishBytes(data []byte) (interface{}, error) {
	if err := c.Feed(data); err != nil {
		return nil, err
	}
	return c.Finish()
}

// FinishReader reads the input in chunks, feeding each one and preserving
// suspension state across refills.
func (c *Context) FinishReader(reader io.Reader) (interface{}, error) {
	chunk := make([]byte, c.opts.StreamChunkSize)
	for {
		n, err := reader.Read(chunk)
		if n > 0 {
			//the previous chunk is fully consumed on suspension, reuse it
			if feedErr := c.Feed(chunk[:n]); feedErr != nil {
				return nil, feedErr
			}
		}
		if err == io.EOF {
			return c.Finish()
		}
		if err != nil {
			return nil, err
		}
	}
}
