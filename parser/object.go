package parser

import "github.com/viant/shapely"

//object and map sub steps
const (
	compositeOpen = iota
	compositeAfterOpen
	compositeKey
	compositeColon
	compositeAfterValue
	compositeAfterField
	compositeNextKey
	compositeNull
)

// objectNode parses a JSON object into an object shape target. Field keys
// dispatch through a compiled trie; unknown keys are parsed and discarded via
// the dynamic skip state unless the plan is strict about them.
type objectNode struct {
	name          string
	fields        []shapely.Field
	children      []node //parallel to fields, filled late to admit cycles
	trie          *keyTrie
	skip          node
	factory       shapely.Factory
	strictDup     bool
	strictUnknown bool
}

func (n *objectNode) advance(c *Context, f *frame) status {
	switch f.step {
	case compositeOpen:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch {
		case b == '{':
			c.pos++
			if n.factory != nil {
				f.target = n.factory()
			} else {
				f.target = map[string]interface{}{}
			}
			if n.strictDup {
				f.seen = map[string]bool{}
			}
			f.step = compositeAfterOpen
		case b == 'n':
			f.lit, f.litPos = litNull, 0
			f.step = compositeNull
		case isValueStart(b):
			return c.failf(shapely.TypeMismatch, c.offset(), "object %s expected", n.name)
		default:
			return c.failf(shapely.UnexpectedToken, c.offset(), "unexpected %q", b)
		}
		return more
	case compositeAfterOpen:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch b {
		case '}':
			c.pos++
			return c.pop(f.target)
		case '"':
			n.beginKey(c, f)
			return more
		}
		return c.failf(shapely.UnexpectedToken, c.offset(), "expected key or '}', had %q", b)
	case compositeKey:
		done, st := n.scanKey(c, f)
		if !done {
			return st
		}
		f.key = string(c.token)
		if f.seen != nil {
			if f.seen[f.key] {
				err := errorf(shapely.DuplicateField, f.keyStart, "%s declared twice", f.key)
				err.Path = n.name
				return c.fail(err)
			}
			f.seen[f.key] = true
		}
		f.step = compositeColon
		return more
	case compositeColon:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		if b != ':' {
			return c.failf(shapely.UnexpectedToken, c.offset(), "expected ':', had %q", b)
		}
		c.pos++
		f.field = n.trie.terminal(f.trieNode)
		f.step = compositeAfterValue
		if f.field < 0 {
			if n.strictUnknown {
				err := errorf(shapely.UnknownField, f.keyStart, "%s", f.key)
				err.Path = n.name
				return c.fail(err)
			}
			return c.pushNode(n.skip)
		}
		return c.pushNode(n.children[f.field])
	case compositeAfterValue:
		value := c.popValue()
		if f.field >= 0 {
			n.assign(f.target, f.field, value)
		}
		f.step = compositeAfterField
		return more
	case compositeAfterField:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch b {
		case ',':
			c.pos++
			f.step = compositeNextKey
			return more
		case '}':
			c.pos++
			return c.pop(f.target)
		}
		return c.failf(shapely.UnexpectedToken, c.offset(), "expected ',' or '}', had %q", b)
	case compositeNextKey:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		if b != '"' {
			return c.failf(shapely.UnexpectedToken, c.offset(), "expected key, had %q", b)
		}
		n.beginKey(c, f)
		return more
	default:
		done, st := c.matchLiteral(f)
		if !done {
			return st
		}
		return c.pop(nil)
	}
}

func (n *objectNode) beginKey(c *Context, f *frame) {
	f.keyStart = c.offset()
	c.pos++
	c.token = c.token[:0]
	c.esc.reset()
	f.trieNode = 0
	f.trieConsumed = 0
	f.step = compositeKey
}

// scanKey scans the key string, feeding freshly decoded bytes into the trie
// so that key dispatch survives suspension mid key.
func (n *objectNode) scanKey(c *Context, f *frame) (bool, status) {
	done, st := c.scanString()
	for ; f.trieConsumed < len(c.token); f.trieConsumed++ {
		f.trieNode = n.trie.step(f.trieNode, c.token[f.trieConsumed])
	}
	return done, st
}

func (n *objectNode) assign(target interface{}, ordinal int, value interface{}) {
	field := &n.fields[ordinal]
	if field.Setter == nil {
		target.(map[string]interface{})[field.Name] = value
		return
	}
	if value == nil {
		return
	}
	field.Setter(target, value)
}

// keyCoercion converts a decoded map key token into the typed key value.
type keyCoercion func(c *Context, key string, keyStart int) (interface{}, *shapely.Error)

// mapNode parses a JSON object into a map shape target; duplicate keys are
// last write wins unless the plan is strict about duplicates.
type mapNode struct {
	value     node
	coerce    keyCoercion
	stringKey bool
	strictDup bool
}

func (n *mapNode) advance(c *Context, f *frame) status {
	switch f.step {
	case compositeOpen:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch {
		case b == '{':
			c.pos++
			if n.stringKey {
				f.target = map[string]interface{}{}
			} else {
				f.target = map[interface{}]interface{}{}
			}
			if n.strictDup {
				f.seen = map[string]bool{}
			}
			f.step = compositeAfterOpen
		case b == 'n':
			f.lit, f.litPos = litNull, 0
			f.step = compositeNull
		case isValueStart(b):
			return c.failf(shapely.TypeMismatch, c.offset(), "map expected")
		default:
			return c.failf(shapely.UnexpectedToken, c.offset(), "unexpected %q", b)
		}
		return more
	case compositeAfterOpen:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch b {
		case '}':
			c.pos++
			return c.pop(f.target)
		case '"':
			n.beginKey(c, f)
			return more
		}
		return c.failf(shapely.UnexpectedToken, c.offset(), "expected key or '}', had %q", b)
	case compositeKey:
		done, st := c.scanString()
		if !done {
			return st
		}
		f.key = string(c.token)
		if f.seen != nil {
			if f.seen[f.key] {
				return c.failf(shapely.DuplicateField, f.keyStart, "%s declared twice", f.key)
			}
			f.seen[f.key] = true
		}
		f.step = compositeColon
		return more
	case compositeColon:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		if b != ':' {
			return c.failf(shapely.UnexpectedToken, c.offset(), "expected ':', had %q", b)
		}
		c.pos++
		f.step = compositeAfterValue
		return c.pushNode(n.value)
	case compositeAfterValue:
		value := c.popValue()
		if n.stringKey {
			f.target.(map[string]interface{})[f.key] = value
		} else {
			key, err := n.coerce(c, f.key, f.keyStart)
			if err != nil {
				return c.fail(err)
			}
			f.target.(map[interface{}]interface{})[key] = value
		}
		f.step = compositeAfterField
		return more
	case compositeAfterField:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		switch b {
		case ',':
			c.pos++
			f.step = compositeNextKey
			return more
		case '}':
			c.pos++
			return c.pop(f.target)
		}
		return c.failf(shapely.UnexpectedToken, c.offset(), "expected ',' or '}', had %q", b)
	case compositeNextKey:
		b, ok := c.skipWhitespace()
		if !ok {
			return suspend
		}
		if b != '"' {
			return c.failf(shapely.UnexpectedToken, c.offset(), "expected key, had %q", b)
		}
		n.beginKey(c, f)
		return more
	default:
		done, st := c.matchLiteral(f)
		if !done {
			return st
		}
		return c.pop(nil)
	}
}

func (n *mapNode) beginKey(c *Context, f *frame) {
	f.keyStart = c.offset()
	c.pos++
	c.token = c.token[:0]
	c.esc.reset()
	f.step = compositeKey
}
