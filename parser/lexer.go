package parser

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/viant/shapely"
)

func errorf(kind shapely.ErrorKind, offset int, format string, args ...interface{}) *shapely.Error {
	return shapely.NewError(kind, offset, fmt.Sprintf(format, args...))
}

func isWhitespace(b byte) bool {
	return b == 0x20 || b == 0x09 || b == 0x0A || b == 0x0D
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isValueStart reports whether a byte can open a well formed JSON value; it
// separates TypeMismatch (valid JSON, wrong shape) from UnexpectedToken.
func isValueStart(b byte) bool {
	switch b {
	case '{', '[', '"', '-', 't', 'f', 'n':
		return true
	}
	return isDigit(b)
}

// skipWhitespace advances past inter token whitespace; ok is false when the
// buffer is exhausted.
func (c *Context) skipWhitespace() (byte, bool) {
	for c.pos < len(c.buf) {
		b := c.buf[c.pos]
		if !isWhitespace(b) {
			return b, true
		}
		c.pos++
	}
	return 0, false
}

// scanString consumes string body bytes up to the unescaped closing quote,
// appending decoded bytes to the token scratchpad. The opening quote has to
// be consumed by the caller. Suspension may hit between any two bytes or
// inside any escape, including between the halves of a surrogate pair.
func (c *Context) scanString() (bool, status) {
	esc := &c.esc
	for c.pos < len(c.buf) {
		b := c.buf[c.pos]
		switch {
		case esc.lowStep == 1:
			if b != '\\' {
				return false, c.failf(shapely.MalformedEscape, c.offset(), "unpaired surrogate \\u%04X", esc.high)
			}
			esc.lowStep = 2
			c.pos++
		case esc.lowStep == 2:
			if b != 'u' {
				return false, c.failf(shapely.MalformedEscape, c.offset(), "unpaired surrogate \\u%04X", esc.high)
			}
			esc.lowStep = 0
			esc.unicode = true
			esc.digits = 0
			esc.code = 0
			c.pos++
		case esc.unicode:
			digit, ok := hexDigit(b)
			if !ok {
				return false, c.failf(shapely.MalformedEscape, c.offset(), "invalid hex digit %q", b)
			}
			esc.code = esc.code<<4 | rune(digit)
			esc.digits++
			c.pos++
			if esc.digits < 4 {
				continue
			}
			esc.unicode = false
			if st := c.finishUnicodeEscape(); st != more {
				return false, st
			}
		case esc.active:
			esc.active = false
			c.pos++
			switch b {
			case '"', '\\', '/':
				c.token = append(c.token, b)
			case 'b':
				c.token = append(c.token, '\b')
			case 'f':
				c.token = append(c.token, '\f')
			case 'n':
				c.token = append(c.token, '\n')
			case 'r':
				c.token = append(c.token, '\r')
			case 't':
				c.token = append(c.token, '\t')
			case 'u':
				esc.unicode = true
				esc.digits = 0
				esc.code = 0
			default:
				return false, c.failf(shapely.MalformedEscape, c.offset()-1, "unknown escape \\%c", b)
			}
		case b == '\\':
			esc.active = true
			c.pos++
		case b == '"':
			c.pos++
			return true, more
		default:
			//raw UTF-8 passes through verbatim
			c.token = append(c.token, b)
			c.pos++
		}
	}
	if c.eof {
		return false, c.failf(shapely.UnexpectedEndOfInput, c.offset(), "unterminated string")
	}
	return false, suspend
}

// finishUnicodeEscape folds a completed \uXXXX code unit into the token,
// pairing surrogates across escapes.
func (c *Context) finishUnicodeEscape() status {
	esc := &c.esc
	unit := esc.code
	if esc.high != 0 {
		if unit < 0xDC00 || unit > 0xDFFF {
			return c.failf(shapely.MalformedEscape, c.offset(), "unpaired surrogate \\u%04X", esc.high)
		}
		r := utf16.DecodeRune(esc.high, unit)
		esc.high = 0
		c.token = utf8.AppendRune(c.token, r)
		return more
	}
	switch {
	case unit >= 0xD800 && unit <= 0xDBFF:
		esc.high = unit
		esc.lowStep = 1
	case unit >= 0xDC00 && unit <= 0xDFFF:
		return c.failf(shapely.MalformedEscape, c.offset(), "unpaired low surrogate \\u%04X", unit)
	default:
		c.token = utf8.AppendRune(c.token, unit)
	}
	return more
}

func hexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func isNumberByte(b byte) bool {
	if isDigit(b) {
		return true
	}
	switch b {
	case '-', '+', '.', 'e', 'E':
		return true
	}
	return false
}

// scanNumber accumulates number bytes into the token; done is true once a non
// number byte or EOF terminates the literal. The terminator is not consumed.
func (c *Context) scanNumber() (bool, status) {
	for c.pos < len(c.buf) {
		b := c.buf[c.pos]
		if !isNumberByte(b) {
			return true, more
		}
		c.token = append(c.token, b)
		c.pos++
	}
	if c.eof {
		return true, more
	}
	return false, suspend
}

// validateNumber checks the accumulated token against the RFC 8259 number
// grammar and returns the token relative offset of the first violation.
func validateNumber(token []byte) (int, bool) {
	i := 0
	n := len(token)
	if i < n && token[i] == '-' {
		i++
	}
	switch {
	case i < n && token[i] == '0':
		i++
	case i < n && token[i] >= '1' && token[i] <= '9':
		i++
		for i < n && isDigit(token[i]) {
			i++
		}
	default:
		return i, false
	}
	if i < n && token[i] == '.' {
		i++
		if i >= n || !isDigit(token[i]) {
			return i, false
		}
		for i < n && isDigit(token[i]) {
			i++
		}
	}
	if i < n && (token[i] == 'e' || token[i] == 'E') {
		i++
		if i < n && (token[i] == '+' || token[i] == '-') {
			i++
		}
		if i >= n || !isDigit(token[i]) {
			return i, false
		}
		for i < n && isDigit(token[i]) {
			i++
		}
	}
	if i != n {
		return i, false
	}
	return 0, true
}

var intBits = map[shapely.Kind]int{
	shapely.Int8: 8, shapely.Int16: 16, shapely.Int32: 32, shapely.Int64: 64,
	shapely.Uint8: 8, shapely.Uint16: 16, shapely.Uint32: 32, shapely.Uint64: 64,
}

// convertNumber turns accumulated token bytes into the typed scalar value.
// tokStart is the absolute offset of the first token byte for error reporting.
func (c *Context) convertNumber(kind shapely.Kind, tokStart int) (interface{}, *shapely.Error) {
	token := c.token
	if at, ok := validateNumber(token); !ok {
		return nil, errorf(shapely.UnexpectedToken, tokStart+at, "malformed number %q", token)
	}
	text := string(token)
	if kind.IsInteger() {
		for _, b := range token {
			if b == '.' || b == 'e' || b == 'E' {
				return nil, errorf(shapely.TypeMismatch, tokStart, "%v value cannot hold fraction or exponent: %s", kind, text)
			}
		}
		bits := intBits[kind]
		if kind.IsSigned() {
			value, err := strconv.ParseInt(text, 10, bits)
			if err != nil {
				return nil, errorf(shapely.NumberOutOfRange, tokStart, "%s exceeds %v", text, kind)
			}
			switch kind {
			case shapely.Int8:
				return int8(value), nil
			case shapely.Int16:
				return int16(value), nil
			case shapely.Int32:
				return int32(value), nil
			}
			return value, nil
		}
		value, err := strconv.ParseUint(text, 10, bits)
		if err != nil {
			return nil, errorf(shapely.NumberOutOfRange, tokStart, "%s exceeds %v", text, kind)
		}
		switch kind {
		case shapely.Uint8:
			return uint8(value), nil
		case shapely.Uint16:
			return uint16(value), nil
		case shapely.Uint32:
			return uint32(value), nil
		}
		return value, nil
	}
	bits := 64
	if kind == shapely.Float32 {
		bits = 32
	}
	value, err := strconv.ParseFloat(text, bits)
	if err != nil {
		return nil, errorf(shapely.NumberOutOfRange, tokStart, "%s exceeds %v", text, kind)
	}
	if kind == shapely.Float32 {
		return float32(value), nil
	}
	return value, nil
}

// convertDynamicNumber keeps integral literals as int64 falling back to
// float64 on fraction, exponent or overflow.
func convertDynamicNumber(token []byte, tokStart int) (interface{}, *shapely.Error) {
	if at, ok := validateNumber(token); !ok {
		return nil, errorf(shapely.UnexpectedToken, tokStart+at, "malformed number %q", token)
	}
	text := string(token)
	integral := true
	for _, b := range token {
		if b == '.' || b == 'e' || b == 'E' {
			integral = false
			break
		}
	}
	if integral {
		if value, err := strconv.ParseInt(text, 10, 64); err == nil {
			return value, nil
		}
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, errorf(shapely.NumberOutOfRange, tokStart, "%s exceeds f64", text)
	}
	return value, nil
}
