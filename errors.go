package shapely

import "fmt"

// ErrorKind classifies codec failures.
type ErrorKind int

const (
	// UnexpectedToken reports a syntactic mismatch against the JSON grammar.
	UnexpectedToken ErrorKind = iota
	// UnexpectedEndOfInput reports input that ended mid value.
	UnexpectedEndOfInput
	// MalformedEscape reports a bad \u sequence or an unpaired surrogate.
	MalformedEscape
	// TypeMismatch reports a well formed JSON value incompatible with the shape.
	TypeMismatch
	// NumberOutOfRange reports a numeric value exceeding the target scalar.
	NumberOutOfRange
	// NonFiniteNumber reports NaN or infinity on the emission side.
	NonFiniteNumber
	// DuplicateField reports a repeated object key under strict duplicates.
	DuplicateField
	// UnknownField reports an unmatched object key under strict unknown.
	UnknownField
	// PlanBuildFailure reports a shape the builder cannot serve.
	PlanBuildFailure
)

var errorKindNames = map[ErrorKind]string{
	UnexpectedToken:      "unexpected token",
	UnexpectedEndOfInput: "unexpected end of input",
	MalformedEscape:      "malformed escape",
	TypeMismatch:         "type mismatch",
	NumberOutOfRange:     "number out of range",
	NonFiniteNumber:      "non finite number",
	DuplicateField:       "duplicate field",
	UnknownField:         "unknown field",
	PlanBuildFailure:     "plan build failure",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error(%d)", int(k))
}

// Error carries the failure kind, the absolute byte offset within the parsed
// input (-1 when not applicable) and an optional state path.
type Error struct {
	Kind    ErrorKind
	Offset  int
	Path    string
	Message string
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at %d", e.Offset)
	}
	if e.Path != "" {
		msg += " in " + e.Path
	}
	return msg
}

// Is matches errors by kind so callers can use errors.Is with a kind probe; a
// probe with a negative Offset matches any offset, otherwise offsets have to
// be equal as well.
func (e *Error) Is(target error) bool {
	that, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == that.Kind && (that.Offset < 0 || that.Offset == e.Offset)
}

// NewError creates an error with kind, absolute offset and message.
func NewError(kind ErrorKind, offset int, message string) *Error {
	return &Error{Kind: kind, Offset: offset, Message: message}
}

// NewPlanError creates a plan build failure, those carry no offset.
func NewPlanError(message string) *Error {
	return &Error{Kind: PlanBuildFailure, Offset: -1, Message: message}
}

// KindOf extracts the error kind; ok is false for foreign errors.
func KindOf(err error) (ErrorKind, bool) {
	e, ok := err.(*Error)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}
