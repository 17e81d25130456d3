package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which direction of the bridge raised the error
type Phase string

const (
	PhaseProduce Phase = "produce" // typed value to dynamic value
	PhaseConsume Phase = "consume" // dynamic value to typed value
	PhaseParse   Phase = "parse"   // text to dynamic value
	PhaseFormat  Phase = "format"  // dynamic value to text
)

// Kind categorizes the error
type Kind string

const (
	KindCustom        Kind = "custom"
	KindTypeMismatch  Kind = "type_mismatch"
	KindDepthExceeded Kind = "depth_exceeded"
	KindSyntax        Kind = "syntax"
	KindUnsupported   Kind = "unsupported"
)

// Error is the single error type surfaced by every conversion.
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Expected string // TypeMismatch: what the visitor asked for
	Found    string // TypeMismatch: runtime tag of the offending value
	Message  string
	Path     []string // breadcrumbs, outermost first
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.Pointer())
	}

	if e.Expected != "" || e.Found != "" {
		b.WriteString(": expected ")
		b.WriteString(orUnknown(e.Expected))
		b.WriteString(", found ")
		b.WriteString(orUnknown(e.Found))
	}

	if e.Message != "" {
		if e.Expected != "" || e.Found != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
	}

	if e.Cause != nil && e.Cause.Error() != e.Message {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer renders Path as a JSON Pointer, "/" for the root.
func (e *Error) Pointer() string {
	if len(e.Path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range e.Path {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(seg))
	}
	return b.String()
}

// Sentinels for errors.Is.
var (
	ErrCustom        = &Error{Kind: KindCustom}
	ErrTypeMismatch  = &Error{Kind: KindTypeMismatch}
	ErrDepthExceeded = &Error{Kind: KindDepthExceeded}
	ErrSyntax        = &Error{Kind: KindSyntax}
	ErrUnsupported   = &Error{Kind: KindUnsupported}
)

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(kind Kind) *Builder {
	return &Builder{err: Error{Kind: kind}}
}

// Phase sets the phase
func (b *Builder) Phase(p Phase) *Builder {
	b.err.Phase = p
	return b
}

// Path sets the breadcrumbs
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Expected sets the expectation text
func (b *Builder) Expected(s string) *Builder {
	b.err.Expected = s
	return b
}

// Found sets the runtime tag description
func (b *Builder) Found(s string) *Builder {
	b.err.Found = s
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Message sets the human-readable message
func (b *Builder) Message(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Message = fmt.Sprintf(msg, args...)
	} else {
		b.err.Message = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors

// Custom creates an error raised by the data model itself.
func Custom(msg string, args ...any) *Error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Error{Kind: KindCustom, Message: msg}
}

// TypeMismatch creates a shape mismatch error.
func TypeMismatch(expected, found string) *Error {
	return &Error{Kind: KindTypeMismatch, Expected: expected, Found: found}
}

// OutOfRange creates a TypeMismatch for a number that does not fit the target width.
func OutOfRange(expected, found string) *Error {
	return &Error{Kind: KindTypeMismatch, Expected: expected, Found: found, Message: "out of range"}
}

// InvalidLength creates a TypeMismatch for a sequence of the wrong length.
func InvalidLength(expected string, got int) *Error {
	return &Error{
		Kind:     KindTypeMismatch,
		Expected: expected,
		Found:    fmt.Sprintf("sequence of length %d", got),
		Message:  "invalid length",
	}
}

// MissingField creates the Custom error for an absent required field.
func MissingField(name string) *Error {
	return &Error{Kind: KindCustom, Message: fmt.Sprintf("missing field %q", name)}
}

// DepthExceeded creates the error raised when traversal exceeds limit.
func DepthExceeded(limit int) *Error {
	return &Error{Kind: KindDepthExceeded, Message: fmt.Sprintf("nesting deeper than %d", limit)}
}

// Syntax wraps a host codec parse failure.
func Syntax(cause error) *Error {
	return &Error{Phase: PhaseParse, Kind: KindSyntax, Message: cause.Error(), Cause: cause}
}

// Unsupported creates an error for a value that cannot be represented.
func Unsupported(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{Kind: KindUnsupported, Message: detail}
}

// From converts any error into an *Error, wrapping foreign errors as Custom.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		switch e {
		case ErrCustom, ErrTypeMismatch, ErrDepthExceeded, ErrSyntax, ErrUnsupported:
			cp := *e
			return &cp
		}
		return e
	}
	return &Error{Kind: KindCustom, Message: err.Error(), Cause: err}
}

// At prepends a breadcrumb to err's path. Foreign errors become Custom.
func At(err error, segment string) error {
	if err == nil {
		return nil
	}
	e := From(err)
	path := make([]string, 0, len(e.Path)+1)
	path = append(path, segment)
	e.Path = append(path, e.Path...)
	return e
}

// WithPhase stamps the phase on err if it carries none yet.
func WithPhase(err error, phase Phase) error {
	if err == nil {
		return nil
	}
	e := From(err)
	if e.Phase == "" {
		e.Phase = phase
	}
	return e
}
