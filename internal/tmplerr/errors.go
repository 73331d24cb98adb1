package tmplerr

import (
	"errors"
	"fmt"
)

// Kind categorizes template failures. All of them are developer-facing:
// they surface synchronously from a render call and are never retried.
type Kind string

const (
	NotFound             Kind = "not_found"              // key absent from the document
	IndexOutOfRange      Kind = "index_out_of_range"     // menu page index outside the page list
	Validation           Kind = "validation"             // required sub-field missing or malformed
	UnrecognizedType     Kind = "unrecognized_type"      // unknown element discriminator
	UnknownComponentKind Kind = "unknown_component_kind" // unknown component discriminator
	InvalidColour        Kind = "invalid_colour"
	InvalidEmoji         Kind = "invalid_emoji"
	InvalidStyle         Kind = "invalid_style"
	Parse                Kind = "parse" // source text is not well-formed
)

// Error is a classified template error. Match a class with errors.Is
// against the sentinels below, or extract it with errors.As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Message == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind. An out-of-range
// index is also a NotFound.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t.Message != "" || t.Err != nil {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == IndexOutOfRange && t.Kind == NotFound
}

// Sentinels for errors.Is.
var (
	ErrNotFound             = &Error{Kind: NotFound}
	ErrIndexOutOfRange      = &Error{Kind: IndexOutOfRange}
	ErrValidation           = &Error{Kind: Validation}
	ErrUnrecognizedType     = &Error{Kind: UnrecognizedType}
	ErrUnknownComponentKind = &Error{Kind: UnknownComponentKind}
	ErrInvalidColour        = &Error{Kind: InvalidColour}
	ErrInvalidEmoji         = &Error{Kind: InvalidEmoji}
	ErrInvalidStyle         = &Error{Kind: InvalidStyle}
	ErrParse                = &Error{Kind: Parse}
)

// New returns an *Error of kind k with a formatted message.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err as kind k. A nil err yields nil.
func Wrap(k Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
