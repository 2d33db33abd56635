package mysticism

import "errors"

// Code classifies the failures the core reports.
type Code int

const (
	CodeUnknown Code = iota
	// CodeOutOfRange marks an administrative level outside [0, 1].
	CodeOutOfRange
	// CodeMalformed marks caller input that is not a number.
	CodeMalformed
	// CodeSchedule marks a drain task that could not be started.
	CodeSchedule
)

func (c Code) String() string {
	switch c {
	case CodeOutOfRange:
		return "out_of_range"
	case CodeMalformed:
		return "malformed"
	case CodeSchedule:
		return "schedule"
	}
	return "unknown"
}

// Error is the classified error type of the package.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Sentinels for errors.Is. Matching is by Code only.
var (
	ErrOutOfRange = &Error{Code: CodeOutOfRange, Message: "value out of range"}
	ErrMalformed  = &Error{Code: CodeMalformed, Message: "malformed input"}
	ErrSchedule   = &Error{Code: CodeSchedule, Message: "drain task not scheduled"}
)

// ErrStopped is the cause reported by a scheduler after StopAll.
var ErrStopped = errors.New("scheduler stopped")

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the classification of err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
