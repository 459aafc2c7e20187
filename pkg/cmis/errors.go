package cmis

import (
	"errors"
	"fmt"
)

// Error represents a domain error returned by repository operations.
//
// These are business logic errors (object not found, permission denied, etc.)
// as opposed to infrastructure errors. Infrastructure failures are carried in
// Err and surface with ErrStorage or ErrRuntime.
//
// A protocol binding translates Error codes into its own wire errors.
type Error struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the repository path related to the error (if applicable)
	Path string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = msg + ": " + e.Path
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode represents the category of an Error.
type ErrorCode int

const (
	// ErrNotFound indicates the object, repository or type doesn't exist.
	// Malformed identifiers are reported the same way.
	ErrNotFound ErrorCode = iota

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: empty id, depth 0, unsupported query
	ErrInvalidArgument

	// ErrPermissionDenied indicates the caller is unknown or lacks write access
	ErrPermissionDenied

	// ErrConstraint indicates the operation violates a repository constraint
	// Examples: versioning requested, non-empty folder delete, missing required property
	ErrConstraint

	// ErrNameConstraintViolation indicates an invalid or colliding name
	ErrNameConstraintViolation

	// ErrUpdateConflict indicates a rename during an update could not be applied
	ErrUpdateConflict

	// ErrContentAlreadyExists indicates overwrite was disallowed over existing content
	ErrContentAlreadyExists

	// ErrStreamNotSupported indicates a content operation on a folder
	ErrStreamNotSupported

	// ErrStorage indicates an I/O failure not otherwise classified
	ErrStorage

	// ErrRuntime indicates an internal contract violation
	ErrRuntime
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "objectNotFound"
	case ErrInvalidArgument:
		return "invalidArgument"
	case ErrPermissionDenied:
		return "permissionDenied"
	case ErrConstraint:
		return "constraint"
	case ErrNameConstraintViolation:
		return "nameConstraintViolation"
	case ErrUpdateConflict:
		return "updateConflict"
	case ErrContentAlreadyExists:
		return "contentAlreadyExists"
	case ErrStreamNotSupported:
		return "streamNotSupported"
	case ErrStorage:
		return "storage"
	case ErrRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// NewError builds an Error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error carrying cause.
func WrapError(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// CodeOf extracts the ErrorCode of err. The second result is false when err
// is not (and does not wrap) an *Error.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
