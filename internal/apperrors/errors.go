package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindInsufficientStock
	KindConflict
)

// String returns the category reported in the "error" field of a response body.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation Error"
	case KindAuth:
		return "Authentication Error"
	case KindNotFound:
		return "Not Found"
	case KindInsufficientStock:
		return "Insufficient Stock"
	case KindConflict:
		return "Conflict"
	default:
		return "Internal Server Error"
	}
}

// HTTPStatus maps a kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInsufficientStock:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the error type returned by repositories and services.
// Message is safe to show to clients; Err carries the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrEmptyCart is returned by checkout when the user has nothing in the cart.
	ErrEmptyCart = &Error{Kind: KindValidation, Message: "Cart is empty"}
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: "Invalid username or password"}
)

func Validation(message string, details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Auth(message string, err error) *Error {
	return &Error{Kind: KindAuth, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func InsufficientStock(message string) *Error {
	return &Error{Kind: KindInsufficientStock, Message: message}
}

func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
// Errors that carry no kind are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a non-nil error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
