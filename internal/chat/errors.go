package chat

import "errors"

// Kind classifies every error the chat core returns across its boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindNotFound
	KindForbidden
	KindInvalidInput
	KindAlreadyExists
	KindRateLimited
	KindStorage
)

// Error is the single structured error type of the chat core. Callers map
// it to transport-level responses via KindOf.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind from any error returned by the core.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Unauthenticated(err error) *Error {
	return &Error{Kind: KindUnauthenticated, Reason: "invalid token", Err: err}
}

func NotFound(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

func InvalidInput(reason string) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

func AlreadyExists(reason string) *Error {
	return &Error{Kind: KindAlreadyExists, Reason: reason}
}

func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Reason: "too many requests"}
}

func StorageFailure(err error) *Error {
	return &Error{Kind: KindStorage, Reason: "storage failure", Err: err}
}

// Deny returns the uniform forbidden error. Missing permission and missing
// resource collapse into the same outcome at sensitive boundaries, so a
// caller cannot probe for the existence of events or chatrooms it is not
// allowed to see.
func Deny() *Error {
	return &Error{Kind: KindForbidden, Reason: "not allowed"}
}
