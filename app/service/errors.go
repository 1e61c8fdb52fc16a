package service

import "errors"

// Kind classifies an expected business failure. Transport layers map each
// kind to exactly one status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindDuplicateEmail
	KindInvalidCredentials
	KindEmailNotConfirmed
	KindAlreadyConfirmed
	KindInvalidToken
	KindResetExpired
	KindInvalidRefreshToken
	KindUnauthorized
	KindInvalidInput
	KindForbidden
	KindDependencyFailed
	KindDependencyTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindEmailNotConfirmed:
		return "email_not_confirmed"
	case KindAlreadyConfirmed:
		return "already_confirmed"
	case KindInvalidToken:
		return "invalid_token"
	case KindResetExpired:
		return "reset_expired"
	case KindInvalidRefreshToken:
		return "invalid_refresh_token"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidInput:
		return "invalid_input"
	case KindForbidden:
		return "forbidden"
	case KindDependencyFailed:
		return "dependency_failed"
	case KindDependencyTimeout:
		return "dependency_timeout"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so wrapped or re-worded errors still
// satisfy errors.Is against the sentinels below.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind carried by err, or KindInternal for anything that
// is not a business error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound        = NewError(KindNotFound, "user not found")
	ErrProductNotFound     = NewError(KindNotFound, "product not found")
	ErrDuplicateEmail      = NewError(KindDuplicateEmail, "email is already in use")
	ErrInvalidCredentials  = NewError(KindInvalidCredentials, "invalid password")
	ErrEmailNotConfirmed   = NewError(KindEmailNotConfirmed, "email is not confirmed")
	ErrAlreadyConfirmed    = NewError(KindAlreadyConfirmed, "email is already confirmed")
	ErrInvalidToken        = NewError(KindInvalidToken, "invalid token")
	ErrResetExpired        = NewError(KindResetExpired, "reset time is out")
	ErrInvalidRefreshToken = NewError(KindInvalidRefreshToken, "invalid refresh token")
	ErrUnauthorized        = NewError(KindUnauthorized, "invalid email")
	ErrInvalidInput        = NewError(KindInvalidInput, "invalid input")
	ErrForbidden           = NewError(KindForbidden, "user has no access to this product")
	ErrCascadeFailed       = NewError(KindDependencyFailed, "failed to delete user products")
	ErrCascadeTimeout      = NewError(KindDependencyTimeout, "product service did not respond in time")
)
