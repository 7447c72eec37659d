package errors

// ErrorCode identifies the category of an API error
type ErrorCode string

const (
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrForbidden     ErrorCode = "FORBIDDEN"
	ErrUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrBadRequest    ErrorCode = "BAD_REQUEST"
	ErrValidation    ErrorCode = "VALIDATION_ERROR"
	ErrConflict      ErrorCode = "CONFLICT"
	ErrRateLimited   ErrorCode = "RATE_LIMITED"
	ErrLookupFailed  ErrorCode = "LOOKUP_FAILED"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)
