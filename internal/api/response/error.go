package response

import "errors"

// Sentinel errors services return to controllers, which map them onto
// HTTP status codes. Authentication failures stay generic so the cause
// (unknown user, wrong password, expired token) never leaks to the caller.
var (
	ErrValidation         = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("incorrect username and/or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("permission denied")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
)
