package status

import "errors"

var (
	ErrNotFound        = errors.New("event: not found")
	ErrForbidden       = errors.New("event: forbidden")
	ErrUnauthenticated = errors.New("auth: authentication required")
	ErrInvalidQuery    = errors.New("search: the entry you made is invalid")
	ErrUnknownAction   = errors.New("attendance: unknown action")
)
