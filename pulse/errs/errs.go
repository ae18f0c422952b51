// Shared error kinds surfaced by controllers and mapped to HTTP
// statuses in routes. Wrap with fmt.Errorf("...: %w", Err...) so
// callers can check with errors.Is.
package errs

import "errors"

var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("already exists")
	ErrStorage    = errors.New("storage failure")
)
