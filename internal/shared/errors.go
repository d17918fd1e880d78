package shared

import "errors"

// Error kinds returned by the domain layer. Handlers map these onto HTTP
// problem responses; everything else is reported as an internal failure.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed input rejected before persistence.
	ErrValidation = errors.New("validation failed")
	// ErrPrecondition indicates the document is in the wrong status for the
	// requested operation.
	ErrPrecondition = errors.New("precondition failed")
	// ErrConflict indicates a uniqueness violation; the caller may retry.
	ErrConflict = errors.New("conflict")
	// ErrStoreUnavailable indicates the entity store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when the CSRF token is missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage returns a message that can be shown to end users without
// leaking internals.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrPrecondition):
		return err.Error()
	case errors.Is(err, ErrConflict):
		return "The record was changed by another request. Please try again."
	case errors.Is(err, ErrStoreUnavailable):
		return "The service is temporarily unavailable. Please try again."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	default:
		return "Something went wrong. Please try again."
	}
}
