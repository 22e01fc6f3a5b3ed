package places

import (
	"errors"
	"fmt"
)

// AuthError indicates a missing or rejected API credential. Fatal to any
// mission that hits it.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("places: authorization failed (%d): %s", e.Status, e.Message)
}

// QuotaError indicates the request was denied for quota or permission
// reasons rather than a bad credential.
type QuotaError struct {
	Status  int
	Message string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("places: quota exceeded or request denied (%d): %s", e.Status, e.Message)
}

// InvalidRequestError indicates the API rejected the request shape itself.
type InvalidRequestError struct {
	Status  int
	Message string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("places: invalid request (%d): %s", e.Status, e.Message)
}

// IsAuth reports whether err wraps an AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsQuota reports whether err wraps a QuotaError.
func IsQuota(err error) bool {
	var target *QuotaError
	return errors.As(err, &target)
}

// IsInvalidRequest reports whether err wraps an InvalidRequestError.
func IsInvalidRequest(err error) bool {
	var target *InvalidRequestError
	return errors.As(err, &target)
}

// statusError maps an HTTP status to the typed error for that failure class.
func statusError(status int, body string) error {
	switch status {
	case 401:
		return &AuthError{Status: status, Message: body}
	case 403, 429:
		return &QuotaError{Status: status, Message: body}
	case 400:
		return &InvalidRequestError{Status: status, Message: body}
	default:
		return fmt.Errorf("places: unexpected status %d: %s", status, body)
	}
}
