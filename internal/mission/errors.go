package mission

import (
	"errors"
	"fmt"

	"github.com/sells-group/leadscout/pkg/places"
)

// ConfigurationError means the mission cannot start: a required credential
// or setting is missing. Fatal before any search happens.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mission configuration: %s", e.Reason)
}

// SourceError means the search provider rejected the mission's search.
// Fatal; Remedy carries a human-readable hint written to the event log.
type SourceError struct {
	Remedy string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("mission source: %v", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// PersistenceError means a store write failed mid-mission. Fatal; no
// partial-save rollback is attempted for the candidate being processed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("mission persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// failureMessage renders a fatal pipeline error for the event log. Source
// failures append their remedy so the operator sees the fix alongside the
// cause without digging through provider docs.
func failureMessage(err error) string {
	var se *SourceError
	if errors.As(err, &se) && se.Remedy != "" {
		return fmt.Sprintf("%v (%s)", err, se.Remedy)
	}
	return err.Error()
}

// classifySourceError wraps a search failure with provider-specific
// remediation guidance for the event log.
func classifySourceError(err error) *SourceError {
	switch {
	case places.IsAuth(err):
		return &SourceError{
			Remedy: "search credential was rejected; check the Places API key and that the Places API (New) is enabled for the project",
			Err:    err,
		}
	case places.IsQuota(err):
		return &SourceError{
			Remedy: "search quota exhausted or access denied; check billing and per-minute quota for the Places API",
			Err:    err,
		}
	case places.IsInvalidRequest(err):
		return &SourceError{
			Remedy: "search request was rejected as invalid; the mission query may be malformed",
			Err:    err,
		}
	default:
		return &SourceError{
			Remedy: "search provider request failed; see the attached error",
			Err:    err,
		}
	}
}
