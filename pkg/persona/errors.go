package persona

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the sentinel matched by errors.Is for unknown persona ids.
var ErrNotFound = errors.New("persona not found")

// NotFoundError reports an unknown persona id along with the ids that do
// exist, so callers can surface a helpful message instead of a bare 404.
type NotFoundError struct {
	ID        string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("persona %q not found (no personas configured)", e.ID)
	}
	return fmt.Sprintf("persona %q not found, available: %s", e.ID, strings.Join(e.Available, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a persona file missing a required field.
// A broken persona file is an operator error, so loading fails fast and
// nothing partial is cached.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("persona config missing required field %q", e.Field)
}
