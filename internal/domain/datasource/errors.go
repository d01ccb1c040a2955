package datasource

import (
	"fmt"
	"strings"
)

// NotFoundError indicates that no profile is registered under the requested
// name. It lists the names that are available to make misconfiguration easy
// to spot.
type NotFoundError struct {
	Name      string
	Available []string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("datasource %q not found (no datasources registered)", e.Name)
	}
	return fmt.Sprintf("datasource %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// UnavailableError indicates that a call failed on every attempt of the
// profile's retry budget. It carries the last underlying error and the number
// of attempts made.
type UnavailableError struct {
	Datasource string
	Attempts   int
	Err        error
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("datasource %q unavailable after %d attempt(s): %v", e.Datasource, e.Attempts, e.Err)
}

// Unwrap returns the last underlying error
func (e *UnavailableError) Unwrap() error {
	return e.Err
}
