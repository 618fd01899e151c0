package application

import (
	"errors"
	"fmt"
)

// ErrTransientQuery marks a store query that failed or timed out. Callers
// keep serving last-known-good state and retry on the next notification.
var ErrTransientQuery = errors.New("transient query failure")

// DanglingRefError reports a line entry or shift referencing an employee or
// menu item that no longer resolves. The entry is dropped, aggregation
// continues.
type DanglingRefError struct {
	Kind string
	ID   string
}

func (e *DanglingRefError) Error() string {
	return fmt.Sprintf("dangling %s reference: %s", e.Kind, e.ID)
}

// InvariantError reports tolerated data anomalies, currently an employee
// holding more than one open shift. The tracker picks the most recent shift
// and keeps going.
type InvariantError struct {
	EmployeeID string
	OpenShifts int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("employee %s has %d open shifts, expected at most 1", e.EmployeeID, e.OpenShifts)
}
