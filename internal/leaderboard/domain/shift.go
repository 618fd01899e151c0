package domain

import "time"

// Shift is one clock-in/clock-out span for an employee. A shift with no
// EndedAt is open; an employee is expected to hold at most one open shift,
// but the data is not guaranteed to honour that.
type Shift struct {
	ID         string
	EmployeeID string
	LocationID string
	StartedAt  time.Time
	EndedAt    *time.Time
}

// Open reports whether the shift has no recorded end time.
func (s Shift) Open() bool {
	return s.EndedAt == nil
}
