package domain

import "time"

// Employee is a front-line staff member belonging to one location.
// Names are unique within a location, not across locations.
type Employee struct {
	ID         string
	Name       string
	LocationID string
	CreatedAt  time.Time
}

// StaffMember is the slice of Employee the leaderboard cares about:
// who is on the floor right now.
type StaffMember struct {
	EmployeeID string
	Name       string
	// ClockedInAt is the start of the open shift backing this entry.
	ClockedInAt time.Time
}
