package domain

import "time"

// LeaderboardRow is the per-employee aggregate for the current day. It is a
// pure projection of shift and transaction state, never a source of truth.
type LeaderboardRow struct {
	EmployeeID string
	Name       string
	Total      int
	Items      map[string]int
}

// Snapshot is the materialized leaderboard for one location at a point in
// time: ranked rows plus the active-staff set they were computed against.
// Version increases monotonically per location.
type Snapshot struct {
	LocationID  string
	Version     uint64
	ComputedAt  time.Time
	WindowStart time.Time
	WindowEnd   time.Time
	ActiveStaff []StaffMember
	Rows        []LeaderboardRow
}
