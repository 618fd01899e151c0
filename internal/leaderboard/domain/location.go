package domain

import "time"

// Location is a restaurant site whose staff compete on one leaderboard.
type Location struct {
	ID        string
	Name      string
	Timezone  string
	CreatedAt time.Time
}
