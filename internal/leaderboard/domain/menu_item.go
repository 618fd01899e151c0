package domain

import "time"

// MenuItem is one upsellable article in a location's fixed vocabulary.
// Inactive items are no longer offered but remain resolvable so that
// historical transactions keep displaying correctly.
type MenuItem struct {
	ID         string
	Name       string
	LocationID string
	Category   string
	Icon       string
	PriceSEK   int
	Active     bool
	CreatedAt  time.Time
}
