package domain

import "time"

// LineEntry is one (menu item, quantity) pair within a transaction.
type LineEntry struct {
	MenuItemID string
	Quantity   int
}

// Transaction records the upsells an employee logged against a single order.
// Transactions are immutable once created; CreatedAt is server-assigned.
type Transaction struct {
	ID          string
	EmployeeID  string
	LocationID  string
	ShiftID     string
	OrderNumber string
	Lines       []LineEntry
	CreatedAt   time.Time
}

// Units returns the total number of upsold units across all line entries.
func (t Transaction) Units() int {
	units := 0
	for _, line := range t.Lines {
		units += line.Quantity
	}
	return units
}
