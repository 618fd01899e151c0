package application

import (
	"context"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

// LocationRepository abstracts read access to locations.
type LocationRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Location, error)
	Find(ctx context.Context) ([]domain.Location, error)
}

// EmployeeRepository resolves and registers staff members.
type EmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Employee, error)
	// UpsertByName registers an employee on first clock-in and returns the
	// existing record on subsequent ones. Names are scoped per location.
	UpsertByName(ctx context.Context, locationID, name string) (*domain.Employee, error)
}

// ShiftRepository handles clock-in/clock-out spans.
type ShiftRepository interface {
	FindOpenByLocation(ctx context.Context, locationID string) ([]domain.Shift, error)
	Open(ctx context.Context, shift *domain.Shift) error
	// CloseByEmployee sets the end timestamp on every open shift the employee
	// holds and returns how many were closed.
	CloseByEmployee(ctx context.Context, employeeID string, endedAt time.Time) (int, error)
}

// TransactionRepository handles upsell transaction reads/writes.
type TransactionRepository interface {
	FindByLocationWindow(ctx context.Context, locationID string, start, end time.Time) ([]domain.Transaction, error)
	FindByLocation(ctx context.Context, locationID string, paging Paging) ([]domain.Transaction, int, error)
	Create(ctx context.Context, tx *domain.Transaction) error
}

// MenuItemRepository reads and maintains the upsell vocabulary.
type MenuItemRepository interface {
	FindByLocation(ctx context.Context, locationID string, activeOnly bool) ([]domain.MenuItem, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error)
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, id string, patch MenuItemPatch) (*domain.MenuItem, error)
}

// ManagerAccessRepository reads the per-location manager panel password.
type ManagerAccessRepository interface {
	Password(ctx context.Context, locationID string) (string, error)
}

// MenuItemPatch expresses a partial menu item update. Nil fields are left
// untouched.
type MenuItemPatch struct {
	Name   *string
	Active *bool
}

// Paging controls pagination of the admin transaction log.
type Paging struct {
	Page  int
	Limit int
}

// ChangeOperation mirrors the operation types emitted by the store's
// change feed.
type ChangeOperation string

const (
	ChangeInsert  ChangeOperation = "insert"
	ChangeUpdate  ChangeOperation = "update"
	ChangeReplace ChangeOperation = "replace"
	ChangeDelete  ChangeOperation = "delete"
)

// Change is one change-feed event. At most one of the after-image fields is
// populated, depending on the source collection. Delivery is at-least-once
// and possibly reordered; consumers must only treat events as staleness
// signals, never as state.
type Change struct {
	Collection  string
	Operation   ChangeOperation
	Shift       *domain.Shift
	Transaction *domain.Transaction
}

// LocationID returns the location the event belongs to, or "" when the
// event carries no after-image (e.g. a delete).
func (c Change) LocationID() string {
	switch {
	case c.Shift != nil:
		return c.Shift.LocationID
	case c.Transaction != nil:
		return c.Transaction.LocationID
	}
	return ""
}

// ChangeFeed subscribes to per-collection change notifications. The returned
// release function must be called on every exit path.
type ChangeFeed interface {
	Watch(ctx context.Context, collection string) (<-chan Change, func(), error)
}

// DayWindow returns [start of the calendar day containing now, now) in the
// given timezone. Computed per call so recomputes spanning midnight roll
// over correctly.
func DayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, now
}
