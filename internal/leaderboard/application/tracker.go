package application

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

// Tracker maintains the set of currently clocked-in staff per location.
// Reads always go to the store; the last successful result is cached so a
// failing query degrades to stale data instead of an empty leaderboard.
type Tracker struct {
	shifts    ShiftRepository
	employees EmployeeRepository
	logger    *log.Logger

	mu        sync.Mutex
	lastKnown map[string][]domain.StaffMember
	signOuts  map[string]map[int]chan struct{}
	nextSubID int
}

// NewTracker creates a tracker backed by the given repositories.
func NewTracker(shifts ShiftRepository, employees EmployeeRepository, logger *log.Logger) *Tracker {
	return &Tracker{
		shifts:    shifts,
		employees: employees,
		logger:    logger,
		lastKnown: make(map[string][]domain.StaffMember),
		signOuts:  make(map[string]map[int]chan struct{}),
	}
}

// ActiveStaff returns the staff members with an open shift at the location.
// Duplicate open shifts per employee collapse to the most recently started
// one; the anomaly is logged, not fatal. On a failed query the last known
// set is returned together with the error so callers can keep serving it.
func (t *Tracker) ActiveStaff(ctx context.Context, locationID string) ([]domain.StaffMember, error) {
	open, err := t.shifts.FindOpenByLocation(ctx, locationID)
	if err != nil {
		return t.cached(locationID), fmt.Errorf("open shifts for %s: %w: %v", locationID, ErrTransientQuery, err)
	}

	byEmployee := make(map[string]domain.Shift, len(open))
	counts := make(map[string]int, len(open))
	for _, shift := range open {
		counts[shift.EmployeeID]++
		current, ok := byEmployee[shift.EmployeeID]
		if !ok || shift.StartedAt.After(current.StartedAt) {
			byEmployee[shift.EmployeeID] = shift
		}
	}
	for employeeID, n := range counts {
		if n > 1 {
			t.logger.Printf("shift invariant: %v", &InvariantError{EmployeeID: employeeID, OpenShifts: n})
		}
	}

	ids := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		ids = append(ids, id)
	}
	names, err := t.employees.FindByIDs(ctx, ids)
	if err != nil {
		return t.cached(locationID), fmt.Errorf("resolve staff names for %s: %w: %v", locationID, ErrTransientQuery, err)
	}

	staff := make([]domain.StaffMember, 0, len(byEmployee))
	for employeeID, shift := range byEmployee {
		employee, ok := names[employeeID]
		if !ok {
			t.logger.Printf("active staff: %v", &DanglingRefError{Kind: "employee", ID: employeeID})
			continue
		}
		staff = append(staff, domain.StaffMember{
			EmployeeID:  employeeID,
			Name:        employee.Name,
			ClockedInAt: shift.StartedAt,
		})
	}
	sort.Slice(staff, func(i, j int) bool {
		return staff[i].ClockedInAt.Before(staff[j].ClockedInAt)
	})

	t.mu.Lock()
	t.lastKnown[locationID] = staff
	t.mu.Unlock()
	return staff, nil
}

// Apply inspects a change-feed event. When the event closes a shift, every
// viewer signed in as that employee is told to terminate their session.
func (t *Tracker) Apply(change Change) {
	if change.Shift == nil || change.Shift.Open() {
		return
	}
	t.mu.Lock()
	subs := t.signOuts[change.Shift.EmployeeID]
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	t.mu.Unlock()
}

// SubscribeSignOut delivers a signal whenever a shift belonging to the
// employee is closed remotely. The cancel function releases the
// subscription; it never affects other subscribers.
func (t *Tracker) SubscribeSignOut(employeeID string) (<-chan struct{}, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSubID
	t.nextSubID++
	if t.signOuts[employeeID] == nil {
		t.signOuts[employeeID] = make(map[int]chan struct{})
	}
	ch := make(chan struct{}, 1)
	t.signOuts[employeeID][id] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		subs, ok := t.signOuts[employeeID]
		if !ok {
			return
		}
		if _, ok := subs[id]; ok {
			delete(subs, id)
			close(ch)
		}
		if len(subs) == 0 {
			delete(t.signOuts, employeeID)
		}
	}
	return ch, cancel
}

func (t *Tracker) cached(locationID string) []domain.StaffMember {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastKnown[locationID]
}
