package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

type fakeLocationRepository struct {
	locations map[string]domain.Location
}

func (f *fakeLocationRepository) FindByID(_ context.Context, id string) (*domain.Location, error) {
	location, ok := f.locations[id]
	if !ok {
		return nil, errors.New("location not found")
	}
	return &location, nil
}

func (f *fakeLocationRepository) Find(_ context.Context) ([]domain.Location, error) {
	out := make([]domain.Location, 0, len(f.locations))
	for _, location := range f.locations {
		out = append(out, location)
	}
	return out, nil
}

type fakeShiftRepository struct {
	mu   sync.Mutex
	open []domain.Shift
	err  error
}

func (f *fakeShiftRepository) FindOpenByLocation(_ context.Context, locationID string) ([]domain.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Shift
	for _, shift := range f.open {
		if shift.LocationID == locationID {
			out = append(out, shift)
		}
	}
	return out, nil
}

func (f *fakeShiftRepository) Open(_ context.Context, shift *domain.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = append(f.open, *shift)
	return nil
}

func (f *fakeShiftRepository) CloseByEmployee(_ context.Context, employeeID string, endedAt time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	closed := 0
	kept := f.open[:0]
	for _, shift := range f.open {
		if shift.EmployeeID == employeeID && shift.Open() {
			closed++
			continue
		}
		kept = append(kept, shift)
	}
	f.open = kept
	return closed, nil
}

func (f *fakeShiftRepository) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeShiftRepository) setOpen(shifts []domain.Shift) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = shifts
	f.err = nil
}

type fakeEmployeeRepository struct {
	mu        sync.Mutex
	employees map[string]domain.Employee
	err       error
}

func (f *fakeEmployeeRepository) FindByID(_ context.Context, id string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	employee, ok := f.employees[id]
	if !ok {
		return nil, nil
	}
	return &employee, nil
}

func (f *fakeEmployeeRepository) FindByIDs(_ context.Context, ids []string) (map[string]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]domain.Employee)
	for _, id := range ids {
		if employee, ok := f.employees[id]; ok {
			out[id] = employee
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepository) UpsertByName(_ context.Context, locationID, name string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, employee := range f.employees {
		if employee.LocationID == locationID && employee.Name == name {
			return &employee, nil
		}
	}
	employee := domain.Employee{ID: "emp-" + name, Name: name, LocationID: locationID}
	if f.employees == nil {
		f.employees = make(map[string]domain.Employee)
	}
	f.employees[employee.ID] = employee
	return &employee, nil
}

// fakeTransactionRepository optionally blocks queries so tests can hold an
// aggregation pass open at a known point.
type fakeTransactionRepository struct {
	mu      sync.Mutex
	txs     []domain.Transaction
	err     error
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (f *fakeTransactionRepository) FindByLocationWindow(_ context.Context, locationID string, start, end time.Time) ([]domain.Transaction, error) {
	f.mu.Lock()
	f.calls++
	entered, release, err := f.entered, f.release, f.err
	txs := append([]domain.Transaction(nil), f.txs...)
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}

	var out []domain.Transaction
	for _, tx := range txs {
		if tx.LocationID != locationID {
			continue
		}
		if tx.CreatedAt.Before(start) || !tx.CreatedAt.Before(end) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeTransactionRepository) FindByLocation(_ context.Context, locationID string, _ Paging) ([]domain.Transaction, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range f.txs {
		if tx.LocationID == locationID {
			out = append(out, tx)
		}
	}
	return out, len(out), nil
}

func (f *fakeTransactionRepository) Create(_ context.Context, tx *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeTransactionRepository) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTransactionRepository) setGate(entered, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entered = entered
	f.release = release
}

func (f *fakeTransactionRepository) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeMenuItemRepository struct {
	mu    sync.Mutex
	items map[string]domain.MenuItem
	err   error
}

func (f *fakeMenuItemRepository) FindByLocation(_ context.Context, locationID string, activeOnly bool) ([]domain.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.MenuItem
	for _, item := range f.items {
		if item.LocationID != locationID {
			continue
		}
		if activeOnly && !item.Active {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeMenuItemRepository) FindByIDs(_ context.Context, ids []string) (map[string]domain.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]domain.MenuItem)
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (f *fakeMenuItemRepository) Create(_ context.Context, item *domain.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items == nil {
		f.items = make(map[string]domain.MenuItem)
	}
	if item.ID == "" {
		item.ID = "item-" + item.Name
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeMenuItemRepository) Update(_ context.Context, id string, patch MenuItemPatch) (*domain.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, f.err
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Active != nil {
		item.Active = *patch.Active
	}
	f.items[id] = item
	return &item, nil
}
