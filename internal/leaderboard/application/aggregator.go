package application

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

// Aggregator computes a leaderboard snapshot from today's transactions and
// the active-staff set it is handed. It holds no state of its own: two calls
// with identical inputs produce identical snapshots (the scheduler assigns
// the version afterwards).
type Aggregator struct {
	transactions TransactionRepository
	menuItems    MenuItemRepository
	logger       *log.Logger
}

// NewAggregator creates an aggregator backed by the given repositories.
func NewAggregator(transactions TransactionRepository, menuItems MenuItemRepository, logger *log.Logger) *Aggregator {
	return &Aggregator{transactions: transactions, menuItems: menuItems, logger: logger}
}

// Aggregate folds the location's transactions within [windowStart, windowEnd)
// into one ranked row per active staff member. Staff with no transactions get
// a zero row; transactions from staff outside the active set are excluded.
// A line entry whose menu item no longer resolves is dropped and logged, the
// rest of the aggregation continues.
func (a *Aggregator) Aggregate(ctx context.Context, locationID string, active []domain.StaffMember, windowStart, windowEnd time.Time) (domain.Snapshot, error) {
	txs, err := a.transactions.FindByLocationWindow(ctx, locationID, windowStart, windowEnd)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("transactions for %s: %w: %v", locationID, ErrTransientQuery, err)
	}

	itemNames, err := a.resolveItemNames(ctx, txs)
	if err != nil {
		return domain.Snapshot{}, err
	}

	rows := make([]domain.LeaderboardRow, 0, len(active))
	index := make(map[string]int, len(active))
	for _, member := range active {
		index[member.EmployeeID] = len(rows)
		rows = append(rows, domain.LeaderboardRow{
			EmployeeID: member.EmployeeID,
			Name:       member.Name,
			Items:      make(map[string]int),
		})
	}

	for _, tx := range txs {
		i, ok := index[tx.EmployeeID]
		if !ok {
			// Employee has no open shift at computation time.
			continue
		}
		for _, line := range tx.Lines {
			name, ok := itemNames[line.MenuItemID]
			if !ok {
				a.logger.Printf("aggregate %s: %v", locationID, &DanglingRefError{Kind: "menu item", ID: line.MenuItemID})
				continue
			}
			rows[i].Total += line.Quantity
			rows[i].Items[name] += line.Quantity
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})

	return domain.Snapshot{
		LocationID:  locationID,
		ComputedAt:  windowEnd,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		ActiveStaff: append([]domain.StaffMember(nil), active...),
		Rows:        rows,
	}, nil
}

// resolveItemNames loads display names for every menu item referenced by the
// transactions, inactive items included so history keeps rendering.
func (a *Aggregator) resolveItemNames(ctx context.Context, txs []domain.Transaction) (map[string]string, error) {
	idSet := make(map[string]struct{})
	for _, tx := range txs {
		for _, line := range tx.Lines {
			idSet[line.MenuItemID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	items, err := a.menuItems.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve menu items: %w: %v", ErrTransientQuery, err)
	}

	names := make(map[string]string, len(items))
	for id, item := range items {
		names[id] = item.Name
	}
	return names, nil
}
