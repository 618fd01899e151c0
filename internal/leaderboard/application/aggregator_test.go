package application

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

var testLogger = log.New(io.Discard, "", 0)

func testMenuItems() *fakeMenuItemRepository {
	return &fakeMenuItemRepository{items: map[string]domain.MenuItem{
		"item-pie":    {ID: "item-pie", Name: "Äppelpaj", LocationID: "loc-1", Active: true},
		"item-coffee": {ID: "item-coffee", Name: "Kaffe", LocationID: "loc-1", Active: true},
		"item-dip":    {ID: "item-dip", Name: "Dipsås", LocationID: "loc-1", Active: false},
	}}
}

func TestAggregateSumsLinesPerActiveEmployee(t *testing.T) {
	base := time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC)
	now := base.Add(9 * time.Hour)

	txs := &fakeTransactionRepository{txs: []domain.Transaction{
		{
			ID: "tx-1", EmployeeID: "emp-a", LocationID: "loc-1", CreatedAt: base.Add(2 * time.Hour),
			Lines: []domain.LineEntry{{MenuItemID: "item-pie", Quantity: 2}, {MenuItemID: "item-coffee", Quantity: 1}},
		},
		{
			ID: "tx-2", EmployeeID: "emp-a", LocationID: "loc-1", CreatedAt: base.Add(3 * time.Hour),
			Lines: []domain.LineEntry{{MenuItemID: "item-coffee", Quantity: 2}},
		},
		{
			ID: "tx-3", EmployeeID: "emp-b", LocationID: "loc-1", CreatedAt: base.Add(4 * time.Hour),
			Lines: []domain.LineEntry{{MenuItemID: "item-dip", Quantity: 3}},
		},
	}}
	aggregator := NewAggregator(txs, testMenuItems(), testLogger)

	active := []domain.StaffMember{
		{EmployeeID: "emp-a", Name: "Elsa", ClockedInAt: base},
		{EmployeeID: "emp-b", Name: "Hugo", ClockedInAt: base.Add(time.Hour)},
	}
	snapshot, err := aggregator.Aggregate(context.Background(), "loc-1", active, base, now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(snapshot.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snapshot.Rows))
	}
	if snapshot.Rows[0].EmployeeID != "emp-a" || snapshot.Rows[0].Total != 5 {
		t.Fatalf("expected emp-a first with total 5, got %s/%d", snapshot.Rows[0].EmployeeID, snapshot.Rows[0].Total)
	}
	if got := snapshot.Rows[0].Items["Kaffe"]; got != 3 {
		t.Fatalf("expected 3 Kaffe for emp-a, got %d", got)
	}
	if snapshot.Rows[1].EmployeeID != "emp-b" || snapshot.Rows[1].Total != 3 {
		t.Fatalf("expected emp-b second with total 3, got %s/%d", snapshot.Rows[1].EmployeeID, snapshot.Rows[1].Total)
	}
	if got := snapshot.Rows[1].Items["Dipsås"]; got != 3 {
		t.Fatalf("inactive items must still resolve for history, got %d", got)
	}
}

func TestAggregateExcludesClockedOutStaff(t *testing.T) {
	base := time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC)
	now := base.Add(9 * time.Hour)

	txs := &fakeTransactionRepository{txs: []domain.Transaction{
		{
			ID: "tx-1", EmployeeID: "emp-a", LocationID: "loc-1", CreatedAt: base.Add(time.Hour),
			Lines: []domain.LineEntry{{MenuItemID: "item-coffee", Quantity: 3}},
		},
		{
			ID: "tx-2", EmployeeID: "emp-gone", LocationID: "loc-1", CreatedAt: base.Add(time.Hour),
			Lines: []domain.LineEntry{{MenuItemID: "item-coffee", Quantity: 9}},
		},
	}}
	aggregator := NewAggregator(txs, testMenuItems(), testLogger)

	active := []domain.StaffMember{{EmployeeID: "emp-a", Name: "Elsa", ClockedInAt: base}}
	snapshot, err := aggregator.Aggregate(context.Background(), "loc-1", active, base, now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(snapshot.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(snapshot.Rows))
	}
	if snapshot.Rows[0].EmployeeID != "emp-a" || snapshot.Rows[0].Total != 3 {
		t.Fatalf("clocked-out staff must not contribute, got %s/%d", snapshot.Rows[0].EmployeeID, snapshot.Rows[0].Total)
	}
}

func TestAggregateZeroRowForStaffWithoutTransactions(t *testing.T) {
	base := time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC)

	txs := &fakeTransactionRepository{}
	aggregator := NewAggregator(txs, testMenuItems(), testLogger)

	active := []domain.StaffMember{{EmployeeID: "emp-a", Name: "Elsa", ClockedInAt: base}}
	snapshot, err := aggregator.Aggregate(context.Background(), "loc-1", active, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(snapshot.Rows) != 1 {
		t.Fatalf("expected a zero row, got %d rows", len(snapshot.Rows))
	}
	if snapshot.Rows[0].Total != 0 || len(snapshot.Rows[0].Items) != 0 {
		t.Fatalf("expected empty row, got total=%d items=%v", snapshot.Rows[0].Total, snapshot.Rows[0].Items)
	}
}

func TestAggregateDropsDanglingMenuItemLines(t *testing.T) {
	base := time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC)

	txs := &fakeTransactionRepository{txs: []domain.Transaction{
		{
			ID: "tx-1", EmployeeID: "emp-a", LocationID: "loc-1", CreatedAt: base.Add(time.Hour),
			Lines: []domain.LineEntry{
				{MenuItemID: "item-deleted", Quantity: 4},
				{MenuItemID: "item-coffee", Quantity: 1},
			},
		},
	}}
	aggregator := NewAggregator(txs, testMenuItems(), testLogger)

	active := []domain.StaffMember{{EmployeeID: "emp-a", Name: "Elsa", ClockedInAt: base}}
	snapshot, err := aggregator.Aggregate(context.Background(), "loc-1", active, base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if snapshot.Rows[0].Total != 1 {
		t.Fatalf("dangling line must be dropped, not counted: total=%d", snapshot.Rows[0].Total)
	}
	if _, ok := snapshot.Rows[0].Items["Kaffe"]; !ok {
		t.Fatalf("surviving line missing from items: %v", snapshot.Rows[0].Items)
	}
}

func TestAggregateKeepsTieOrderStable(t *testing.T) {
	base := time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC)

	txs := &fakeTransactionRepository{txs: []domain.Transaction{
		{
			ID: "tx-1", EmployeeID: "emp-a", LocationID: "loc-1", CreatedAt: base.Add(time.Hour),
			Lines: []domain.LineEntry{{MenuItemID: "item-coffee", Quantity: 2}},
		},
		{
			ID: "tx-2", EmployeeID: "emp-b", LocationID: "loc-1", CreatedAt: base.Add(time.Hour),
			Lines: []domain.LineEntry{{MenuItemID: "item-pie", Quantity: 2}},
		},
	}}
	aggregator := NewAggregator(txs, testMenuItems(), testLogger)

	// emp-b clocked in first and therefore precedes emp-a in the input.
	active := []domain.StaffMember{
		{EmployeeID: "emp-b", Name: "Hugo", ClockedInAt: base},
		{EmployeeID: "emp-a", Name: "Elsa", ClockedInAt: base.Add(time.Minute)},
	}

	for i := 0; i < 3; i++ {
		snapshot, err := aggregator.Aggregate(context.Background(), "loc-1", active, base, base.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		if snapshot.Rows[0].EmployeeID != "emp-b" || snapshot.Rows[1].EmployeeID != "emp-a" {
			t.Fatalf("tie order changed on pass %d: %s, %s", i, snapshot.Rows[0].EmployeeID, snapshot.Rows[1].EmployeeID)
		}
	}
}

func TestDayWindowStartsAtLocalMidnight(t *testing.T) {
	stockholm := time.FixedZone("CET", 1*60*60)
	// 23:30 UTC is 00:30 the next day in CET.
	now := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)

	start, end := DayWindow(now, stockholm)
	if !start.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, stockholm)) {
		t.Fatalf("unexpected window start: %v", start)
	}
	if !end.Equal(now) {
		t.Fatalf("unexpected window end: %v", end)
	}
}
