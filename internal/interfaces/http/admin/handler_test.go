package admin

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

var testLogger = log.New(io.Discard, "", 0)

type fakeManagerAccess struct {
	passwords map[string]string
}

func (f *fakeManagerAccess) Password(_ context.Context, locationID string) (string, error) {
	password, ok := f.passwords[locationID]
	if !ok {
		return "", mongo.ErrNoDocuments
	}
	return password, nil
}

type fakeLocations struct {
	timezone string
}

func (f *fakeLocations) FindByID(_ context.Context, id string) (*domain.Location, error) {
	return &domain.Location{ID: id, Name: "McDonald's Kungsgatan", Timezone: f.timezone}, nil
}

func (f *fakeLocations) Find(_ context.Context) ([]domain.Location, error) {
	return nil, nil
}

type fakeEmployees struct {
	employees map[string]domain.Employee
}

func (f *fakeEmployees) FindByID(_ context.Context, id string) (*domain.Employee, error) {
	employee, ok := f.employees[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &employee, nil
}

func (f *fakeEmployees) FindByIDs(_ context.Context, ids []string) (map[string]domain.Employee, error) {
	out := make(map[string]domain.Employee)
	for _, id := range ids {
		if employee, ok := f.employees[id]; ok {
			out[id] = employee
		}
	}
	return out, nil
}

func (f *fakeEmployees) UpsertByName(_ context.Context, locationID, name string) (*domain.Employee, error) {
	return nil, nil
}

type fakeTransactions struct {
	txs []domain.Transaction
}

func (f *fakeTransactions) FindByLocationWindow(_ context.Context, locationID string, start, end time.Time) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range f.txs {
		if tx.LocationID == locationID && !tx.CreatedAt.Before(start) && tx.CreatedAt.Before(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactions) FindByLocation(_ context.Context, locationID string, _ application.Paging) ([]domain.Transaction, int, error) {
	return append([]domain.Transaction(nil), f.txs...), len(f.txs), nil
}

func (f *fakeTransactions) Create(_ context.Context, _ *domain.Transaction) error { return nil }

type fakeMenuItems struct {
	items map[string]domain.MenuItem
}

func (f *fakeMenuItems) FindByLocation(_ context.Context, _ string, _ bool) ([]domain.MenuItem, error) {
	return nil, nil
}

func (f *fakeMenuItems) FindByIDs(_ context.Context, ids []string) (map[string]domain.MenuItem, error) {
	out := make(map[string]domain.MenuItem)
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (f *fakeMenuItems) Create(_ context.Context, item *domain.MenuItem) error {
	item.ID = "item-new"
	if f.items == nil {
		f.items = make(map[string]domain.MenuItem)
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeMenuItems) Update(_ context.Context, id string, patch application.MenuItemPatch) (*domain.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
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

func newTestRouter(t *testing.T, role string) (*chi.Mux, *fakeTransactions, *fakeMenuItems) {
	t.Helper()
	return newTestRouterWithZones(t, role, time.UTC, "")
}

func newTestRouterWithZones(t *testing.T, role string, defaultZone *time.Location, locationTZ string) (*chi.Mux, *fakeTransactions, *fakeMenuItems) {
	t.Helper()

	transactions := &fakeTransactions{txs: []domain.Transaction{
		{
			ID: "tx-1", EmployeeID: "emp-a", LocationID: "loc-1", OrderNumber: "07",
			CreatedAt: time.Now().Add(-2 * time.Minute),
			Lines:     []domain.LineEntry{{MenuItemID: "item-pie", Quantity: 2}},
		},
		{
			ID: "tx-2", EmployeeID: "emp-b", LocationID: "loc-1", OrderNumber: "12",
			CreatedAt: time.Now().Add(-time.Minute),
			Lines:     []domain.LineEntry{{MenuItemID: "item-coffee", Quantity: 1}},
		},
	}}
	menuItems := &fakeMenuItems{items: map[string]domain.MenuItem{
		"item-pie":    {ID: "item-pie", Name: "Äppelpaj", LocationID: "loc-1", Active: true},
		"item-coffee": {ID: "item-coffee", Name: "Kaffe", LocationID: "loc-1", Active: true},
	}}

	handler := NewHandler(Config{
		Logger:        testLogger,
		ManagerAccess: &fakeManagerAccess{passwords: map[string]string{"loc-1": "chef123"}},
		Locations:     &fakeLocations{timezone: locationTZ},
		Employees: &fakeEmployees{employees: map[string]domain.Employee{
			"emp-a": {ID: "emp-a", Name: "Elsa", LocationID: "loc-1"},
			"emp-b": {ID: "emp-b", Name: "Hugo", LocationID: "loc-1"},
		}},
		Transactions: transactions,
		MenuItems:    menuItems,
		Timezone:     defaultZone,
		IssueToken: func(user common.AuthenticatedUser, _ string) (string, time.Time, error) {
			return "manager-token", time.Now().Add(time.Hour), nil
		},
		AuthMiddleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user := common.AuthenticatedUser{LocationID: "loc-1", Role: role}
				next.ServeHTTP(w, r.WithContext(common.ContextWithUser(r.Context(), user)))
			})
		},
	})

	router := chi.NewRouter()
	router.Route("/admin", handler.Register)
	return router, transactions, menuItems
}

func TestLoginIssuesManagerToken(t *testing.T) {
	router, _, _ := newTestRouter(t, common.RoleManager)

	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"locationId":"loc-1","password":"chef123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string                   `json:"token"`
		User  common.AuthenticatedUser `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" || resp.User.Role != common.RoleManager || resp.User.LocationID != "loc-1" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router, _, _ := newTestRouter(t, common.RoleManager)

	for _, body := range []string{
		`{"locationId":"loc-1","password":"wrong"}`,
		`{"locationId":"loc-unknown","password":"chef123"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("body %s: expected 401, got %d", body, rec.Code)
		}
	}
}

func TestManagerRoutesRejectStaffTokens(t *testing.T) {
	router, _, _ := newTestRouter(t, common.RoleStaff)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats/today", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff token, got %d", rec.Code)
	}
}

func TestTodayStatsCountsAllStaff(t *testing.T) {
	router, _, _ := newTestRouter(t, common.RoleManager)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats/today", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total  int            `json:"total"`
		ByItem map[string]int `json:"byItem"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("expected 3 units across both employees, got %d", resp.Total)
	}
	if resp.ByItem["Äppelpaj"] != 2 || resp.ByItem["Kaffe"] != 1 {
		t.Fatalf("unexpected per-item counts: %v", resp.ByItem)
	}
}

func TestTodayStatsUsesLocationTimezone(t *testing.T) {
	// The location configures UTC; the server default is an hour ahead.
	router, _, _ := newTestRouterWithZones(t, common.RoleManager, time.FixedZone("CET", 1*60*60), "UTC")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats/today", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		From time.Time `json:"from"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, offset := resp.From.Zone(); offset != 0 {
		t.Fatalf("window must open at the location's midnight, got offset %d", offset)
	}
}

func TestExportWritesCSV(t *testing.T) {
	router, _, _ := newTestRouter(t, common.RoleManager)

	req := httptest.NewRequest(http.MethodGet, "/admin/upsells/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("unexpected content type: %s", got)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "time" || records[0][1] != "employee" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "Elsa" || records[1][2] != "Äppelpaj" || records[1][3] != "2" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
}

func TestMenuItemCreateAndDeactivate(t *testing.T) {
	router, _, menuItems := newTestRouter(t, common.RoleManager)

	req := httptest.NewRequest(http.MethodPost, "/admin/menu-items",
		strings.NewReader(`{"name":"McFlurry","category":"Glass","icon":"🍦","priceSek":35}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := menuItems.items["item-new"]
	if created.Name != "McFlurry" || !created.Active || created.LocationID != "loc-1" {
		t.Fatalf("unexpected created item: %+v", created)
	}

	req = httptest.NewRequest(http.MethodPatch, "/admin/menu-items/item-new",
		strings.NewReader(`{"active":false}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if menuItems.items["item-new"].Active {
		t.Fatal("item must be deactivated")
	}

	req = httptest.NewRequest(http.MethodPatch, "/admin/menu-items/item-missing",
		strings.NewReader(`{"active":false}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown item, got %d", rec.Code)
	}
}
