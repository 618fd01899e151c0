package admin

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
)

// Handler wires the manager panel endpoints. Every route except login
// requires a manager token scoped to one location.
type Handler struct {
	logger         *log.Logger
	managerAccess  application.ManagerAccessRepository
	locations      application.LocationRepository
	employees      application.EmployeeRepository
	transactions   application.TransactionRepository
	menuItems      application.MenuItemRepository
	timezone       *time.Location
	issueToken     func(user common.AuthenticatedUser, shiftID string) (string, time.Time, error)
	authMiddleware func(http.Handler) http.Handler
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	ManagerAccess  application.ManagerAccessRepository
	Locations      application.LocationRepository
	Employees      application.EmployeeRepository
	Transactions   application.TransactionRepository
	MenuItems      application.MenuItemRepository
	Timezone       *time.Location
	IssueToken     func(user common.AuthenticatedUser, shiftID string) (string, time.Time, error)
	AuthMiddleware func(http.Handler) http.Handler
}

// NewHandler constructs the admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:         cfg.Logger,
		managerAccess:  cfg.ManagerAccess,
		locations:      cfg.Locations,
		employees:      cfg.Employees,
		transactions:   cfg.Transactions,
		menuItems:      cfg.MenuItems,
		timezone:       cfg.Timezone,
		issueToken:     cfg.IssueToken,
		authMiddleware: cfg.AuthMiddleware,
	}
}

// Register mounts the admin routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.loginHandler())

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Use(h.requireManager)
		r.Get("/stats/today", h.todayStatsHandler())
		r.Get("/upsells", h.transactionLogHandler())
		r.Get("/upsells/export", h.exportHandler())
		r.Post("/menu-items", h.menuItemCreateHandler())
		r.Patch("/menu-items/{id}", h.menuItemUpdateHandler())
	})
}

// locationZone resolves the location's configured timezone, falling back to
// the service default when the location is unknown, has no zone, or names
// one the host cannot load.
func (h *Handler) locationZone(ctx context.Context, locationID string) *time.Location {
	location, err := h.locations.FindByID(ctx, locationID)
	if err != nil || location.Timezone == "" {
		return h.timezone
	}
	zone, err := time.LoadLocation(location.Timezone)
	if err != nil {
		h.logger.Printf("location %s: timezone %s could not be loaded: %v", locationID, location.Timezone, err)
		return h.timezone
	}
	return zone
}

// requireManager rejects staff tokens on manager-only routes.
func (h *Handler) requireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok || user.Role != common.RoleManager {
			common.WriteJSON(h.logger, w, http.StatusForbidden, map[string]string{"error": "manager token required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
