package public

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
)

// Handler wires the staff-facing HTTP endpoints to the leaderboard core.
type Handler struct {
	logger       *log.Logger
	locations    application.LocationRepository
	employees    application.EmployeeRepository
	shifts       application.ShiftRepository
	transactions application.TransactionRepository
	menuItems    application.MenuItemRepository
	tracker      *application.Tracker
	schedulers   *application.SchedulerRegistry
	issueToken   func(user common.AuthenticatedUser, shiftID string) (string, time.Time, error)
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger       *log.Logger
	Locations    application.LocationRepository
	Employees    application.EmployeeRepository
	Shifts       application.ShiftRepository
	Transactions application.TransactionRepository
	MenuItems    application.MenuItemRepository
	Tracker      *application.Tracker
	Schedulers   *application.SchedulerRegistry
	IssueToken   func(user common.AuthenticatedUser, shiftID string) (string, time.Time, error)
}

// NewHandler constructs the public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:       cfg.Logger,
		locations:    cfg.Locations,
		employees:    cfg.Employees,
		shifts:       cfg.Shifts,
		transactions: cfg.Transactions,
		menuItems:    cfg.MenuItems,
		tracker:      cfg.Tracker,
		schedulers:   cfg.Schedulers,
		issueToken:   cfg.IssueToken,
	}
}

// Register mounts all public routes onto the router. The leaderboard stream
// uses optional auth so a public wall display can watch without a token
// while signed-in staff additionally receive forced sign-out events.
func (h *Handler) Register(r chi.Router, authMiddleware, optionalAuthMiddleware func(http.Handler) http.Handler) {
	r.Post("/auth/clock-in", h.clockInHandler())
	r.With(authMiddleware).Post("/auth/clock-out", h.clockOutHandler())
	r.With(authMiddleware).Get("/auth/verify", h.authVerifyHandler())

	r.Get("/locations", h.locationListHandler())
	r.Get("/locations/{id}/menu", h.menuHandler())
	r.Get("/locations/{id}/staff", h.staffHandler())
	r.Get("/locations/{id}/leaderboard", h.leaderboardHandler())
	r.With(optionalAuthMiddleware).Get("/locations/{id}/leaderboard/stream", h.leaderboardStreamHandler())

	r.With(authMiddleware).Post("/upsells", h.upsellCreateHandler())
}
