package public

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// clockInHandler registers the employee (first visit creates the record),
// opens a shift and issues a staff token. This replaces the old
// localStorage-only sign-in: the token is what a forced sign-out later
// invalidates.
func (h *Handler) clockInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var req clockInRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}
		if utf8.RuneCountInString(name) > common.MaxEmployeeNameRunes {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "name is too long"})
			return
		}

		locationID := strings.TrimSpace(req.LocationID)
		if _, err := h.locations.FindByID(ctx, locationID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				common.WriteJSON(h.logger, w, http.StatusNotFound, map[string]string{"error": "unknown location"})
				return
			}
			h.logger.Printf("clock-in: location lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "clock-in failed"})
			return
		}

		employee, err := h.employees.UpsertByName(ctx, locationID, name)
		if err != nil {
			h.logger.Printf("clock-in: employee upsert failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "clock-in failed"})
			return
		}

		shift := &domain.Shift{
			EmployeeID: employee.ID,
			LocationID: locationID,
			StartedAt:  time.Now().UTC(),
		}
		if err := h.shifts.Open(ctx, shift); err != nil {
			h.logger.Printf("clock-in: shift open failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "clock-in failed"})
			return
		}

		user := common.AuthenticatedUser{
			EmployeeID: employee.ID,
			Name:       employee.Name,
			LocationID: locationID,
			Role:       common.RoleStaff,
		}
		token, expiresAt, err := h.issueToken(user, shift.ID)
		if err != nil {
			h.logger.Printf("clock-in: token issue failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "clock-in failed"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, clockInResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			User:      user,
			ShiftID:   shift.ID,
		})
	}
}

// clockOutHandler closes every open shift the viewer holds. The change feed
// picks the update up and recomputes the leaderboard; other viewers signed
// in as the same employee are forced out via their streams.
func (h *Handler) clockOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok || user.Role != common.RoleStaff {
			common.WriteJSON(h.logger, w, http.StatusForbidden, map[string]string{"error": "staff token required"})
			return
		}

		closed, err := h.shifts.CloseByEmployee(ctx, user.EmployeeID, time.Now().UTC())
		if err != nil {
			h.logger.Printf("clock-out: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "clock-out failed"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, clockOutResponse{
			Status:       "clocked_out",
			ClosedShifts: closed,
		})
	}
}

func (h *Handler) authVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "missing auth context"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"status": "ok",
			"user":   user,
		})
	}
}
