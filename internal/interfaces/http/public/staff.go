package public

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
)

// staffHandler lists who is clocked in right now. A failing store query
// degrades to the last known set, flagged as stale, instead of hiding real
// staff from the board.
func (h *Handler) staffHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		locationID := strings.TrimSpace(chi.URLParam(r, "id"))
		if locationID == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "location id is required"})
			return
		}

		staff, err := h.tracker.ActiveStaff(ctx, locationID)
		if err != nil {
			if !errors.Is(err, application.ErrTransientQuery) || staff == nil {
				h.logger.Printf("staff list: %v", err)
				common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "staff list unavailable"})
				return
			}
			h.logger.Printf("staff list: serving stale set: %v", err)
			common.WriteJSON(h.logger, w, http.StatusOK, buildStaffResponse(staff, true))
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildStaffResponse(staff, false))
	}
}

func (h *Handler) locationListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		locations, err := h.locations.Find(ctx)
		if err != nil {
			h.logger.Printf("location list: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "location list unavailable"})
			return
		}

		items := make([]locationResponse, 0, len(locations))
		for _, location := range locations {
			items = append(items, locationResponse{
				ID:       location.ID,
				Name:     location.Name,
				Timezone: location.Timezone,
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"locations": items})
	}
}
