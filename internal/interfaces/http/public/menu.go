package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
)

// menuHandler returns the active upsell vocabulary for the location, the
// item grid the staff UI renders.
func (h *Handler) menuHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		locationID := strings.TrimSpace(chi.URLParam(r, "id"))
		if locationID == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "location id is required"})
			return
		}

		items, err := h.menuItems.FindByLocation(ctx, locationID, true)
		if err != nil {
			h.logger.Printf("menu list: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "menu unavailable"})
			return
		}

		responses := make([]menuItemResponse, 0, len(items))
		for _, item := range items {
			responses = append(responses, menuItemResponse{
				ID:       item.ID,
				Name:     item.Name,
				Category: item.Category,
				Icon:     item.Icon,
				PriceSEK: item.PriceSEK,
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"items": responses})
	}
}
