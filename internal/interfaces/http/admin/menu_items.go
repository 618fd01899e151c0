package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

type menuItemCreateRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Icon     string `json:"icon"`
	PriceSEK int    `json:"priceSek"`
}

type menuItemUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type menuItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Icon     string `json:"icon,omitempty"`
	PriceSEK int    `json:"priceSek,omitempty"`
	Active   bool   `json:"active"`
}

// menuItemCreateHandler adds a new item to the location's upsell
// vocabulary.
func (h *Handler) menuItemCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())

		var req menuItemCreateRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}

		item := &domain.MenuItem{
			Name:       req.Name,
			LocationID: user.LocationID,
			Category:   strings.TrimSpace(req.Category),
			Icon:       strings.TrimSpace(req.Icon),
			PriceSEK:   req.PriceSEK,
			Active:     true,
		}
		if err := h.menuItems.Create(ctx, item); err != nil {
			h.logger.Printf("menu item create: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "creation failed"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, buildMenuItemResponse(*item))
	}
}

// menuItemUpdateHandler renames or (de)activates an item. Deactivation
// removes it from the grid going forward; existing transactions keep
// resolving it for display.
func (h *Handler) menuItemUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "menu item id is required"})
			return
		}

		var req menuItemUpdateRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if req.Name == nil && req.Active == nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "nothing to update"})
			return
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "name must not be empty"})
			return
		}

		// Ownership check before mutating: managers only touch their own
		// location's vocabulary.
		existing, err := h.menuItems.FindByIDs(ctx, []string{id})
		if err != nil {
			h.logger.Printf("menu item update: lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "update failed"})
			return
		}
		if current, ok := existing[id]; !ok || current.LocationID != user.LocationID {
			common.WriteJSON(h.logger, w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}

		item, err := h.menuItems.Update(ctx, id, application.MenuItemPatch{Name: req.Name, Active: req.Active})
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				common.WriteJSON(h.logger, w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
				return
			}
			h.logger.Printf("menu item update: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "update failed"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildMenuItemResponse(*item))
	}
}

func buildMenuItemResponse(item domain.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Category,
		Icon:     item.Icon,
		PriceSEK: item.PriceSEK,
		Active:   item.Active,
	}
}
