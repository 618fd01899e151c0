package public

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

// orderNumberPattern matches the two-digit order tags used on the floor.
var orderNumberPattern = regexp.MustCompile(`^\d{2}$`)

// upsellCreateHandler records one transaction: the upsold items an employee
// logged against a single order. Transactions are immutable; the server
// assigns the timestamp.
func (h *Handler) upsellCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok || user.Role != common.RoleStaff {
			common.WriteJSON(h.logger, w, http.StatusForbidden, map[string]string{"error": "staff token required"})
			return
		}

		var req upsellCreateRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		orderNumber := strings.TrimSpace(req.OrderNumber)
		if !orderNumberPattern.MatchString(orderNumber) {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "order number must be two digits"})
			return
		}
		if len(req.Lines) == 0 {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "at least one line entry is required"})
			return
		}
		if len(req.Lines) > common.MaxUpsellLines {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "too many line entries"})
			return
		}

		lines := make([]domain.LineEntry, 0, len(req.Lines))
		itemIDs := make([]string, 0, len(req.Lines))
		for _, line := range req.Lines {
			if line.Quantity < 1 {
				common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "quantity must be at least 1"})
				return
			}
			itemID := strings.TrimSpace(line.MenuItemID)
			if itemID == "" {
				common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "menuItemId is required"})
				return
			}
			lines = append(lines, domain.LineEntry{MenuItemID: itemID, Quantity: line.Quantity})
			itemIDs = append(itemIDs, itemID)
		}

		items, err := h.menuItems.FindByIDs(ctx, itemIDs)
		if err != nil {
			h.logger.Printf("upsell create: menu item lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "submission failed"})
			return
		}
		for _, line := range lines {
			item, ok := items[line.MenuItemID]
			if !ok || item.LocationID != user.LocationID {
				common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "unknown menu item"})
				return
			}
			if !item.Active {
				common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "menu item is no longer offered"})
				return
			}
		}

		tx := &domain.Transaction{
			EmployeeID:  user.EmployeeID,
			LocationID:  user.LocationID,
			ShiftID:     common.ShiftIDFromContext(r.Context()),
			OrderNumber: orderNumber,
			Lines:       lines,
		}
		if err := h.transactions.Create(ctx, tx); err != nil {
			h.logger.Printf("upsell create: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "submission failed"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, upsellCreateResponse{
			Status:      "registered",
			ID:          tx.ID,
			Units:       tx.Units(),
			CreatedAt:   tx.CreatedAt,
			OrderNumber: tx.OrderNumber,
		})
	}
}
