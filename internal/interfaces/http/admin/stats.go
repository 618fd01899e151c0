package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

type todayStatsResponse struct {
	LocationID string         `json:"locationId"`
	From       time.Time      `json:"from"`
	To         time.Time      `json:"to"`
	Total      int            `json:"total"`
	ByItem     map[string]int `json:"byItem"`
}

// todayStatsHandler counts all of today's upsells for the manager overview.
// Unlike the leaderboard it includes staff who have already clocked out.
func (h *Handler) todayStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		windowStart, windowEnd := application.DayWindow(time.Now(), h.locationZone(ctx, user.LocationID))

		txs, err := h.transactions.FindByLocationWindow(ctx, user.LocationID, windowStart, windowEnd)
		if err != nil {
			h.logger.Printf("today stats: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
			return
		}

		itemNames, err := h.resolveItemNames(ctx, txs)
		if err != nil {
			h.logger.Printf("today stats: menu item lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
			return
		}

		total := 0
		byItem := make(map[string]int)
		for _, tx := range txs {
			for _, line := range tx.Lines {
				name, ok := itemNames[line.MenuItemID]
				if !ok {
					continue
				}
				total += line.Quantity
				byItem[name] += line.Quantity
			}
		}

		common.WriteJSON(h.logger, w, http.StatusOK, todayStatsResponse{
			LocationID: user.LocationID,
			From:       windowStart,
			To:         windowEnd,
			Total:      total,
			ByItem:     byItem,
		})
	}
}

// resolveItemNames maps the menu item identifiers referenced by the
// transactions to display names, inactive items included.
func (h *Handler) resolveItemNames(ctx context.Context, txs []domain.Transaction) (map[string]string, error) {
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

	items, err := h.menuItems.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(items))
	for id, item := range items {
		names[id] = item.Name
	}
	return names, nil
}
