package admin

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
)

// exportHandler streams today's upsells as CSV, one row per line entry.
// It is a read-only consumer of the transaction data and performs no
// aggregation of its own.
func (h *Handler) exportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		zone := h.locationZone(ctx, user.LocationID)
		windowStart, windowEnd := application.DayWindow(time.Now(), zone)

		txs, err := h.transactions.FindByLocationWindow(ctx, user.LocationID, windowStart, windowEnd)
		if err != nil {
			h.logger.Printf("export: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "export unavailable"})
			return
		}

		itemNames, err := h.resolveItemNames(ctx, txs)
		if err != nil {
			h.logger.Printf("export: menu item lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "export unavailable"})
			return
		}
		employeeNames, err := h.resolveEmployeeNames(ctx, txs)
		if err != nil {
			h.logger.Printf("export: employee lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "export unavailable"})
			return
		}

		filename := fmt.Sprintf("upsells-%s.csv", windowStart.Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
		w.WriteHeader(http.StatusOK)

		writer := csv.NewWriter(w)
		_ = writer.Write([]string{"time", "employee", "item", "quantity", "order_number"})
		for _, tx := range txs {
			employeeName, ok := employeeNames[tx.EmployeeID]
			if !ok {
				employeeName = "(deleted employee)"
			}
			for _, line := range tx.Lines {
				itemName, ok := itemNames[line.MenuItemID]
				if !ok {
					itemName = "(deleted item)"
				}
				_ = writer.Write([]string{
					tx.CreatedAt.In(zone).Format("15:04:05"),
					employeeName,
					itemName,
					strconv.Itoa(line.Quantity),
					tx.OrderNumber,
				})
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			h.logger.Printf("export: csv write failed: %v", err)
		}
	}
}
