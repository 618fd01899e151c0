package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

type transactionLineResponse struct {
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

type transactionResponse struct {
	ID           string                    `json:"id"`
	EmployeeName string                    `json:"employeeName"`
	OrderNumber  string                    `json:"orderNumber,omitempty"`
	Lines        []transactionLineResponse `json:"lines"`
	Units        int                       `json:"units"`
	CreatedAt    time.Time                 `json:"createdAt"`
}

type transactionLogResponse struct {
	Items []transactionResponse `json:"items"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
	Total int                   `json:"total"`
}

// transactionLogHandler lists the location's upsells, latest first. Dangling
// employee or menu item references degrade to placeholder labels instead of
// failing the whole page.
func (h *Handler) transactionLogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		query := r.URL.Query()
		page, _ := common.ParsePositiveInt(query.Get("page"), 1)
		limit, _ := common.ParsePositiveInt(query.Get("limit"), 50)

		txs, total, err := h.transactions.FindByLocation(ctx, user.LocationID, application.Paging{Page: page, Limit: limit})
		if err != nil {
			h.logger.Printf("transaction log: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "transaction log unavailable"})
			return
		}

		itemNames, err := h.resolveItemNames(ctx, txs)
		if err != nil {
			h.logger.Printf("transaction log: menu item lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "transaction log unavailable"})
			return
		}
		employeeNames, err := h.resolveEmployeeNames(ctx, txs)
		if err != nil {
			h.logger.Printf("transaction log: employee lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "transaction log unavailable"})
			return
		}

		items := make([]transactionResponse, 0, len(txs))
		for _, tx := range txs {
			items = append(items, buildTransactionResponse(tx, employeeNames, itemNames))
		}

		common.WriteJSON(h.logger, w, http.StatusOK, transactionLogResponse{
			Items: items,
			Page:  page,
			Limit: limit,
			Total: total,
		})
	}
}

func (h *Handler) resolveEmployeeNames(ctx context.Context, txs []domain.Transaction) (map[string]string, error) {
	idSet := make(map[string]struct{})
	for _, tx := range txs {
		idSet[tx.EmployeeID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	employees, err := h.employees.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(employees))
	for id, employee := range employees {
		names[id] = employee.Name
	}
	return names, nil
}

func buildTransactionResponse(tx domain.Transaction, employeeNames, itemNames map[string]string) transactionResponse {
	employeeName, ok := employeeNames[tx.EmployeeID]
	if !ok {
		employeeName = "(deleted employee)"
	}

	lines := make([]transactionLineResponse, 0, len(tx.Lines))
	for _, line := range tx.Lines {
		itemName, ok := itemNames[line.MenuItemID]
		if !ok {
			itemName = "(deleted item)"
		}
		lines = append(lines, transactionLineResponse{ItemName: itemName, Quantity: line.Quantity})
	}

	return transactionResponse{
		ID:           tx.ID,
		EmployeeName: employeeName,
		OrderNumber:  tx.OrderNumber,
		Lines:        lines,
		Units:        tx.Units(),
		CreatedAt:    tx.CreatedAt,
	}
}
