package public

import (
	"time"

	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

type locationResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`
}

type clockInRequest struct {
	Name       string `json:"name"`
	LocationID string `json:"locationId"`
}

type clockInResponse struct {
	Token     string                   `json:"token"`
	ExpiresAt time.Time                `json:"expiresAt"`
	User      common.AuthenticatedUser `json:"user"`
	ShiftID   string                   `json:"shiftId"`
}

type clockOutResponse struct {
	Status       string `json:"status"`
	ClosedShifts int    `json:"closedShifts"`
}

type menuItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Icon     string `json:"icon,omitempty"`
	PriceSEK int    `json:"priceSek,omitempty"`
}

type staffMemberResponse struct {
	EmployeeID  string    `json:"employeeId"`
	Name        string    `json:"name"`
	ClockedInAt time.Time `json:"clockedInAt"`
}

type staffListResponse struct {
	Staff []staffMemberResponse `json:"staff"`
	Stale bool                  `json:"stale,omitempty"`
}

type leaderboardRowResponse struct {
	EmployeeID string         `json:"employeeId"`
	Name       string         `json:"name"`
	Total      int            `json:"total"`
	Items      map[string]int `json:"items"`
}

type snapshotResponse struct {
	LocationID string                   `json:"locationId"`
	Version    uint64                   `json:"version"`
	ComputedAt time.Time                `json:"computedAt"`
	Rows       []leaderboardRowResponse `json:"rows"`
}

type upsellLineRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

type upsellCreateRequest struct {
	OrderNumber string              `json:"orderNumber"`
	Lines       []upsellLineRequest `json:"lines"`
}

type upsellCreateResponse struct {
	Status      string    `json:"status"`
	ID          string    `json:"id"`
	Units       int       `json:"units"`
	CreatedAt   time.Time `json:"createdAt"`
	OrderNumber string    `json:"orderNumber"`
}

func buildSnapshotResponse(snapshot domain.Snapshot) snapshotResponse {
	rows := make([]leaderboardRowResponse, 0, len(snapshot.Rows))
	for _, row := range snapshot.Rows {
		rows = append(rows, leaderboardRowResponse{
			EmployeeID: row.EmployeeID,
			Name:       row.Name,
			Total:      row.Total,
			Items:      row.Items,
		})
	}
	return snapshotResponse{
		LocationID: snapshot.LocationID,
		Version:    snapshot.Version,
		ComputedAt: snapshot.ComputedAt,
		Rows:       rows,
	}
}

func buildStaffResponse(staff []domain.StaffMember, stale bool) staffListResponse {
	members := make([]staffMemberResponse, 0, len(staff))
	for _, member := range staff {
		members = append(members, staffMemberResponse{
			EmployeeID:  member.EmployeeID,
			Name:        member.Name,
			ClockedInAt: member.ClockedInAt,
		})
	}
	return staffListResponse{Staff: members, Stale: stale}
}
