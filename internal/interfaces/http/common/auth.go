package common

import "context"

type contextKey string

const authUserContextKey contextKey = "authUser"

// Role separates the staff surface from the manager panel.
const (
	RoleStaff   = "staff"
	RoleManager = "manager"
)

// AuthenticatedUser represents the JWT-derived principal. EmployeeID is
// empty for manager tokens.
type AuthenticatedUser struct {
	EmployeeID string `json:"employeeId,omitempty"`
	Name       string `json:"name,omitempty"`
	LocationID string `json:"locationId"`
	Role       string `json:"role"`
}

// ContextWithUser stores the authenticated user into context.
func ContextWithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authUserContextKey, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(AuthenticatedUser)
	return user, ok
}

const shiftContextKey contextKey = "authShift"

// ContextWithShiftID stores the shift the staff token was issued for.
func ContextWithShiftID(ctx context.Context, shiftID string) context.Context {
	return context.WithValue(ctx, shiftContextKey, shiftID)
}

// ShiftIDFromContext extracts the token's shift identifier, if any.
func ShiftIDFromContext(ctx context.Context) string {
	shiftID, _ := ctx.Value(shiftContextKey).(string)
	return shiftID
}
