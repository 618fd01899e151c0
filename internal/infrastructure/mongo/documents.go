package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationDocument is the Mongo schema for a restaurant site.
type LocationDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Timezone  string             `bson:"timezone,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// EmployeeDocument is the Mongo schema for a staff member. Employees are
// upserted by (locationId, name) at clock-in.
type EmployeeDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	LocationID primitive.ObjectID `bson:"locationId"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// ShiftDocument is one clock-in/clock-out span. A missing endedAt means the
// shift is open.
type ShiftDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	EmployeeID primitive.ObjectID `bson:"employeeId"`
	LocationID primitive.ObjectID `bson:"locationId"`
	StartedAt  time.Time          `bson:"startedAt"`
	EndedAt    *time.Time         `bson:"endedAt,omitempty"`
}

// MenuItemDocument is one entry of a location's upsell vocabulary.
type MenuItemDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	LocationID primitive.ObjectID `bson:"locationId"`
	Category   string             `bson:"category,omitempty"`
	Icon       string             `bson:"icon,omitempty"`
	PriceSEK   int                `bson:"priceSek,omitempty"`
	Active     bool               `bson:"active"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// LineEntryDocument is one (menu item, quantity) pair inside a transaction.
type LineEntryDocument struct {
	MenuItemID primitive.ObjectID `bson:"menuItemId"`
	Quantity   int                `bson:"quantity"`
}

// TransactionDocument is an immutable upsell submission.
type TransactionDocument struct {
	ID          primitive.ObjectID  `bson:"_id"`
	EmployeeID  primitive.ObjectID  `bson:"employeeId"`
	LocationID  primitive.ObjectID  `bson:"locationId"`
	ShiftID     *primitive.ObjectID `bson:"shiftId,omitempty"`
	OrderNumber string              `bson:"orderNumber,omitempty"`
	Lines       []LineEntryDocument `bson:"lines"`
	CreatedAt   time.Time           `bson:"createdAt"`
}

// ManagerAccessDocument stores the per-location manager panel password.
type ManagerAccessDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	LocationID primitive.ObjectID `bson:"locationId"`
	Password   string             `bson:"password"`
	UpdatedAt  time.Time          `bson:"updatedAt,omitempty"`
}
