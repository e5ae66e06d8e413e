package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Directory resolves customer display fields from the user service.
type Directory interface {
	Customer(ctx context.Context, id string) (Customer, error)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(ctx context.Context, id string) (Customer, error)

func (f DirectoryFunc) Customer(ctx context.Context, id string) (Customer, error) { return f(ctx, id) }

// Publisher sends order events to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

// NopPublisher drops every event; used when no broker is configured.
var NopPublisher Publisher = nopPublisher{}

const (
	RoutingPlaced        = "order.placed"
	RoutingStatusChanged = "order.status_changed"
)

type PlacedEvent struct {
	OrderID      string          `json:"orderId"`
	OrderNumber  string          `json:"orderNumber"`
	CustomerID   string          `json:"customerId"`
	RestaurantID string          `json:"restaurantId"`
	VendorID     string          `json:"vendorId"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Timestamp    time.Time       `json:"timestamp"`
}

type StatusChangedEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	OldStatus   Status    `json:"oldStatus"`
	NewStatus   Status    `json:"newStatus"`
	ChangedBy   string    `json:"changedBy"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Ext groups the collaborators outside this service. Nil members are allowed.
type Ext struct {
	Directory Directory
	Events    Publisher
}
