package events

import (
	"context"
	"time"
)

// RoutingKeyOrderConfirmed is used for messages emitted when a payment
// confirms a pending order.
const RoutingKeyOrderConfirmed = "order.confirmed"

// OrderConfirmed is published once per order, on its pending -> confirmed transition.
type OrderConfirmed struct {
	OrderID      string    `json:"order_id"`
	RestaurantID string    `json:"restaurant_id"`
	UserID       string    `json:"user_id"`
	TotalAmount  int64     `json:"total_amount"`
	Currency     string    `json:"currency"`
	ItemCount    int64     `json:"item_count"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

type Publisher interface {
	PublishOrderConfirmed(ctx context.Context, evt OrderConfirmed) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishOrderConfirmed(context.Context, OrderConfirmed) error { return nil }

func (Nop) Close() error { return nil }
