package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

// DeliveryDetails is where and to whom an order is delivered.
type DeliveryDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// CartLine is one menu item and quantity as submitted by the client.
type CartLine struct {
	MenuID   string          `json:"menuId"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// Order is created pending at checkout and confirmed by the payment webhook.
// TotalAmount is in minor units and only set once the order is confirmed.
type Order struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"-"`
	RestaurantID    string          `json:"-"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails"`
	CartItems       []CartLine      `json:"cartItems"`
	TotalAmount     *int64          `json:"totalAmount,omitempty"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Expanded references, filled by listing queries.
	User       *User       `json:"user,omitempty"`
	Restaurant *Restaurant `json:"restaurant,omitempty"`
}
