// Package payment wraps the hosted checkout provider: creating checkout
// sessions and verifying the webhook events it delivers.
package payment

import (
	"context"
	"errors"
)

// EventCheckoutCompleted is the event type reported when a hosted checkout finishes.
const EventCheckoutCompleted = "checkout.session.completed"

// Metadata keys carried through the gateway round trip.
const (
	MetadataOrderID = "orderId"
	MetadataImages  = "images"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// LineItem is one priced row on the hosted checkout page. UnitAmount is in
// minor currency units.
type LineItem struct {
	Name       string
	Images     []string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	LineItems         []LineItem
	Currency          string
	SuccessURL        string
	CancelURL         string
	AllowedCountries  []string
	Metadata          map[string]string
	PaymentMethodType string
}

// Session is the subset of the hosted checkout session returned to clients.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is a verified webhook notification. OrderID and AmountTotal are only
// populated for checkout session events.
type Event struct {
	ID          string
	Type        string
	OrderID     string
	AmountTotal int64
}

// Gateway is the hosted payment provider used by the order flow.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	ParseWebhook(payload []byte, signature string) (Event, error)
}
