package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe implements Gateway on top of Stripe Checkout.
type Stripe struct {
	api           *client.API
	webhookSecret string
	logger        *log.Logger
}

// NewStripe builds a client bound to the given secret key. The key is held
// by this instance only; no package level Stripe state is touched.
func NewStripe(secretKey, webhookSecret string, logger *log.Logger) *Stripe {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api, webhookSecret: webhookSecret, logger: logger}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := buildSessionParams(req)
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		s.logger.Printf("stripe: create checkout session order_id=%s error=%v", req.Metadata[MetadataOrderID], err)
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	s.logger.Printf("stripe: created checkout session id=%s order_id=%s", sess.ID, req.Metadata[MetadataOrderID])
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (Event, error) {
	return parseEvent(payload, signature, s.webhookSecret)
}

func parseEvent(payload []byte, signature, secret string) (Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := Event{ID: evt.ID, Type: string(evt.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}
	if evt.Data == nil {
		return Event{}, fmt.Errorf("event %s: missing data", evt.ID)
	}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &sess); err != nil {
		return Event{}, fmt.Errorf("event %s: decode checkout session: %w", evt.ID, err)
	}
	out.OrderID = sess.Metadata[MetadataOrderID]
	out.AmountTotal = sess.AmountTotal
	return out, nil
}

func buildSessionParams(req SessionRequest) *stripe.CheckoutSessionParams {
	method := req.PaymentMethodType
	if method == "" {
		method = "card"
	}
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(li.Name),
					Images: stripe.StringSlice(li.Images),
				},
				UnitAmount: stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{method}),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.AllowedCountries),
		},
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}
