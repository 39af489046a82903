package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"food-delivery/internal/domain"
	"food-delivery/internal/events"
	"food-delivery/internal/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxMetadataValue is the longest metadata value the gateway accepts.
const maxMetadataValue = 500

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	Confirm(ctx context.Context, id string, totalAmount *int64) (*domain.Order, domain.OrderStatus, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type restaurantRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
}

// CheckoutConfig holds the process-wide checkout settings.
type CheckoutConfig struct {
	Currency         string
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
}

// Service runs checkout, payment confirmation and order listing.
type Service struct {
	orders      orderRepo
	restaurants restaurantRepo
	gateway     payment.Gateway
	publisher   events.Publisher
	cfg         CheckoutConfig
	logger      *log.Logger
	newID       func() string
	now         func() time.Time
}

func New(orders orderRepo, restaurants restaurantRepo, gateway payment.Gateway, publisher events.Publisher, cfg CheckoutConfig, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		orders:      orders,
		restaurants: restaurants,
		gateway:     gateway,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// CheckoutRequest is the body of a checkout session request.
type CheckoutRequest struct {
	CartItems       []domain.CartLine      `json:"cartItems"`
	DeliveryDetails domain.DeliveryDetails `json:"deliveryDetails"`
	RestaurantID    string                 `json:"restaurantId"`
}

// WebhookResult describes what a verified webhook delivery did.
type WebhookResult struct {
	EventType string
	OrderID   string
	// Confirmed is true only for the delivery that moved the order out of pending.
	Confirmed bool
}

// CreateCheckoutSession prices the cart from the restaurant's menu, opens a
// hosted checkout session and stores the pending order once the session
// has a usable URL.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID string, in CheckoutRequest) (*payment.Session, error) {
	restaurantID := strings.TrimSpace(in.RestaurantID)
	if _, err := uuid.Parse(restaurantID); err != nil {
		return nil, fmt.Errorf("restaurant %q: %w", restaurantID, domain.ErrNotFound)
	}
	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("order service: restaurant not found id=%s", restaurantID)
			return nil, fmt.Errorf("restaurant %s: %w", restaurantID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load restaurant %s: %w", restaurantID, err)
	}
	if len(rest.Menus) == 0 {
		s.logger.Printf("order service: no menu items restaurant_id=%s", rest.ID)
		return nil, fmt.Errorf("%w: %w: no menu items found for the restaurant", domain.ErrInvalidState, domain.ErrInvalidInput)
	}
	if err := validateCheckout(in); err != nil {
		return nil, err
	}

	order := domain.Order{
		ID:              s.newID(),
		UserID:          userID,
		RestaurantID:    rest.ID,
		DeliveryDetails: in.DeliveryDetails,
		CartItems:       in.CartItems,
		Status:          domain.OrderStatusPending,
	}

	lineItems, images, err := buildLineItems(*rest, in.CartItems)
	if err != nil {
		s.logger.Printf("order service: %v restaurant_id=%s", err, rest.ID)
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		LineItems:         lineItems,
		Currency:          s.cfg.Currency,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		AllowedCountries:  s.cfg.AllowedCountries,
		PaymentMethodType: "card",
		Metadata: map[string]string{
			payment.MetadataOrderID: order.ID,
			payment.MetadataImages:  encodeImages(images),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", order.ID, err)
	}
	if session == nil || strings.TrimSpace(session.URL) == "" {
		s.logger.Printf("order service: gateway returned no session url order_id=%s", order.ID)
		return nil, fmt.Errorf("%w: error while creating session", domain.ErrGateway)
	}

	if _, err := s.orders.Create(ctx, order); err != nil {
		// The gateway session now references an order that was never stored.
		s.logger.Printf("order service: persist pending order id=%s session_id=%s error=%v", order.ID, session.ID, err)
		return nil, fmt.Errorf("persist order %s: %w", order.ID, err)
	}
	s.logger.Printf("order service: pending order id=%s user_id=%s session_id=%s", order.ID, userID, session.ID)
	return session, nil
}

// HandleWebhook verifies a gateway notification and confirms the referenced
// order on checkout completion. Re-delivery of the same event leaves the
// order unchanged.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return WebhookResult{}, fmt.Errorf("%w: %w", domain.ErrGateway, err)
		}
		return WebhookResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return s.ApplyEvent(ctx, evt)
}

// ApplyEvent runs the state transition for an already verified event.
func (s *Service) ApplyEvent(ctx context.Context, evt payment.Event) (WebhookResult, error) {
	res := WebhookResult{EventType: evt.Type, OrderID: evt.OrderID}
	if evt.Type != payment.EventCheckoutCompleted {
		s.logger.Printf("order service: ignoring event id=%s type=%s", evt.ID, evt.Type)
		return res, nil
	}
	if _, err := uuid.Parse(evt.OrderID); err != nil {
		s.logger.Printf("order service: order not found for event id=%s order_id=%q", evt.ID, evt.OrderID)
		return res, fmt.Errorf("order %q: %w", evt.OrderID, domain.ErrNotFound)
	}

	var amount *int64
	if evt.AmountTotal > 0 {
		v := evt.AmountTotal
		amount = &v
	}
	order, prev, err := s.orders.Confirm(ctx, evt.OrderID, amount)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("order service: order not found for event id=%s order_id=%s", evt.ID, evt.OrderID)
			return res, fmt.Errorf("order %s: %w", evt.OrderID, domain.ErrNotFound)
		}
		return res, fmt.Errorf("confirm order %s: %w", evt.OrderID, err)
	}
	if prev != domain.OrderStatusPending {
		s.logger.Printf("order service: order already %s id=%s event_id=%s", prev, order.ID, evt.ID)
		return res, nil
	}

	res.Confirmed = true
	s.logger.Printf("order service: confirmed order id=%s amount=%d event_id=%s", order.ID, evt.AmountTotal, evt.ID)
	if err := s.publisher.PublishOrderConfirmed(ctx, s.confirmedEvent(*order)); err != nil {
		s.logger.Printf("order service: publish order confirmed id=%s error=%v", order.ID, err)
	}
	return res, nil
}

// ListOrders returns the purchaser's orders with user and restaurant expanded.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders user %s: %w", userID, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *Service) confirmedEvent(o domain.Order) events.OrderConfirmed {
	var items int64
	for _, line := range o.CartItems {
		items += line.Quantity
	}
	var total int64
	if o.TotalAmount != nil {
		total = *o.TotalAmount
	}
	return events.OrderConfirmed{
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		UserID:       o.UserID,
		TotalAmount:  total,
		Currency:     s.cfg.Currency,
		ItemCount:    items,
		ConfirmedAt:  s.now().UTC(),
	}
}

func validateCheckout(in CheckoutRequest) error {
	if len(in.CartItems) == 0 {
		return fmt.Errorf("%w: cart is empty", domain.ErrInvalidInput)
	}
	for i, line := range in.CartItems {
		if strings.TrimSpace(line.MenuID) == "" {
			return fmt.Errorf("%w: cart item %d has no menu id", domain.ErrInvalidInput, i)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for menu item %s must be positive", domain.ErrInvalidInput, line.MenuID)
		}
	}
	d := in.DeliveryDetails
	fields := []struct{ name, value string }{
		{"name", d.Name},
		{"email", d.Email},
		{"address", d.Address},
		{"city", d.City},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: delivery %s required", domain.ErrInvalidInput, f.name)
		}
	}
	return nil
}

// buildLineItems prices every cart line from the restaurant's own menu so a
// client cannot choose its price. It also returns the distinct item images.
func buildLineItems(rest domain.Restaurant, cart []domain.CartLine) ([]payment.LineItem, []string, error) {
	items := make([]payment.LineItem, 0, len(cart))
	var images []string
	seen := make(map[string]bool)
	for _, line := range cart {
		menu, ok := rest.FindMenu(line.MenuID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: menu item id %s not found", domain.ErrInvalidInput, line.MenuID)
		}
		var itemImages []string
		if menu.Image != "" {
			itemImages = []string{menu.Image}
			if !seen[menu.Image] {
				seen[menu.Image] = true
				images = append(images, menu.Image)
			}
		}
		items = append(items, payment.LineItem{
			Name:       menu.Name,
			Images:     itemImages,
			UnitAmount: minorUnits(menu.Price),
			Quantity:   line.Quantity,
		})
	}
	return items, images, nil
}

func minorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// encodeImages serialises as many images as fit in one metadata value.
func encodeImages(images []string) string {
	out := []string{}
	for _, img := range images {
		candidate, _ := json.Marshal(append(out, img))
		if len(candidate) > maxMetadataValue {
			break
		}
		out = append(out, img)
	}
	b, _ := json.Marshal(out)
	return string(b)
}
