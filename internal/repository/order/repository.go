package order

import (
	"context"

	"food-delivery/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Confirm marks the order confirmed and records the settled amount when
	// one is given. It reports the status the order had before the update.
	Confirm(ctx context.Context, id string, totalAmount *int64) (*domain.Order, domain.OrderStatus, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error)
}
