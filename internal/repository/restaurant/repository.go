package restaurant

import (
	"context"

	"food-delivery/internal/domain"
)

// SearchFilter narrows a restaurant search. Empty fields match everything.
type SearchFilter struct {
	Text     string
	Query    string
	Cuisines []string
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
	GetByOwner(ctx context.Context, ownerID string) (*domain.Restaurant, error)
	Save(ctx context.Context, r domain.Restaurant) (*domain.Restaurant, error)
	Search(ctx context.Context, f SearchFilter) ([]domain.Restaurant, error)
	UpsertMenu(ctx context.Context, m domain.MenuItem) (*domain.MenuItem, error)
	UpdateMenu(ctx context.Context, m domain.MenuItem) (*domain.MenuItem, error)
}
