package restaurant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"food-delivery/internal/domain"
	restaurantrepo "food-delivery/internal/repository/restaurant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderLister interface {
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error)
}

// Service manages restaurants, their menus and the orders placed at them.
type Service struct {
	repo   restaurantrepo.Repository
	orders orderLister
}

func New(repo restaurantrepo.Repository, orders orderLister) *Service {
	return &Service{repo: repo, orders: orders}
}

// Input is the editable part of a restaurant.
type Input struct {
	Name         string   `json:"restaurantName"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	DeliveryTime int      `json:"deliveryTime"`
	Cuisines     []string `json:"cuisines"`
	ImageURL     string   `json:"imageUrl"`
}

// MenuInput is the editable part of a menu item.
type MenuInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

// Save creates the owner's restaurant or updates it when one exists.
func (s *Service) Save(ctx context.Context, ownerID string, in Input) (*domain.Restaurant, error) {
	r := domain.Restaurant{
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(in.Name),
		City:         strings.TrimSpace(in.City),
		Country:      strings.TrimSpace(in.Country),
		DeliveryTime: in.DeliveryTime,
		Cuisines:     cleanList(in.Cuisines),
		ImageURL:     strings.TrimSpace(in.ImageURL),
	}
	switch {
	case r.Name == "":
		return nil, fmt.Errorf("%w: restaurant name required", domain.ErrInvalidInput)
	case r.City == "" || r.Country == "":
		return nil, fmt.Errorf("%w: city and country required", domain.ErrInvalidInput)
	case r.DeliveryTime <= 0:
		return nil, fmt.Errorf("%w: delivery time must be positive", domain.ErrInvalidInput)
	case len(r.Cuisines) == 0:
		return nil, fmt.Errorf("%w: at least one cuisine required", domain.ErrInvalidInput)
	}
	return s.repo.Save(ctx, r)
}

func (s *Service) GetOwn(ctx context.Context, ownerID string) (*domain.Restaurant, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("restaurant %q: %w", id, domain.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// Search matches text against name, city and country, query against name
// and cuisines, and keeps restaurants serving any of the given cuisines.
func (s *Service) Search(ctx context.Context, text, query string, cuisines []string) ([]domain.Restaurant, error) {
	out, err := s.repo.Search(ctx, restaurantrepo.SearchFilter{
		Text:     strings.TrimSpace(text),
		Query:    strings.TrimSpace(query),
		Cuisines: cleanList(cuisines),
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Restaurant{}
	}
	return out, nil
}

// AddMenu adds an item to the owner's restaurant. An item with the same
// name is replaced.
func (s *Service) AddMenu(ctx context.Context, ownerID string, in MenuInput) (*domain.MenuItem, error) {
	m, err := s.menuFor(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	return s.repo.UpsertMenu(ctx, m)
}

func (s *Service) UpdateMenu(ctx context.Context, ownerID, menuID string, in MenuInput) (*domain.MenuItem, error) {
	if _, err := uuid.Parse(menuID); err != nil {
		return nil, fmt.Errorf("menu %q: %w", menuID, domain.ErrNotFound)
	}
	m, err := s.menuFor(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	m.ID = menuID
	return s.repo.UpdateMenu(ctx, m)
}

// ListOrders returns the orders placed at the owner's restaurant.
func (s *Service) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	rest, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByRestaurant(ctx, rest.ID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *Service) menuFor(ctx context.Context, ownerID string, in MenuInput) (domain.MenuItem, error) {
	m := domain.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
	}
	if m.Name == "" {
		return m, fmt.Errorf("%w: menu name required", domain.ErrInvalidInput)
	}
	if !m.Price.IsPositive() {
		return m, fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}
	if !m.Price.Equal(m.Price.Round(2)) {
		return m, fmt.Errorf("%w: price has more than two decimal places", domain.ErrInvalidInput)
	}
	rest, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return m, fmt.Errorf("restaurant for owner %s: %w", ownerID, domain.ErrNotFound)
		}
		return m, err
	}
	m.RestaurantID = rest.ID
	return m, nil
}

func cleanList(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
