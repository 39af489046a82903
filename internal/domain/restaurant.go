package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID           string     `json:"_id"`
	OwnerID      string     `json:"user"`
	Name         string     `json:"restaurantName"`
	City         string     `json:"city"`
	Country      string     `json:"country"`
	DeliveryTime int        `json:"deliveryTime"`
	Cuisines     []string   `json:"cuisines"`
	ImageURL     string     `json:"imageUrl"`
	Menus        []MenuItem `json:"menus"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// MenuItem prices are stored in major currency units.
type MenuItem struct {
	ID           string          `json:"_id"`
	RestaurantID string          `json:"restaurant"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// FindMenu returns the menu item with the given id, if the restaurant has one.
func (r Restaurant) FindMenu(id string) (MenuItem, bool) {
	for _, m := range r.Menus {
		if m.ID == id {
			return m, true
		}
	}
	return MenuItem{}, false
}
