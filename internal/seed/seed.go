package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// DemoOwnerEmail owns the seeded restaurant. Its password is DemoOwnerPassword.
const (
	DemoOwnerEmail    = "owner@example.com"
	DemoOwnerPassword = "Demo1234"
)

type menuSeed struct {
	Name        string
	Description string
	Price       string
	Image       string
}

// Apply inserts a demo owner, restaurant and menu for manual testing. It is
// idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	ownerID, err := ensureOwner(ctx, pool, "Demo Owner", DemoOwnerEmail, DemoOwnerPassword)
	if err != nil {
		return fmt.Errorf("ensure owner: %w", err)
	}
	restaurantID, err := ensureRestaurant(ctx, pool, ownerID)
	if err != nil {
		return fmt.Errorf("ensure restaurant: %w", err)
	}

	menus := []menuSeed{
		{Name: "Margherita Pizza", Description: "Tomato, mozzarella and basil", Price: "299.00", Image: "https://images.example.com/margherita.jpg"},
		{Name: "Paneer Tikka", Description: "Char-grilled cottage cheese", Price: "349.50", Image: "https://images.example.com/paneer-tikka.jpg"},
		{Name: "Masala Chai", Description: "Spiced milk tea", Price: "49.00", Image: "https://images.example.com/chai.jpg"},
	}
	for _, m := range menus {
		if err := upsertMenu(ctx, pool, restaurantID, m); err != nil {
			return fmt.Errorf("upsert menu %s: %w", m.Name, err)
		}
	}
	return nil
}

func ensureOwner(ctx context.Context, pool *pgxpool.Pool, name, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	const q = `
INSERT INTO users (fullname, email, password_hash, admin, is_verified)
VALUES ($1, $2, $3, TRUE, TRUE)
ON CONFLICT ((lower(email))) DO UPDATE SET fullname = EXCLUDED.fullname
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name, email, string(hash)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureRestaurant(ctx context.Context, pool *pgxpool.Pool, ownerID string) (string, error) {
	const q = `
INSERT INTO restaurants (owner_id, name, city, country, delivery_time, cuisines, image_url)
VALUES ($1, 'Demo Kitchen', 'Pune', 'India', 30, ARRAY['Italian', 'Indian'], 'https://images.example.com/demo-kitchen.jpg')
ON CONFLICT (owner_id) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, ownerID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertMenu(ctx context.Context, pool *pgxpool.Pool, restaurantID string, m menuSeed) error {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO menus (restaurant_id, name, description, price, image)
VALUES ($1, $2, $3, $4::numeric, $5)
ON CONFLICT (restaurant_id, name) DO UPDATE
SET description = EXCLUDED.description,
    price = EXCLUDED.price,
    image = EXCLUDED.image
`
	_, err = pool.Exec(ctx, q, restaurantID, m.Name, m.Description, price.StringFixed(2), m.Image)
	return err
}
