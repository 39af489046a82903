package order

import (
	"context"
	"errors"
	"os"
	"testing"

	"food-delivery/internal/domain"
	"food-delivery/internal/migrate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_CreateConfirmAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	userID, restaurantID := insertFixtures(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	id := uuid.NewString()
	created, err := repo.Create(ctx, domain.Order{
		ID:              id,
		UserID:          userID,
		RestaurantID:    restaurantID,
		DeliveryDetails: domain.DeliveryDetails{Name: "Ann", Email: "ann@example.com", Address: "1 Main", City: "Pune"},
		CartItems:       []domain.CartLine{{MenuID: "m1", Name: "Pizza", Image: "i.png", Price: decimal.NewFromInt(500), Quantity: 2}},
		Status:          domain.OrderStatusPending,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != id || created.Status != domain.OrderStatusPending || created.TotalAmount != nil {
		t.Fatalf("unexpected created order %+v", created)
	}
	if len(created.CartItems) != 1 || created.CartItems[0].Quantity != 2 || created.DeliveryDetails.City != "Pune" {
		t.Fatalf("json columns not round-tripped: %+v", created)
	}

	amount := int64(100000)
	for i, wantPrev := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusConfirmed} {
		got, prev, err := repo.Confirm(ctx, id, &amount)
		if err != nil {
			t.Fatalf("Confirm #%d: %v", i, err)
		}
		if prev != wantPrev || got.Status != domain.OrderStatusConfirmed || got.TotalAmount == nil || *got.TotalAmount != amount {
			t.Fatalf("Confirm #%d: prev=%s order=%+v", i, prev, got)
		}
	}

	got, _, err := repo.Confirm(ctx, id, nil)
	if err != nil || *got.TotalAmount != amount {
		t.Fatalf("confirm without amount must keep the stored total: %+v %v", got, err)
	}

	if _, _, err := repo.Confirm(ctx, uuid.NewString(), &amount); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	list, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 || list[0].User == nil || list[0].User.Email != "buyer@example.com" || list[0].Restaurant == nil || list[0].Restaurant.Name != "Slice" {
		t.Fatalf("unexpected expanded list %+v", list)
	}

	byRest, err := repo.ListByRestaurant(ctx, restaurantID)
	if err != nil || len(byRest) != 1 {
		t.Fatalf("ListByRestaurant: %v %v", byRest, err)
	}

	empty, err := repo.ListByUser(ctx, uuid.NewString())
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no orders, got %v %v", empty, err)
	}
}

func insertFixtures(ctx context.Context, t *testing.T, pool *pgxpool.Pool) (string, string) {
	t.Helper()
	var userID, restaurantID string
	if err := pool.QueryRow(ctx, `
		INSERT INTO users (fullname, email, password_hash) VALUES ('Buyer', 'buyer@example.com', 'x')
		RETURNING id::text`).Scan(&userID); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := pool.QueryRow(ctx, `
		INSERT INTO restaurants (owner_id, name, city, country, delivery_time, cuisines)
		VALUES ($1, 'Slice', 'Pune', 'India', 30, ARRAY['Italian'])
		RETURNING id::text`, userID).Scan(&restaurantID); err != nil {
		t.Fatalf("insert restaurant: %v", err)
	}
	return userID, restaurantID
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders, menus, restaurants, tokens, users CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
