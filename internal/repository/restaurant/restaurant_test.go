package restaurant

import (
	"context"
	"errors"
	"os"
	"testing"

	"food-delivery/internal/domain"
	"food-delivery/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_SaveMenusAndSearch(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	var ownerID string
	if err := pool.QueryRow(ctx, `INSERT INTO users (fullname, email, password_hash) VALUES ('Owner', 'owner@example.com', 'x') RETURNING id::text`).Scan(&ownerID); err != nil {
		t.Fatalf("insert owner: %v", err)
	}

	repo := NewPostgres(pool, nil)
	rest, err := repo.Save(ctx, domain.Restaurant{OwnerID: ownerID, Name: "Slice", City: "Pune", Country: "India", DeliveryTime: 25, Cuisines: []string{"Italian", "Fast Food"}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := repo.Save(ctx, domain.Restaurant{OwnerID: ownerID, Name: "Slice House", City: "Pune", Country: "India", DeliveryTime: 20, Cuisines: []string{"Italian"}})
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if again.ID != rest.ID || again.Name != "Slice House" {
		t.Fatalf("expected update of the owner's restaurant, got %+v", again)
	}

	menu, err := repo.UpsertMenu(ctx, domain.MenuItem{RestaurantID: rest.ID, Name: "Pizza", Price: decimal.RequireFromString("499.50"), Image: "p.png"})
	if err != nil {
		t.Fatalf("UpsertMenu: %v", err)
	}
	if !menu.Price.Equal(decimal.RequireFromString("499.5")) {
		t.Fatalf("price not preserved: %s", menu.Price)
	}
	menu.Price = decimal.NewFromInt(550)
	menu.Name = "Large Pizza"
	menu.Image = ""
	updated, err := repo.UpdateMenu(ctx, *menu)
	if err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	if updated.Name != "Large Pizza" || updated.Image != "p.png" || !updated.Price.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("unexpected updated menu %+v", updated)
	}

	got, err := repo.GetByID(ctx, rest.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Menus) != 1 || got.Menus[0].ID != menu.ID {
		t.Fatalf("expected one menu, got %+v", got.Menus)
	}
	if _, ok := got.FindMenu(menu.ID); !ok {
		t.Fatalf("FindMenu failed for %s", menu.ID)
	}

	cases := []struct {
		filter SearchFilter
		want   int
	}{
		{SearchFilter{}, 1},
		{SearchFilter{Text: "pune"}, 1},
		{SearchFilter{Text: "delhi"}, 0},
		{SearchFilter{Query: "ital"}, 1},
		{SearchFilter{Cuisines: []string{"ITALIAN"}}, 1},
		{SearchFilter{Cuisines: []string{"Chinese"}}, 0},
	}
	for _, tc := range cases {
		out, err := repo.Search(ctx, tc.filter)
		if err != nil {
			t.Fatalf("Search %+v: %v", tc.filter, err)
		}
		if len(out) != tc.want {
			t.Fatalf("Search %+v: expected %d results, got %d", tc.filter, tc.want, len(out))
		}
	}

	if _, err := repo.GetByOwner(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
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
