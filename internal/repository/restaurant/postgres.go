package restaurant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"food-delivery/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const restaurantColumns = `id::text, owner_id::text, name, city, country, delivery_time, cuisines, image_url, created_at`

const menuColumns = `id::text, restaurant_id::text, name, description, price::text, image, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	const q = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE id = $1
`
	return r.fetchWithMenus(ctx, q, id)
}

func (r *postgresRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Restaurant, error) {
	const q = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE owner_id = $1
`
	return r.fetchWithMenus(ctx, q, ownerID)
}

func (r *postgresRepo) Save(ctx context.Context, in domain.Restaurant) (*domain.Restaurant, error) {
	const q = `
INSERT INTO restaurants (owner_id, name, city, country, delivery_time, cuisines, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (owner_id) DO UPDATE SET
    name = EXCLUDED.name,
    city = EXCLUDED.city,
    country = EXCLUDED.country,
    delivery_time = EXCLUDED.delivery_time,
    cuisines = EXCLUDED.cuisines,
    image_url = COALESCE(NULLIF(EXCLUDED.image_url, ''), restaurants.image_url)
RETURNING id::text
`
	cuisines := in.Cuisines
	if cuisines == nil {
		cuisines = []string{}
	}
	var id string
	if err := r.pool.QueryRow(ctx, q, in.OwnerID, in.Name, in.City, in.Country, in.DeliveryTime, cuisines, in.ImageURL).Scan(&id); err != nil {
		r.logger.Printf("restaurant repo: save owner_id=%s error=%v", in.OwnerID, err)
		return nil, err
	}
	r.logger.Printf("restaurant repo: saved owner_id=%s id=%s", in.OwnerID, id)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Search(ctx context.Context, f SearchFilter) ([]domain.Restaurant, error) {
	const q = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE ($1::text = '' OR name ILIKE '%' || $1 || '%' OR city ILIKE '%' || $1 || '%' OR country ILIKE '%' || $1 || '%')
  AND ($2::text = '' OR name ILIKE '%' || $2 || '%'
       OR EXISTS (SELECT 1 FROM unnest(cuisines) AS c WHERE c ILIKE '%' || $2 || '%'))
  AND (cardinality($3::text[]) = 0
       OR EXISTS (SELECT 1 FROM unnest(cuisines) AS c WHERE lower(c) = ANY($3::text[])))
ORDER BY name ASC
`
	cuisines := make([]string, 0, len(f.Cuisines))
	for _, c := range f.Cuisines {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			cuisines = append(cuisines, c)
		}
	}
	rows, err := r.pool.Query(ctx, q, strings.TrimSpace(f.Text), strings.TrimSpace(f.Query), cuisines)
	if err != nil {
		r.logger.Printf("restaurant repo: search text=%q error=%v", f.Text, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("restaurant repo: search text=%q query=%q cuisines=%v count=%d", f.Text, f.Query, cuisines, len(result))
	return result, nil
}

func (r *postgresRepo) UpsertMenu(ctx context.Context, m domain.MenuItem) (*domain.MenuItem, error) {
	const q = `
INSERT INTO menus (restaurant_id, name, description, price, image)
VALUES ($1, $2, $3, $4::numeric, $5)
ON CONFLICT (restaurant_id, name) DO UPDATE SET
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    image = COALESCE(NULLIF(EXCLUDED.image, ''), menus.image)
RETURNING ` + menuColumns
	out, err := scanMenu(r.pool.QueryRow(ctx, q, m.RestaurantID, m.Name, m.Description, m.Price.String(), m.Image))
	if err != nil {
		r.logger.Printf("menu repo: upsert restaurant_id=%s name=%q error=%v", m.RestaurantID, m.Name, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) UpdateMenu(ctx context.Context, m domain.MenuItem) (*domain.MenuItem, error) {
	const q = `
UPDATE menus
SET name = $3,
    description = $4,
    price = $5::numeric,
    image = COALESCE(NULLIF($6, ''), image)
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + menuColumns
	out, err := scanMenu(r.pool.QueryRow(ctx, q, m.ID, m.RestaurantID, m.Name, m.Description, m.Price.String(), m.Image))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("menu repo: update id=%s error=%v", m.ID, err)
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) fetchWithMenus(ctx context.Context, q string, args ...interface{}) (*domain.Restaurant, error) {
	rest, err := scanRestaurant(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+menuColumns+`
FROM menus
WHERE restaurant_id = $1
ORDER BY created_at ASC, name ASC
`, rest.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rest.Menus = []domain.MenuItem{}
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		rest.Menus = append(rest.Menus, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rest, nil
}

func scanRestaurant(row pgx.Row) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := row.Scan(
		&rest.ID,
		&rest.OwnerID,
		&rest.Name,
		&rest.City,
		&rest.Country,
		&rest.DeliveryTime,
		&rest.Cuisines,
		&rest.ImageURL,
		&rest.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rest, nil
}

func scanMenu(row pgx.Row) (*domain.MenuItem, error) {
	var (
		m     domain.MenuItem
		price string
	)
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &price, &m.Image, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	m.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("menu %s: parse price %q: %w", m.ID, price, err)
	}
	return &m, nil
}
