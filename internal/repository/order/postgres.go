package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"food-delivery/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `o.id::text, o.user_id::text, o.restaurant_id::text, o.delivery_details, o.cart_items,
       o.total_amount, o.status, o.created_at, o.updated_at`

const expandedColumns = orderColumns + `,
       u.id::text, u.fullname, u.email, u.contact, u.address, u.city, u.country, u.profile_picture,
       u.admin, u.is_verified, u.last_login, u.created_at,
       r.id::text, r.owner_id::text, r.name, r.city, r.country, r.delivery_time, r.cuisines, r.image_url, r.created_at`

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

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	detailsJSON, err := json.Marshal(o.DeliveryDetails)
	if err != nil {
		return nil, err
	}
	items := o.CartItems
	if items == nil {
		items = []domain.CartLine{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO orders AS o (id, user_id, restaurant_id, delivery_details, cart_items, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderColumns
	out, err := r.scanOrder(r.pool.QueryRow(ctx, q, o.ID, o.UserID, o.RestaurantID, detailsJSON, itemsJSON, string(o.Status)))
	if err != nil {
		r.logger.Printf("order repo: create id=%s user_id=%s error=%v", o.ID, o.UserID, err)
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s user_id=%s restaurant_id=%s lines=%d", out.ID, out.UserID, out.RestaurantID, len(out.CartItems))
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders AS o
WHERE o.id = $1
`
	return r.scanOrder(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) Confirm(ctx context.Context, id string, totalAmount *int64) (*domain.Order, domain.OrderStatus, error) {
	const q = `
WITH prev AS (
    SELECT id, status FROM orders WHERE id = $1 FOR UPDATE
)
UPDATE orders AS o
SET status = 'confirmed',
    total_amount = COALESCE($2::bigint, o.total_amount),
    updated_at = now()
FROM prev
WHERE o.id = prev.id
RETURNING prev.status, ` + orderColumns

	var (
		prevStatus string
		out        domain.Order
	)
	dest := append([]interface{}{&prevStatus}, orderDest(&out)...)
	var detailsJSON, itemsJSON []byte
	dest[4], dest[5] = &detailsJSON, &itemsJSON
	if err := r.pool.QueryRow(ctx, q, id, totalAmount).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		r.logger.Printf("order repo: confirm id=%s error=%v", id, err)
		return nil, "", err
	}
	if err := decodeOrderJSON(&out, detailsJSON, itemsJSON); err != nil {
		return nil, "", err
	}
	r.logger.Printf("order repo: confirm id=%s prev_status=%s total_amount=%v", id, prevStatus, formatAmount(out.TotalAmount))
	return &out, domain.OrderStatus(prevStatus), nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT ` + expandedColumns + `
FROM orders AS o
JOIN users AS u ON u.id = o.user_id
JOIN restaurants AS r ON r.id = o.restaurant_id
WHERE o.user_id = $1
ORDER BY o.created_at DESC
`
	return r.listExpanded(ctx, q, userID)
}

func (r *postgresRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	const q = `
SELECT ` + expandedColumns + `
FROM orders AS o
JOIN users AS u ON u.id = o.user_id
JOIN restaurants AS r ON r.id = o.restaurant_id
WHERE o.restaurant_id = $1
ORDER BY o.created_at DESC
`
	return r.listExpanded(ctx, q, restaurantID)
}

func (r *postgresRepo) listExpanded(ctx context.Context, q string, arg string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		r.logger.Printf("order repo: list arg=%s error=%v", arg, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		var (
			o                      domain.Order
			u                      domain.User
			rest                   domain.Restaurant
			detailsJSON, itemsJSON []byte
		)
		dest := orderDest(&o)
		dest[3], dest[4] = &detailsJSON, &itemsJSON
		dest = append(dest,
			&u.ID, &u.Fullname, &u.Email, &u.Contact, &u.Address, &u.City, &u.Country, &u.ProfilePicture,
			&u.Admin, &u.IsVerified, &u.LastLogin, &u.CreatedAt,
			&rest.ID, &rest.OwnerID, &rest.Name, &rest.City, &rest.Country, &rest.DeliveryTime, &rest.Cuisines, &rest.ImageURL, &rest.CreatedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if err := decodeOrderJSON(&o, detailsJSON, itemsJSON); err != nil {
			return nil, err
		}
		o.User = &u
		o.Restaurant = &rest
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: list arg=%s count=%d", arg, len(result))
	return result, nil
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                      domain.Order
		detailsJSON, itemsJSON []byte
	)
	dest := orderDest(&o)
	dest[3], dest[4] = &detailsJSON, &itemsJSON
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := decodeOrderJSON(&o, detailsJSON, itemsJSON); err != nil {
		return nil, err
	}
	return &o, nil
}

// orderDest returns scan targets matching orderColumns. Positions 3 and 4
// (delivery details, cart items) are placeholders the caller replaces with
// raw JSON buffers.
func orderDest(o *domain.Order) []interface{} {
	return []interface{}{
		&o.ID,
		&o.UserID,
		&o.RestaurantID,
		nil,
		nil,
		&o.TotalAmount,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

func decodeOrderJSON(o *domain.Order, detailsJSON, itemsJSON []byte) error {
	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &o.DeliveryDetails); err != nil {
			return fmt.Errorf("order %s: decode delivery details: %w", o.ID, err)
		}
	}
	o.CartItems = []domain.CartLine{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.CartItems); err != nil {
			return fmt.Errorf("order %s: decode cart items: %w", o.ID, err)
		}
	}
	return nil
}

func formatAmount(v *int64) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%d", *v)
}
