package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create persists o and its items atomically. It returns
	// ErrDuplicateNumber when o.OrderNumber is already taken.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string, p Page) ([]Order, error)
	ListByRestaurants(ctx context.Context, restaurantIDs []string, p Page) ([]Order, error)
	// UpdateStatus applies ch only if the order is still in status from.
	// It reports whether the update was applied.
	UpdateStatus(ctx context.Context, id string, from Status, ch StatusChange) (bool, error)
	// MaxSeq returns the highest persisted counter value, 0 when empty.
	MaxSeq(ctx context.Context) (int64, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderCols = `id, order_number, seq, customer_id, customer_name, customer_email,
	restaurant_id, restaurant_name, restaurant_image, vendor_id, total_price::text,
	delivery_address, payment_method, status, rejection_reason, special_instructions,
	status_history, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o       Order
		total   string
		history []byte
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.Seq, &o.Customer.ID, &o.Customer.Name, &o.Customer.Email,
		&o.Restaurant.ID, &o.Restaurant.Name, &o.Restaurant.Image, &o.VendorID, &total,
		&o.DeliveryAddress, &o.PaymentMethod, &o.Status, &o.Reason, &o.SpecialInstructions,
		&history, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &o.History); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	history, err := json.Marshal(o.History)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, seq, customer_id, customer_name, customer_email,
		                    restaurant_id, restaurant_name, restaurant_image, vendor_id, total_price,
		                    delivery_address, payment_method, status, rejection_reason,
		                    special_instructions, status_history, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17::jsonb,$18,$19)
	`, o.ID, o.OrderNumber, o.Seq, o.Customer.ID, o.Customer.Name, o.Customer.Email,
		o.Restaurant.ID, o.Restaurant.Name, o.Restaurant.Image, o.VendorID, o.TotalPrice.String(),
		o.DeliveryAddress, string(o.PaymentMethod), string(o.Status), o.Reason,
		o.SpecialInstructions, string(history), o.CreatedAt, o.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key" {
			return ErrDuplicateNumber
		}
		return err
	}

	for i, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, line_no, recipe_id, recipe_name, recipe_image, category, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, o.ID, i, it.RecipeID, it.Name, it.Image, it.Category, it.Quantity, it.UnitPrice.String()); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := []Order{*o}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *PGRepo) ListByCustomer(ctx context.Context, customerID string, p Page) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.list(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT NULLIF($2::int, 0) OFFSET $3
	`, customerID, p.Limit, p.Offset)
}

func (r *PGRepo) ListByRestaurants(ctx context.Context, restaurantIDs []string, p Page) ([]Order, error) {
	if len(restaurantIDs) == 0 {
		return []Order{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.list(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE restaurant_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT NULLIF($2::int, 0) OFFSET $3
	`, restaurantIDs, p.Limit, p.Offset)
}

func (r *PGRepo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, r.attachItems(ctx, out)
}

// attachItems loads the lines of every order in one query.
func (r *PGRepo) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	idx := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		idx[orders[i].ID] = i
		orders[i].Items = []Item{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id, recipe_id, recipe_name, recipe_image, category, quantity, unit_price::text
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID, price string
			it             Item
		)
		if err := rows.Scan(&orderID, &it.RecipeID, &it.Name, &it.Image, &it.Category, &it.Quantity, &price); err != nil {
			return err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return err
		}
		i := idx[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, from Status, ch StatusChange) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entry, err := json.Marshal([]StatusChange{ch})
	if err != nil {
		return false, err
	}
	reason := ""
	if ch.To.Failed() {
		reason = ch.Reason
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $3,
		    rejection_reason = CASE WHEN $4::text <> '' THEN $4::text ELSE rejection_reason END,
		    status_history = status_history || $5::jsonb,
		    updated_at = $6
		WHERE id = $1 AND status = $2
	`, id, string(from), string(ch.To), reason, string(entry), ch.At)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGRepo) MaxSeq(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM orders`).Scan(&n)
	return n, err
}
