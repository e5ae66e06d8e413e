// Package catalog provides restaurant and recipe lookup plus the vendor-side
// catalog management used by the order service.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("catalog entry not found")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

func (q Query) normalized() Query {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

// Lookup is the read side used when building orders.
type Lookup interface {
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	GetRestaurant(ctx context.Context, id string) (*Restaurant, error)
	// ListRestaurantsByVendor returns every restaurant vendorID owns, possibly none.
	ListRestaurantsByVendor(ctx context.Context, vendorID string) ([]Restaurant, error)
}

type Repository interface {
	Lookup
	CreateRestaurant(ctx context.Context, r *Restaurant) error
	ListRestaurants(ctx context.Context, q Query) ([]Restaurant, error)
	UpdateRestaurant(ctx context.Context, r *Restaurant) error
	// DeleteRestaurant also removes the recipes attached to it. Shared
	// recipes of the vendor stay.
	DeleteRestaurant(ctx context.Context, id string) (bool, error)
	CreateRecipe(ctx context.Context, rc *Recipe) error
	// ListRecipes pages over available recipes, searching name and category.
	ListRecipes(ctx context.Context, q Query) ([]Recipe, error)
	ListRecipesByVendor(ctx context.Context, vendorID string) ([]Recipe, error)
	ListRecipesByRestaurant(ctx context.Context, restaurantID string) ([]Recipe, error)
	UpdateRecipe(ctx context.Context, rc *Recipe) error
	DeleteRecipe(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const restaurantCols = `id, vendor_id, name, location, timings, cuisine, rating, image, created_at, updated_at`

func scanRestaurant(row pgx.Row) (*Restaurant, error) {
	var r Restaurant
	if err := row.Scan(&r.ID, &r.VendorID, &r.Name, &r.Location, &r.Timings, &r.Cuisine,
		&r.Rating, &r.Image, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *PGRepo) CreateRestaurant(ctx context.Context, rs *Restaurant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO restaurants (id, vendor_id, name, location, timings, cuisine, rating, image, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
		RETURNING created_at, updated_at
	`, rs.ID, rs.VendorID, rs.Name, rs.Location, rs.Timings, rs.Cuisine, rs.Rating, rs.Image).
		Scan(&rs.CreatedAt, &rs.UpdatedAt)
}

func (r *PGRepo) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rs, err := scanRestaurant(r.db.QueryRow(ctx,
		`SELECT `+restaurantCols+` FROM restaurants WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rs, err
}

func (r *PGRepo) ListRestaurantsByVendor(ctx context.Context, vendorID string) ([]Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT `+restaurantCols+` FROM restaurants WHERE vendor_id=$1 ORDER BY created_at`, vendorID)
	if err != nil {
		return nil, err
	}
	return collectRestaurants(rows)
}

func (r *PGRepo) ListRestaurants(ctx context.Context, q Query) ([]Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.normalized()
	rows, err := r.db.Query(ctx, `
		SELECT `+restaurantCols+`
		FROM restaurants
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR cuisine ILIKE '%'||$1||'%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, q.Q, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return collectRestaurants(rows)
}

func (r *PGRepo) UpdateRestaurant(ctx context.Context, rs *Restaurant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE restaurants
		SET name = $2, location = $3, timings = $4, cuisine = $5, rating = $6, image = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, rs.ID, rs.Name, rs.Location, rs.Timings, rs.Cuisine, rs.Rating, rs.Image).Scan(&rs.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PGRepo) DeleteRestaurant(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM recipes WHERE restaurant_id=$1`, id); err != nil {
		return false, err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM restaurants WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}
	return true, tx.Commit(ctx)
}

func collectRestaurants(rows pgx.Rows) ([]Restaurant, error) {
	defer rows.Close()
	out := []Restaurant{}
	for rows.Next() {
		rs, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rs)
	}
	return out, rows.Err()
}

const recipeCols = `id, vendor_id, COALESCE(restaurant_id, ''), name, description, price::text, category,
	image, ingredients, preparation_time, is_available, created_at, updated_at`

func scanRecipe(row pgx.Row) (*Recipe, error) {
	var (
		rc    Recipe
		price string
	)
	if err := row.Scan(&rc.ID, &rc.VendorID, &rc.RestaurantID, &rc.Name, &rc.Description, &price,
		&rc.Category, &rc.Image, &rc.Ingredients, &rc.PrepTime, &rc.Available,
		&rc.CreatedAt, &rc.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	rc.Price = p
	return &rc, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PGRepo) CreateRecipe(ctx context.Context, rc *Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO recipes (id, vendor_id, restaurant_id, name, description, price, category,
		                     image, ingredients, preparation_time, is_available, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
		RETURNING created_at, updated_at
	`, rc.ID, rc.VendorID, nullable(rc.RestaurantID), rc.Name, rc.Description, rc.Price.String(),
		string(rc.Category), rc.Image, rc.Ingredients, rc.PrepTime, rc.Available).
		Scan(&rc.CreatedAt, &rc.UpdatedAt)
}

func (r *PGRepo) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rc, err := scanRecipe(r.db.QueryRow(ctx, `SELECT `+recipeCols+` FROM recipes WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rc, err
}

func (r *PGRepo) ListRecipes(ctx context.Context, q Query) ([]Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.normalized()
	rows, err := r.db.Query(ctx, `
		SELECT `+recipeCols+`
		FROM recipes
		WHERE is_available
		  AND ($1 = '' OR name ILIKE '%'||$1||'%' OR category ILIKE '%'||$1||'%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, q.Q, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return collectRecipes(rows)
}

func (r *PGRepo) ListRecipesByVendor(ctx context.Context, vendorID string) ([]Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT `+recipeCols+` FROM recipes WHERE vendor_id=$1 ORDER BY category, name`, vendorID)
	if err != nil {
		return nil, err
	}
	return collectRecipes(rows)
}

// ListRecipesByRestaurant includes the vendor's shared recipes.
func (r *PGRepo) ListRecipesByRestaurant(ctx context.Context, restaurantID string) ([]Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+recipeCols+`
		FROM recipes
		WHERE restaurant_id = $1
		   OR (restaurant_id IS NULL AND vendor_id = (SELECT vendor_id FROM restaurants WHERE id = $1))
		ORDER BY category, name
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	return collectRecipes(rows)
}

func collectRecipes(rows pgx.Rows) ([]Recipe, error) {
	defer rows.Close()
	out := []Recipe{}
	for rows.Next() {
		rc, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rc)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateRecipe(ctx context.Context, rc *Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE recipes
		SET name = $2, description = $3, price = $4, category = $5, image = $6,
		    ingredients = $7, preparation_time = $8, is_available = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, rc.ID, rc.Name, rc.Description, rc.Price.String(), string(rc.Category), rc.Image,
		rc.Ingredients, rc.PrepTime, rc.Available).Scan(&rc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PGRepo) DeleteRecipe(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM recipes WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
