package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports the first invalid field of a catalog payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CreateRestaurantRequest payload of creation.
// swagger:model CreateRestaurantRequest
type CreateRestaurantRequest struct {
	Name     string   `json:"name"     example:"Mamma Mia"`
	Location string   `json:"location" example:"12 Baker St"`
	Timings  string   `json:"timings"  example:"10:00-22:00"`
	Cuisine  string   `json:"cuisine"  example:"Italian"`
	Image    string   `json:"image"`
	Rating   *float64 `json:"rating"   example:"4.5"`
}

func (r *CreateRestaurantRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	if r.Name == "" {
		return invalid("name", "is required")
	}
	if r.Location == "" {
		return invalid("location", "is required")
	}
	if r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5) {
		return invalid("rating", "must be between 0 and 5")
	}
	return nil
}

// UpdateRestaurantRequest payload of partial update. Omitted fields keep their value.
// swagger:model UpdateRestaurantRequest
type UpdateRestaurantRequest struct {
	Name     *string  `json:"name"`
	Location *string  `json:"location"`
	Timings  *string  `json:"timings"`
	Cuisine  *string  `json:"cuisine"`
	Image    *string  `json:"image"`
	Rating   *float64 `json:"rating"`
}

// Apply validates the patch and applies it to rs in place.
func (u *UpdateRestaurantRequest) Apply(rs *Restaurant) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return invalid("name", "must not be empty")
		}
		rs.Name = name
	}
	if u.Location != nil {
		loc := strings.TrimSpace(*u.Location)
		if loc == "" {
			return invalid("location", "must not be empty")
		}
		rs.Location = loc
	}
	if u.Rating != nil {
		if *u.Rating < 0 || *u.Rating > 5 {
			return invalid("rating", "must be between 0 and 5")
		}
		rs.Rating = *u.Rating
	}
	if u.Timings != nil {
		rs.Timings = *u.Timings
	}
	if u.Cuisine != nil {
		rs.Cuisine = *u.Cuisine
	}
	if u.Image != nil && *u.Image != "" {
		rs.Image = *u.Image
	}
	return nil
}

// CreateRecipeRequest payload of creation.
// swagger:model CreateRecipeRequest
type CreateRecipeRequest struct {
	RestaurantID string   `json:"restaurantId" example:"6f1c1f0e-8d4b-4c8e-9b0f-3b1c2d4e5f60"`
	Name         string   `json:"name"         example:"Pizza Margherita"`
	Description  string   `json:"description"  example:"Tomato, mozzarella, basil"`
	Price        string   `json:"price"        example:"399"`
	Category     string   `json:"category"     example:"Main Course"`
	Image        string   `json:"image"`
	Ingredients  []string `json:"ingredients"`
	PrepTime     string   `json:"preparationTime" example:"20 min"`
	Available    *bool    `json:"isAvailable"`
}

// Recipe validates the payload and builds the recipe owned by vendorID.
func (r *CreateRecipeRequest) Recipe(vendorID string) (*Recipe, error) {
	name := strings.TrimSpace(r.Name)
	if err := checkName(name); err != nil {
		return nil, err
	}
	if len(r.Description) > 500 {
		return nil, invalid("description", "must be at most 500 characters")
	}
	price, err := parsePrice(r.Price)
	if err != nil {
		return nil, err
	}
	cat := Category(r.Category)
	if !cat.Valid() {
		return nil, invalid("category", "unknown category %q", r.Category)
	}
	rc := &Recipe{
		VendorID:     vendorID,
		RestaurantID: strings.TrimSpace(r.RestaurantID),
		Name:         name,
		Description:  r.Description,
		Price:        price,
		Category:     cat,
		Image:        r.Image,
		Ingredients:  r.Ingredients,
		PrepTime:     r.PrepTime,
		Available:    true,
	}
	if r.Available != nil {
		rc.Available = *r.Available
	}
	if rc.Image == "" {
		rc.Image = DefaultRecipeImage
	}
	if rc.PrepTime == "" {
		rc.PrepTime = DefaultPrepTime
	}
	if rc.Ingredients == nil {
		rc.Ingredients = []string{}
	}
	return rc, nil
}

// UpdateRecipeRequest payload of partial update. Omitted fields keep their value.
// swagger:model UpdateRecipeRequest
type UpdateRecipeRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *string  `json:"price"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Ingredients []string `json:"ingredients"`
	PrepTime    *string  `json:"preparationTime"`
	Available   *bool    `json:"isAvailable"`
}

// Apply validates the patch and applies it to rc in place.
func (u *UpdateRecipeRequest) Apply(rc *Recipe) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if err := checkName(name); err != nil {
			return err
		}
		rc.Name = name
	}
	if u.Description != nil {
		if len(*u.Description) > 500 {
			return invalid("description", "must be at most 500 characters")
		}
		rc.Description = *u.Description
	}
	if u.Price != nil {
		p, err := parsePrice(*u.Price)
		if err != nil {
			return err
		}
		rc.Price = p
	}
	if u.Category != nil {
		c := Category(*u.Category)
		if !c.Valid() {
			return invalid("category", "unknown category %q", *u.Category)
		}
		rc.Category = c
	}
	if u.Image != nil && *u.Image != "" {
		rc.Image = *u.Image
	}
	if u.Ingredients != nil {
		rc.Ingredients = u.Ingredients
	}
	if u.PrepTime != nil && *u.PrepTime != "" {
		rc.PrepTime = *u.PrepTime
	}
	if u.Available != nil {
		rc.Available = *u.Available
	}
	return nil
}

func checkName(name string) error {
	if name == "" {
		return invalid("name", "is required")
	}
	if len(name) > 100 {
		return invalid("name", "must be at most 100 characters")
	}
	return nil
}

// maxPrice is the first value that does not fit NUMERIC(12,2).
var maxPrice = decimal.New(1, 10)

func parsePrice(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, invalid("price", "must be a decimal number")
	}
	if p.IsNegative() {
		return decimal.Zero, invalid("price", "must be non-negative")
	}
	if !p.Equal(p.Truncate(2)) {
		return decimal.Zero, invalid("price", "must have at most 2 decimal places")
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, invalid("price", "must be below %s", maxPrice)
	}
	return p, nil
}
