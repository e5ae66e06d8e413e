package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryAppetizers    Category = "Appetizers"
	CategoryMainCourse    Category = "Main Course"
	CategoryDesserts      Category = "Desserts"
	CategoryBeverages     Category = "Beverages"
	CategorySalads        Category = "Salads"
	CategorySoups         Category = "Soups"
	CategoryBreads        Category = "Breads"
	CategoryRiceNoodles   Category = "Rice & Noodles"
	CategorySeafood       Category = "Seafood"
	CategoryVegetarian    Category = "Vegetarian"
	CategoryNonVegetarian Category = "Non-Vegetarian"
	CategorySpecials      Category = "Specials"
)

var categories = map[Category]bool{
	CategoryAppetizers: true, CategoryMainCourse: true, CategoryDesserts: true,
	CategoryBeverages: true, CategorySalads: true, CategorySoups: true,
	CategoryBreads: true, CategoryRiceNoodles: true, CategorySeafood: true,
	CategoryVegetarian: true, CategoryNonVegetarian: true, CategorySpecials: true,
}

func (c Category) Valid() bool { return categories[c] }

const (
	DefaultRecipeImage = "https://placehold.co/400x300?text=Recipe"
	DefaultPrepTime    = "30 min"
	DefaultRating      = 4.0
)

type Restaurant struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendorId"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Timings   string    `json:"timings,omitempty"`
	Cuisine   string    `json:"cuisine,omitempty"`
	Rating    float64   `json:"rating"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Recipe struct {
	ID       string `json:"id"`
	VendorID string `json:"vendorId"`
	// RestaurantID is empty for recipes shared across the vendor's restaurants.
	RestaurantID string          `json:"restaurantId,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Category     Category        `json:"category"`
	Image        string          `json:"image"`
	Ingredients  []string        `json:"ingredients"`
	PrepTime     string          `json:"preparationTime"`
	Available    bool            `json:"isAvailable"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ServedBy reports whether the recipe can be ordered from r: either it is
// attached to r, or it is a shared recipe of r's vendor.
func (rc *Recipe) ServedBy(r *Restaurant) bool {
	if rc.RestaurantID != "" {
		return rc.RestaurantID == r.ID
	}
	return rc.VendorID == r.VendorID
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// machine readable error kind
	// example: not_found
	Kind string `json:"kind"`
	// Error message
	// example: recipe not found
	Error string `json:"error"`
}

// RecipePage is a paginated page of available recipes.
// swagger:model
type RecipePage struct {
	Q      string   `json:"q,omitempty"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	Items  []Recipe `json:"items"`
}

// ListResponse is a paginated page of restaurants.
// swagger:model
type ListResponse struct {
	Q      string       `json:"q,omitempty"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Items  []Restaurant `json:"items"`
}
