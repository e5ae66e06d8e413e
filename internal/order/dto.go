package order

import "github.com/shopspring/decimal"

// PlaceOrderItem payload de ítem.
// swagger:model PlaceOrderItem
type PlaceOrderItem struct {
	RecipeID string `json:"recipeId" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity int    `json:"quantity" example:"2"`
}

// PlaceOrderRequest payload de creación de orden. TotalPrice is only compared
// with the computed total.
// swagger:model PlaceOrderRequest
type PlaceOrderRequest struct {
	RestaurantID        string           `json:"restaurantId"        example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Items               []PlaceOrderItem `json:"items"`
	DeliveryAddress     string           `json:"deliveryAddress"     example:"221B Baker Street"`
	PaymentMethod       string           `json:"paymentMethod"       example:"cash_on_delivery"`
	SpecialInstructions string           `json:"specialInstructions" example:"no onions"`
	TotalPrice          *decimal.Decimal `json:"totalPrice,omitempty" swaggertype:"string" example:"798"`
}

// PlaceOrderResponse is the created order plus a flag telling the client its
// total differed from the server total.
// swagger:model PlaceOrderResponse
type PlaceOrderResponse struct {
	*Order
	PriceAdjusted bool `json:"priceAdjusted,omitempty"`
}

// UpdateStatusRequest payload of a status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"confirmed"`
	Reason string `json:"reason" example:"out of stock"`
}

// Stats is the vendor dashboard aggregate.
// swagger:model Stats
type Stats struct {
	TotalOrders     int             `json:"totalOrders"`
	CompletedOrders int             `json:"completedOrders"`
	RejectedOrders  int             `json:"rejectedOrders"`
	Earnings        decimal.Decimal `json:"earnings" swaggertype:"string" example:"798"`
}

// Page bounds list queries. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps client supplied paging to [1,200], default 50.
func NewPage(limit, offset int) Page {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}
