package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCard           PaymentMethod = "card"
)

// ParsePaymentMethod defaults to cash on delivery when s is empty.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch s {
	case "", "cash", "cod", string(PaymentCashOnDelivery):
		return PaymentCashOnDelivery, nil
	case string(PaymentCard):
		return PaymentCard, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Customer is the buyer snapshot stored with the order.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Restaurant is the restaurant snapshot stored with the order.
type Restaurant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Item is one order line. UnitPrice is the recipe price captured when the
// order was placed and never changes afterwards.
type Item struct {
	RecipeID  string          `json:"recipeId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

func (it Item) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// StatusChange is one audit trail entry.
type StatusChange struct {
	From      Status    `json:"from,omitempty" bson:"from,omitempty"`
	To        Status    `json:"to" bson:"to"`
	ChangedBy string    `json:"changedBy" bson:"changedBy"`
	Role      string    `json:"role" bson:"role"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	At        time.Time `json:"at" bson:"at"`
}

type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	// Seq is the counter value behind OrderNumber.
	Seq                 int64           `json:"-"`
	Customer            Customer        `json:"customer"`
	Restaurant          Restaurant      `json:"restaurant"`
	VendorID            string          `json:"vendorId"`
	Items               []Item          `json:"items"`
	TotalPrice          decimal.Decimal `json:"totalPrice"`
	DeliveryAddress     string          `json:"deliveryAddress"`
	PaymentMethod       PaymentMethod   `json:"paymentMethod"`
	Status              Status          `json:"status"`
	Reason              string          `json:"rejectionReason,omitempty"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
	History             []StatusChange  `json:"statusHistory"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Total sums the line subtotals.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// FormatNumber renders the human readable order number, ORD-0001 style.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("ORD-%04d", seq)
}

func (o *Order) clone() *Order {
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	cp.History = append([]StatusChange(nil), o.History...)
	return &cp
}
