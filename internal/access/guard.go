// Package access decides what an identity may do with orders and catalog
// entries. Every function here is a pure decision over identities and
// ownership; callers turn a false result into a forbidden error.
package access

import "github.com/MikeMC777/yummigo-orders/internal/auth"

type Action int

const (
	View Action = iota
	// Fulfil covers every vendor driven status change, including rejection.
	Fulfil
	// Cancel is the buyer's early cancellation path.
	Cancel
)

// OrderRef is the ownership view of an order.
type OrderRef struct {
	CustomerID string
	VendorID   string
	// Pending reports whether the order has not been confirmed yet.
	Pending bool
}

// CanPlace reports whether id may place new orders.
func CanPlace(id auth.Identity) bool {
	return id.ID != "" && id.Role == auth.RoleBuyer
}

func CanView(id auth.Identity, o OrderRef) bool {
	switch id.Role {
	case auth.RoleAdmin:
		return true
	case auth.RoleBuyer:
		return id.ID != "" && id.ID == o.CustomerID
	case auth.RoleVendor:
		return id.ID != "" && id.ID == o.VendorID
	}
	return false
}

// CanMutate reports whether id may perform act on o.
// Buyers may only cancel their own orders while they are still pending.
func CanMutate(id auth.Identity, o OrderRef, act Action) bool {
	switch id.Role {
	case auth.RoleAdmin:
		return act != View
	case auth.RoleVendor:
		return act != View && id.ID != "" && id.ID == o.VendorID
	case auth.RoleBuyer:
		return act == Cancel && o.Pending && id.ID != "" && id.ID == o.CustomerID
	}
	return false
}

// CanManage reports whether id may change catalog entries owned by vendorID.
func CanManage(id auth.Identity, vendorID string) bool {
	if id.Role == auth.RoleAdmin {
		return true
	}
	return id.Role == auth.RoleVendor && id.ID != "" && id.ID == vendorID
}
