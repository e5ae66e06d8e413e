package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/yummigo-orders/internal/auth"
)

// Stats aggregates the orders of every restaurant vendorID owns. Vendors may
// only ask for themselves (an empty vendorID means the caller); admins may
// ask for anyone. The figures are recomputed from stored orders on each call.
func (s *Service) Stats(ctx context.Context, id auth.Identity, vendorID string) (Stats, error) {
	if vendorID == "" {
		vendorID = id.ID
	}
	switch {
	case id.Role == auth.RoleAdmin:
	case id.Role == auth.RoleVendor && vendorID == id.ID:
	default:
		return Stats{}, failf(ErrForbidden, "not allowed to read these stats")
	}

	ids, err := s.restaurantIDs(ctx, vendorID)
	if err != nil {
		return Stats{}, err
	}
	if len(ids) == 0 {
		return Aggregate(nil), nil
	}
	orders, err := s.repo.ListByRestaurants(ctx, ids, Page{})
	if err != nil {
		return Stats{}, storage(err)
	}
	return Aggregate(orders), nil
}

// Aggregate counts orders by outcome. Only delivered orders earn.
func Aggregate(orders []Order) Stats {
	st := Stats{Earnings: decimal.Zero}
	for _, o := range orders {
		st.TotalOrders++
		switch {
		case o.Status == StatusDelivered:
			st.CompletedOrders++
			st.Earnings = st.Earnings.Add(o.TotalPrice)
		case o.Status.Failed():
			st.RejectedOrders++
		}
	}
	return st
}
