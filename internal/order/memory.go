package order

import (
	"context"
	"sort"
	"sync"
)

// MemRepo is an in-process Repository. Each method holds the lock for the
// whole operation, which gives the same guarantees as the conditional SQL
// update.
type MemRepo struct {
	mu      sync.RWMutex
	orders  map[string]*Order
	numbers map[string]string
}

func NewMemRepo() *MemRepo {
	return &MemRepo{orders: make(map[string]*Order), numbers: make(map[string]string)}
}

func (m *MemRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.numbers[o.OrderNumber]; taken {
		return ErrDuplicateNumber
	}
	m.orders[o.ID] = o.clone()
	m.numbers[o.OrderNumber] = o.ID
	return nil
}

func (m *MemRepo) GetByID(_ context.Context, id string) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.clone(), nil
}

func (m *MemRepo) ListByCustomer(_ context.Context, customerID string, p Page) ([]Order, error) {
	return m.filter(p, func(o *Order) bool { return o.Customer.ID == customerID }), nil
}

func (m *MemRepo) ListByRestaurants(_ context.Context, restaurantIDs []string, p Page) ([]Order, error) {
	set := make(map[string]bool, len(restaurantIDs))
	for _, id := range restaurantIDs {
		set[id] = true
	}
	return m.filter(p, func(o *Order) bool { return set[o.Restaurant.ID] }), nil
}

func (m *MemRepo) filter(p Page, keep func(*Order) bool) []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, *o.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Seq > out[j].Seq
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if p.Offset >= len(out) {
		return []Order{}
	}
	out = out[p.Offset:]
	if p.Limit > 0 && p.Limit < len(out) {
		out = out[:p.Limit]
	}
	return out
}

func (m *MemRepo) UpdateStatus(_ context.Context, id string, from Status, ch StatusChange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = ch.To
	if ch.To.Failed() {
		o.Reason = ch.Reason
	}
	o.UpdatedAt = ch.At
	o.History = append(o.History, ch)
	return true, nil
}

func (m *MemRepo) MaxSeq(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var max int64
	for _, o := range m.orders {
		if o.Seq > max {
			max = o.Seq
		}
	}
	return max, nil
}

// Count returns the number of stored orders.
func (m *MemRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
