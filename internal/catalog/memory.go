package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemRepo is an in-process Repository for tests and single-node dev runs.
type MemRepo struct {
	mu          sync.RWMutex
	restaurants map[string]Restaurant
	recipes     map[string]Recipe
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		restaurants: make(map[string]Restaurant),
		recipes:     make(map[string]Recipe),
	}
}

func cloneRecipe(rc Recipe) Recipe {
	rc.Ingredients = append([]string{}, rc.Ingredients...)
	return rc
}

func (m *MemRepo) CreateRestaurant(_ context.Context, r *Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	m.restaurants[r.ID] = *r
	return nil
}

func (m *MemRepo) GetRestaurant(_ context.Context, id string) (*Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.restaurants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemRepo) ListRestaurantsByVendor(_ context.Context, vendorID string) ([]Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Restaurant{}
	for _, r := range m.restaurants {
		if r.VendorID == vendorID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemRepo) ListRestaurants(_ context.Context, q Query) ([]Restaurant, error) {
	q = q.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Restaurant{}
	needle := strings.ToLower(q.Q)
	for _, r := range m.restaurants {
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Name), needle) &&
			!strings.Contains(strings.ToLower(r.Cuisine), needle) {
			continue
		}
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if q.Offset >= len(all) {
		return []Restaurant{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[q.Offset:end], nil
}

func (m *MemRepo) UpdateRestaurant(_ context.Context, r *Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[r.ID]; !ok {
		return ErrNotFound
	}
	r.UpdatedAt = time.Now().UTC()
	m.restaurants[r.ID] = *r
	return nil
}

func (m *MemRepo) DeleteRestaurant(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[id]; !ok {
		return false, nil
	}
	for rid, rc := range m.recipes {
		if rc.RestaurantID == id {
			delete(m.recipes, rid)
		}
	}
	delete(m.restaurants, id)
	return true, nil
}

func (m *MemRepo) CreateRecipe(_ context.Context, rc *Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	rc.CreatedAt, rc.UpdatedAt = now, now
	m.recipes[rc.ID] = cloneRecipe(*rc)
	return nil
}

func (m *MemRepo) GetRecipe(_ context.Context, id string) (*Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rc, ok := m.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	rc = cloneRecipe(rc)
	return &rc, nil
}

func (m *MemRepo) ListRecipes(_ context.Context, q Query) ([]Recipe, error) {
	q = q.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Recipe{}
	needle := strings.ToLower(q.Q)
	for _, rc := range m.recipes {
		if !rc.Available {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(rc.Name), needle) &&
			!strings.Contains(strings.ToLower(string(rc.Category)), needle) {
			continue
		}
		all = append(all, cloneRecipe(rc))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if q.Offset >= len(all) {
		return []Recipe{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[q.Offset:end], nil
}

func (m *MemRepo) ListRecipesByVendor(_ context.Context, vendorID string) ([]Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Recipe{}
	for _, rc := range m.recipes {
		if rc.VendorID == vendorID {
			out = append(out, cloneRecipe(rc))
		}
	}
	sortMenu(out)
	return out, nil
}

func (m *MemRepo) ListRecipesByRestaurant(_ context.Context, restaurantID string) ([]Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.restaurants[restaurantID]
	if !ok {
		return nil, ErrNotFound
	}
	out := []Recipe{}
	for _, rc := range m.recipes {
		if rc.ServedBy(&r) {
			out = append(out, cloneRecipe(rc))
		}
	}
	sortMenu(out)
	return out, nil
}

func sortMenu(out []Recipe) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
}

func (m *MemRepo) UpdateRecipe(_ context.Context, rc *Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[rc.ID]; !ok {
		return ErrNotFound
	}
	rc.UpdatedAt = time.Now().UTC()
	m.recipes[rc.ID] = cloneRecipe(*rc)
	return nil
}

func (m *MemRepo) DeleteRecipe(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[id]; !ok {
		return false, nil
	}
	delete(m.recipes, id)
	return true, nil
}
