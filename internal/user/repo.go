package user

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("user not found")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	// Upsert creates the profile or refreshes its name, email and phone.
	Upsert(ctx context.Context, p *Profile) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM users WHERE id=$1
	`, id).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) Upsert(ctx context.Context, p *Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, phone, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
		    email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
		    phone = COALESCE(NULLIF(EXCLUDED.phone, ''), users.phone),
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Email, p.Phone).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// MemRepo keeps profiles in memory.
type MemRepo struct {
	mu    sync.RWMutex
	users map[string]Profile
}

func NewMemRepo(profiles ...Profile) *MemRepo {
	m := &MemRepo{users: make(map[string]Profile)}
	for _, p := range profiles {
		m.users[p.ID] = p
	}
	return m
}

func (m *MemRepo) GetByID(_ context.Context, id string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemRepo) Upsert(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	cur, ok := m.users[p.ID]
	if !ok {
		cur = Profile{ID: p.ID, CreatedAt: now}
	}
	if p.Name != "" {
		cur.Name = p.Name
	}
	if p.Email != "" {
		cur.Email = p.Email
	}
	if p.Phone != "" {
		cur.Phone = p.Phone
	}
	cur.UpdatedAt = now
	m.users[p.ID] = cur
	p.CreatedAt, p.UpdatedAt = cur.CreatedAt, cur.UpdatedAt
	return nil
}
