package order

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sequence hands out order counter values. Next must be atomic across every
// process sharing the backing store. Seed raises the counter to at least
// floor and never lowers it.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
	Seed(ctx context.Context, floor int64) error
}

type MemSequence struct {
	mu sync.Mutex
	n  int64
}

func (s *MemSequence) Next(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n, nil
}

func (s *MemSequence) Seed(_ context.Context, floor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n < floor {
		s.n = floor
	}
	return nil
}

// PGSequence increments a row of order_counters in one statement.
type PGSequence struct {
	db   *pgxpool.Pool
	name string
}

func NewPGSequence(db *pgxpool.Pool) *PGSequence { return &PGSequence{db: db, name: "orders"} }

func (s *PGSequence) Next(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO order_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = order_counters.value + 1
		RETURNING value
	`, s.name).Scan(&n)
	return n, err
}

func (s *PGSequence) Seed(ctx context.Context, floor int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO order_counters (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = GREATEST(order_counters.value, EXCLUDED.value)
	`, s.name, floor)
	return err
}

// MongoSequence keeps the counter in a counters collection document.
type MongoSequence struct {
	col *mongo.Collection
	id  string
}

func NewMongoSequence(db *mongo.Database) *MongoSequence {
	return &MongoSequence{col: db.Collection("counters"), id: "orders"}
}

func (s *MongoSequence) Next(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc struct {
		Value int64 `bson:"value"`
	}
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": s.id},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	return doc.Value, err
}

func (s *MongoSequence) Seed(ctx context.Context, floor int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": s.id},
		bson.M{"$max": bson.M{"value": floor}},
		options.Update().SetUpsert(true),
	)
	return err
}

// RedisSequence uses INCR on a single key.
type RedisSequence struct {
	rdb *redis.Client
	key string
}

func NewRedisSequence(rdb *redis.Client) *RedisSequence {
	return &RedisSequence{rdb: rdb, key: "yummigo:orders:seq"}
}

func (s *RedisSequence) Next(ctx context.Context) (int64, error) {
	return s.rdb.Incr(ctx, s.key).Result()
}

var raiseTo = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if cur < floor then
  redis.call('SET', KEYS[1], floor)
  return floor
end
return cur
`)

func (s *RedisSequence) Seed(ctx context.Context, floor int64) error {
	return raiseTo.Run(ctx, s.rdb, []string{s.key}, floor).Err()
}
