// Package store wires the repositories for the configured STORE_DRIVER.
package store

import (
	"context"
	"fmt"

	"github.com/MikeMC777/yummigo-orders/internal/catalog"
	"github.com/MikeMC777/yummigo-orders/internal/config"
	"github.com/MikeMC777/yummigo-orders/internal/database"
	"github.com/MikeMC777/yummigo-orders/internal/order"
	"github.com/MikeMC777/yummigo-orders/internal/user"
	"go.uber.org/zap"
)

type Store struct {
	Catalog  catalog.Repository
	Orders   order.Repository
	Sequence order.Sequence
	Users    user.Repository

	closers []func()
}

func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open connects the backing store. When REDIS_ADDR is set, order numbers come
// from Redis. Whichever counter is used is seeded from the highest persisted
// order number.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	s := &Store{}
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		if _, err := database.Migrate(ctx, pool, log); err != nil {
			s.Close()
			return nil, err
		}
		s.Catalog = catalog.NewPGRepo(pool)
		s.Orders = order.NewPGRepo(pool)
		s.Sequence = order.NewPGSequence(pool)
		s.Users = user.NewPGRepo(pool)

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })
		db := client.Database(cfg.MongoDatabase)
		cat := catalog.NewMongoRepo(db)
		orders := order.NewMongoRepo(db)
		if err := cat.EnsureIndexes(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("catalog indexes: %w", err)
		}
		if err := orders.EnsureIndexes(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("order indexes: %w", err)
		}
		s.Catalog, s.Orders = cat, orders
		s.Sequence = order.NewMongoSequence(db)
		// Profiles have no Mongo schema; the directory keeps them in memory.
		s.Users = user.NewMemRepo()

	case config.DriverMemory:
		s.Catalog = catalog.NewMemRepo()
		s.Orders = order.NewMemRepo()
		s.Sequence = &order.MemSequence{}
		s.Users = user.NewMemRepo()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		s.Sequence = order.NewRedisSequence(rdb)
	}

	// A counter can trail the stored orders after switching between Redis and
	// the store-backed counter, or after Redis lost its data.
	floor, err := s.Orders.MaxSeq(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("read max order number: %w", err)
	}
	if err := s.Sequence.Seed(ctx, floor); err != nil {
		s.Close()
		return nil, fmt.Errorf("seed order counter: %w", err)
	}

	log.Info("store opened", zap.String("driver", cfg.StoreDriver), zap.Bool("redis_sequence", cfg.RedisAddr != ""))
	return s, nil
}
