// @title        yummigo orders API
// @version      1.0
// @description  Order lifecycle and catalog service of the yummigo marketplace.
// @BasePath     /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/yummigo-orders/internal/auth"
	"github.com/MikeMC777/yummigo-orders/internal/config"
	"github.com/MikeMC777/yummigo-orders/internal/logging"
	"github.com/MikeMC777/yummigo-orders/internal/messaging"
	"github.com/MikeMC777/yummigo-orders/internal/order"
	"github.com/MikeMC777/yummigo-orders/internal/store"
	"github.com/MikeMC777/yummigo-orders/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("order-service failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run serves until ctx is done. Every resource it opened is closed before it
// returns.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var ext order.Ext
	if cfg.UserSvcAddr != "" {
		dir, err := user.Dial(cfg.UserSvcAddr)
		if err != nil {
			return fmt.Errorf("dial user directory: %w", err)
		}
		defer func() { _ = dir.Close() }()
		ext.Directory = directory(dir)
		log.Info("user directory enabled", zap.String("addr", cfg.UserSvcAddr))
	}
	if cfg.AMQPURL != "" {
		pub, err := messaging.Dial(cfg.AMQPURL, log)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer func() { _ = pub.Close() }()
		ext.Events = pub
		log.Info("order events enabled", zap.String("exchange", messaging.Exchange))
	}

	svc := order.NewService(st.Orders, st.Catalog, st.Sequence, ext, log)
	r := newRouter(deps{
		orders:   svc,
		catalog:  st.Catalog,
		verifier: auth.NewVerifier(cfg.JWTSecret),
		log:      log,
		timeout:  cfg.OrderTimeout,
	})

	l, err := net.Listen("tcp", cfg.OrderSvcAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(l) }()
	log.Info("order-service listening", zap.String("addr", l.Addr().String()))

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("order-service stopped")
	return nil
}

// directory resolves customer snapshots through the user gRPC service.
func directory(c *user.Client) order.Directory {
	return order.DirectoryFunc(func(ctx context.Context, id string) (order.Customer, error) {
		p, err := c.Profile(ctx, id)
		if err != nil {
			return order.Customer{}, err
		}
		return order.Customer{ID: p.ID, Name: p.Name, Email: p.Email}, nil
	})
}
