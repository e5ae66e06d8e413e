package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/MikeMC777/yummigo-orders/internal/config"
	"github.com/MikeMC777/yummigo-orders/internal/logging"
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
		log.Error("user-service failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run serves the directory until ctx is done.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	l, err := net.Listen("tcp", cfg.UserGRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(logUnary(log)))
	user.Register(s, user.NewService(st.Users))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		hs.Shutdown()
		s.GracefulStop()
	}()

	log.Info("user-service listening", zap.String("addr", l.Addr().String()))
	if err := s.Serve(l); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	<-stopped
	return nil
}

func logUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("grpc", zap.String("method", info.FullMethod), zap.Error(err))
		} else {
			log.Debug("grpc", zap.String("method", info.FullMethod))
		}
		return resp, err
	}
}
