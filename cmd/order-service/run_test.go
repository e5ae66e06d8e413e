package main

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/yummigo-orders/internal/config"
)

func memoryConfig(addr string) *config.Config {
	return &config.Config{
		OrderSvcAddr: addr,
		StoreDriver:  config.DriverMemory,
		JWTSecret:    secret,
		OrderTimeout: time.Second,
	}
}

func TestRun_InvalidConfigReturnsError(t *testing.T) {
	cfg := memoryConfig("127.0.0.1:0")
	cfg.JWTSecret = ""
	if err := run(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("esperaba error por JWT_SECRET vacío")
	}
}

func TestRun_ListenFailureReturnsError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	mustNil(t, err)
	defer busy.Close()

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), memoryConfig(busy.Addr().String()), zap.NewNop()) }()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("esperaba error con el puerto ocupado")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run no devolvió el error de listen")
	}
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, memoryConfig("127.0.0.1:0"), zap.NewNop()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("apagado con error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run no terminó tras cancelar el contexto")
	}
}
