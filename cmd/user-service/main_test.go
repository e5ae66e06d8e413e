package main

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/yummigo-orders/internal/config"
)

func TestRun_ListenFailureReturnsError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	cfg := &config.Config{StoreDriver: config.DriverMemory, UserGRPCAddr: busy.Addr().String()}
	if err := run(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("esperaba error con el puerto ocupado")
	}
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &config.Config{StoreDriver: config.DriverMemory, UserGRPCAddr: "127.0.0.1:0"}
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zap.NewNop()) }()

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
