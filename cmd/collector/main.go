// ====================================
// File: cmd/collector/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/pumpfun-collector/internal/blockchain/solbc"
	"github.com/rovshanmuradov/pumpfun-collector/internal/collector"
	"github.com/rovshanmuradov/pumpfun-collector/internal/config"
	"github.com/rovshanmuradov/pumpfun-collector/internal/dex/pumpfun"
	"github.com/rovshanmuradov/pumpfun-collector/internal/eventlistener"
	"github.com/rovshanmuradov/pumpfun-collector/internal/export"
	"github.com/rovshanmuradov/pumpfun-collector/internal/logger"
)

func configPath() string {
	if path := os.Getenv("COLLECTOR_CONFIG"); path != "" {
		return path
	}
	return "configs/config.json"
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load configuration", zap.Error(err))
		return
	}

	logCfg := logger.DefaultConfig()
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to initialize logger", zap.Error(err))
		return
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Pump.fun launch collector",
		zap.String("rpc", cfg.RPCList[0]),
		zap.String("commitment", cfg.Commitment))

	client := solbc.NewClient(cfg.RPCList[0], log.WithComponent("chain"))
	if err := client.GetHealth(ctx); err != nil {
		log.Warn("RPC node health check failed, continuing anyway", zap.Error(err))
	}

	fetcher := collector.NewCurveFetcher(
		client,
		log.WithComponent("collector"),
		rpc.CommitmentType(cfg.Commitment),
		cfg.MaxRetries,
		time.Duration(cfg.RetryDelayMs)*time.Millisecond,
	)

	sink, err := export.NewSnapshotWriter(cfg.DatasetDir, export.SnapshotFormat(cfg.DatasetFormat), log.WithComponent("dataset"))
	if err != nil {
		log.Fatal("Failed to create dataset writer", zap.Error(err))
		return
	}

	handler := collector.NewHandler(fetcher, sink, log.WithComponent("collector"))

	listener, err := eventlistener.NewEventListener(ctx, cfg.WebSocketURL, pumpfun.PumpFunProgramID.String(), log.WithComponent("listener"))
	if err != nil {
		log.Fatal("Failed to connect to websocket endpoint", zap.Error(err))
		return
	}

	if err := listener.Subscribe(); err != nil {
		log.Fatal("Failed to subscribe to program logs", zap.Error(err))
		return
	}

	log.Info("Listening for new token launches. Press Ctrl+C to stop.")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.Listen(gctx, handler.OnTokenLaunch)
	})
	g.Go(func() error {
		<-gctx.Done()
		return listener.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.LogError("Collector stopped with error", err)
		os.Exit(1)
	}

	log.Info("Collector shut down")
}
