package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/arc-self/amon/packages/amon-core/config"
	"github.com/arc-self/amon/packages/amon-core/plugins/probetype"

	"github.com/arc-self/amon/apps/agent/internal/probe"
	"github.com/arc-self/amon/apps/agent/internal/reconcile"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.LoadAgent()
	if cfg.TargetUUID == "" {
		logger.Fatal("AMON_AGENT_TARGET_UUID is required")
	}

	emitter := probe.NewEmitter(cfg.RelayURL, logger)
	registry := probetype.DefaultRegistry()
	reconciler := reconcile.NewReconciler(registry, emitter, logger)

	poller := reconcile.NewPoller(cfg.RelayURL, cfg.TargetType, cfg.TargetUUID, cfg.PollInterval, reconciler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("initiating graceful shutdown")
		cancel()
	}()

	logger.Info("amon-agent starting",
		zap.String("target_type", cfg.TargetType), zap.String("target_uuid", cfg.TargetUUID))
	poller.Run(ctx)
}
