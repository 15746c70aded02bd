package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/arc-self/amon/packages/amon-core/config"
	"github.com/arc-self/amon/packages/amon-core/httpmw"

	"github.com/arc-self/amon/apps/relay/internal/forward"
	"github.com/arc-self/amon/apps/relay/internal/handler"
	"github.com/arc-self/amon/apps/relay/internal/sync"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.LoadRelay()

	poller := sync.NewPoller(cfg.MasterURL, cfg.DataDir, cfg.Targets, cfg.PollInterval, logger)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	defer pollerCancel()
	go poller.Run(pollerCtx)

	fwd := forward.NewForwarder(cfg.MasterURL, logger)

	e := echo.New()
	e.HideBanner = true
	httpmw.Install(e, "amon-relay", logger)

	handler.NewAgentProbesHandler(cfg.DataDir).Register(e)
	handler.NewEventsHandler(fwd).Register(e)

	go func() {
		logger.Info("amon-relay HTTP server listening", zap.Int("port", cfg.Port))
		if err := e.Start(":" + strconv.Itoa(cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failure", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("initiating graceful shutdown")
	pollerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
}
