package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	coreconfig "github.com/arc-self/amon/packages/amon-core/config"
	"github.com/arc-self/amon/packages/amon-core/directory"
	"github.com/arc-self/amon/packages/amon-core/httpmw"
	"github.com/arc-self/amon/packages/amon-core/mapi"
	"github.com/arc-self/amon/packages/amon-core/natsclient"
	"github.com/arc-self/amon/packages/amon-core/plugins/notification"
	"github.com/arc-self/amon/packages/amon-core/plugins/probetype"
	"github.com/arc-self/amon/packages/amon-core/cache"
	"github.com/arc-self/amon/packages/amon-core/telemetry"

	"github.com/arc-self/amon/apps/master/internal/authz"
	"github.com/arc-self/amon/apps/master/internal/db"
	"github.com/arc-self/amon/apps/master/internal/handler"
	"github.com/arc-self/amon/apps/master/internal/repository"
	"github.com/arc-self/amon/apps/master/internal/service"
	"github.com/arc-self/amon/apps/master/internal/service/dispatch"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint != "" {
		tp, err := telemetry.InitTracer(context.Background(), "amon-master", otelEndpoint)
		if err != nil {
			logger.Error("failed to init OTel tracer", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
			logger.Info("OTel tracer initialized", zap.String("endpoint", otelEndpoint))
		}
	}

	vaultAddr := envOr("VAULT_ADDR", "http://localhost:8200")
	vaultToken := envOr("VAULT_TOKEN", "root")
	secretPath := envOr("VAULT_SECRET_PATH", "secret/data/arc/amon-master")

	vaultManager, err := coreconfig.NewSecretManager(vaultAddr, vaultToken)
	if err != nil {
		logger.Fatal("Vault connection failed", zap.Error(err))
	}
	secrets, err := vaultManager.GetKV2(secretPath)
	if err != nil {
		logger.Warn("failed to load secrets from Vault, falling back to environment", zap.Error(err))
		secrets = map[string]any{}
	}

	cfg := coreconfig.LoadMaster(secrets)

	poolCfg, err := pgxpool.ParseConfig(cfg.PGURL)
	if err != nil {
		logger.Fatal("failed to parse PG_URL", zap.Error(err))
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if _, err := pool.Exec(context.Background(), db.Schema); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}
	querier := db.New(pool)
	ledger := db.NewEventLedger(querier)

	reaper, err := db.NewReaper(querier, cfg.EventDedupWindow, fmt.Sprintf("@every %s", cfg.ReaperSweepPeriod), logger)
	if err != nil {
		logger.Fatal("dedup ledger reaper setup failed", zap.Error(err))
	}
	reaper.Start()
	defer reaper.Stop()

	natsClient, err := natsclient.NewClient(cfg.NATSURL, logger)
	if err != nil {
		logger.Fatal("NATS initialization failed", zap.Error(err))
	}
	defer natsClient.Close()
	if err := natsClient.ProvisionStreams(cfg.EventDedupWindow); err != nil {
		logger.Fatal("NATS stream provisioning failed", zap.Error(err))
	}

	dirAdapter, err := directory.NewLDAPAdapter(directory.Config{
		URL: cfg.UFDS.URL, RootDN: cfg.UFDS.RootDN, Password: cfg.UFDS.Password,
	}, logger)
	if err != nil {
		logger.Fatal("directory connection failed", zap.Error(err))
	}
	defer dirAdapter.Close()

	mapiClient := mapi.New(mapi.Config{URL: cfg.MAPI.URL, Username: cfg.MAPI.Username, Password: cfg.MAPI.Password})

	accountCache := cache.New(cfg.AccountCache.Size, time.Duration(cfg.AccountCache.ExpirySecs)*time.Second)
	probeCache := cache.New(cfg.ProbeCache.Size, time.Duration(cfg.ProbeCache.ExpirySecs)*time.Second)

	accounts := repository.NewAccountRepo(dirAdapter, accountCache)
	contacts := repository.NewContactRepo(dirAdapter, accountCache)
	monitors := repository.NewMonitorRepo(dirAdapter, accountCache)
	probeReg := probetype.DefaultRegistry()
	probes := repository.NewProbeRepo(dirAdapter, probeCache, probeReg)

	az := authz.New(dirAdapter, mapiClient, accountCache)
	objSvc := service.NewObjectService(accounts, contacts, monitors, probes, az, probeReg, querier, logger)

	pluginCfg := make(map[string]notification.PluginConfig, len(cfg.NotificationPlugins))
	for name, pc := range cfg.NotificationPlugins {
		pluginCfg[name] = notification.PluginConfig{Path: pc.Path, Config: pc.Config}
	}
	notifyReg, err := notification.Build(pluginCfg, logger)
	if err != nil {
		logger.Fatal("failed to build notification plugin registry", zap.Error(err))
	}

	dispatcher := dispatch.NewDispatcher(monitors, contacts, notifyReg, logger)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	consumer := dispatch.NewConsumer(natsClient, dispatcher, ledger, logger)
	if err := consumer.Start(consumerCtx); err != nil {
		logger.Fatal("event consumer start failed", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	httpmw.Install(e, "amon-master", logger)
	e.Use(httpmw.NullToEmptyArray())

	pubGroup := e.Group("/pub/:login")
	handler.NewAccountHandler(objSvc).Register(e, pubGroup)
	handler.NewContactsHandler(objSvc).Register(pubGroup)
	handler.NewMonitorsHandler(objSvc, dispatcher).Register(pubGroup)
	handler.NewProbesHandler(objSvc, az).Register(pubGroup)
	handler.NewAgentProbesHandler(objSvc).Register(e)
	handler.NewEventsHandler(natsClient).Register(e)

	go func() {
		logger.Info("amon-master HTTP server listening", zap.Int("port", cfg.Port))
		if err := e.Start(addr(cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failure", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("initiating graceful shutdown")
	consumerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func addr(port int) string {
	return ":" + strconv.Itoa(port)
}
