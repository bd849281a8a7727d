package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tabvault/tabvault/internal/config"
	"github.com/tabvault/tabvault/internal/grouping"
	"github.com/tabvault/tabvault/internal/httpserver"
	"github.com/tabvault/tabvault/internal/httpserver/deps"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/redis"
	"github.com/tabvault/tabvault/internal/serverstore"
	syncbus "github.com/tabvault/tabvault/internal/sync"
	"github.com/tabvault/tabvault/internal/version"
)

// App wires together the tabvaultd server: config, redis, the sealed
// scope store, the broadcast bus, the grouping service and the HTTP
// server.
type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	bus         *syncbus.RedisBus
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	key, err := serverstore.ParseKey(cfg.EncryptionKey)
	if err != nil {
		loggerClient.Errorf("Invalid TABVAULT_ENCRYPTION_KEY: %v", err)
		os.Exit(1)
	}
	scopeStore, err := serverstore.New(redisClient, key)
	if err != nil {
		loggerClient.Errorf("Failed to initialize scope store: %v", err)
		os.Exit(1)
	}

	// Broadcast bus: clients subscribed through other tabvaultd
	// instances see writes made through this one.
	bus, err := syncbus.NewRedisBus(context.Background(), redisClient, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to subscribe to signal channel: %v", err)
		os.Exit(1)
	}

	// Grouping is optional: without an API key the endpoint serves the
	// single-group fallback.
	var grouper deps.Grouper
	if cfg.GroupingKey != "" {
		svc, err := grouping.NewService(context.Background(), cfg.GroupingKey, cfg.GroupingModel, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to initialize grouping service: %v", err)
			os.Exit(1)
		}
		grouper = svc
		loggerClient.Info("grouping service initialized")
	} else {
		loggerClient.Info("no grouping API key configured, grouping runs fallback-only")
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		APIToken:     cfg.APIToken,
		Store:        scopeStore,
		Grouping:     grouper,
		Bus:          bus,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		bus:         bus,
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting tabvaultd v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("tabvaultd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.bus.Close(); err != nil {
		a.logger.Warnf("failed to close signal bus: %v", err)
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	a.logger.Info("tabvaultd stopped cleanly")
	return nil
}
