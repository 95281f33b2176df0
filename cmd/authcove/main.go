// Command authcove runs the authentication service: credential
// verification, JWT issuance and revocation, and the HTTP API in front of
// them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nmelnikov/authcove/internal/auth"
	"github.com/nmelnikov/authcove/internal/cache"
	"github.com/nmelnikov/authcove/internal/config"
	"github.com/nmelnikov/authcove/internal/database"
	"github.com/nmelnikov/authcove/internal/events"
	"github.com/nmelnikov/authcove/internal/observability"
	"github.com/nmelnikov/authcove/internal/server"
	"github.com/nmelnikov/authcove/internal/token"
	"github.com/nmelnikov/authcove/internal/users"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to configuration file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("authcove %s (built %s)\n", version, buildTime)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "authcove: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting authcove",
		observability.String("version", version),
		observability.String("addr", cfg.Server.ListenAddr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	store, err := cache.NewRedis(&cfg.Redis, logger, metrics)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	publisher := events.NewNop()
	if cfg.RabbitMQ.Enabled {
		publisher, err = events.NewAMQP(cfg.RabbitMQ.URL, logger, metrics)
		if err != nil {
			return err
		}
	}
	defer func() { _ = publisher.Close() }()

	repo := users.NewPostgresRepository(db)
	userSvc := users.NewService(repo, store, publisher, logger, metrics, cfg.Cache.UserTTL.Duration())
	tokenSvc := token.NewService(&cfg.Token, store, logger, metrics)
	authenticator := auth.NewAuthenticator(tokenSvc, userSvc, logger)

	router := server.NewRouter(server.Deps{
		Users:         userSvc,
		Tokens:        tokenSvc,
		Authenticator: authenticator,
		Publisher:     publisher,
		Logger:        logger,
		Metrics:       metrics,
		Registry:      registry,
	})

	srv := server.New(&cfg.Server, router, logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("authcove stopped")
	return nil
}
