package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"acadreg/internal/access"
	"acadreg/internal/credential"
	jwttoken "acadreg/internal/jwt_token"
	"acadreg/internal/notify"
	"acadreg/internal/platform/config"
	"acadreg/internal/platform/httpserver"
	"acadreg/internal/platform/logger"
	"acadreg/internal/platform/metrics"
	redisplatform "acadreg/internal/platform/redis"
	"acadreg/internal/registry"
	httptransport "acadreg/internal/transport/http"
	id "acadreg/pkg/domain"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		credStore    credential.Store
		accessStore  access.Store
		healthChecks []func(h *httptransport.Handler)
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}

		pgCredentials := credential.NewPostgres(db)
		if err := pgCredentials.EnsureSchema(ctx); err != nil {
			return err
		}
		pgAccess := access.NewPostgres(db)
		if err := pgAccess.EnsureSchema(ctx); err != nil {
			return err
		}
		credStore, accessStore = pgCredentials, pgAccess
		healthChecks = append(healthChecks, func(h *httptransport.Handler) {
			h.RegisterHealthCheck("postgres", db.PingContext)
		})
		log.Info("using postgres stores")
	} else {
		credStore = credential.NewInMemoryStore()
		accessStore = access.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	if cfg.RedisURL != "" {
		rdb, err := redisplatform.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		credStore = credential.NewCachedStore(credStore, rdb.Client, cfg.CacheTTL, log)
		healthChecks = append(healthChecks, func(h *httptransport.Handler) {
			h.RegisterHealthCheck("redis", rdb.Health)
		})
		log.Info("credential verification cache enabled")
	}

	var notifier notify.Publisher = notify.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafka.Close()
		notifier = kafka
		log.Info("kafka event publisher enabled", "topic", cfg.KafkaTopic)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	accessSvc, err := access.New(accessStore,
		access.WithLogger(log),
		access.WithNotifier(notifier),
	)
	if err != nil {
		return err
	}
	if cfg.BootstrapAdmin != "" {
		admin, err := id.ParsePrincipal(cfg.BootstrapAdmin)
		if err != nil {
			return fmt.Errorf("invalid bootstrap administrator: %w", err)
		}
		if err := accessSvc.Bootstrap(ctx, admin); err != nil {
			return fmt.Errorf("bootstrap administrator: %w", err)
		}
	} else {
		log.Warn("no bootstrap administrator configured; administrator operations will fail until one is set")
	}

	registrySvc, err := registry.New(accessSvc, credStore,
		registry.WithLogger(log),
		registry.WithNotifier(notifier),
		registry.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	jwtSvc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	handler := httptransport.NewHandler(registrySvc, log, m, jwtSvc)
	for _, register := range healthChecks {
		register(handler)
	}
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	log.Info("starting acadreg", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
