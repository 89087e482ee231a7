package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"kbgate/internal/action"
	"kbgate/internal/audit"
	audithandler "kbgate/internal/audit/handler"
	"kbgate/internal/audit/sink"
	auditmem "kbgate/internal/audit/store/memory"
	auditpg "kbgate/internal/audit/store/postgres"
	auditredis "kbgate/internal/audit/store/redis"
	"kbgate/internal/gateway"
	gatewayhandler "kbgate/internal/gateway/handler"
	httpapi "kbgate/internal/http"
	"kbgate/internal/platform/config"
	"kbgate/internal/platform/httpserver"
	"kbgate/internal/platform/logger"
	"kbgate/internal/platform/metrics"
	"kbgate/internal/platform/redis"
	"kbgate/internal/policy"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Policy is mandatory: the gateway must not serve traffic without it.
	policies, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}
	for _, problem := range policy.Lint(policies.All()) {
		log.Warn("policy lint", "role", problem.RoleID, "problem", problem.Message)
	}

	m := metrics.New()

	store, cleanup, err := buildAuditStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	defer cleanup()

	auditLog, err := audit.NewLog(ctx, store,
		audit.WithLogger(log),
		audit.WithBacklog(cfg.AuditBacklog),
		audit.WithRecordHook(func(e audit.Entry) {
			m.AuditEntries.WithLabelValues(string(e.Status)).Inc()
		}),
		audit.WithOverflowHook(func() { m.SubscriberOverflows.Inc() }),
		audit.WithPersistFailHook(func() { m.AuditPersistFails.Inc() }),
	)
	if err != nil {
		return fmt.Errorf("audit log: %w", err)
	}
	defer auditLog.Close()

	validator, err := action.NewValidator()
	if err != nil {
		return fmt.Errorf("compile action schemas: %w", err)
	}

	svc, err := gateway.New(
		policies,
		validator,
		auditLog,
		newSearchClient(cfg, m),
		newGeneratorClient(cfg, m),
		newIntegrationsClient(cfg),
		gateway.WithLogger(log),
		gateway.WithTimeouts(cfg.SearchTimeout, cfg.GenerateTimeout),
	)
	if err != nil {
		return fmt.Errorf("gateway service: %w", err)
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Gateway:       gatewayhandler.New(svc, log, m),
		Audit:         audithandler.New(auditLog, svc, log),
		Logger:        log,
		JWTSigningKey: cfg.JWTSigningKey,
	})
	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := sink.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("kafka sink: %w", err)
		}
		defer kafkaSink.Close()
		sub := auditLog.Subscribe(ctx)
		group.Go(func() error {
			err := kafkaSink.Run(ctx, sub)
			if err != nil && ctx.Err() == nil {
				log.Error("kafka audit sink stopped", "error", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		log.Info("starting kbgate", "addr", cfg.Addr, "audit_backend", cfg.AuditBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// buildAuditStore selects the durable audit backend.
func buildAuditStore(ctx context.Context, cfg config.Config) (audit.Store, func(), error) {
	switch cfg.AuditBackend {
	case "", "memory":
		return auditmem.NewStore(cfg.AuditRetention), func() {}, nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		store := auditpg.New(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case "redis":
		client, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, fmt.Errorf("redis backend selected but KBGATE_REDIS_URL is empty")
		}
		return auditredis.New(client.Client), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown audit backend %q", cfg.AuditBackend)
	}
}
