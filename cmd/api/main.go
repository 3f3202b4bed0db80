// @title        Accounts Service API
// @version      1.0
// @description  User registration, password login and role-gated account management.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-service/internal/api"
	"github.com/99minutos/accounts-service/internal/api/handler"
	"github.com/99minutos/accounts-service/internal/api/metrics"
	"github.com/99minutos/accounts-service/internal/core/ports"
	"github.com/99minutos/accounts-service/internal/core/service"
	"github.com/99minutos/accounts-service/internal/infrastructure/config"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/memory"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/mongo"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/postgres"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/redis"
	"github.com/99minutos/accounts-service/internal/infrastructure/queue"
	"github.com/99minutos/accounts-service/internal/infrastructure/security"
	"github.com/99minutos/accounts-service/internal/pkg/clock"
	"github.com/99minutos/accounts-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{Service: "accounts-service"})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "accounts-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// store bundles the selected backend with its readiness probe and cleanup.
type store struct {
	accounts ports.AccountRepository
	audit    ports.AuditRepository
	ping     handler.PingFunc
	close    func(context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:          cfg.Postgres.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
		})
		if err != nil {
			return nil, err
		}
		return &store{
			accounts: postgres.NewAccountRepository(db),
			audit:    postgres.NewAuditRepository(db),
			ping:     db.PingContext,
			close:    func(context.Context) error { return db.Close() },
		}, nil
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		repo := memory.NewAccountRepository()
		return &store{
			accounts: repo,
			audit:    queue.NewLogSink(log),
			ping:     repo.Ping,
			close:    func(context.Context) error { return nil },
		}, nil
	default:
		client, accounts, audit, err := mongo.Open(ctx, mongo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		return &store{
			accounts: accounts,
			audit:    audit,
			ping:     accounts.Ping,
			close:    client.Disconnect,
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	readiness := map[string]handler.PingFunc{cfg.StoreDriver: st.ping}

	accounts := st.accounts
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, account cache disabled")
		} else {
			defer rdb.Close()
			accounts = redis.NewAccountCache(accounts, rdb, cfg.Redis.CacheTTL, log)
			readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, st.audit, m, log)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	clk := clock.System()
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewJWTIssuer([]byte(cfg.JWTSecret), clk)

	authSvc := service.NewAuthService(accounts, hasher, tokens, cfg.TokenTTL, log)
	accountSvc := service.NewAccountService(accounts, hasher, dispatcher, service.AccountOptions{
		OpenRegistration: cfg.OpenRegistration,
		Clock:            clk,
	}, log)
	guard := service.NewAccessGuard(accounts, tokens)

	if su := cfg.FirstSuperuser; su.Username != "" {
		if _, err := accountSvc.EnsureSuperuser(ctx, su.Email, su.Username, su.Password); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Deps{
		Log:              log,
		AuthService:      authSvc,
		AccountService:   accountSvc,
		Guard:            guard,
		Metrics:          m,
		Registry:         reg,
		Readiness:        readiness,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		RateLimitRPS:     cfg.RateLimitRPS,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
