// Command server runs the farmer registry HTTP API. main wires the
// dependencies, mounts the routes, and owns the lifecycle of the connection
// pool and the Redis client; business logic lives under internal.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"plantas/internal/farmer/cache"
	"plantas/internal/farmer/handler"
	farmermetrics "plantas/internal/farmer/metrics"
	"plantas/internal/farmer/service"
	"plantas/internal/farmer/store"
	"plantas/internal/platform/config"
	"plantas/internal/platform/httpserver"
	"plantas/internal/platform/logger"
	"plantas/internal/platform/metrics"
	platformpg "plantas/internal/platform/postgres"
	platformredis "plantas/internal/platform/redis"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var farmers store.Store
	if cfg.Postgres.URL != "" {
		pool, err := platformpg.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()
		farmers = store.NewPostgresStore(pool)
		log.Info("using postgres store")
	} else {
		farmers = store.NewMemoryStore()
		log.Warn("PLANTAS_DATABASE_URL not set, using in-memory store")
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(farmermetrics.New()),
	}
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithCache(cache.New(redisClient, cfg.Redis.CacheTTL, log)))
		log.Info("record cache enabled", "ttl", cfg.Redis.CacheTTL.String())
	}

	svc := service.New(farmers, opts...)
	httpMetrics := metrics.New()
	h := handler.New(svc, log, httpMetrics, cfg.Server.RequestTimeout)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	h.Register(router)

	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
