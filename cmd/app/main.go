package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/bootstrap"
	"github.com/chris/clothing-swap-settlement/pkg/config"
	"github.com/chris/clothing-swap-settlement/pkg/handlers"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/respond"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/items"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/metrics"
	appmw "github.com/chris/clothing-swap-settlement/pkg/middleware"
	"github.com/chris/clothing-swap-settlement/pkg/moderation"
	"github.com/chris/clothing-swap-settlement/pkg/redemption"
	"github.com/chris/clothing-swap-settlement/pkg/settlement"
	"github.com/chris/clothing-swap-settlement/pkg/swaps"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	deps, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("failed to close storage", "error", err)
		}
	}()

	collector := metrics.New()
	runner := &settlement.Runner{
		MaxRetries: cfg.Settlement.MaxRetries,
		Publisher:  deps.Publisher,
		Observer:   collector,
		Logger:     logger,
	}

	ledgerSvc := ledger.NewService(deps.Store, runner, logger)
	handler := handlers.NewApiHandler(handlers.Services{
		Ledger:     ledgerSvc,
		Items:      items.NewService(deps.Store, runner, cfg.Prices.Schedule(), logger),
		Redemption: redemption.NewEngine(deps.Store, runner, logger),
		Swaps:      swaps.NewEngine(deps.Store, runner, logger),
		Moderation: moderation.NewEngine(deps.Store, runner, cfg.Rewards.Schedule(), logger),
		Metrics:    collector,
	})

	var verifier *identity.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier = identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	}
	if cfg.Auth.DevHeaders {
		logger.Warn("trusting development identity headers", "header", identity.HeaderUserID)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appmw.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(appmw.Instrument(collector))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", collector.Handler())

	c := cron.New(cron.WithLogger(cron.DiscardLogger))
	router.Group(func(r chi.Router) {
		r.Use(identity.Authenticate(verifier, cfg.Auth.DevHeaders))
		if cfg.RateLimit.RPS > 0 {
			limiter := appmw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
			r.Use(limiter.Middleware)
			if _, err := c.AddFunc("@every 5m", func() { limiter.Sweep() }); err != nil {
				logger.Warn("failed to schedule rate limiter sweep", "error", err)
			}
		}
		api.HandlerWithOptions(handler, api.ChiServerOptions{
			BaseRouter:       r,
			ErrorHandlerFunc: respond.ParamError,
		})
	})

	if cfg.Settlement.AuditSchedule != "" {
		_, err := c.AddFunc(cfg.Settlement.AuditSchedule, func() {
			auditLedger(ctx, ledgerSvc, collector, logger)
		})
		if err != nil {
			return err
		}
		logger.Info("ledger audit scheduled", "schedule", cfg.Settlement.AuditSchedule)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.HTTP.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func auditLedger(ctx context.Context, svc *ledger.Service, collector *metrics.Collector, logger *slog.Logger) {
	start := time.Now()
	results, err := svc.AuditAll(ctx)
	if err != nil {
		logger.Error("ledger audit failed", "error", err)
		return
	}

	inconsistent := 0
	for _, r := range results {
		if !r.Consistent() {
			inconsistent++
			logger.Error("ledger inconsistency",
				"user_id", r.UserID,
				"points", r.Points,
				"replayed", r.Replayed,
				"drift", r.Drift,
				"broken_chain_at", r.BrokenChainAt,
			)
		}
	}
	collector.SetInconsistentUsers(inconsistent)
	logger.Info("ledger audit finished", "users", len(results), "inconsistent", inconsistent, "elapsed", time.Since(start))
}
