// Package app wires the canteen API server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/cat-canteen/internal/broker/rabbitmq"
	"github.com/xenking/cat-canteen/internal/domain/analytics"
	"github.com/xenking/cat-canteen/internal/domain/catalog"
	"github.com/xenking/cat-canteen/internal/domain/order"
	"github.com/xenking/cat-canteen/internal/handler"
	"github.com/xenking/cat-canteen/internal/storage/postgres"
	"github.com/xenking/cat-canteen/pkg/health"
	"github.com/xenking/cat-canteen/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("time_zone", cfg.TimeZone),
	)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()
	orders := postgres.NewOrderRepository(pool)

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(orders))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(time.Second))

	var notifier order.Notifier
	if cfg.AMQP.URL != "" {
		pub, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return errors.Wrap(err, "connect amqp")
		}
		defer func() {
			if err := pub.Close(); err != nil {
				lg.Warn("Close amqp publisher", zap.Error(err))
			}
		}()
		healthSvc.AddReadinessCheck("amqp", time.Second, health.PingCheck(pub))
		notifier = pub
		lg.Info("Publishing order events", zap.String("exchange", cfg.AMQP.Exchange))
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	h, err := newHandler(ctx, lg, m, cfg, services{
		orders:   orders,
		health:   healthSvc,
		location: loc,
		notifier: notifier,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           h,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// services are the stateful dependencies of the HTTP handler.
type services struct {
	orders   *postgres.OrderRepository
	health   *health.Health
	location *time.Location
	notifier order.Notifier
}

// newHandler builds the domain services and the middleware-wrapped mux.
func newHandler(ctx context.Context, lg *zap.Logger, m httpmiddleware.Telemetry, cfg *Config, s services) (http.Handler, error) {
	menu := catalog.Default()

	orderService, err := order.NewService(menu, s.orders, lg.Named("order"), order.ServiceConfig{
		Notifier:      s.notifier,
		MeterProvider: m.MeterProvider(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}
	analyticsService := analytics.NewService(s.orders, lg.Named("analytics"), analytics.ServiceConfig{
		Location:       s.location,
		TracerProvider: m.TracerProvider(),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", s.health.LiveEndpoint)
	mux.HandleFunc("GET /readyz", s.health.ReadyEndpoint)
	handler.New(menu, orderService, analyticsService).Register(mux)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	return httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			RPS:   cfg.RateLimit.RPS,
			Burst: cfg.RateLimit.Burst,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Instrument("canteen-api", routeFinder, m),
		httpmiddleware.LogRequests(routeFinder),
	), nil
}
