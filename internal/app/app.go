// Package app собирает хранилище, сервис заказов, события и служебный HTTP-сервер.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/checkout/internal/health"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
	"github.com/vladislavdragonenkov/checkout/internal/storage/instrumented"
	"github.com/vladislavdragonenkov/checkout/internal/version"
)

const shutdownTimeout = 5 * time.Second

// App: собранное приложение.
type App struct {
	Config Config
	Orders *checkout.Service
	Health *healthcheck.Handler

	repo     domain.OrderRepository
	producer *kafka.Producer
	deps     *runtimeDependencies
	gatherer prometheus.Gatherer
	logger   *log.Entry
}

// Open собирает приложение с метриками в глобальном реестре Prometheus.
func Open(ctx context.Context, cfg Config) (*App, error) {
	return open(ctx, cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func open(ctx context.Context, cfg Config, registerer prometheus.Registerer, gatherer prometheus.Gatherer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repoMetrics := metrics.NewRepositoryMetricsWithRegisterer(registerer)
	repo := instrumented.NewOrderRepository(deps.repo, repoMetrics, log.WithField("component", "order-repository"))

	producer := initKafkaProducer(cfg.KafkaBrokers, logger)
	var events domain.OrderEventPublisher
	if producer != nil {
		events = kafka.NewOrderPublisher(producer, cfg.EventsTopic)
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", healthcheck.NewPingChecker("storage", deps.pinger))

	return &App{
		Config:   cfg,
		Orders:   checkout.NewService(repo, events, repoMetrics, log.WithField("component", "checkout")),
		Health:   healthHandler,
		repo:     repo,
		producer: producer,
		deps:     deps,
		gatherer: gatherer,
		logger:   logger,
	}, nil
}

// Repository возвращает инструментированный репозиторий заказов.
func (a *App) Repository() domain.OrderRepository {
	return a.repo
}

// Close освобождает producer и хранилище.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	closeKafka(a.producer, a.logger)
	if a.deps == nil || a.deps.closeFn == nil {
		return nil
	}
	return a.deps.closeFn()
}

// Serve держит служебный HTTP-сервер (/metrics, /healthz, /readyz, /livez) до отмены ctx.
func (a *App) Serve(ctx context.Context) error {
	srv := newOpsServer(a.Config.OpsAddr, a.gatherer, a.Health)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("ops server слушает %s (metrics, healthz, readyz, livez)", a.Config.OpsAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("получен сигнал остановки, останавливаем ops server")
		shutdownHTTP(srv, a.logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newOpsServer собирает HTTP-обработчики метрик и проб.
func newOpsServer(addr string, gatherer prometheus.Gatherer, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("ops server shutdown with error")
	}
}
