package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"feedlot/internal/adapters/httpapi"
	"feedlot/internal/adapters/reports"
	"feedlot/internal/blob"
	"feedlot/internal/config"
	"feedlot/internal/core"
	"feedlot/pkg/logger"
)

func main() {
	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	engine := core.DefaultRulesEngine()
	store, err := core.OpenPersistentStore(engine)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archive, err := blob.Open(ctx)
	if err != nil {
		log.Fatal("open blob store", zap.Error(err))
	}

	var serviceOpts []core.ServiceOption
	serviceOpts = append(serviceOpts, core.WithLogger(logger.Named(log, "ledger")))
	if cfg.MetricsEnabled {
		serviceOpts = append(serviceOpts, core.WithMetrics(core.NewPrometheusMetricsRecorder(prometheus.DefaultRegisterer)))
	}
	service := core.NewService(store, serviceOpts...)
	reporter := core.NewReporter(store)

	exports := reports.NewWorker(reporter, archive, &reports.MemoryAuditLog{})
	exports.Start()

	api := httpapi.New(service, reporter, exports, logger.Named(log, "http"))

	root := chi.NewRouter()
	root.Mount("/", api.Router())
	if cfg.MetricsEnabled {
		root.Handle("/metrics", promhttp.Handler())
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("storage", cfg.StorageDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := exports.Stop(shutdownCtx); err != nil {
		log.Warn("export worker shutdown", zap.Error(err))
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn("store close", zap.Error(err))
		}
	}
	log.Info("stopped")
}
