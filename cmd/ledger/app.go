package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"trade-alert-ledger/internal/config"
	"trade-alert-ledger/internal/logging"
	"trade-alert-ledger/internal/normalization"
	"trade-alert-ledger/internal/observability"
	"trade-alert-ledger/internal/pipeline"
	"trade-alert-ledger/internal/roundtrip"
	"trade-alert-ledger/internal/verification"
)

// app holds the ambient services shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	tracing *observability.Tracing
	server  *http.Server
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	tracing, err := observability.NewTracing(cfg.Tracing.Enabled, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		tracing: tracing,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = observability.NewMetrics("", reg)

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.HandlerFor(reg))
		a.server = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		logger.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
	}

	return a, nil
}

// close flushes spans and logs and stops the metrics server.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.server != nil {
		_ = a.server.Shutdown(ctx)
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		a.logger.Warn("tracing shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *app) validator() (*verification.Validator, error) {
	opts, err := a.cfg.ToVerificationOptions()
	if err != nil {
		return nil, err
	}
	return verification.NewValidator(opts), nil
}

// pipeline builds a pipeline from config. Stores are attached by the caller.
func (a *app) pipeline(st *stores) (*pipeline.Pipeline, error) {
	normOpts, err := a.cfg.ToNormalizationOptions()
	if err != nil {
		return nil, err
	}
	validator, err := a.validator()
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{
		Normalizer: normalization.NewNormalizer(normOpts),
		Aggregator: roundtrip.NewAggregator().WithWorkers(a.cfg.Aggregation.Partitions),
		Validator:  validator,
		Partitions: a.cfg.Aggregation.Partitions,
		Metrics:    a.metrics,
		Tracing:    a.tracing,
		Logger:     a.logger,
	}
	if st != nil {
		opts.FillStore = st.fills
		opts.RoundTripStore = st.roundTrips
	}
	return pipeline.New(opts), nil
}

// asOf resolves "now" for synthetic expirations: the flag, then config, then the wall clock.
func (a *app) asOf(flag string) (time.Time, error) {
	if flag != "" {
		t, err := time.Parse(time.RFC3339, flag)
		if err != nil {
			return time.Time{}, fmt.Errorf("--as-of: %w", err)
		}
		return t, nil
	}
	t, ok, err := a.cfg.Aggregation.AsOfTime()
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return t, nil
	}
	return time.Now(), nil
}
