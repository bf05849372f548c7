package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/webitel/live-relay-service/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ProvideLogger builds the process logger. The returned LevelVar lets a
// config reload change verbosity without rebuilding handlers.
func ProvideLogger(lc fx.Lifecycle, cfg *config.Config) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(cfg.Level())

	var out io.Writer = os.Stdout
	if cfg.Log.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   true,
		}
		out = rotator
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return rotator.Close() },
		})
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With("service", ServiceName)
	slog.SetDefault(logger)

	return logger, level
}

func ProvideWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logger.With("component", "watermill"))
}

// ProvideMetricsRegistry exposes one private registry both as the sink for
// collectors and as the source for /metrics.
func ProvideMetricsRegistry() (prometheus.Registerer, prometheus.Gatherer) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, reg
}

// ProvideTracerProvider records spans only when tracing is enabled and ships
// them through the configured exporter. Pending spans are flushed on stop.
func ProvideTracerProvider(lc fx.Lifecycle, cfg *config.Config) (trace.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return noop.NewTracerProvider(), nil
	}

	tp, err := newTracerProvider(context.Background(), cfg.Tracing, os.Stdout)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: tp.Shutdown,
	})
	return tp, nil
}

func newTracerProvider(ctx context.Context, cfg config.TracingConfig, stdout io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := newSpanExporter(ctx, cfg, stdout)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("service.namespace", ServiceNamespace),
			attribute.String("service.version", version),
		)),
	), nil
}

func newSpanExporter(ctx context.Context, cfg config.TracingConfig, stdout io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case config.ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(stdout))
	case config.ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		// The client connects lazily, a missing collector only costs dropped batches.
		return otlptracegrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown span exporter %q", cfg.Exporter)
	}
}

// WatchConfig applies log.level changes from the config file at runtime.
// Other keys need a restart.
func WatchConfig(cfg *config.Config, logger *slog.Logger, level *slog.LevelVar) {
	cfg.Watch(func(next *config.Config, err error) {
		if err != nil {
			logger.Warn("CONFIG_RELOAD_REJECTED", "error", err)
			return
		}
		level.Set(next.Level())
		logger.Info("CONFIG_RELOADED", "log_level", next.Level().String())
	})
}
