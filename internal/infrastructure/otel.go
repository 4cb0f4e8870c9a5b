package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "postpulse-analytics"
	ServiceVersion = "v1.2.0"
	MeterName      = "postpulse"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout", // Use stdout for development
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0, // Sample all traces in development
	}
}

// InitializeOTel initializes OpenTelemetry with comprehensive observability
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	// Create resource
	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	// Initialize tracing
	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	// Initialize metrics
	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	// Set up global propagators for trace context
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		// No exporter - tracing disabled
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Create tracer provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	// Set global tracer provider
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		// Create Prometheus exporter
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		// Create Prometheus HTTP handler
		providers.PrometheusHTTP = promhttp.Handler()

		// Create meter provider with Prometheus reader
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		// Set global meter provider
		otel.SetMeterProvider(mp)

	case "none":
		// No exporter - metrics disabled
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	// HTTP metrics
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	// Workbook ingestion metrics
	uploadsTotal, err := meter.Int64Counter(
		"workbook_uploads_total",
		metric.WithDescription("Total number of workbook uploads"),
	)
	if err != nil {
		return nil, err
	}

	uploadBytes, err := meter.Int64Counter(
		"workbook_upload_bytes",
		metric.WithDescription("Total bytes of workbook data uploaded"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	uploadDuration, err := meter.Float64Histogram(
		"workbook_upload_duration_seconds",
		metric.WithDescription("Workbook upload and parse duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsParsedTotal, err := meter.Int64Counter(
		"workbook_rows_parsed_total",
		metric.WithDescription("Total number of post rows parsed from workbooks"),
	)
	if err != nil {
		return nil, err
	}

	rowsSkippedTotal, err := meter.Int64Counter(
		"workbook_rows_skipped_total",
		metric.WithDescription("Total number of blank or unreadable rows skipped"),
	)
	if err != nil {
		return nil, err
	}

	parseFailuresTotal, err := meter.Int64Counter(
		"workbook_parse_failures_total",
		metric.WithDescription("Total number of workbooks rejected by the parser"),
	)
	if err != nil {
		return nil, err
	}

	// Query metrics
	queriesTotal, err := meter.Int64Counter(
		"analytics_queries_total",
		metric.WithDescription("Total number of analytics queries served"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"analytics_query_duration_seconds",
		metric.WithDescription("Analytics query duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	// Export metrics
	exportsTotal, err := meter.Int64Counter(
		"csv_exports_total",
		metric.WithDescription("Total number of CSV exports generated"),
	)
	if err != nil {
		return nil, err
	}

	exportRows, err := meter.Int64Counter(
		"csv_export_rows_total",
		metric.WithDescription("Total number of rows written to CSV exports"),
	)
	if err != nil {
		return nil, err
	}

	// Session metrics. The dataset gauge is observable: the application
	// registers a callback that reads the store length, so the value can
	// never drift the way a hand-maintained up/down counter would.
	activeDatasets, err := meter.Int64ObservableGauge(
		"session_active_datasets",
		metric.WithDescription("Number of datasets currently held in session storage"),
	)
	if err != nil {
		return nil, err
	}

	sessionEvictions, err := meter.Int64Counter(
		"session_evictions_total",
		metric.WithDescription("Total number of datasets evicted from session storage"),
	)
	if err != nil {
		return nil, err
	}

	// System metrics
	systemErrors, err := meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of system errors"),
	)
	if err != nil {
		return nil, err
	}

	systemUptime, err := meter.Float64UpDownCounter(
		"system_uptime_seconds",
		metric.WithDescription("System uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		// HTTP metrics
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,

		// Workbook ingestion metrics
		UploadsTotal:       uploadsTotal,
		UploadBytes:        uploadBytes,
		UploadDuration:     uploadDuration,
		RowsParsedTotal:    rowsParsedTotal,
		RowsSkippedTotal:   rowsSkippedTotal,
		ParseFailuresTotal: parseFailuresTotal,

		// Query metrics
		QueriesTotal:  queriesTotal,
		QueryDuration: queryDuration,

		// Export metrics
		ExportsTotal: exportsTotal,
		ExportRows:   exportRows,

		// Session metrics
		ActiveDatasets:   activeDatasets,
		SessionEvictions: sessionEvictions,

		// System metrics
		SystemErrors: systemErrors,
		SystemUptime: systemUptime,
	}, nil
}

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Workbook ingestion metrics
	UploadsTotal       metric.Int64Counter
	UploadBytes        metric.Int64Counter
	UploadDuration     metric.Float64Histogram
	RowsParsedTotal    metric.Int64Counter
	RowsSkippedTotal   metric.Int64Counter
	ParseFailuresTotal metric.Int64Counter

	// Query metrics
	QueriesTotal  metric.Int64Counter
	QueryDuration metric.Float64Histogram

	// Export metrics
	ExportsTotal metric.Int64Counter
	ExportRows   metric.Int64Counter

	// Session metrics
	ActiveDatasets   metric.Int64ObservableGauge
	SessionEvictions metric.Int64Counter

	// System metrics
	SystemErrors metric.Int64Counter
	SystemUptime metric.Float64UpDownCounter
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// SpanFromContext returns the current span from context
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}

	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}

// RecordUploadMetrics records metrics for a workbook upload attempt
func RecordUploadMetrics(ctx context.Context, metrics *BusinessMetrics, sourceName string, sizeBytes int64, rowsParsed, rowsSkipped int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := []attribute.KeyValue{
		attribute.String("status", status),
	}

	metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.UploadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err != nil {
		metrics.ParseFailuresTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error.type", fmt.Sprintf("%T", err)),
		))
		return
	}

	metrics.UploadBytes.Add(ctx, sizeBytes)
	metrics.RowsParsedTotal.Add(ctx, int64(rowsParsed))
	metrics.RowsSkippedTotal.Add(ctx, int64(rowsSkipped))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("workbook.parsed",
			trace.WithAttributes(
				attribute.String("source", sourceName),
				attribute.Int("rows_parsed", rowsParsed),
				attribute.Int("rows_skipped", rowsSkipped),
				attribute.Float64("duration_seconds", duration.Seconds()),
			),
		)
	}
}

// RecordExportMetrics records metrics for a CSV export
func RecordExportMetrics(ctx context.Context, metrics *BusinessMetrics, rows int, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if err == nil {
		metrics.ExportRows.Add(ctx, int64(rows))
	}
}

// RecordSessionEviction records a dataset eviction from session storage.
// The active dataset gauge is observable and corrects itself on the next
// collection, so only the eviction counter moves here.
func RecordSessionEviction(ctx context.Context, metrics *BusinessMetrics, reason string) {
	if metrics == nil {
		return
	}

	metrics.SessionEvictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RegisterActiveDatasetsGauge binds the active-datasets gauge to a live
// count. The callback runs on every collection, so TTL and capacity
// evictions show up without any bookkeeping in the handlers.
func RegisterActiveDatasetsGauge(meter metric.Meter, metrics *BusinessMetrics, count func() int) error {
	if meter == nil || metrics == nil || count == nil {
		return nil
	}

	_, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(metrics.ActiveDatasets, int64(count()))
		return nil
	}, metrics.ActiveDatasets)
	if err != nil {
		return fmt.Errorf("register active datasets gauge: %w", err)
	}
	return nil
}
