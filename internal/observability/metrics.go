// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for ledger runs.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Parsing metrics
	SubjectsRead   prometheus.Counter
	SubjectsParsed *prometheus.CounterVec
	ParseFailures  *prometheus.CounterVec

	// Normalization metrics
	FillsNormalized prometheus.Counter
	FillsRejected   *prometheus.CounterVec
	FillsStored     prometheus.Counter

	// Ledger metrics
	RoundTripsBuilt  *prometheus.CounterVec
	ValidationIssues *prometheus.CounterVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "trade_alert_ledger"
	}
	factory := promauto.With(reg)

	return &Metrics{
		SubjectsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "subjects_read_total",
			Help:      "Total number of alert subjects read",
		}),
		SubjectsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "subjects_parsed_total",
			Help:      "Total number of subjects parsed by format family",
		}, []string{"format"}),
		ParseFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "failures_total",
			Help:      "Total number of subjects that failed to parse by reason",
		}, []string{"reason"}),

		FillsNormalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalizer",
			Name:      "fills_total",
			Help:      "Total number of fills produced",
		}),
		FillsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalizer",
			Name:      "rejections_total",
			Help:      "Total number of parsed subjects rejected by reason",
		}, []string{"reason"}),
		FillsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "fills_stored_total",
			Help:      "Total number of new fills written to the fill store",
		}),

		RoundTripsBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "round_trips_total",
			Help:      "Total number of round trips built by state",
		}, []string{"state"}),
		ValidationIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "validation_issues_total",
			Help:      "Total number of validation issues by field",
		}, []string{"field"}),

		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline phase runs by status",
		}, []string{"phase", "status"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline phase duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"phase"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulPipeline: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// HandlerFor returns an HTTP handler serving the metrics gathered by g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordSubject records one subject read and how it parsed. An empty format
// means the subject failed with reason.
func (m *Metrics) RecordSubject(format, reason string) {
	if m == nil {
		return
	}
	m.SubjectsRead.Inc()
	if format != "" {
		m.SubjectsParsed.WithLabelValues(format).Inc()
		return
	}
	m.ParseFailures.WithLabelValues(reason).Inc()
}

// RecordFill records one normalized fill.
func (m *Metrics) RecordFill() {
	if m == nil {
		return
	}
	m.FillsNormalized.Inc()
}

// RecordRejection records one normalizer rejection.
func (m *Metrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.FillsRejected.WithLabelValues(reason).Inc()
}

// RecordFillsStored adds n newly stored fills.
func (m *Metrics) RecordFillsStored(n int) {
	if m == nil {
		return
	}
	m.FillsStored.Add(float64(n))
}

// RecordRoundTrip records one built round trip by state: flat, open or synthetic.
func (m *Metrics) RecordRoundTrip(state string) {
	if m == nil {
		return
	}
	m.RoundTripsBuilt.WithLabelValues(state).Inc()
}

// RecordIssue records one validation issue.
func (m *Metrics) RecordIssue(field string) {
	if m == nil {
		return
	}
	m.ValidationIssues.WithLabelValues(field).Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordPipelineRun records a pipeline phase run.
func (m *Metrics) RecordPipelineRun(phase, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	m.PipelineDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// MarkPipelineSuccess stamps the last successful run time.
func (m *Metrics) MarkPipelineSuccess(at time.Time) {
	if m == nil {
		return
	}
	m.LastSuccessfulPipeline.Set(float64(at.Unix()))
}
