package observability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
	"trade-alert-ledger/internal/storage/memory"
)

func TestMetrics_RecordSubject(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordSubject("EQUITY_OPTION", "")
	m.RecordSubject("EQUITY_OPTION", "")
	m.RecordSubject("", "missing price")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SubjectsRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubjectsParsed.WithLabelValues("EQUITY_OPTION")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFailures.WithLabelValues("missing price")))
}

func TestMetrics_PipelineAndStorage(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordFill()
	m.RecordRejection("missing account")
	m.RecordFillsStored(4)
	m.RecordRoundTrip("flat")
	m.RecordRoundTrip("synthetic")
	m.RecordIssue("realized_pnl_cash")
	m.RecordPipelineRun("aggregate", "success", 20*time.Millisecond)
	m.RecordDBQuery("postgres", "upsert_fills", time.Millisecond, errors.New("boom"))
	m.MarkPipelineSuccess(time.Unix(1715600000, 0))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FillsNormalized))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FillsRejected.WithLabelValues("missing account")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.FillsStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoundTripsBuilt.WithLabelValues("synthetic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationIssues.WithLabelValues("realized_pnl_cash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRunsTotal.WithLabelValues("aggregate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("postgres", "upsert_fills")))
	assert.Equal(t, 1715600000.0, testutil.ToFloat64(m.LastSuccessfulPipeline))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSubject("", "no pattern matched")
		m.RecordFill()
		m.RecordRejection("x")
		m.RecordFillsStored(1)
		m.RecordRoundTrip("open")
		m.RecordIssue("qty_buy")
		m.RecordPipelineRun("parse", "success", time.Second)
		m.RecordDBQuery("clickhouse", "replace", time.Second, nil)
		m.MarkPipelineSuccess(time.Now())
	})
}

func TestHandlerFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("ledger", reg)
	m.RecordFill()

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ledger_normalizer_fills_total 1")
}

func TestTracing_Disabled(t *testing.T) {
	tr, err := NewTracing(false, io.Discard)
	require.NoError(t, err)

	_, span := tr.StartSpan(context.Background(), "parse")
	assert.False(t, span.SpanContext().IsValid())
	EndSpan(span, nil)
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestTracing_NilTracing(t *testing.T) {
	var tr *Tracing
	_, span := tr.StartSpan(context.Background(), "parse")
	EndSpan(span, errors.New("ignored"))
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestTracing_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := NewTracing(true, &buf)
	require.NoError(t, err)

	ctx, parent := tr.StartSpan(context.Background(), "pipeline.run")
	_, child := tr.StartSpan(ctx, "pipeline.aggregate")
	assert.True(t, child.SpanContext().IsValid())
	assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	EndSpan(child, errors.New("aggregate failed"))
	EndSpan(parent, nil)

	require.NoError(t, tr.Shutdown(context.Background()))
	out := buf.String()
	assert.True(t, strings.Contains(out, "pipeline.aggregate"))
	assert.True(t, strings.Contains(out, "aggregate failed"))
	assert.True(t, strings.Contains(out, ServiceName))
}

func TestMeteredStores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	ctx := context.Background()

	fills := NewMeteredFillStore(memory.NewFillStore(), "memory", m)
	_, err := fills.Upsert(ctx, []domain.Fill{{TradeID: "1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))

	_, err = fills.GetAll(ctx)
	require.NoError(t, err)

	rts := NewMeteredRoundTripStore(memory.NewRoundTripStore(), "memory", m)
	_, err = rts.GetByStableID(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("memory", "upsert_fills")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("memory", "get_fills")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("memory", "get_round_trip")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.DBQueryDuration))
}
