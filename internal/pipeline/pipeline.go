// Package pipeline wires the ledger stages together.
// Flow: parse → normalize → (store fills) → aggregate → validate → (store round trips)
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"trade-alert-ledger/internal/csvio"
	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/normalization"
	"trade-alert-ledger/internal/observability"
	"trade-alert-ledger/internal/roundtrip"
	"trade-alert-ledger/internal/storage"
	"trade-alert-ledger/internal/subject"
	"trade-alert-ledger/internal/verification"
)

// Phase names used in logs, metrics and spans.
const (
	PhaseParse     = "parse"
	PhaseNormalize = "normalize"
	PhaseStore     = "store"
	PhaseAggregate = "aggregate"
	PhaseValidate  = "validate"
)

// Round-trip states reported to metrics.
const (
	StateFlat      = "flat"
	StateOpen      = "open"
	StateSynthetic = "synthetic"
)

// Options for creating a Pipeline. Nil components fall back to defaults;
// stores, metrics and tracing are optional.
type Options struct {
	Parser     *subject.Parser
	Normalizer *normalization.Normalizer
	Aggregator *roundtrip.Aggregator
	Validator  *verification.Validator

	// Partitions > 1 aggregates contiguous slices of the fills concurrently.
	Partitions int

	// FillStore, when set, receives every normalized fill and becomes the
	// source of the aggregated ledger, so repeated runs accumulate.
	FillStore      storage.FillStore
	RoundTripStore storage.RoundTripStore

	Metrics *observability.Metrics
	Tracing *observability.Tracing
	Logger  *zap.Logger
}

// Pipeline runs one ledger build.
type Pipeline struct {
	parser     *subject.Parser
	normalizer *normalization.Normalizer
	aggregator *roundtrip.Aggregator
	validator  *verification.Validator
	partitions int

	fillStore      storage.FillStore
	roundTripStore storage.RoundTripStore

	metrics *observability.Metrics
	tracing *observability.Tracing
	logger  *zap.Logger
	clock   func() time.Time
}

// New creates a new Pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		parser:         opts.Parser,
		normalizer:     opts.Normalizer,
		aggregator:     opts.Aggregator,
		validator:      opts.Validator,
		partitions:     opts.Partitions,
		fillStore:      opts.FillStore,
		roundTripStore: opts.RoundTripStore,
		metrics:        opts.Metrics,
		tracing:        opts.Tracing,
		logger:         opts.Logger,
		clock:          func() time.Time { return time.Now().UTC() },
	}
	if p.parser == nil {
		p.parser = subject.NewParser()
	}
	if p.normalizer == nil {
		p.normalizer = normalization.NewNormalizer(normalization.DefaultOptions())
	}
	if p.aggregator == nil {
		p.aggregator = roundtrip.NewAggregator()
	}
	if p.validator == nil {
		p.validator = verification.NewValidator(verification.DefaultOptions())
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Result contains the outputs of one run.
type Result struct {
	RunID string

	Fills []domain.Fill
	// Failures are subjects the parser could not read.
	Failures []csvio.FailureRecord
	// Rejections are parsed subjects the normalizer dropped.
	Rejections []csvio.FailureRecord

	// InsertedFills counts fills new to the fill store.
	InsertedFills int

	RoundTrips []*domain.RoundTrip
	Issues     []verification.Issue
}

// AllFailures returns parse failures followed by rejections.
func (r *Result) AllFailures() []csvio.FailureRecord {
	out := make([]csvio.FailureRecord, 0, len(r.Failures)+len(r.Rejections))
	out = append(out, r.Failures...)
	return append(out, r.Rejections...)
}

// Run executes the full pipeline over raw alert subjects.
// asOf is the instant synthetic expiration is judged against.
func (p *Pipeline) Run(ctx context.Context, records []csvio.SubjectRecord, asOf time.Time) (*Result, error) {
	result := p.newResult()
	ctx, span := p.tracing.StartSpan(ctx, "pipeline.run",
		attribute.String("run_id", result.RunID),
		attribute.Int("subjects", len(records)),
	)

	err := p.run(ctx, result, asOf, func(ctx context.Context) error {
		inputs := p.parse(ctx, records, result)
		p.normalize(ctx, inputs, result)
		return nil
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RunFills executes the pipeline from already-normalized fills, as read back
// from a fills export. Instrument corrections and trade hashes are re-derived.
func (p *Pipeline) RunFills(ctx context.Context, fills []domain.Fill, asOf time.Time) (*Result, error) {
	result := p.newResult()
	ctx, span := p.tracing.StartSpan(ctx, "pipeline.run_fills",
		attribute.String("run_id", result.RunID),
		attribute.Int("fills", len(fills)),
	)

	err := p.run(ctx, result, asOf, func(context.Context) error {
		result.Fills = make([]domain.Fill, 0, len(fills))
		for _, f := range fills {
			result.Fills = append(result.Fills, p.normalizer.Correct(f))
		}
		return nil
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Normalize runs only the parse and normalize phases. The result carries
// fills and failures but no ledger.
func (p *Pipeline) Normalize(ctx context.Context, records []csvio.SubjectRecord) *Result {
	result := p.newResult()
	ctx, span := p.tracing.StartSpan(ctx, "pipeline.normalize_only",
		attribute.String("run_id", result.RunID),
		attribute.Int("subjects", len(records)),
	)
	defer span.End()

	inputs := p.parse(ctx, records, result)
	p.normalize(ctx, inputs, result)
	return result
}

func (p *Pipeline) newResult() *Result {
	return &Result{RunID: ulid.Make().String()}
}

// run drives the shared phases after produce has filled result.Fills.
func (p *Pipeline) run(ctx context.Context, result *Result, asOf time.Time, produce func(context.Context) error) error {
	logger := p.logger.With(zap.String("run_id", result.RunID))

	if err := produce(ctx); err != nil {
		return err
	}
	logger.Info("phase complete",
		zap.String("phase", PhaseNormalize),
		zap.Int("fills", len(result.Fills)),
		zap.Int("failures", len(result.Failures)),
		zap.Int("rejections", len(result.Rejections)),
	)

	source := result.Fills
	if p.fillStore != nil {
		stored, err := p.storeFills(ctx, result)
		if err != nil {
			return err
		}
		source = stored
		logger.Info("phase complete",
			zap.String("phase", PhaseStore),
			zap.Int("inserted", result.InsertedFills),
			zap.Int("stored", len(stored)),
		)
	}

	rts, err := p.aggregate(ctx, source, asOf)
	if err != nil {
		return err
	}
	result.RoundTrips = rts
	logger.Info("phase complete",
		zap.String("phase", PhaseAggregate),
		zap.Int("round_trips", len(rts)),
		zap.Time("as_of", asOf),
	)

	result.Issues = p.validate(ctx, rts)
	logger.Info("phase complete",
		zap.String("phase", PhaseValidate),
		zap.Int("issues", len(result.Issues)),
	)
	for _, issue := range result.Issues {
		logger.Warn("validation issue",
			zap.Int("round_trip_id", issue.RoundTripID),
			zap.String("field", issue.Field),
			zap.String("description", issue.Description),
		)
	}

	if p.roundTripStore != nil {
		if err := p.storeRoundTrips(ctx, rts); err != nil {
			return err
		}
	}

	p.metrics.MarkPipelineSuccess(p.clock())
	return nil
}

// parse runs the subject parser over every record. Failures are collected and
// never stop the run.
func (p *Pipeline) parse(ctx context.Context, records []csvio.SubjectRecord, result *Result) []normalization.Input {
	start := time.Now()
	_, span := p.tracing.StartSpan(ctx, "pipeline.parse")
	defer span.End()

	inputs := make([]normalization.Input, 0, len(records))
	for _, rec := range records {
		pf := p.parser.Parse(rec.Subject)
		p.metrics.RecordSubject(pf.Format, pf.FailReason)

		if !pf.ParseOK {
			result.Failures = append(result.Failures, failureRecord(rec, pf, csvio.StageParse, pf.FailReason))
			continue
		}
		inputs = append(inputs, normalization.Input{
			Parsed:         pf,
			Timestamp:      rec.Timestamp,
			MessageID:      rec.MessageID,
			Subject:        rec.Subject,
			DefaultAccount: rec.Account,
		})
	}

	p.metrics.RecordPipelineRun(PhaseParse, "success", time.Since(start))
	p.logger.Info("phase complete",
		zap.String("phase", PhaseParse),
		zap.Int("subjects", len(records)),
		zap.Int("parsed", len(inputs)),
		zap.Int("failures", len(result.Failures)),
	)
	return inputs
}

func (p *Pipeline) normalize(ctx context.Context, inputs []normalization.Input, result *Result) {
	start := time.Now()
	_, span := p.tracing.StartSpan(ctx, "pipeline.normalize")
	defer span.End()

	for _, in := range inputs {
		f, err := p.normalizer.Normalize(in)
		if err != nil {
			reason := rejectionReason(err)
			p.metrics.RecordRejection(reason)
			p.logger.Warn("fill rejected",
				zap.String("message_id", in.MessageID),
				zap.String("trade_id", in.Parsed.TradeID),
				zap.Error(err),
			)
			rec := csvio.SubjectRecord{MessageID: in.MessageID, Timestamp: in.Timestamp, Subject: in.Subject}
			result.Rejections = append(result.Rejections, failureRecord(rec, in.Parsed, csvio.StageNormalize, reason))
			continue
		}

		if _, ok := p.normalizer.Multiplier(f.Symbol, f.FutRootSymbol, in.Parsed.ContractCodeOrMultiplier); !ok {
			p.logger.Debug("multiplier ambiguous, using default",
				zap.String("trade_id", f.TradeID),
				zap.String("symbol", f.Symbol),
				zap.String("token", in.Parsed.ContractCodeOrMultiplier),
				zap.Stringer("multiplier", f.ContractMultiplier),
			)
		}

		p.metrics.RecordFill()
		result.Fills = append(result.Fills, f)
	}

	p.metrics.RecordPipelineRun(PhaseNormalize, "success", time.Since(start))
}

// storeFills upserts the run's fills and returns the full stored set.
func (p *Pipeline) storeFills(ctx context.Context, result *Result) ([]domain.Fill, error) {
	start := time.Now()
	ctx, span := p.tracing.StartSpan(ctx, "pipeline.store_fills")

	inserted, err := p.fillStore.Upsert(ctx, result.Fills)
	var stored []domain.Fill
	if err == nil {
		stored, err = p.fillStore.GetAll(ctx)
	}
	observability.EndSpan(span, err)
	p.metrics.RecordPipelineRun(PhaseStore, status(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("store fills: %w", err)
	}

	result.InsertedFills = inserted
	p.metrics.RecordFillsStored(inserted)
	return stored, nil
}

func (p *Pipeline) aggregate(ctx context.Context, fills []domain.Fill, asOf time.Time) ([]*domain.RoundTrip, error) {
	start := time.Now()
	ctx, span := p.tracing.StartSpan(ctx, "pipeline.aggregate",
		attribute.Int("fills", len(fills)),
		attribute.Int("partitions", p.partitions),
	)

	var (
		rts []*domain.RoundTrip
		err error
	)
	if p.partitions > 1 {
		rts, err = p.aggregator.AggregatePartitions(ctx, Partition(fills, p.partitions), asOf)
	} else {
		rts = p.aggregator.Aggregate(fills, asOf)
	}
	observability.EndSpan(span, err)
	p.metrics.RecordPipelineRun(PhaseAggregate, status(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	for _, rt := range rts {
		p.metrics.RecordRoundTrip(roundTripState(rt))
	}
	return rts, nil
}

func (p *Pipeline) validate(ctx context.Context, rts []*domain.RoundTrip) []verification.Issue {
	start := time.Now()
	_, span := p.tracing.StartSpan(ctx, "pipeline.validate")
	defer span.End()

	issues := p.validator.Validate(rts)
	for _, issue := range issues {
		p.metrics.RecordIssue(issue.Field)
	}
	span.SetAttributes(attribute.Int("issues", len(issues)))
	p.metrics.RecordPipelineRun(PhaseValidate, "success", time.Since(start))
	return issues
}

func (p *Pipeline) storeRoundTrips(ctx context.Context, rts []*domain.RoundTrip) error {
	start := time.Now()
	ctx, span := p.tracing.StartSpan(ctx, "pipeline.store_round_trips")

	err := p.roundTripStore.Replace(ctx, rts)
	observability.EndSpan(span, err)
	p.metrics.RecordPipelineRun(PhaseStore, status(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("store round trips: %w", err)
	}
	p.logger.Info("round trips stored", zap.Int("count", len(rts)))
	return nil
}

// Partition splits fills into at most n contiguous, order-preserving slices.
func Partition(fills []domain.Fill, n int) [][]domain.Fill {
	if len(fills) == 0 {
		return nil
	}
	n = max(1, min(n, len(fills)))
	size := (len(fills) + n - 1) / n

	parts := make([][]domain.Fill, 0, n)
	for start := 0; start < len(fills); start += size {
		parts = append(parts, fills[start:min(start+size, len(fills))])
	}
	return parts
}

func roundTripState(rt *domain.RoundTrip) string {
	switch {
	case rt.SyntheticExpiration:
		return StateSynthetic
	case rt.NetQty() == 0:
		return StateFlat
	default:
		return StateOpen
	}
}

// rejectionReason maps a normalizer error onto a bounded metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, normalization.ErrNotParsed):
		return "not parsed"
	case errors.Is(err, normalization.ErrMissingPrice):
		return "missing price"
	case errors.Is(err, normalization.ErrMissingTimestamp):
		return "missing timestamp"
	case errors.Is(err, normalization.ErrMissingAccount):
		return "missing account"
	default:
		return "other"
	}
}

func failureRecord(rec csvio.SubjectRecord, pf domain.ParsedFill, stage, reason string) csvio.FailureRecord {
	fr := csvio.FailureRecord{
		MessageID: rec.MessageID,
		Stage:     stage,
		Reason:    reason,
		TradeID:   pf.TradeID,
		Side:      string(pf.Side),
		Symbol:    pf.Symbol,
		Subject:   rec.Subject,
	}
	if !rec.Timestamp.IsZero() {
		fr.DateISO = csvio.FormatTimestamp(rec.Timestamp)
	}
	if pf.QtySigned != 0 {
		fr.Qty = strconv.FormatInt(pf.QtySigned, 10)
	}
	return fr
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
