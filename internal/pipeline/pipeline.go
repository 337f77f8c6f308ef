// Package pipeline orchestrates extraction: fetch, slice, correct, normalize,
// coerce, timestamp, and assemble, per configured state and unit.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/config"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/observability"
)

// LineSource retrieves the table-body lines for one (url, line-range) unit.
type LineSource interface {
	FetchLines(ctx context.Context, url string, first, last int) ([]string, error)
}

// Runner drives the full extraction across all configured states.
type Runner struct {
	source  LineSource
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Runner with the given line source and observability.
func New(source LineSource, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{source: source, logger: logger, metrics: metrics}
}

// Run extracts every state concurrently and assembles one dataset. The merge
// follows the configured state and unit order, never completion order, so the
// output is deterministic under parallel fetches. Any unit error aborts the
// whole run; there is no partial-success mode.
func (r *Runner) Run(ctx context.Context, states []*config.StateConfig) (*domain.Dataset, error) {
	r.metrics.ExtractionRunning.Set(1)
	defer r.metrics.ExtractionRunning.Set(0)

	tablesByState := make([][]*domain.Table, len(states))
	g, gctx := errgroup.WithContext(ctx)
	for i, st := range states {
		g.Go(func() error {
			tables, err := r.extractState(gctx, st)
			if err != nil {
				return err
			}
			tablesByState[i] = tables
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tables []*domain.Table
	for _, ts := range tablesByState {
		tables = append(tables, ts...)
	}
	ds, err := domain.Assemble(tables)
	if err != nil {
		return nil, err
	}

	r.metrics.RecordsAssembled.Add(float64(len(ds.Records)))
	r.logger.Info("dataset assembled", "states", len(states), "records", len(ds.Records))
	return ds, nil
}

func (r *Runner) extractState(ctx context.Context, st *config.StateConfig) ([]*domain.Table, error) {
	tables := make([]*domain.Table, 0, len(st.Sources))
	for _, src := range st.Sources {
		lines, err := r.source.FetchLines(ctx, src.URL, src.FirstLine, src.LastLine)
		if err != nil {
			return nil, err
		}
		table, err := r.ProcessLines(st, lines)
		if err != nil {
			return nil, err
		}
		r.metrics.UnitsProcessed.Inc()
		r.logger.Info("unit processed", "state", st.State, "url", src.URL, "records", len(table.Records))
		tables = append(tables, table)
	}
	return tables, nil
}

// ProcessLines runs the per-record stages over one unit's table body. Lines
// are processed strictly in source order. Also used to process supplementary
// records appended from auxiliary files.
func (r *Runner) ProcessLines(st *config.StateConfig, lines []string) (*domain.Table, error) {
	schema := st.Schema()
	corrector := &domain.Corrector{
		State:       st.State,
		Corrections: st.DomainCorrections(),
		DayField:    st.TimestampSpec().Day,
		TimeField:   st.TimestampSpec().Time,
		Auditor:     r.auditor(),
	}
	normalizer := &domain.Normalizer{
		State:       st.State,
		Corrections: st.DomainCorrections(),
		Auditor:     r.auditor(),
	}
	tsSpec := st.TimestampSpec()

	table := &domain.Table{State: st.State, Schema: schema, Records: make([]*domain.Record, 0, len(lines))}
	for _, line := range lines {
		rec, err := r.processLine(st, schema, corrector, normalizer, tsSpec, line)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

func (r *Runner) processLine(
	st *config.StateConfig,
	schema domain.ColumnSchema,
	corrector *domain.Corrector,
	normalizer *domain.Normalizer,
	tsSpec domain.TimestampSpec,
	line string,
) (*domain.Record, error) {
	rec := &domain.Record{
		State:      st.State,
		Fields:     domain.SliceLine(schema, line),
		Typed:      map[string]domain.Cell{},
		Normalized: map[string]domain.NormalizedField{},
	}
	r.metrics.LinesExtracted.Inc()

	// The record id keys every per-id correction, so it is parsed before any
	// repair runs.
	idField := rec.Fields[st.IDColumnName()]
	if !idField.Present {
		return nil, &domain.CoercionError{State: st.State, Field: st.IDColumnName(), Text: ""}
	}
	id, err := strconv.Atoi(idField.Text)
	if err != nil {
		return nil, &domain.CoercionError{State: st.State, Field: st.IDColumnName(), Text: idField.Text}
	}
	rec.ID = id

	corrector.Apply(rec)

	for _, col := range schema {
		if col.Normalize == domain.NormalizeNone {
			continue
		}
		if err := normalizer.Normalize(rec, col); err != nil {
			return nil, err
		}
	}

	if err := domain.CoerceRecord(schema, rec); err != nil {
		return nil, err
	}

	ts, err := domain.BuildTimestamp(tsSpec, rec)
	if err != nil {
		return nil, err
	}
	rec.Timestamp = ts
	domain.StampExtracted(rec)
	return rec, nil
}

// auditor builds the slog/metrics-backed Auditor reporting every corrective
// action. Required observable side effect, not optional logging.
func (r *Runner) auditor() domain.Auditor {
	return &logAuditor{logger: r.logger, metrics: r.metrics}
}

type logAuditor struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

func (a *logAuditor) Record(e domain.AuditEntry) {
	a.metrics.CorrectionsApplied.WithLabelValues(e.Kind).Inc()

	attrs := []any{
		"state", e.State,
		"id", e.ID,
		"fields", fmt.Sprintf("%v", e.Fields),
		"before", fmt.Sprintf("%q", e.Before),
		"after", fmt.Sprintf("%q", e.After),
	}
	if e.Note != "" {
		attrs = append(attrs, "note", e.Note)
	}
	if e.Kind == domain.AuditUnknownCode {
		a.logger.Warn("unknown code, not treated as spillover", attrs...)
		return
	}
	a.logger.Info("correction applied: "+e.Kind, attrs...)
}
