// Package pipeline drives segment extraction for whole statements: it parses
// the SQL, numbers the parameter markers, runs the extractors the rule
// registry binds to the statement, and fills the results into a statement
// model.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/shardparse/internal/observability"
	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/filler"
	"github.com/leapstack-labs/shardparse/pkg/grammar"
	"github.com/leapstack-labs/shardparse/pkg/marker"
	"github.com/leapstack-labs/shardparse/pkg/rule"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultFeature is the rule feature used when none is configured.
const DefaultFeature = "sharding"

// Sentinel errors.
var (
	ErrNoStatementRule = errors.New("no statement rule")
	ErrNoFiller        = errors.New("no filler for segment")
)

// Pipeline stages, used in error metrics and logs.
const (
	StageParse   = "parse"
	StageRules   = "rules"
	StageExtract = "extract"
	StageFill    = "fill"
)

// Pipeline extracts segments from SQL statements. It is safe for concurrent
// use.
type Pipeline struct {
	logger  *slog.Logger
	feature string
	db      dialect.DatabaseType
	rules   *rule.Cache
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFeature selects the rule feature, "sharding" by default.
func WithFeature(feature string) Option {
	return func(p *Pipeline) { p.feature = feature }
}

// WithDatabaseType selects the SQL dialect, MySQL by default.
func WithDatabaseType(db dialect.DatabaseType) Option {
	return func(p *Pipeline) { p.db = db }
}

// WithRulesFS loads rule definitions from fsys instead of the embedded
// resources.
func WithRulesFS(fsys fs.FS) Option {
	return func(p *Pipeline) { p.rules = rule.NewCache(fsys) }
}

// New creates a pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:  slog.New(slog.DiscardHandler),
		feature: DefaultFeature,
		db:      dialect.MySQL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DatabaseType returns the dialect the pipeline parses.
func (p *Pipeline) DatabaseType() dialect.DatabaseType { return p.db }

// Feature returns the rule feature the pipeline uses.
func (p *Pipeline) Feature() string { return p.feature }

// Registry returns the rule registry for the pipeline's feature and dialect.
func (p *Pipeline) Registry() (*rule.Registry, error) {
	if p.rules == nil {
		return rule.Default(p.feature, p.db)
	}
	return p.rules.Get(p.feature, p.db)
}

type extraction struct {
	id      string
	segment segment.Segment
	found   bool
}

// Parse extracts the segments of one statement.
func (p *Pipeline) Parse(ctx context.Context, sql string) (*filler.SelectStatement, error) {
	start := time.Now()
	statementID := uuid.NewString()
	logger := p.logger.With("statement_id", statementID, "dialect", p.db.Name())

	ctx, span := observability.Tracer.Start(ctx, "pipeline.Parse", trace.WithAttributes(
		attribute.String("statement_id", statementID),
		attribute.String("dialect", p.db.Name()),
		attribute.String("feature", p.feature),
	))
	defer span.End()

	fail := func(stage string, err error) (*filler.SelectStatement, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.StatementErrorsTotal.WithLabelValues(p.db.Name(), stage).Inc()
		logger.Warn("statement failed", "stage", stage, "error", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail(StageParse, err)
	}

	root, err := grammar.Parse(sql, p.db)
	if err != nil {
		return fail(StageParse, fmt.Errorf("parsing statement: %w", err))
	}
	markers := marker.Build(root)

	registry, err := p.Registry()
	if err != nil {
		return fail(StageRules, fmt.Errorf("loading %s rules for %s: %w", p.feature, p.db, err))
	}
	bindings, ok := registry.StatementExtractors(root.Rule())
	if !ok {
		return fail(StageRules, fmt.Errorf("%w: %s", ErrNoStatementRule, root.Rule()))
	}
	logger.Debug("running extractors", "statement_rule", root.Rule(), "extractors", len(bindings), "parameters", markers.Len())

	results, err := extract(ctx, root, markers, bindings)
	if err != nil {
		return fail(StageExtract, err)
	}

	stmt := &filler.SelectStatement{
		SQL:             sql,
		DatabaseType:    p.db,
		ParametersCount: markers.Len(),
	}
	for _, r := range results {
		if !r.found {
			continue
		}
		f, ok := registry.Filler(r.segment.Kind())
		if !ok {
			return fail(StageFill, fmt.Errorf("%w: %s", ErrNoFiller, r.segment.Kind()))
		}
		if err := f.Fill(r.segment, stmt); err != nil {
			return fail(StageFill, fmt.Errorf("filling %s segment from %q: %w", r.segment.Kind(), r.id, err))
		}
	}

	elapsed := time.Since(start)
	observability.StatementDuration.WithLabelValues(p.db.Name()).Observe(elapsed.Seconds())
	span.SetAttributes(attribute.Int("segments", len(stmt.Segments)))
	logger.Debug("statement extracted", "segments", len(stmt.Segments), "duration", elapsed)
	return stmt, nil
}

// extract runs the bound extractors concurrently and returns their results
// in binding order.
func extract(ctx context.Context, root tree.Node, markers marker.Indexes, bindings []rule.Binding) ([]extraction, error) {
	results := make([]extraction, len(bindings))
	g, ctx := errgroup.WithContext(ctx)
	for i, b := range bindings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seg, found, err := b.Extractor.Extract(root, markers)
			if err != nil {
				observability.RecordExtraction(b.ID, observability.OutcomeError)
				return fmt.Errorf("extractor %q: %w", b.ID, err)
			}
			outcome := observability.OutcomeAbsent
			if found {
				outcome = observability.OutcomeFound
			}
			observability.RecordExtraction(b.ID, outcome)
			results[i] = extraction{id: b.ID, segment: seg, found: found}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Result is the outcome of one statement of a batch.
type Result struct {
	SQL       string
	Statement *filler.SelectStatement
	Err       error
}

// ParseAll parses statements concurrently and returns one result per
// statement, in input order. A failing statement does not stop the others.
func (p *Pipeline) ParseAll(ctx context.Context, statements []string) []Result {
	results := make([]Result, len(statements))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, sql := range statements {
		g.Go(func() error {
			stmt, err := p.Parse(ctx, sql)
			results[i] = Result{SQL: sql, Statement: stmt, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
