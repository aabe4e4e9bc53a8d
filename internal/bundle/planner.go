package bundle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

const tracerName = "github.com/eugenenazirov/bundle-optimizer/internal/bundle"

var (
	// ErrNoItems is returned when a run is requested without any items.
	ErrNoItems = errors.New("add at least one item before running the optimization")
	// ErrInvalidCapacity is returned when the capacity is not a positive integer.
	ErrInvalidCapacity = errors.New("capacity must be a positive integer")
	// ErrCapacityTooLarge is returned when the capacity exceeds the configured maximum.
	ErrCapacityTooLarge = errors.New("capacity exceeds the configured maximum")
	// ErrTooManyItems is returned when the item count exceeds the configured maximum.
	ErrTooManyItems = errors.New("too many items")
)

// Limits bound the work a single run may request.
// Zero values disable the corresponding check.
type Limits struct {
	MaxCapacity int
	MaxItems    int
}

// Planner validates shell requests and runs the solver on an immutable copy.
type Planner struct {
	opts   knapsack.Options
	limits Limits
	logger *zap.Logger
	tracer trace.Tracer
	clock  func() time.Time
}

// Option configures Planner behaviour.
type Option func(*Planner)

// WithSolverOptions overrides the solver options.
func WithSolverOptions(opts knapsack.Options) Option {
	return func(p *Planner) {
		p.opts = opts
	}
}

// WithLimits sets the request limits.
func WithLimits(limits Limits) Option {
	return func(p *Planner) {
		p.limits = limits
	}
}

// WithTracer overrides the tracer, primarily for tests.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Planner) {
		p.tracer = tracer
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(p *Planner) {
		p.clock = clock
	}
}

// NewPlanner constructs a Planner. A nil logger disables logging.
func NewPlanner(logger *zap.Logger, opts ...Option) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Planner{
		opts:   knapsack.DefaultOptions(),
		logger: logger,
		tracer: otel.Tracer(tracerName),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan validates the request, solves it and builds a Report.
func (p *Planner) Plan(ctx context.Context, req Request) (Report, error) {
	ctx, span := p.tracer.Start(ctx, "bundle.Plan", trace.WithAttributes(
		attribute.Int("bundle.items", len(req.Items)),
		attribute.Int("bundle.capacity", req.Capacity),
	))
	defer span.End()

	report, err := p.plan(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}

	span.SetAttributes(
		attribute.Int("bundle.max_profit", report.MaxProfit),
		attribute.Int("bundle.selected", len(report.Selected)),
		attribute.String("bundle.memory_mode", report.Mode),
	)
	return report, nil
}

func (p *Planner) plan(ctx context.Context, req Request) (Report, error) {
	if err := p.validate(req); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	items := req.snapshot()
	mode := p.opts.Resolve(len(items), req.Capacity)

	start := p.clock()
	sol, err := knapsack.New(p.opts).Solve(items, req.Capacity)
	elapsed := p.clock().Sub(start)
	if err != nil {
		return Report{}, fmt.Errorf("solve: %w", err)
	}

	report := newReport(items, req.Capacity, sol, mode, elapsed)

	p.logger.Info("optimization completed",
		zap.Int("items", len(items)),
		zap.Int("capacity", req.Capacity),
		zap.Int("max_profit", report.MaxProfit),
		zap.Int("selected", len(report.Selected)),
		zap.String("memory_mode", report.Mode),
		zap.Duration("duration", elapsed),
	)
	return report, nil
}

func (p *Planner) validate(req Request) error {
	if len(req.Items) == 0 {
		return ErrNoItems
	}
	if req.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if p.limits.MaxCapacity > 0 && req.Capacity > p.limits.MaxCapacity {
		return fmt.Errorf("%w: %d > %d", ErrCapacityTooLarge, req.Capacity, p.limits.MaxCapacity)
	}
	if p.limits.MaxItems > 0 && len(req.Items) > p.limits.MaxItems {
		return fmt.Errorf("%w: %d > %d", ErrTooManyItems, len(req.Items), p.limits.MaxItems)
	}
	return knapsack.Validate(req.Items, req.Capacity)
}
