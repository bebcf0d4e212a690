package validation

import (
	"context"
	"runtime"

	"github.com/vvakame/selconflict/internal/diagnostic"
	"github.com/vvakame/selconflict/internal/ir"
	"github.com/vvakame/selconflict/internal/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/vvakame/selconflict/internal/validation")

type validationConfig struct {
	concurrency int
	cache       bool
	stats       *Stats
}

// Option configures ValidateSelectionConflict.
type Option func(cfg *validationConfig)

// WithConcurrency bounds the number of operations and fragments validated at once.
// n <= 0 removes the bound.
func WithConcurrency(n int) Option {
	return func(cfg *validationConfig) {
		cfg.concurrency = n
	}
}

// WithCache toggles memoization of flattened fragments and linked fields.
// The reported diagnostics are the same either way.
func WithCache(enabled bool) Option {
	return func(cfg *validationConfig) {
		cfg.cache = enabled
	}
}

// WithStats collects cache activity into stats.
func WithStats(stats *Stats) Option {
	return func(cfg *validationConfig) {
		cfg.stats = stats
	}
}

// ValidateSelectionConflict checks that every two fields merged into the same response key
// are compatible, unless they apply to disjoint concrete types.
// Every operation and every fragment is validated, unused fragments included, and all
// conflicts are reported together as a diagnostic.List.
func ValidateSelectionConflict(ctx context.Context, program *ir.Program, opts ...Option) error {
	ctx, logger := log.WithName(ctx, "selectionConflict")

	cfg := &validationConfig{
		concurrency: runtime.GOMAXPROCS(0),
		cache:       true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, span := tracer.Start(ctx, "ValidateSelectionConflict", trace.WithAttributes(
		attribute.Int("selconflict.operations", len(program.Operations)),
		attribute.Int("selconflict.fragments", len(program.Fragments)),
	))
	defer span.End()

	v := newSelectionConflictValidator(program, newSelectionCache(cfg.cache, cfg.stats))

	// one slot per task keeps the output in program order
	results := make([]diagnostic.List, len(program.Operations)+len(program.Fragments))

	g := new(errgroup.Group)
	if cfg.concurrency > 0 {
		g.SetLimit(cfg.concurrency)
	}
	for i, operation := range program.Operations {
		g.Go(func() error {
			results[i] = runTask(ctx, "operation", operation.Name, func() diagnostic.List {
				return v.validateOperation(operation)
			})
			return nil
		})
	}
	offset := len(program.Operations)
	for i, fragment := range program.Fragments {
		g.Go(func() error {
			results[offset+i] = runTask(ctx, "fragment", fragment.Name, func() diagnostic.List {
				_, errs := v.validateAndCollectFragment(fragment)
				return errs
			})
			return nil
		})
	}
	// tasks never fail; diagnostics are data
	_ = g.Wait()

	var errs diagnostic.List
	for _, result := range results {
		errs = append(errs, result...)
	}

	span.SetAttributes(attribute.Int("selconflict.diagnostics", len(errs)))
	logger.Info(
		"selection conflict validation finished",
		"operations", len(program.Operations),
		"fragments", len(program.Fragments),
		"diagnostics", len(errs),
	)

	if len(errs) == 0 {
		return nil
	}

	return errs
}

func runTask(ctx context.Context, kind, name string, fn func() diagnostic.List) diagnostic.List {
	logger := log.FromContext(ctx)

	_, span := tracer.Start(ctx, "validate "+kind, trace.WithAttributes(
		attribute.String("selconflict."+kind, name),
	))
	defer span.End()

	logger.V(log.Debug).Info("validating selections", kind, name)

	errs := fn()
	span.SetAttributes(attribute.Int("selconflict.diagnostics", len(errs)))
	if len(errs) != 0 {
		logger.V(log.Debug).Info("selection conflicts found", kind, name, "diagnostics", len(errs))
	}

	return errs
}
