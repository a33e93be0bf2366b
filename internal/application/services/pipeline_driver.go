package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/models"
)

// SeedPipeline executes the six seeding stages in order against a source
// and a target org, threading the identity registry between them.
//
// Scheduling is single-threaded and cooperative: stage transitions,
// registry mutations, and result mutations all happen on one goroutine,
// and batches within a stage run in submission order. Parallel batches
// would break the parents-before-children ordering.
type SeedPipeline struct {
	source    ports.Connection
	target    ports.Connection
	inspector *SchemaInspector
	log       ports.Logger
	debug     *zap.SugaredLogger

	// Per-run state, reset by Run.
	plan          models.SeedPlan
	registry      *IdentityRegistry
	results       *models.SeedResults
	rootSourceIDs []string
}

// NewSeedPipeline creates a new SeedPipeline. Both connections are
// borrowed: the pipeline never closes them or touches their auth state.
func NewSeedPipeline(source, target ports.Connection, log ports.Logger, debug *zap.SugaredLogger) *SeedPipeline {
	if debug == nil {
		debug = zap.NewNop().Sugar()
	}
	return &SeedPipeline{
		source:    source,
		target:    target,
		inspector: NewSchemaInspector(),
		log:       log,
		debug:     debug,
	}
}

// Registry exposes the current run's identity registry, mainly for tests
// and for callers inspecting partial results after an abort.
func (p *SeedPipeline) Registry() *IdentityRegistry {
	return p.registry
}

// Run executes the pipeline for one plan and returns the accumulated
// results. The cancellation probe is consulted at stage boundaries only;
// when it flips, the partial results are returned without error. An
// exception from a connection aborts the current stage and propagates,
// with the in-progress results attached to the returned error path via
// the second return value.
func (p *SeedPipeline) Run(ctx context.Context, plan models.SeedPlan) (*models.SeedResults, error) {
	p.plan = plan
	p.registry = NewIdentityRegistry()
	p.results = &models.SeedResults{}
	p.rootSourceIDs = nil

	p.debug.Infow("seed run starting",
		"root", plan.RootObject, "children", len(plan.Children), "dryRun", plan.DryRun)

	// Stage 1 — core object
	if err := p.seedCore(ctx); err != nil {
		return p.results, fmt.Errorf("core stage: %w", err)
	}
	if p.plan.Aborted() {
		return p.results, nil
	}

	// An empty core outside dry-run means nothing downstream can attach.
	if !plan.DryRun && p.results.Core != nil &&
		p.results.Core.Inserted == 0 && p.results.Core.Updated == 0 {
		p.log.Warn(fmt.Sprintf("no %s records were written; skipping related tiers", plan.RootObject))
		return p.results, nil
	}

	// Stage 2 — children
	if err := p.seedChildren(ctx); err != nil {
		return p.results, fmt.Errorf("children stage: %w", err)
	}
	if p.plan.Aborted() {
		return p.results, nil
	}

	// Stage 3 — grandchildren
	if err := p.seedGrandchildren(ctx); err != nil {
		return p.results, fmt.Errorf("grandchildren stage: %w", err)
	}
	if p.plan.Aborted() {
		return p.results, nil
	}

	// Stages 4 and 5 — activities
	if plan.IncludeTasks {
		res, err := p.seedActivities(ctx, constants.ObjectTask)
		p.results.Tasks = res
		if err != nil {
			return p.results, fmt.Errorf("task stage: %w", err)
		}
	}
	if p.plan.Aborted() {
		return p.results, nil
	}

	if plan.IncludeEvents {
		res, err := p.seedActivities(ctx, constants.ObjectEvent)
		p.results.Events = res
		if err != nil {
			return p.results, fmt.Errorf("event stage: %w", err)
		}
	}
	if p.plan.Aborted() {
		return p.results, nil
	}

	// Stage 6 — files
	if plan.IncludeFiles {
		if err := p.seedFiles(ctx); err != nil {
			return p.results, fmt.Errorf("file stage: %w", err)
		}
	}

	p.debug.Infow("seed run finished", "errors", len(p.results.Errors))
	return p.results, nil
}
