package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/sfseed/sfseed/internal/application/services"
	"github.com/sfseed/sfseed/internal/bootstrap"
	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/internal/infrastructure/logging"
	"github.com/sfseed/sfseed/internal/interfaces/cli/ui"
	"github.com/sfseed/sfseed/pkg/constants"
	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
	"github.com/sfseed/sfseed/pkg/filter"
	"github.com/sfseed/sfseed/pkg/models"
	"github.com/sfseed/sfseed/pkg/soql"
)

type seedOptions struct {
	source        string
	target        string
	object        string
	children      []string
	grandchildren []string
	includeTasks  bool
	includeEvents bool
	includeFiles  bool
	count         string
	where         string
	externalID    string
	dryRun        bool
	planPath      string
	filter        string
	schedule      string
	plain         bool

	abort *atomic.Bool
}

// runSeed is the command body: resolve both orgs, assemble a plan from a
// plan file, flags, or the interactive prompt, then run the pipeline once
// or on a cron schedule. Per-record failures do not fail the process;
// only stage-level errors do.
func runSeed(ctx context.Context, opts *seedOptions) error {
	bootstrap.LoadEnv()
	log := ui.NewLogger(opts.plain)

	if opts.source == "" || opts.target == "" {
		if err := promptOrgs(opts); err != nil {
			return err
		}
	}
	if opts.source == opts.target {
		return pkgErrors.NewValidationError("target", "source and target must be different orgs")
	}

	onAuthorize := func(url string) {
		log.Log("Open this URL to authorize: " + url)
	}
	source, err := bootstrap.ResolveOrg(ctx, opts.source, onAuthorize)
	if err != nil {
		return fmt.Errorf("connecting to source org %q: %w", opts.source, err)
	}
	target, err := bootstrap.ResolveOrg(ctx, opts.target, onAuthorize)
	if err != nil {
		return fmt.Errorf("connecting to target org %q: %w", opts.target, err)
	}

	inspector := services.NewSchemaInspector()
	plan, err := assemblePlan(ctx, opts, inspector, source)
	if err != nil {
		return err
	}
	plan.ShouldAbort = opts.abort.Load

	debug := logging.NewDebugLogger(os.Getenv(constants.EnvDebugLogPath))
	defer debug.Sync() //nolint:errcheck

	// Each run gets its own pipeline and a run-scoped debug logger so
	// scheduled runs never share registry state.
	runOnce := func() error {
		runDebug := debug.With("run", uuid.NewString())
		pipeline := services.NewSeedPipeline(source, target, log, runDebug)
		results, err := pipeline.Run(ctx, *plan)
		if results != nil {
			ui.RenderSummary(os.Stdout, results)
		}
		return err
	}

	if opts.schedule == "" {
		return runOnce()
	}
	return runScheduled(opts, log, runOnce)
}

// runScheduled repeats the run on a cron schedule until the abort flag
// flips. A failed run logs and waits for the next tick.
func runScheduled(opts *seedOptions, log ports.Logger, runOnce func() error) error {
	c := cron.New()
	if _, err := c.AddFunc(opts.schedule, func() {
		if opts.abort.Load() {
			return
		}
		log.Log("Scheduled run starting")
		if err := runOnce(); err != nil {
			log.Warn("Scheduled run failed: " + err.Error())
		}
	}); err != nil {
		return pkgErrors.NewValidationError("schedule", err.Error())
	}

	log.Log(fmt.Sprintf("Running on schedule %q; press Ctrl-C to stop", opts.schedule))
	c.Start()
	defer c.Stop()
	for !opts.abort.Load() {
		time.Sleep(250 * time.Millisecond)
	}
	return nil
}

// assemblePlan produces the run's plan from, in precedence order: the
// plan file, explicit flags, or the interactive prompt.
func assemblePlan(ctx context.Context, opts *seedOptions, inspector *services.SchemaInspector, source ports.Connection) (*models.SeedPlan, error) {
	var plan *models.SeedPlan
	var err error

	switch {
	case opts.planPath != "":
		plan, err = LoadPlanFile(opts.planPath)
		if err != nil {
			return nil, err
		}
		applyFlagOverrides(opts, plan)
	case opts.object != "":
		plan, err = planFromFlags(ctx, opts, inspector, source)
		if err != nil {
			return nil, err
		}
	default:
		plan, err = promptPlan(ctx, opts, inspector, source)
		if err != nil {
			return nil, err
		}
	}

	if plan.RecordCount == 0 {
		plan.RecordCount = constants.DefaultRecordCount
	}
	if plan.Where != "" {
		if err := soql.NewValidator().ValidateWhere(plan.Where); err != nil {
			return nil, err
		}
	}
	if plan.Filter != "" {
		if _, err := filter.Compile(plan.Filter); err != nil {
			return nil, pkgErrors.NewValidationError("filter", err.Error())
		}
	}
	return plan, nil
}

// applyFlagOverrides lets scalar flags win over plan-file settings.
func applyFlagOverrides(opts *seedOptions, plan *models.SeedPlan) {
	if opts.dryRun {
		plan.DryRun = true
	}
	if opts.where != "" {
		plan.Where = opts.where
	}
	if opts.filter != "" {
		plan.Filter = opts.filter
	}
	if opts.count != "" && opts.count != "10" {
		if n, err := parseCount(opts.count); err == nil {
			plan.RecordCount = n
		}
	}
}

// planFromFlags builds a plan from explicit flags, resolving the declared
// child and grandchild names against the source org's schema to find the
// parent lookup fields.
func planFromFlags(ctx context.Context, opts *seedOptions, inspector *services.SchemaInspector, source ports.Connection) (*models.SeedPlan, error) {
	count, err := parseCount(opts.count)
	if err != nil {
		return nil, err
	}

	plan := &models.SeedPlan{
		RootObject:          opts.object,
		RootExternalIDField: opts.externalID,
		IncludeTasks:        opts.includeTasks,
		IncludeEvents:       opts.includeEvents,
		IncludeFiles:        opts.includeFiles,
		DryRun:              opts.dryRun,
		RecordCount:         count,
		Where:               opts.where,
		Filter:              opts.filter,
	}

	if len(opts.children) > 0 {
		available, err := inspector.DiscoverChildren(ctx, source, opts.object)
		if err != nil {
			return nil, err
		}
		byName := make(map[string]string, len(available))
		for _, rel := range available {
			byName[strings.ToLower(rel.ChildObject)] = rel.FieldName
		}
		for _, name := range opts.children {
			lookup, ok := byName[strings.ToLower(name)]
			if !ok {
				return nil, pkgErrors.NewValidationError("children",
					fmt.Sprintf("%s is not a seedable child of %s", name, opts.object))
			}
			plan.Children = append(plan.Children, models.ChildPlan{
				ObjectName:        name,
				ParentLookupField: lookup,
			})
		}
	}

	if len(opts.grandchildren) > 0 {
		if len(plan.Children) == 0 {
			return nil, pkgErrors.NewValidationError("grandchildren",
				"grandchildren require at least one child")
		}
		childNames := make([]string, len(plan.Children))
		for i, c := range plan.Children {
			childNames[i] = c.ObjectName
		}
		available, err := inspector.DiscoverGrandchildren(ctx, source, childNames, opts.object)
		if err != nil {
			return nil, err
		}
		for _, name := range opts.grandchildren {
			found := false
			for _, rel := range available {
				if !strings.EqualFold(rel.ChildObject, name) {
					continue
				}
				for i := range plan.Children {
					if plan.Children[i].ObjectName == rel.ParentChildObject {
						plan.Children[i].Grandchildren = append(plan.Children[i].Grandchildren, models.GrandchildPlan{
							ObjectName:        name,
							ParentLookupField: rel.FieldName,
						})
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if !found {
				return nil, pkgErrors.NewValidationError("grandchildren",
					fmt.Sprintf("%s is not a seedable grandchild of the declared children", name))
			}
		}
	}

	return plan, nil
}

// parseCount turns the --count flag into a record limit. "All" means no
// limit.
func parseCount(raw string) (int, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "all") {
		return constants.AllRecords, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, pkgErrors.NewValidationError("count", `must be a positive integer or "All"`)
	}
	return n, nil
}
