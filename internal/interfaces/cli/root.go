// Package cli is the command surface: flag parsing, the interactive
// prompt, plan-file loading, and the run loop around the seed pipeline.
package cli

import (
	"context"
	"sync/atomic"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the sfseed command. The abort flag is owned by main's
// signal handler; the pipeline polls it between stages.
func NewRootCmd(abort *atomic.Bool) *cobra.Command {
	opts := &seedOptions{abort: abort}

	cmd := &cobra.Command{
		Use:   "sfseed",
		Short: "Seed a sandbox org with production-shaped data",
		Long: `sfseed copies a slice of records from a source org into a target org:
a root object, its declared child and grandchild tiers, optionally the
tasks, events, and files attached to them. Record identities are remapped
as they cross orgs so lookups keep pointing at the right rows.

Credentials come from the environment or a .env file, per org alias:
SFSEED_<ALIAS>_INSTANCE_URL and SFSEED_<ALIAS>_ACCESS_TOKEN, or the
SFSEED_<ALIAS>_JWT_* variables for the JWT bearer flow.

With no --object and no --plan the command prompts interactively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.source, "source-org", "s", "", "source org alias")
	flags.StringVarP(&opts.target, "target-org", "t", "", "target org alias")
	flags.StringVarP(&opts.object, "object", "o", "", "root object to seed")
	flags.StringSliceVarP(&opts.children, "children", "c", nil, "child objects to include (comma separated)")
	flags.StringSliceVarP(&opts.grandchildren, "grandchildren", "g", nil, "grandchild objects to include (comma separated)")
	flags.BoolVar(&opts.includeTasks, "include-tasks", false, "seed tasks attached to seeded records")
	flags.BoolVar(&opts.includeEvents, "include-events", false, "seed events attached to seeded records")
	flags.BoolVar(&opts.includeFiles, "include-files", false, "transfer files attached to seeded records")
	flags.StringVarP(&opts.count, "count", "n", "10", `number of root records, or "All"`)
	flags.StringVarP(&opts.where, "where", "w", "", "SOQL WHERE fragment for the root query")
	flags.StringVarP(&opts.externalID, "upsert-field", "u", "", "external-id field for upserting the root object")
	flags.BoolVarP(&opts.dryRun, "dry-run", "d", false, "report what would be seeded without writing")
	flags.StringVar(&opts.planPath, "plan", "", "YAML plan file describing the run")
	flags.StringVar(&opts.filter, "filter", "", "client-side filter expression for root records")
	flags.StringVar(&opts.schedule, "schedule", "", "cron expression; repeat the run on this schedule")
	flags.BoolVar(&opts.plain, "plain", false, "disable the spinner animation")

	return cmd
}

// Execute runs the command tree.
func Execute(ctx context.Context, abort *atomic.Bool) error {
	return NewRootCmd(abort).ExecuteContext(ctx)
}
