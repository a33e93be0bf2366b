package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/sfseed/sfseed/internal/application/services"
	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/internal/domain/schema"
	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
	"github.com/sfseed/sfseed/pkg/models"
)

// promptOrgs asks for the two org aliases when the flags left them
// empty. A partial flag set still routes here: whatever is missing gets
// prompted for, whatever was given is kept. Swappable for tests.
var promptOrgs = func(opts *seedOptions) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Source org alias").
				Description("Records are read from this org").
				Value(&opts.source).
				Validate(nonEmpty("source alias")),
			huh.NewInput().
				Title("Target org alias").
				Description("Records are written to this org").
				Value(&opts.target).
				Validate(nonEmpty("target alias")),
		),
	)
	return form.Run()
}

// promptPlan walks the operator through a full plan: root object, child
// and grandchild tiers from the live schema, then the run settings.
func promptPlan(ctx context.Context, opts *seedOptions, inspector *services.SchemaInspector, source ports.Connection) (*models.SeedPlan, error) {
	objects, err := inspector.ListInsertableObjects(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, pkgErrors.NewNotFoundError("insertable objects", "")
	}

	objectOptions := make([]huh.Option[string], len(objects))
	for i, obj := range objects {
		objectOptions[i] = huh.NewOption(fmt.Sprintf("%s (%s)", obj.Label, obj.Name), obj.Name)
	}

	plan := &models.SeedPlan{}
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Root object").
			Options(objectOptions...).
			Value(&plan.RootObject),
	)).Run(); err != nil {
		return nil, err
	}

	children, err := inspector.DiscoverChildren(ctx, source, plan.RootObject)
	if err != nil {
		return nil, err
	}
	selectedChildren, err := promptChildTier(
		fmt.Sprintf("Child objects of %s", plan.RootObject), children)
	if err != nil {
		return nil, err
	}
	for _, rel := range selectedChildren {
		plan.Children = append(plan.Children, models.ChildPlan{
			ObjectName:        rel.ChildObject,
			ParentLookupField: rel.FieldName,
		})
	}

	if len(plan.Children) > 0 {
		childNames := make([]string, len(plan.Children))
		for i, c := range plan.Children {
			childNames[i] = c.ObjectName
		}
		grandchildren, err := inspector.DiscoverGrandchildren(ctx, source, childNames, plan.RootObject)
		if err != nil {
			return nil, err
		}
		if len(grandchildren) > 0 {
			selected, err := promptGrandchildTier(grandchildren)
			if err != nil {
				return nil, err
			}
			for _, rel := range selected {
				for i := range plan.Children {
					if plan.Children[i].ObjectName == rel.ParentChildObject {
						plan.Children[i].Grandchildren = append(plan.Children[i].Grandchildren, models.GrandchildPlan{
							ObjectName:        rel.ChildObject,
							ParentLookupField: rel.FieldName,
						})
						break
					}
				}
			}
		}
	}

	count := opts.count
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Record count").
			Description(`How many root records to seed, or "All"`).
			Value(&count).
			Validate(func(s string) error {
				_, err := parseCount(s)
				return err
			}),
		huh.NewInput().
			Title("WHERE filter (optional)").
			Description("SOQL fragment applied to the root query").
			Value(&plan.Where),
		huh.NewConfirm().Title("Include tasks?").Value(&plan.IncludeTasks),
		huh.NewConfirm().Title("Include events?").Value(&plan.IncludeEvents),
		huh.NewConfirm().Title("Include files?").Value(&plan.IncludeFiles),
		huh.NewConfirm().Title("Dry run?").
			Description("Report what would be seeded without writing").
			Value(&plan.DryRun),
	)).Run(); err != nil {
		return nil, err
	}

	plan.RecordCount, err = parseCount(count)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func promptChildTier(title string, rels []schema.ChildRelationship) ([]schema.ChildRelationship, error) {
	if len(rels) == 0 {
		return nil, nil
	}
	options := make([]huh.Option[int], len(rels))
	for i, rel := range rels {
		options[i] = huh.NewOption(fmt.Sprintf("%s (via %s)", rel.ChildObject, rel.FieldName), i)
	}

	var picked []int
	if err := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[int]().
			Title(title).
			Options(options...).
			Value(&picked),
	)).Run(); err != nil {
		return nil, err
	}

	out := make([]schema.ChildRelationship, 0, len(picked))
	for _, i := range picked {
		out = append(out, rels[i])
	}
	return out, nil
}

func promptGrandchildTier(rels []schema.GrandchildRelationship) ([]schema.GrandchildRelationship, error) {
	options := make([]huh.Option[int], len(rels))
	for i, rel := range rels {
		options[i] = huh.NewOption(
			fmt.Sprintf("%s under %s (via %s)", rel.ChildObject, rel.ParentChildObject, rel.FieldName), i)
	}

	var picked []int
	if err := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[int]().
			Title("Grandchild objects").
			Options(options...).
			Value(&picked),
	)).Run(); err != nil {
		return nil, err
	}

	out := make([]schema.GrandchildRelationship, 0, len(picked))
	for _, i := range picked {
		out = append(out, rels[i])
	}
	return out, nil
}

func nonEmpty(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
