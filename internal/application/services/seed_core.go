package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/filter"
	"github.com/sfseed/sfseed/pkg/models"
	"github.com/sfseed/sfseed/pkg/soql"
)

// seedCore runs stage 1: query the root object, pull in shallow data
// dependencies, pre-pend out-of-batch self-reference parents, write, and
// resolve self-references with a post-insert update pass.
func (p *SeedPipeline) seedCore(ctx context.Context) error {
	root := p.plan.RootObject
	p.log.StartSpinner(fmt.Sprintf("Seeding %s records", root))

	srcDesc, err := p.inspector.DescribeObject(ctx, p.source, root)
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Could not describe %s in source org", root))
		return err
	}
	tgtDesc, err := p.inspector.DescribeObject(ctx, p.target, root)
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Could not describe %s in target org", root))
		return err
	}

	fields := InsertableFields(srcDesc, tgtDesc, nil)
	projection := soql.BuildProjection(FieldNames(fields))
	query := soql.BuildQuery(projection, root, p.plan.Where, p.plan.RecordCount)

	records, err := soql.QueryAll(ctx, p.source, query)
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Query of %s failed", root))
		return err
	}

	if p.plan.Filter != "" {
		f, err := filter.Compile(p.plan.Filter)
		if err != nil {
			p.log.StopSpinnerFail("Invalid --filter expression")
			return err
		}
		records, err = f.Apply(records)
		if err != nil {
			p.log.StopSpinnerFail("Filter evaluation failed")
			return err
		}
	}

	cls := ClassifyRootReferences(srcDesc, root)

	// Shallow-seed each data dependency so the core's references into it
	// can be remapped. A failed pull demotes the field to a stripped
	// reference; the core records still seed.
	for _, field := range sortedKeys(cls.DataDeps) {
		depObject := cls.DataDeps[field]
		ids := distinctReferenceValues(records, field)
		if len(ids) == 0 {
			continue
		}
		p.log.UpdateSpinner(fmt.Sprintf("Pulling in %d %s dependency records", len(ids), depObject))
		if err := p.seedDependency(ctx, depObject, ids); err != nil {
			p.log.StopSpinnerFail(fmt.Sprintf("Could not pull in %s; %s will be cleared on seeded records", depObject, field))
			p.log.StartSpinner(fmt.Sprintf("Seeding %s records", root))
			p.debug.Warnw("dependency pull failed", "object", depObject, "field", field, "error", err)
			cls.DropDataDep(field)
		}
	}

	// Pre-pend parents referenced by self-reference fields that are not
	// part of the batch, so the insert itself is parent-first ordered.
	// Parents inside the batch are handled by the post-insert pass.
	inBatch := make(map[string]bool, len(records))
	for _, rec := range records {
		inBatch[rec.GetString(constants.FieldID)] = true
	}
	var missingParents []string
	for _, field := range cls.SelfRefFields {
		for _, id := range distinctReferenceValues(records, field) {
			if !inBatch[id] {
				inBatch[id] = true
				missingParents = append(missingParents, id)
			}
		}
	}
	if len(missingParents) > 0 {
		parents, err := soql.QueryAllChunked(ctx, p.source, missingParents, func(chunk []string) string {
			return soql.BuildQuery(projection, root, soql.InClause(constants.FieldID, chunk), constants.AllRecords)
		})
		if err != nil {
			p.log.StopSpinnerFail(fmt.Sprintf("Query of %s parent records failed", root))
			return err
		}
		records = append(parents, records...)
	}

	res := &models.ObjectResult{Object: root, Queried: len(records)}
	p.results.Core = res

	sourceIDs := make([]string, len(records))
	for i, rec := range records {
		sourceIDs[i] = rec.GetString(constants.FieldID)
	}
	p.rootSourceIDs = sourceIDs

	toWrite := records
	writeIDs := sourceIDs
	if !p.plan.DryRun {
		toWrite = make([]models.SObject, 0, len(records))
		writeIDs = make([]string, 0, len(records))
		for i, rec := range records {
			prepared, skipped := PrepareRootRecord(rec, fields, cls, p.registry, p.results, root)
			if skipped {
				res.Skipped++
				continue
			}
			toWrite = append(toWrite, prepared)
			writeIDs = append(writeIDs, sourceIDs[i])
		}
	}

	if p.plan.RootExternalIDField != "" {
		err = p.batchUpsert(ctx, root, toWrite, writeIDs, p.plan.RootExternalIDField, res)
	} else {
		err = p.batchInsert(ctx, root, toWrite, writeIDs, res)
	}
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Writing %s records failed", root))
		return err
	}

	if err := p.resolveSelfReferences(ctx, root, records, cls, res); err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Resolving %s self-references failed", root))
		return err
	}

	p.log.StopSpinner(fmt.Sprintf("%s: %d queried, %d inserted, %d updated, %d failed, %d skipped",
		root, res.Queried, res.Inserted, res.Updated, res.Failed, res.Skipped))
	return nil
}

// seedDependency pulls in the exact referenced records of one
// data-dependency object, with every reference field stripped. No
// recursion: a dependency's own lookups are cleared, not chased.
func (p *SeedPipeline) seedDependency(ctx context.Context, depObject string, ids []string) error {
	srcDesc, err := p.inspector.DescribeObject(ctx, p.source, depObject)
	if err != nil {
		return err
	}
	tgtDesc, err := p.inspector.DescribeObject(ctx, p.target, depObject)
	if err != nil {
		return err
	}

	fields := InsertableFields(srcDesc, tgtDesc, nil)
	plain := make([]schema.FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		if !f.IsReference() {
			plain = append(plain, f)
		}
	}
	projection := soql.BuildProjection(FieldNames(plain))

	records, err := soql.QueryAllChunked(ctx, p.source, ids, func(chunk []string) string {
		return soql.BuildQuery(projection, depObject, soql.InClause(constants.FieldID, chunk), constants.AllRecords)
	})
	if err != nil {
		return err
	}

	res := &models.ObjectResult{Object: depObject, Queried: len(records)}
	p.results.Dependencies = append(p.results.Dependencies, res)

	sourceIDs := make([]string, len(records))
	toWrite := make([]models.SObject, len(records))
	for i, rec := range records {
		sourceIDs[i] = rec.GetString(constants.FieldID)
		out := make(models.SObject, len(plain))
		for _, f := range plain {
			if value, present := rec[f.Name]; present {
				out[f.Name] = value
			}
		}
		toWrite[i] = out
	}

	return p.batchInsert(ctx, depObject, toWrite, sourceIDs, res)
}

// resolveSelfReferences runs the post-insert update pass: every written
// record whose self-reference fields now resolve through the registry
// gets an update carrying the remapped parent ids.
func (p *SeedPipeline) resolveSelfReferences(ctx context.Context, root string, records []models.SObject, cls *RootClassification, res *models.ObjectResult) error {
	if len(cls.SelfRefFields) == 0 || p.plan.DryRun {
		return nil
	}

	var updates []models.SObject
	var updateIDs []string
	for _, rec := range records {
		sourceID := rec.GetString(constants.FieldID)
		targetID, ok := p.registry.Lookup(root, sourceID)
		if !ok {
			continue
		}

		update := models.SObject{constants.FieldID: targetID}
		resolved := false
		for _, field := range cls.SelfRefFields {
			parentSource := rec.GetString(field)
			if parentSource == "" {
				continue
			}
			if parentTarget, ok := p.registry.Lookup(root, parentSource); ok {
				update[field] = parentTarget
				resolved = true
			}
		}
		if resolved {
			updates = append(updates, update)
			updateIDs = append(updateIDs, sourceID)
		}
	}

	return p.batchUpdate(ctx, root, updates, updateIDs, models.StageSelfRefUpdate, res)
}

// distinctReferenceValues collects the distinct non-null string values of
// one field across a batch, in first-seen order.
func distinctReferenceValues(records []models.SObject, field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		value := rec.GetString(field)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
