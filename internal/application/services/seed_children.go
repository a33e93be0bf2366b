package services

import (
	"context"
	"fmt"

	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/models"
	"github.com/sfseed/sfseed/pkg/soql"
)

// seedChildren runs stage 2: each declared child tier, in operator order,
// parented off the root records queried in stage 1.
func (p *SeedPipeline) seedChildren(ctx context.Context) error {
	for _, child := range p.plan.Children {
		if p.plan.Aborted() {
			return nil
		}
		res, err := p.seedTier(ctx, child.ObjectName, child.ParentLookupField, child.ExternalIDField, p.rootSourceIDs)
		if res != nil {
			p.results.Children = append(p.results.Children, res)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// seedGrandchildren runs stage 3: same mechanics as stage 2, parented off
// each child's registry entries. A child tier that wrote nothing is
// skipped with an informational line.
func (p *SeedPipeline) seedGrandchildren(ctx context.Context) error {
	for _, child := range p.plan.Children {
		for _, grandchild := range child.Grandchildren {
			if p.plan.Aborted() {
				return nil
			}
			parentIDs := p.registry.SourceIDs(child.ObjectName)
			if len(parentIDs) == 0 {
				p.log.Log(fmt.Sprintf("No %s records were seeded; skipping %s", child.ObjectName, grandchild.ObjectName))
				continue
			}
			res, err := p.seedTier(ctx, grandchild.ObjectName, grandchild.ParentLookupField, grandchild.ExternalIDField, parentIDs)
			if res != nil {
				p.results.Grandchildren = append(p.results.Grandchildren, res)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// seedTier queries one related tier by its parent lookup field, prepares
// each record against the registry, and writes it. Declared external-id
// fields switch the write from insert to upsert.
func (p *SeedPipeline) seedTier(ctx context.Context, object, parentLookupField, externalIDField string, parentSourceIDs []string) (*models.ObjectResult, error) {
	p.log.StartSpinner(fmt.Sprintf("Seeding %s records", object))

	srcDesc, err := p.inspector.DescribeObject(ctx, p.source, object)
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Could not describe %s in source org", object))
		return nil, err
	}
	tgtDesc, err := p.inspector.DescribeObject(ctx, p.target, object)
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Could not describe %s in target org", object))
		return nil, err
	}

	fields := InsertableFields(srcDesc, tgtDesc, nil)
	projection := soql.BuildProjection(FieldNames(fields), parentLookupField)

	records, err := soql.QueryAllChunked(ctx, p.source, parentSourceIDs, func(chunk []string) string {
		return soql.BuildQuery(projection, object, soql.InClause(parentLookupField, chunk), constants.AllRecords)
	})
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Query of %s failed", object))
		return nil, err
	}

	res := &models.ObjectResult{Object: object, Queried: len(records)}

	sourceIDs := make([]string, len(records))
	for i, rec := range records {
		sourceIDs[i] = rec.GetString(constants.FieldID)
	}

	toWrite := records
	writeIDs := sourceIDs
	if !p.plan.DryRun {
		toWrite = make([]models.SObject, 0, len(records))
		writeIDs = make([]string, 0, len(records))
		for i, rec := range records {
			prepared, skipped := PrepareTierRecord(rec, fields, p.registry, p.results, object)
			if skipped {
				res.Skipped++
				continue
			}
			toWrite = append(toWrite, prepared)
			writeIDs = append(writeIDs, sourceIDs[i])
		}
	}

	if externalIDField != "" {
		err = p.batchUpsert(ctx, object, toWrite, writeIDs, externalIDField, res)
	} else {
		err = p.batchInsert(ctx, object, toWrite, writeIDs, res)
	}
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Writing %s records failed", object))
		return res, err
	}

	p.log.StopSpinner(fmt.Sprintf("%s: %d queried, %d inserted, %d updated, %d failed, %d skipped",
		object, res.Queried, res.Inserted, res.Updated, res.Failed, res.Skipped))
	return res, nil
}
