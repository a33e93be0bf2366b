package services

import (
	"context"
	"fmt"

	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/models"
	"github.com/sfseed/sfseed/pkg/soql"
)

// seedActivities runs stage 4 or 5 for one activity object (Task or
// Event). Activities attach to any previously seeded tier through the
// polymorphic WhatId/WhoId pair, so candidate records are found by
// querying both fields against every source id in the registry.
func (p *SeedPipeline) seedActivities(ctx context.Context, object string) (*models.ObjectResult, error) {
	p.log.StartSpinner(fmt.Sprintf("Seeding %s records", object))
	res := &models.ObjectResult{Object: object}

	srcDesc, err := p.inspector.DescribeObject(ctx, p.source, object)
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Could not describe %s in source org", object))
		return res, err
	}
	tgtDesc, err := p.inspector.DescribeObject(ctx, p.target, object)
	if err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Could not describe %s in target org", object))
		return res, err
	}

	fields := InsertableFields(srcDesc, tgtDesc, constants.ActivitySystemFields)
	projection := soql.BuildProjection(FieldNames(fields), constants.FieldWhatID, constants.FieldWhoID)

	anchorIDs := p.registry.AllSourceIDs()
	if len(anchorIDs) == 0 {
		p.log.StopSpinner(fmt.Sprintf("%s: nothing to attach to", object))
		return res, nil
	}

	// An activity may anchor on either side; query both and deduplicate.
	seen := make(map[string]bool)
	var records []models.SObject
	for _, anchorField := range []string{constants.FieldWhatID, constants.FieldWhoID} {
		rows, err := soql.QueryAllChunked(ctx, p.source, anchorIDs, func(chunk []string) string {
			return soql.BuildQuery(projection, object, soql.InClause(anchorField, chunk), constants.AllRecords)
		})
		if err != nil {
			p.log.StopSpinnerFail(fmt.Sprintf("Query of %s failed", object))
			return res, err
		}
		for _, rec := range rows {
			id := rec.GetString(constants.FieldID)
			if seen[id] {
				continue
			}
			seen[id] = true
			records = append(records, rec)
		}
	}
	res.Queried = len(records)

	sourceIDs := make([]string, len(records))
	toWrite := make([]models.SObject, len(records))
	for i, rec := range records {
		sourceIDs[i] = rec.GetString(constants.FieldID)
		toWrite[i] = p.prepareActivity(rec, fields)
	}

	if err := p.batchInsert(ctx, object, toWrite, sourceIDs, res); err != nil {
		p.log.StopSpinnerFail(fmt.Sprintf("Writing %s records failed", object))
		return res, err
	}

	p.log.StopSpinner(fmt.Sprintf("%s: %d queried, %d inserted, %d failed",
		object, res.Queried, res.Inserted, res.Failed))
	return res, nil
}

// prepareActivity shapes one activity record: non-reference fields are
// copied verbatim, WhatId and WhoId are remapped through the whole
// registry, and an unresolvable anchor becomes null. An activity is
// never skipped for a dangling reference.
func (p *SeedPipeline) prepareActivity(rec models.SObject, fields []schema.FieldDescriptor) models.SObject {
	out := make(models.SObject, len(fields)+2)
	for _, field := range fields {
		if field.IsReference() {
			continue
		}
		if value, present := rec[field.Name]; present {
			out[field.Name] = value
		}
	}

	for _, anchorField := range []string{constants.FieldWhatID, constants.FieldWhoID} {
		value := rec.GetString(anchorField)
		if value == "" {
			continue
		}
		if targetID, ok := p.registry.LookupAny(value); ok {
			out[anchorField] = targetID
		} else {
			out[anchorField] = nil
		}
	}
	return out
}
