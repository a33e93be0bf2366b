package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/models"
	"github.com/sfseed/sfseed/pkg/soql"
)

// batchInsert writes prepared records into the target in batches of
// constants.BatchSize, registering an identity mapping per success and
// logging one error per failure. records[j] corresponds to sourceIDs[j].
func (p *SeedPipeline) batchInsert(ctx context.Context, object string, records []models.SObject, sourceIDs []string, res *models.ObjectResult) error {
	if len(records) == 0 {
		return nil
	}

	if p.plan.DryRun {
		p.log.Log(fmt.Sprintf("[dry-run] would insert %d %s records", len(records), object))
		res.Inserted += len(records)
		return nil
	}

	for start := 0; start < len(records); start += constants.BatchSize {
		end := start + constants.BatchSize
		if end > len(records) {
			end = len(records)
		}

		saveResults, err := p.target.Create(ctx, object, records[start:end])
		if err != nil {
			return fmt.Errorf("bulk insert of %s failed: %w", object, err)
		}

		for j, sr := range saveResults {
			sourceID := sourceIDs[start+j]
			if sr.Success && sr.ID != "" {
				p.registry.Register(object, sourceID, sr.ID)
				res.Inserted++
				continue
			}
			res.Failed++
			p.results.AddError(object, sourceID, models.StageInsert, formatSaveErrors(sr.Errors))
		}
		p.debug.Debugw("batch insert",
			"object", object, "batch", len(saveResults), "inserted", res.Inserted, "failed", res.Failed)
	}
	return nil
}

// batchUpsert writes prepared records matched on an external-id field.
// Created and updated records are counted separately; updated records may
// come back without a target id, so a back-query by external-id value
// recovers the missing identity mappings.
func (p *SeedPipeline) batchUpsert(ctx context.Context, object string, records []models.SObject, sourceIDs []string, externalIDField string, res *models.ObjectResult) error {
	if len(records) == 0 {
		return nil
	}

	if p.plan.DryRun {
		p.log.Log(fmt.Sprintf("[dry-run] would upsert %d %s records on %s", len(records), object, externalIDField))
		res.Inserted += len(records)
		return nil
	}

	for start := 0; start < len(records); start += constants.BatchSize {
		end := start + constants.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		batchIDs := sourceIDs[start:end]

		saveResults, err := p.target.Upsert(ctx, object, batch, externalIDField)
		if err != nil {
			return fmt.Errorf("bulk upsert of %s failed: %w", object, err)
		}

		for j, sr := range saveResults {
			sourceID := batchIDs[j]
			if !sr.Success {
				res.Failed++
				p.results.AddError(object, sourceID, models.StageUpsert, formatSaveErrors(sr.Errors))
				continue
			}
			if sr.Created {
				res.Inserted++
			} else {
				res.Updated++
			}
			if sr.ID != "" {
				p.registry.Register(object, sourceID, sr.ID)
			}
		}

		if err := p.backfillUpsertIDs(ctx, object, batch, batchIDs, externalIDField); err != nil {
			return err
		}
	}
	return nil
}

// backfillUpsertIDs recovers identity mappings for upserted records the
// API acknowledged without a target id. It matches the batch's distinct
// external-id values against the target. A duplicate external-id value in
// the target violates the matching invariant and is surfaced as an upsert
// error instead of registering an arbitrary mapping.
func (p *SeedPipeline) backfillUpsertIDs(ctx context.Context, object string, batch []models.SObject, sourceIDs []string, externalIDField string) error {
	// external-id value → source ids still missing a registry entry
	missing := make(map[string][]string)
	var values []string
	for j, sourceID := range sourceIDs {
		if _, ok := p.registry.Lookup(object, sourceID); ok {
			continue
		}
		value := batch[j].GetString(externalIDField)
		if value == "" {
			continue // nothing to match on
		}
		if _, seen := missing[value]; !seen {
			values = append(values, value)
		}
		missing[value] = append(missing[value], sourceID)
	}
	if len(values) == 0 {
		return nil
	}

	rows, err := soql.QueryAllChunked(ctx, p.target, values, func(chunk []string) string {
		projection := soql.BuildProjection([]string{externalIDField})
		return soql.BuildQuery(projection, object, soql.InClause(externalIDField, chunk), constants.AllRecords)
	})
	if err != nil {
		return fmt.Errorf("upsert back-query on %s failed: %w", object, err)
	}

	byValue := make(map[string]string, len(rows))
	duplicates := make(map[string]bool)
	for _, row := range rows {
		value := row.GetString(externalIDField)
		if _, seen := byValue[value]; seen {
			duplicates[value] = true
			continue
		}
		byValue[value] = row.GetString(constants.FieldID)
	}

	for value, ids := range missing {
		if duplicates[value] {
			for _, sourceID := range ids {
				p.results.AddError(object, sourceID, models.StageUpsert,
					fmt.Sprintf("external id value '%s' is not unique in target; mapping not registered", value))
			}
			continue
		}
		targetID, ok := byValue[value]
		if !ok {
			continue
		}
		for _, sourceID := range ids {
			p.registry.Register(object, sourceID, targetID)
		}
	}
	return nil
}

// batchUpdate applies already-shaped update records (carrying Id) in
// batches, logging failures under the given stage.
func (p *SeedPipeline) batchUpdate(ctx context.Context, object string, records []models.SObject, sourceIDs []string, stage string, res *models.ObjectResult) error {
	if len(records) == 0 || p.plan.DryRun {
		return nil
	}

	for start := 0; start < len(records); start += constants.BatchSize {
		end := start + constants.BatchSize
		if end > len(records) {
			end = len(records)
		}

		saveResults, err := p.target.Update(ctx, object, records[start:end])
		if err != nil {
			return fmt.Errorf("bulk update of %s failed: %w", object, err)
		}

		for j, sr := range saveResults {
			if sr.Success {
				continue
			}
			res.Failed++
			p.results.AddError(object, sourceIDs[start+j], stage, formatSaveErrors(sr.Errors))
		}
	}
	return nil
}

// formatSaveErrors joins per-record error entries as
// "STATUS_CODE: message [field1, field2]".
func formatSaveErrors(errs []ports.SaveError) string {
	if len(errs) == 0 {
		return "Unknown error"
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		part := fmt.Sprintf("%s: %s", e.StatusCode, e.Message)
		if len(e.Fields) > 0 {
			part += fmt.Sprintf(" [%s]", strings.Join(e.Fields, ", "))
		}
		parts[i] = part
	}
	return strings.Join(parts, "; ")
}
