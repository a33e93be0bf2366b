package services

import (
	"fmt"

	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/models"
)

// InsertableFields computes the field set actually written for a tier:
//  1. fields writable on the source descriptor
//  2. minus the fixed system read-only set
//  3. minus the caller's exclusion set (activities add their own)
//  4. minus compound address/location fields
//  5. intersected with the target descriptor's writable fields
func InsertableFields(source, target *schema.ObjectDescriptor, exclude map[string]bool) []schema.FieldDescriptor {
	targetWritable := target.WritableFieldSet()

	out := make([]schema.FieldDescriptor, 0, len(source.Fields))
	for _, field := range source.Fields {
		if !field.Writable {
			continue
		}
		if constants.SystemReadOnlyFields[field.Name] {
			continue
		}
		if exclude != nil && exclude[field.Name] {
			continue
		}
		if schema.CompoundTypes[field.Type] {
			continue
		}
		if !targetWritable[field.Name] {
			continue
		}
		out = append(out, field)
	}
	return out
}

// FieldNames projects descriptors to their API names.
func FieldNames(fields []schema.FieldDescriptor) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// remapReference resolves one non-null reference value against the
// registry (scanned across all object maps — source ids are globally
// unique). The three outcomes mirror the preparer rules: remapped,
// nulled (unresolvable but nullable), or skip the record (unresolvable
// and required).
func remapReference(field schema.FieldDescriptor, value string, registry *IdentityRegistry, results *models.SeedResults, object, sourceID string) (interface{}, bool) {
	if targetID, ok := registry.LookupAny(value); ok {
		return targetID, true
	}
	if field.Nullable {
		return nil, true
	}
	results.AddError(object, sourceID, models.StageRemap,
		fmt.Sprintf("required reference %s → %s could not be resolved", field.Name, value))
	return nil, false
}

// PrepareRootRecord produces a target-shaped record for the core object.
// System references are stripped, self-references deferred to the
// post-insert pass, data-dependency references remapped. Returns
// skipped=true when a required reference cannot be resolved; the caller
// must not write a skipped record.
func PrepareRootRecord(rec models.SObject, fields []schema.FieldDescriptor, cls *RootClassification, registry *IdentityRegistry, results *models.SeedResults, object string) (models.SObject, bool) {
	sourceID := rec.GetString(constants.FieldID)
	out := make(models.SObject, len(fields))

	for _, field := range fields {
		value, present := rec[field.Name]
		if !present {
			continue
		}

		switch {
		case cls.IsSelfRef(field.Name):
			// Carried over to the post-insert self-reference pass.
			continue

		case cls.System[field.Name]:
			if value != nil {
				continue
			}
			out[field.Name] = nil

		case cls.DataDeps[field.Name] != "":
			if value == nil {
				out[field.Name] = nil
				continue
			}
			mapped, ok := remapReference(field, fmt.Sprintf("%v", value), registry, results, object, sourceID)
			if !ok {
				return nil, true
			}
			out[field.Name] = mapped

		default:
			out[field.Name] = value
		}
	}
	return out, false
}

// PrepareTierRecord produces a target-shaped record for a child,
// grandchild, or dependency tier. Reference fields are remapped when any
// of their targets already has registry entries, stripped otherwise.
func PrepareTierRecord(rec models.SObject, fields []schema.FieldDescriptor, registry *IdentityRegistry, results *models.SeedResults, object string) (models.SObject, bool) {
	sourceID := rec.GetString(constants.FieldID)
	out := make(models.SObject, len(fields))

	for _, field := range fields {
		value, present := rec[field.Name]
		if !present {
			continue
		}

		if !field.IsReference() {
			out[field.Name] = value
			continue
		}

		if value == nil {
			out[field.Name] = nil
			continue
		}

		if ClassifyTierReference(field, registry) != BucketInScope {
			// Plain reference with no mapped tier behind it: strip.
			continue
		}

		mapped, ok := remapReference(field, fmt.Sprintf("%v", value), registry, results, object, sourceID)
		if !ok {
			return nil, true
		}
		out[field.Name] = mapped
	}
	return out, false
}
