package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/models"
)

// compositeRecord wraps one record with the attributes envelope the
// composite collections endpoints require.
type compositeRecord struct {
	Attributes struct {
		Type string `json:"type"`
	} `json:"attributes"`
	Fields models.SObject `json:"-"`
}

// MarshalJSON flattens the record fields next to the attributes key.
func (r compositeRecord) MarshalJSON() ([]byte, error) {
	flat := make(models.SObject, len(r.Fields)+1)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat["attributes"] = map[string]string{"type": r.Attributes.Type}
	return json.Marshal(flat)
}

func wrapRecords(objectName string, records []models.SObject) []compositeRecord {
	out := make([]compositeRecord, len(records))
	for i, rec := range records {
		out[i].Attributes.Type = objectName
		out[i].Fields = rec
	}
	return out
}

// compositeRequest is the payload of a collections write. AllOrNone stays
// false: per-record failures are reported, not rolled back.
type compositeRequest struct {
	AllOrNone bool              `json:"allOrNone"`
	Records   []compositeRecord `json:"records"`
}

// Create bulk-inserts records in sub-batches of the platform's collection
// limit, returning one SaveResult per input record.
func (c *Connection) Create(ctx context.Context, objectName string, records []models.SObject) ([]ports.SaveResult, error) {
	return c.writeCollections(ctx, http.MethodPost, c.restPath("composite", "sobjects"), objectName, records)
}

// Update bulk-updates records carrying their Id field.
func (c *Connection) Update(ctx context.Context, objectName string, records []models.SObject) ([]ports.SaveResult, error) {
	return c.writeCollections(ctx, http.MethodPatch, c.restPath("composite", "sobjects"), objectName, records)
}

// Upsert bulk-upserts records matched on the external-id field.
func (c *Connection) Upsert(ctx context.Context, objectName string, records []models.SObject, externalIDField string) ([]ports.SaveResult, error) {
	rawURL := c.restPath("composite", "sobjects", objectName, externalIDField)
	return c.writeCollections(ctx, http.MethodPatch, rawURL, objectName, records)
}

func (c *Connection) writeCollections(ctx context.Context, method, rawURL, objectName string, records []models.SObject) ([]ports.SaveResult, error) {
	results := make([]ports.SaveResult, 0, len(records))
	for start := 0; start < len(records); start += constants.BatchSize {
		end := start + constants.BatchSize
		if end > len(records) {
			end = len(records)
		}

		payload := compositeRequest{
			AllOrNone: false,
			Records:   wrapRecords(objectName, records[start:end]),
		}
		var batch []ports.SaveResult
		if err := c.doJSON(ctx, method, rawURL, payload, &batch); err != nil {
			return nil, fmt.Errorf("collections write to %s: %w", objectName, err)
		}
		results = append(results, batch...)
	}
	return results, nil
}
