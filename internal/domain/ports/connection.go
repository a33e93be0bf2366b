package ports

import (
	"context"

	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/models"
)

// GlobalObject is one entry of the org-wide object list.
type GlobalObject struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	KeyPrefix  string `json:"keyPrefix"`
	Queryable  bool   `json:"queryable"`
	Createable bool   `json:"createable"`
}

// QueryPage is one page of query results. When Done is false,
// NextRecordsURL points at the next page.
type QueryPage struct {
	Records        []models.SObject `json:"records"`
	Done           bool             `json:"done"`
	NextRecordsURL string           `json:"nextRecordsUrl,omitempty"`
	TotalSize      int              `json:"totalSize"`
}

// SaveError is one entry of a per-record bulk failure.
type SaveError struct {
	StatusCode string   `json:"statusCode"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"`
}

// SaveResult is the per-record outcome of a bulk create, update, or
// upsert. Created distinguishes upsert inserts from upsert updates.
type SaveResult struct {
	ID      string      `json:"id,omitempty"`
	Success bool        `json:"success"`
	Created bool        `json:"created,omitempty"`
	Errors  []SaveError `json:"errors,omitempty"`
}

// Connection is the authenticated org handle the pipeline borrows.
// Implementations own pagination mechanics and auth headers; the pipeline
// never closes a connection or mutates its auth state.
type Connection interface {
	// DescribeGlobal lists every object in the org with its capability flags.
	DescribeGlobal(ctx context.Context) ([]GlobalObject, error)

	// Describe returns the full schema of one object.
	Describe(ctx context.Context, objectName string) (*schema.ObjectDescriptor, error)

	// Query runs a SOQL statement and returns the first page.
	Query(ctx context.Context, soql string) (*QueryPage, error)

	// QueryMore follows a pagination cursor returned by Query.
	QueryMore(ctx context.Context, nextRecordsURL string) (*QueryPage, error)

	// Create bulk-inserts records, one SaveResult per input record.
	Create(ctx context.Context, objectName string, records []models.SObject) ([]SaveResult, error)

	// Update bulk-updates records carrying their Id field.
	Update(ctx context.Context, objectName string, records []models.SObject) ([]SaveResult, error)

	// Upsert bulk-upserts records matched on the external-id field.
	Upsert(ctx context.Context, objectName string, records []models.SObject, externalIDField string) ([]SaveResult, error)

	// InstanceURL, AccessToken and APIVersion are exposed for the
	// authenticated binary download in the file stage.
	InstanceURL() string
	AccessToken() string
	APIVersion() string
}
