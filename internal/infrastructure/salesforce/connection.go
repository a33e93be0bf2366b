// Package salesforce implements ports.Connection against the org REST
// API: describe, paginated SOQL queries, and the composite collections
// endpoints for bulk create, update, and upsert.
package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/constants"
	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
	"github.com/sfseed/sfseed/pkg/models"
)

// Connection is an authenticated handle to one org.
type Connection struct {
	instanceURL string
	accessToken string
	apiVersion  string
	client      *http.Client
}

// Option configures a Connection.
type Option func(*Connection)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connection) { c.client = client }
}

// NewConnection creates a connection from an instance URL and a bearer
// token. The token is borrowed: the connection never refreshes it.
func NewConnection(instanceURL, accessToken, apiVersion string, opts ...Option) *Connection {
	if apiVersion == "" {
		apiVersion = constants.DefaultAPIVersion
	}
	c := &Connection{
		instanceURL: strings.TrimRight(instanceURL, "/"),
		accessToken: accessToken,
		apiVersion:  apiVersion,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connection) InstanceURL() string { return c.instanceURL }
func (c *Connection) AccessToken() string { return c.accessToken }
func (c *Connection) APIVersion() string  { return c.apiVersion }

// restPath builds an absolute URL under /services/data/v{version}.
func (c *Connection) restPath(parts ...string) string {
	return fmt.Sprintf("%s/services/data/v%s/%s", c.instanceURL, c.apiVersion, strings.Join(parts, "/"))
}

// doJSON performs one authenticated JSON round trip. A non-2xx response
// is decoded into an APIError.
func (c *Connection) doJSON(ctx context.Context, method, rawURL string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+c.accessToken)
	if payload != nil {
		req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeAPIError maps the API's error array shape onto an APIError.
func decodeAPIError(status int, raw []byte) error {
	var entries []struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(raw, &entries); err == nil && len(entries) > 0 {
		return pkgErrors.NewAPIError(status, entries[0].ErrorCode, entries[0].Message)
	}
	return pkgErrors.NewAPIError(status, "", strings.TrimSpace(string(raw)))
}

// DescribeGlobal lists every object with its capability flags.
func (c *Connection) DescribeGlobal(ctx context.Context) ([]ports.GlobalObject, error) {
	var out struct {
		Sobjects []ports.GlobalObject `json:"sobjects"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.restPath("sobjects"), nil, &out); err != nil {
		return nil, err
	}
	return out.Sobjects, nil
}

// describeField is the wire shape of one field in a describe response.
type describeField struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Createable  bool     `json:"createable"`
	Nillable    bool     `json:"nillable"`
	ExternalID  bool     `json:"externalId"`
	ReferenceTo []string `json:"referenceTo"`
}

// describeChild is the wire shape of one child relationship.
type describeChild struct {
	ChildSObject  string `json:"childSObject"`
	Field         string `json:"field"`
	CascadeDelete bool   `json:"cascadeDelete"`
}

// Describe fetches one object's schema and translates it into the
// domain descriptor.
func (c *Connection) Describe(ctx context.Context, objectName string) (*schema.ObjectDescriptor, error) {
	var out struct {
		Name               string          `json:"name"`
		Label              string          `json:"label"`
		Fields             []describeField `json:"fields"`
		ChildRelationships []describeChild `json:"childRelationships"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.restPath("sobjects", objectName, "describe"), nil, &out); err != nil {
		return nil, err
	}

	desc := &schema.ObjectDescriptor{
		Name:   out.Name,
		Label:  out.Label,
		Fields: make([]schema.FieldDescriptor, 0, len(out.Fields)),
	}
	for _, f := range out.Fields {
		desc.Fields = append(desc.Fields, schema.FieldDescriptor{
			Name:             f.Name,
			Label:            f.Label,
			Type:             schema.FieldType(f.Type),
			Writable:         f.Createable,
			Nullable:         f.Nillable,
			IsExternalID:     f.ExternalID,
			ReferenceTargets: f.ReferenceTo,
		})
	}
	for _, rel := range out.ChildRelationships {
		desc.ChildRelationships = append(desc.ChildRelationships, schema.ChildRelationship{
			ChildObject:   rel.ChildSObject,
			FieldName:     rel.Field,
			CascadeDelete: rel.CascadeDelete,
		})
	}
	return desc, nil
}

// queryResponse is the wire shape of a query page.
type queryResponse struct {
	Records        []models.SObject `json:"records"`
	Done           bool             `json:"done"`
	NextRecordsURL string           `json:"nextRecordsUrl"`
	TotalSize      int              `json:"totalSize"`
}

func (r *queryResponse) toPage() *ports.QueryPage {
	records := make([]models.SObject, len(r.Records))
	for i, rec := range r.Records {
		// The API decorates records with an attributes envelope that
		// must not leak into prepared writes.
		delete(rec, "attributes")
		records[i] = rec
	}
	return &ports.QueryPage{
		Records:        records,
		Done:           r.Done,
		NextRecordsURL: r.NextRecordsURL,
		TotalSize:      r.TotalSize,
	}
}

// Query runs a SOQL statement and returns the first page.
func (c *Connection) Query(ctx context.Context, soql string) (*ports.QueryPage, error) {
	rawURL := c.restPath("query") + "?q=" + url.QueryEscape(soql)
	var out queryResponse
	if err := c.doJSON(ctx, http.MethodGet, rawURL, nil, &out); err != nil {
		return nil, err
	}
	return out.toPage(), nil
}

// QueryMore follows a pagination cursor. The API returns the cursor as a
// server-relative path.
func (c *Connection) QueryMore(ctx context.Context, nextRecordsURL string) (*ports.QueryPage, error) {
	rawURL := nextRecordsURL
	if strings.HasPrefix(rawURL, "/") {
		rawURL = c.instanceURL + rawURL
	}
	var out queryResponse
	if err := c.doJSON(ctx, http.MethodGet, rawURL, nil, &out); err != nil {
		return nil, err
	}
	return out.toPage(), nil
}
