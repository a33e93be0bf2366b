package soql

import (
	"context"
	"fmt"
	"strings"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/models"
)

// EscapeLiteral backslash-escapes single quotes so operator- or
// record-derived values are safe inside a quoted SOQL literal.
func EscapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

// BuildProjection joins field names into a SELECT projection. The result
// is deduplicated, always includes Id, and preserves first-seen order.
func BuildProjection(fields []string, extras ...string) string {
	out := make([]string, 0, len(fields)+len(extras)+1)
	seen := map[string]bool{}

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	add(constants.FieldID)
	for _, f := range fields {
		add(f)
	}
	for _, f := range extras {
		add(f)
	}
	return strings.Join(out, ", ")
}

// BuildQuery composes SELECT ... FROM object [WHERE ...] [LIMIT n].
// A limit of constants.AllRecords (or any non-positive value) omits the
// LIMIT clause.
func BuildQuery(projection, object, where string, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, object)
	if strings.TrimSpace(where) != "" {
		fmt.Fprintf(&sb, " WHERE %s", strings.TrimSpace(where))
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}
	return sb.String()
}

// InClause renders field IN ('v1', 'v2', ...) with escaped literals.
func InClause(field string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("'%s'", EscapeLiteral(v))
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(quoted, ", "))
}

// Chunk splits values into fixed-size groups, preserving order.
func Chunk(values []string, size int) [][]string {
	if size <= 0 {
		size = constants.ChunkSize
	}
	var chunks [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}

// QueryAll executes a query and follows pagination cursors until the
// result set is exhausted.
func QueryAll(ctx context.Context, conn ports.Connection, query string) ([]models.SObject, error) {
	page, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	records := page.Records
	for !page.Done && page.NextRecordsURL != "" {
		page, err = conn.QueryMore(ctx, page.NextRecordsURL)
		if err != nil {
			return nil, fmt.Errorf("query pagination failed: %w", err)
		}
		records = append(records, page.Records...)
	}
	return records, nil
}

// QueryAllChunked splits values into IN-clause sized chunks, invokes
// buildQuery per chunk, and concatenates the results. The callback
// typically embeds InClause(field, chunk) in its WHERE clause.
func QueryAllChunked(ctx context.Context, conn ports.Connection, values []string, buildQuery func(chunk []string) string) ([]models.SObject, error) {
	var records []models.SObject
	for _, chunk := range Chunk(values, constants.ChunkSize) {
		page, err := QueryAll(ctx, conn, buildQuery(chunk))
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
	}
	return records, nil
}
