package soql

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/constants"
	"github.com/sfseed/sfseed/pkg/models"
)

func TestEscapeLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Acme", "Acme"},
		{"single quote", "O'Brien", `O\'Brien`},
		{"backslash first", `a\'b`, `a\\\'b`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLiteral(tt.in))
		})
	}
}

func TestBuildProjection(t *testing.T) {
	got := BuildProjection([]string{"Name", "Id", "Name", "Industry"})
	assert.Equal(t, "Id, Name, Industry", got, "Id leads, duplicates collapse")

	got = BuildProjection([]string{"Name"}, "WhatId", "Name", "")
	assert.Equal(t, "Id, Name, WhatId", got)

	assert.Equal(t, "Id", BuildProjection(nil))
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name  string
		where string
		limit int
		want  string
	}{
		{"bare", "", constants.AllRecords, "SELECT Id, Name FROM Account"},
		{"with limit", "", 10, "SELECT Id, Name FROM Account LIMIT 10"},
		{"with where", "Industry = 'Banking'", constants.AllRecords,
			"SELECT Id, Name FROM Account WHERE Industry = 'Banking'"},
		{"where and limit", " Industry = 'Banking' ", 5,
			"SELECT Id, Name FROM Account WHERE Industry = 'Banking' LIMIT 5"},
		{"zero limit omitted", "", 0, "SELECT Id, Name FROM Account"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery("Id, Name", "Account", tt.where, tt.limit))
		})
	}
}

func TestInClause(t *testing.T) {
	got := InClause("Id", []string{"001a", "O'Brien"})
	assert.Equal(t, `Id IN ('001a', 'O\'Brien')`, got)
}

func TestChunk(t *testing.T) {
	chunks := Chunk([]string{"a", "b", "c", "d", "e"}, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b"}, chunks[0])
	assert.Equal(t, []string{"e"}, chunks[2])

	assert.Nil(t, Chunk(nil, 2))
}

// pagedConn serves a fixed sequence of query pages.
type pagedConn struct {
	pages   []*ports.QueryPage
	next    int
	queries []string
}

func (c *pagedConn) Query(ctx context.Context, soql string) (*ports.QueryPage, error) {
	c.queries = append(c.queries, soql)
	return c.serve()
}

func (c *pagedConn) QueryMore(ctx context.Context, nextRecordsURL string) (*ports.QueryPage, error) {
	return c.serve()
}

func (c *pagedConn) serve() (*ports.QueryPage, error) {
	if c.next >= len(c.pages) {
		return nil, fmt.Errorf("no more pages")
	}
	page := c.pages[c.next]
	c.next++
	return page, nil
}

func (c *pagedConn) DescribeGlobal(context.Context) ([]ports.GlobalObject, error) { return nil, nil }
func (c *pagedConn) Describe(context.Context, string) (*schema.ObjectDescriptor, error) {
	return nil, nil
}
func (c *pagedConn) Create(context.Context, string, []models.SObject) ([]ports.SaveResult, error) {
	return nil, nil
}
func (c *pagedConn) Update(context.Context, string, []models.SObject) ([]ports.SaveResult, error) {
	return nil, nil
}
func (c *pagedConn) Upsert(context.Context, string, []models.SObject, string) ([]ports.SaveResult, error) {
	return nil, nil
}
func (c *pagedConn) InstanceURL() string { return "https://test.example" }
func (c *pagedConn) AccessToken() string { return "tok" }
func (c *pagedConn) APIVersion() string  { return "59.0" }

func TestQueryAllFollowsPagination(t *testing.T) {
	conn := &pagedConn{pages: []*ports.QueryPage{
		{Records: []models.SObject{{"Id": "1"}, {"Id": "2"}}, Done: false, NextRecordsURL: "/next/1"},
		{Records: []models.SObject{{"Id": "3"}}, Done: true},
	}}

	records, err := QueryAll(context.Background(), conn, "SELECT Id FROM Account")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "3", records[2].GetString("Id"))
}

func TestQueryAllChunkedSplitsValues(t *testing.T) {
	values := make([]string, constants.ChunkSize+1)
	for i := range values {
		values[i] = fmt.Sprintf("001%04d", i)
	}

	conn := &pagedConn{pages: []*ports.QueryPage{
		{Records: []models.SObject{{"Id": "a"}}, Done: true},
		{Records: []models.SObject{{"Id": "b"}}, Done: true},
	}}

	records, err := QueryAllChunked(context.Background(), conn, values, func(chunk []string) string {
		return BuildQuery("Id", "Account", InClause("Id", chunk), constants.AllRecords)
	})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	require.Len(t, conn.queries, 2, "one query per chunk")
}
