package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/pkg/models"
)

func TestBatchInsertRegistersAndCounts(t *testing.T) {
	source := newFakeOrg("https://src.example")
	target := newFakeOrg("https://tgt.example")
	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})

	records := []models.SObject{{"Name": "One"}, {"Name": "Two"}}
	res := &models.ObjectResult{Object: "Account"}

	err := p.batchInsert(context.Background(), "Account", records, []string{"001a", "001b"}, res)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 2, p.registry.Count("Account"))
	assert.Len(t, target.created["Account"], 2)

	_, ok := p.registry.Lookup("Account", "001a")
	assert.True(t, ok)
}

func TestBatchInsertRecordsPerRecordFailures(t *testing.T) {
	source := newFakeOrg("https://src.example")
	target := newFakeOrg("https://tgt.example")
	target.createHook = func(object string, records []models.SObject) ([]ports.SaveResult, error) {
		out := make([]ports.SaveResult, len(records))
		for i := range records {
			if i == 0 {
				out[i] = ports.SaveResult{Success: false, Errors: []ports.SaveError{
					{StatusCode: "REQUIRED_FIELD_MISSING", Message: "Name is required", Fields: []string{"Name"}},
				}}
				continue
			}
			out[i] = ports.SaveResult{ID: target.newTargetID(), Success: true, Created: true}
		}
		return out, nil
	}
	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})

	res := &models.ObjectResult{Object: "Account"}
	err := p.batchInsert(context.Background(), "Account",
		[]models.SObject{{"Name": nil}, {"Name": "Ok"}}, []string{"001bad", "001ok"}, res)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, p.results.Errors, 1)
	assert.Equal(t, "001bad", p.results.Errors[0].SourceID)
	assert.Equal(t, models.StageInsert, p.results.Errors[0].Stage)
	assert.Equal(t, "REQUIRED_FIELD_MISSING: Name is required [Name]", p.results.Errors[0].Message)

	_, ok := p.registry.Lookup("Account", "001bad")
	assert.False(t, ok, "failed records get no identity mapping")
}

func TestBatchInsertDryRunWritesNothing(t *testing.T) {
	source := newFakeOrg("https://src.example")
	target := newFakeOrg("https://tgt.example")
	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account", DryRun: true})

	res := &models.ObjectResult{Object: "Account"}
	err := p.batchInsert(context.Background(), "Account",
		[]models.SObject{{"Name": "One"}}, []string{"001a"}, res)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Empty(t, target.created["Account"])
	assert.Equal(t, 0, p.registry.Count("Account"))
}

func TestBatchUpsertCountsCreatedAndUpdated(t *testing.T) {
	source := newFakeOrg("https://src.example")
	target := newFakeOrg("https://tgt.example")
	target.upsertHook = func(object string, records []models.SObject, ext string) ([]ports.SaveResult, error) {
		return []ports.SaveResult{
			{ID: "tgt-created", Success: true, Created: true},
			{ID: "tgt-updated", Success: true, Created: false},
		}, nil
	}
	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})

	res := &models.ObjectResult{Object: "Account"}
	records := []models.SObject{
		{"Name": "One", "Ext__c": "A"},
		{"Name": "Two", "Ext__c": "B"},
	}
	err := p.batchUpsert(context.Background(), "Account", records, []string{"001a", "001b"}, "Ext__c", res)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, p.registry.Count("Account"))
}

func TestBatchUpsertBackfillsMissingIDs(t *testing.T) {
	source := newFakeOrg("https://src.example")
	target := newFakeOrg("https://tgt.example")
	// Updated records come back acknowledged but without an id.
	target.upsertHook = func(object string, records []models.SObject, ext string) ([]ports.SaveResult, error) {
		return []ports.SaveResult{{Success: true, Created: false}}, nil
	}
	target.stubQuery("Ext__c IN ('A')", models.SObject{"Id": "tgt-found", "Ext__c": "A"})

	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})
	res := &models.ObjectResult{Object: "Account"}

	err := p.batchUpsert(context.Background(), "Account",
		[]models.SObject{{"Name": "One", "Ext__c": "A"}}, []string{"001a"}, "Ext__c", res)
	require.NoError(t, err)

	got, ok := p.registry.Lookup("Account", "001a")
	require.True(t, ok)
	assert.Equal(t, "tgt-found", got)
	assert.Equal(t, 1, res.Updated)
}

func TestBatchUpsertDuplicateExternalIDValues(t *testing.T) {
	source := newFakeOrg("https://src.example")
	target := newFakeOrg("https://tgt.example")
	target.upsertHook = func(object string, records []models.SObject, ext string) ([]ports.SaveResult, error) {
		return []ports.SaveResult{{Success: true, Created: false}}, nil
	}
	// Two target rows carry the same external-id value.
	target.stubQuery("Ext__c IN ('A')",
		models.SObject{"Id": "tgt-1", "Ext__c": "A"},
		models.SObject{"Id": "tgt-2", "Ext__c": "A"})

	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})
	res := &models.ObjectResult{Object: "Account"}

	err := p.batchUpsert(context.Background(), "Account",
		[]models.SObject{{"Name": "One", "Ext__c": "A"}}, []string{"001a"}, "Ext__c", res)
	require.NoError(t, err)

	_, ok := p.registry.Lookup("Account", "001a")
	assert.False(t, ok, "ambiguous matches must not register a mapping")
	require.Len(t, p.results.Errors, 1)
	assert.Equal(t, models.StageUpsert, p.results.Errors[0].Stage)
	assert.Contains(t, p.results.Errors[0].Message, "not unique")
}

func TestBatchUpdateLogsFailuresUnderStage(t *testing.T) {
	source := newFakeOrg("https://src.example")
	target := newFakeOrg("https://tgt.example")
	target.updateHook = func(object string, records []models.SObject) ([]ports.SaveResult, error) {
		return []ports.SaveResult{{Success: false, Errors: []ports.SaveError{
			{StatusCode: "ENTITY_IS_LOCKED", Message: "locked"},
		}}}, nil
	}
	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})
	res := &models.ObjectResult{Object: "Account"}

	err := p.batchUpdate(context.Background(), "Account",
		[]models.SObject{{"Id": "tgt-1", "ParentId": "tgt-2"}}, []string{"001a"},
		models.StageSelfRefUpdate, res)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Failed)
	require.Len(t, p.results.Errors, 1)
	assert.Equal(t, models.StageSelfRefUpdate, p.results.Errors[0].Stage)
}
