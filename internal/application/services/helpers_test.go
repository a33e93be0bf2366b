package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/models"
)

// queryStub answers any query containing its substring.
type queryStub struct {
	contains string
	records  []models.SObject
}

// fakeOrg is an in-memory ports.Connection. Writes succeed by default and
// mint target ids; hooks override per-test behavior.
type fakeOrg struct {
	url     string
	objects map[string]*schema.ObjectDescriptor
	global  []ports.GlobalObject
	queries []queryStub

	queriesRun []string
	created    map[string][]models.SObject
	updated    map[string][]models.SObject
	upserted   map[string][]models.SObject

	describeCalls int
	seq           int

	createHook func(object string, records []models.SObject) ([]ports.SaveResult, error)
	updateHook func(object string, records []models.SObject) ([]ports.SaveResult, error)
	upsertHook func(object string, records []models.SObject, extField string) ([]ports.SaveResult, error)
}

func newFakeOrg(url string) *fakeOrg {
	return &fakeOrg{
		url:      url,
		objects:  make(map[string]*schema.ObjectDescriptor),
		created:  make(map[string][]models.SObject),
		updated:  make(map[string][]models.SObject),
		upserted: make(map[string][]models.SObject),
	}
}

func (f *fakeOrg) addObject(desc *schema.ObjectDescriptor) {
	f.objects[desc.Name] = desc
	f.global = append(f.global, ports.GlobalObject{
		Name: desc.Name, Label: desc.Label, Queryable: true, Createable: true,
	})
}

func (f *fakeOrg) stubQuery(contains string, records ...models.SObject) {
	f.queries = append(f.queries, queryStub{contains: contains, records: records})
}

func (f *fakeOrg) newTargetID() string {
	f.seq++
	return fmt.Sprintf("tgt-%03d-%s", f.seq, uuid.NewString()[:8])
}

func (f *fakeOrg) DescribeGlobal(ctx context.Context) ([]ports.GlobalObject, error) {
	return f.global, nil
}

func (f *fakeOrg) Describe(ctx context.Context, objectName string) (*schema.ObjectDescriptor, error) {
	f.describeCalls++
	desc, ok := f.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("no such object %s", objectName)
	}
	return desc, nil
}

func (f *fakeOrg) Query(ctx context.Context, soql string) (*ports.QueryPage, error) {
	f.queriesRun = append(f.queriesRun, soql)
	for _, stub := range f.queries {
		if strings.Contains(soql, stub.contains) {
			return &ports.QueryPage{Records: cloneRecords(stub.records), Done: true, TotalSize: len(stub.records)}, nil
		}
	}
	return &ports.QueryPage{Done: true}, nil
}

func (f *fakeOrg) QueryMore(ctx context.Context, nextRecordsURL string) (*ports.QueryPage, error) {
	return &ports.QueryPage{Done: true}, nil
}

func (f *fakeOrg) Create(ctx context.Context, objectName string, records []models.SObject) ([]ports.SaveResult, error) {
	if f.createHook != nil {
		return f.createHook(objectName, records)
	}
	f.created[objectName] = append(f.created[objectName], records...)
	out := make([]ports.SaveResult, len(records))
	for i := range records {
		out[i] = ports.SaveResult{ID: f.newTargetID(), Success: true, Created: true}
	}
	return out, nil
}

func (f *fakeOrg) Update(ctx context.Context, objectName string, records []models.SObject) ([]ports.SaveResult, error) {
	if f.updateHook != nil {
		return f.updateHook(objectName, records)
	}
	f.updated[objectName] = append(f.updated[objectName], records...)
	out := make([]ports.SaveResult, len(records))
	for i := range records {
		out[i] = ports.SaveResult{ID: records[i].GetString("Id"), Success: true}
	}
	return out, nil
}

func (f *fakeOrg) Upsert(ctx context.Context, objectName string, records []models.SObject, externalIDField string) ([]ports.SaveResult, error) {
	if f.upsertHook != nil {
		return f.upsertHook(objectName, records, externalIDField)
	}
	f.upserted[objectName] = append(f.upserted[objectName], records...)
	out := make([]ports.SaveResult, len(records))
	for i := range records {
		out[i] = ports.SaveResult{ID: f.newTargetID(), Success: true, Created: true}
	}
	return out, nil
}

func (f *fakeOrg) InstanceURL() string { return f.url }
func (f *fakeOrg) AccessToken() string { return "fake-token" }
func (f *fakeOrg) APIVersion() string  { return "59.0" }

func cloneRecords(records []models.SObject) []models.SObject {
	out := make([]models.SObject, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

// nopLogger satisfies ports.Logger for tests.
type nopLogger struct{}

func (nopLogger) Log(string)             {}
func (nopLogger) Warn(string)            {}
func (nopLogger) StartSpinner(string)    {}
func (nopLogger) UpdateSpinner(string)   {}
func (nopLogger) StopSpinner(string)     {}
func (nopLogger) StopSpinnerFail(string) {}

// Common descriptors used across pipeline tests.

func accountDescriptor() *schema.ObjectDescriptor {
	return &schema.ObjectDescriptor{
		Name:  "Account",
		Label: "Account",
		Fields: []schema.FieldDescriptor{
			{Name: "Id", Type: schema.FieldTypeString},
			{Name: "Name", Type: schema.FieldTypeString, Writable: true, Nullable: false},
			{Name: "Industry", Type: schema.FieldTypePicklist, Writable: true, Nullable: true},
			{Name: "ParentId", Type: schema.FieldTypeReference, Writable: true, Nullable: true,
				ReferenceTargets: []string{"Account"}},
			{Name: "OwnerId", Type: schema.FieldTypeReference, Writable: true, Nullable: false,
				ReferenceTargets: []string{"User"}},
			{Name: "CreatedDate", Type: schema.FieldTypeDateTime, Writable: true},
			{Name: "BillingAddress", Type: schema.FieldTypeAddress, Writable: true},
		},
		ChildRelationships: []schema.ChildRelationship{
			{ChildObject: "Contact", FieldName: "AccountId"},
			{ChildObject: "Case", FieldName: "AccountId"},
		},
	}
}

func contactDescriptor() *schema.ObjectDescriptor {
	return &schema.ObjectDescriptor{
		Name:  "Contact",
		Label: "Contact",
		Fields: []schema.FieldDescriptor{
			{Name: "Id", Type: schema.FieldTypeString},
			{Name: "LastName", Type: schema.FieldTypeString, Writable: true},
			{Name: "Email", Type: schema.FieldTypeEmail, Writable: true, Nullable: true},
			{Name: "AccountId", Type: schema.FieldTypeReference, Writable: true, Nullable: true,
				ReferenceTargets: []string{"Account"}},
		},
	}
}

func taskDescriptor() *schema.ObjectDescriptor {
	return &schema.ObjectDescriptor{
		Name:  "Task",
		Label: "Task",
		Fields: []schema.FieldDescriptor{
			{Name: "Id", Type: schema.FieldTypeString},
			{Name: "Subject", Type: schema.FieldTypeString, Writable: true, Nullable: true},
			{Name: "WhatId", Type: schema.FieldTypeReference, Writable: true, Nullable: true,
				ReferenceTargets: []string{"Account", "Opportunity"}},
			{Name: "WhoId", Type: schema.FieldTypeReference, Writable: true, Nullable: true,
				ReferenceTargets: []string{"Contact", "Lead"}},
		},
	}
}

// newTestPipeline wires a pipeline over two fake orgs with per-run state
// initialized, so stage methods can be exercised directly.
func newTestPipeline(source, target *fakeOrg, plan models.SeedPlan) *SeedPipeline {
	p := NewSeedPipeline(source, target, nopLogger{}, nil)
	p.plan = plan
	p.registry = NewIdentityRegistry()
	p.results = &models.SeedResults{}
	return p
}
