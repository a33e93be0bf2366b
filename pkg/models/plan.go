package models

// GrandchildPlan declares one grandchild tier: an object parented off a
// declared child via ParentLookupField on the grandchild.
type GrandchildPlan struct {
	ObjectName        string `yaml:"object"`
	ParentLookupField string `yaml:"parent_lookup_field"`
	ExternalIDField   string `yaml:"external_id_field,omitempty"`
}

// ChildPlan declares one child tier of the root object.
type ChildPlan struct {
	ObjectName        string           `yaml:"object"`
	ParentLookupField string           `yaml:"parent_lookup_field"`
	ExternalIDField   string           `yaml:"external_id_field,omitempty"`
	Grandchildren     []GrandchildPlan `yaml:"grandchildren,omitempty"`
}

// SeedPlan is the full operator input for one pipeline run. The CLI (or a
// YAML plan file) produces it; the pipeline driver only reads it.
type SeedPlan struct {
	RootObject          string      `yaml:"object"`
	RootExternalIDField string      `yaml:"external_id_field,omitempty"`
	Children            []ChildPlan `yaml:"children,omitempty"`

	IncludeTasks  bool `yaml:"include_tasks,omitempty"`
	IncludeEvents bool `yaml:"include_events,omitempty"`
	IncludeFiles  bool `yaml:"include_files,omitempty"`
	DryRun        bool `yaml:"dry_run,omitempty"`

	// RecordCount limits the root query. constants.AllRecords means no limit.
	RecordCount int `yaml:"count,omitempty"`

	// Where is an optional SOQL WHERE fragment applied to the root query.
	Where string `yaml:"where,omitempty"`

	// Filter is an optional client-side expression evaluated per queried
	// root record; records it rejects are not seeded.
	Filter string `yaml:"filter,omitempty"`

	// ShouldAbort is the cooperative cancellation probe, consulted at
	// stage boundaries only.
	ShouldAbort func() bool `yaml:"-"`
}

// Aborted reports the cancellation probe, tolerating a nil probe.
func (p *SeedPlan) Aborted() bool {
	return p.ShouldAbort != nil && p.ShouldAbort()
}
