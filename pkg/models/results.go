package models

// Seed error stages, surfaced in SeedError.Stage.
const (
	StageRemap         = "remap"
	StageInsert        = "insert"
	StageUpsert        = "upsert"
	StageSelfRefUpdate = "self-ref update"
	StageUpload        = "upload"
	StageLink          = "link"
)

// SeedError records one per-record failure. SourceID may be empty for
// failures not tied to a single record.
type SeedError struct {
	Object   string `json:"object"`
	SourceID string `json:"source_id,omitempty"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
}

// ObjectResult carries per-object counters for one tier.
type ObjectResult struct {
	Object   string `json:"object"`
	Queried  int    `json:"queried"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
}

// FileSummary summarizes the binary-file transfer stage.
type FileSummary struct {
	Documents  int   `json:"documents"`
	Versions   int   `json:"versions"`
	Links      int   `json:"links"`
	Failed     int   `json:"failed"`
	TotalBytes int64 `json:"total_bytes"`
}

// SeedResults is the accumulated outcome of one pipeline run. It lives
// exactly for one driver invocation. Tiers a run never reached stay nil.
type SeedResults struct {
	Core          *ObjectResult   `json:"core,omitempty"`
	Dependencies  []*ObjectResult `json:"dependencies,omitempty"`
	Children      []*ObjectResult `json:"children,omitempty"`
	Grandchildren []*ObjectResult `json:"grandchildren,omitempty"`
	Tasks         *ObjectResult   `json:"tasks,omitempty"`
	Events        *ObjectResult   `json:"events,omitempty"`
	Files         *FileSummary    `json:"files,omitempty"`
	Errors        []SeedError     `json:"errors,omitempty"`
}

// AddError appends one error to the run log.
func (r *SeedResults) AddError(object, sourceID, stage, message string) {
	r.Errors = append(r.Errors, SeedError{
		Object:   object,
		SourceID: sourceID,
		Stage:    stage,
		Message:  message,
	})
}

// AllObjectResults returns every populated per-object counter in pipeline
// order, for summary rendering.
func (r *SeedResults) AllObjectResults() []*ObjectResult {
	out := make([]*ObjectResult, 0, 4+len(r.Dependencies)+len(r.Children)+len(r.Grandchildren))
	if r.Core != nil {
		out = append(out, r.Core)
	}
	out = append(out, r.Dependencies...)
	out = append(out, r.Children...)
	out = append(out, r.Grandchildren...)
	if r.Tasks != nil {
		out = append(out, r.Tasks)
	}
	if r.Events != nil {
		out = append(out, r.Events)
	}
	return out
}
