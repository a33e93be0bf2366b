package services

import "sort"

// IdentityRegistry is the pipeline's central data structure: per object
// name, a mapping from source-org record id to the id of the record
// created in the target org.
//
// Invariants:
//   - a (object, sourceID) pair maps to at most one targetID per run
//   - entries are append-only, never removed or overwritten
//   - source ids are globally unique across object types (they carry a
//     3-character object prefix), so reverse lookup across the whole
//     registry is well-defined
type IdentityRegistry struct {
	byObject map[string]map[string]string
	order    map[string][]string // source ids in registration order
}

// NewIdentityRegistry creates an empty registry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		byObject: make(map[string]map[string]string),
		order:    make(map[string][]string),
	}
}

// Register records sourceID → targetID under object. Returns false when
// the pair already exists; the existing entry wins.
func (r *IdentityRegistry) Register(object, sourceID, targetID string) bool {
	if sourceID == "" || targetID == "" {
		return false
	}
	ids, ok := r.byObject[object]
	if !ok {
		ids = make(map[string]string)
		r.byObject[object] = ids
	}
	if _, exists := ids[sourceID]; exists {
		return false
	}
	ids[sourceID] = targetID
	r.order[object] = append(r.order[object], sourceID)
	return true
}

// Lookup resolves a source id within one object's map.
func (r *IdentityRegistry) Lookup(object, sourceID string) (string, bool) {
	targetID, ok := r.byObject[object][sourceID]
	return targetID, ok
}

// LookupAny resolves a source id across every object map. Used for
// polymorphic references, where the referenced object type is unknown.
func (r *IdentityRegistry) LookupAny(sourceID string) (string, bool) {
	for _, ids := range r.byObject {
		if targetID, ok := ids[sourceID]; ok {
			return targetID, true
		}
	}
	return "", false
}

// Has reports whether any entry exists for the object.
func (r *IdentityRegistry) Has(object string) bool {
	return len(r.byObject[object]) > 0
}

// Count returns the number of entries for the object.
func (r *IdentityRegistry) Count(object string) int {
	return len(r.byObject[object])
}

// SourceIDs returns the object's source ids in registration order.
func (r *IdentityRegistry) SourceIDs(object string) []string {
	ids := r.order[object]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// AllSourceIDs returns every registered source id across all objects.
// Objects are visited in sorted name order so chunked queries built from
// the result are deterministic.
func (r *IdentityRegistry) AllSourceIDs() []string {
	objects := make([]string, 0, len(r.order))
	for object := range r.order {
		objects = append(objects, object)
	}
	sort.Strings(objects)

	var out []string
	for _, object := range objects {
		out = append(out, r.order[object]...)
	}
	return out
}

// Objects returns the object names holding at least one entry.
func (r *IdentityRegistry) Objects() []string {
	out := make([]string, 0, len(r.byObject))
	for object := range r.byObject {
		out = append(out, object)
	}
	return out
}
