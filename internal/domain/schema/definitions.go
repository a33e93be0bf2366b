package schema

// FieldType is the semantic type reported by a describe call.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeInt       FieldType = "int"
	FieldTypeDouble    FieldType = "double"
	FieldTypeCurrency  FieldType = "currency"
	FieldTypeDate      FieldType = "date"
	FieldTypeDateTime  FieldType = "datetime"
	FieldTypePicklist  FieldType = "picklist"
	FieldTypeTextArea  FieldType = "textarea"
	FieldTypeEmail     FieldType = "email"
	FieldTypePhone     FieldType = "phone"
	FieldTypeURL       FieldType = "url"
	FieldTypeReference FieldType = "reference"
	FieldTypeAddress   FieldType = "address"
	FieldTypeLocation  FieldType = "location"
)

// CompoundTypes are field types whose values cannot be written directly;
// the platform derives them from their component fields.
var CompoundTypes = map[FieldType]bool{
	FieldTypeAddress:  true,
	FieldTypeLocation: true,
}

// FieldDescriptor represents field-level schema for one object field.
type FieldDescriptor struct {
	Name             string    `json:"name"`
	Label            string    `json:"label,omitempty"`
	Type             FieldType `json:"type"`
	Writable         bool      `json:"writable,omitempty"`
	Nullable         bool      `json:"nullable,omitempty"`
	IsExternalID     bool      `json:"is_external_id,omitempty"`
	ReferenceTargets []string  `json:"reference_targets,omitempty"` // Polymorphic if len > 1
}

// IsReference reports whether the field is a lookup into other objects.
func (f FieldDescriptor) IsReference() bool {
	return f.Type == FieldTypeReference && len(f.ReferenceTargets) > 0
}

// IsPolymorphic reports whether the field can point at more than one
// object type.
func (f FieldDescriptor) IsPolymorphic() bool {
	return len(f.ReferenceTargets) > 1
}

// ChildRelationship describes a child object reachable from a parent via
// a lookup field on the child.
type ChildRelationship struct {
	ChildObject   string `json:"child_object"`
	FieldName     string `json:"field_name"`
	CascadeDelete bool   `json:"cascade_delete,omitempty"`
}

// GrandchildRelationship is a ChildRelationship discovered one tier down,
// annotated with the child object it hangs off.
type GrandchildRelationship struct {
	ChildRelationship
	ParentChildObject string `json:"parent_child_object"`
}

// ObjectDescriptor represents object-level schema: every field plus the
// enumerable child relationships. Fetched on demand and cached per run.
type ObjectDescriptor struct {
	Name               string              `json:"name"`
	Label              string              `json:"label,omitempty"`
	Fields             []FieldDescriptor   `json:"fields"`
	ChildRelationships []ChildRelationship `json:"child_relationships,omitempty"`
}

// FieldByName returns the descriptor for the named field, or nil.
func (d *ObjectDescriptor) FieldByName(name string) *FieldDescriptor {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// WritableFieldSet returns the names of all writable fields.
func (d *ObjectDescriptor) WritableFieldSet() map[string]bool {
	set := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Writable {
			set[f.Name] = true
		}
	}
	return set
}
