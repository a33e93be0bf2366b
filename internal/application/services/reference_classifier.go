package services

import (
	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/constants"
)

// ReferenceBucket is the classifier's decision for one reference field.
type ReferenceBucket int

const (
	// BucketSystem — target is a platform/config object whose ids are
	// org-local. Strip to null or omit.
	BucketSystem ReferenceBucket = iota
	// BucketSelf — target is the object itself; resolved after insert
	// because parents may sit in the same batch.
	BucketSelf
	// BucketInScope — target has (or will have) registry entries; remap.
	BucketInScope
	// BucketDataDependency — a single non-system target outside the
	// declared scope; pulled in shallowly before the object is written.
	BucketDataDependency
)

// RootClassification is the per-field bucketing of the core object's
// writable reference fields.
type RootClassification struct {
	SelfRefFields []string          // ordered, for the post-insert pass
	System        map[string]bool   // field → strip
	DataDeps      map[string]string // field → dependency object
}

// IsSelfRef reports whether the field was bucketed as a self-reference.
func (c *RootClassification) IsSelfRef(field string) bool {
	for _, f := range c.SelfRefFields {
		if f == field {
			return true
		}
	}
	return false
}

// DropDataDep demotes a data-dependency field to a stripped system
// reference. Used when the dependency pull fails: the core's own records
// then strip the field instead of remapping it.
func (c *RootClassification) DropDataDep(field string) {
	delete(c.DataDeps, field)
	c.System[field] = true
}

// ClassifyRootReferences buckets every writable reference field of the
// core object. Rules, in order:
//  1. targets == [root]                      → self-reference
//  2. every target is a system lookup object → system
//  3. targets contain root (polymorphic)     → self-reference
//  4. exactly one non-system target          → data dependency
//  5. several non-system targets             → system (strip — safer
//     than guessing which tier the value points into)
func ClassifyRootReferences(desc *schema.ObjectDescriptor, rootObject string) *RootClassification {
	cls := &RootClassification{
		System:   make(map[string]bool),
		DataDeps: make(map[string]string),
	}

	for _, field := range desc.Fields {
		if !field.Writable || !field.IsReference() {
			continue
		}

		targets := field.ReferenceTargets

		if len(targets) == 1 && targets[0] == rootObject {
			cls.SelfRefFields = append(cls.SelfRefFields, field.Name)
			continue
		}

		nonSystem := make([]string, 0, len(targets))
		containsRoot := false
		for _, t := range targets {
			if t == rootObject {
				containsRoot = true
			}
			if !constants.SystemLookupObjects[t] {
				nonSystem = append(nonSystem, t)
			}
		}

		switch {
		case len(nonSystem) == 0:
			cls.System[field.Name] = true
		case containsRoot:
			cls.SelfRefFields = append(cls.SelfRefFields, field.Name)
		case len(nonSystem) == 1:
			cls.DataDeps[field.Name] = nonSystem[0]
		default:
			cls.System[field.Name] = true
		}
	}
	return cls
}

// ClassifyTierReference buckets one reference field of a non-root tier:
// in-scope when any target already has registry entries, otherwise a
// stripped system reference.
func ClassifyTierReference(field schema.FieldDescriptor, registry *IdentityRegistry) ReferenceBucket {
	for _, target := range field.ReferenceTargets {
		if registry.Has(target) {
			return BucketInScope
		}
	}
	return BucketSystem
}
