package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/internal/domain/schema"
	"github.com/sfseed/sfseed/pkg/constants"
)

// SchemaInspector answers schema questions against an org, caching
// describe results for the run. One inspector serves both connections;
// cache keys include the instance URL.
type SchemaInspector struct {
	describeCache map[string]*schema.ObjectDescriptor
	globalCache   map[string][]ports.GlobalObject
}

// NewSchemaInspector creates a new SchemaInspector
func NewSchemaInspector() *SchemaInspector {
	return &SchemaInspector{
		describeCache: make(map[string]*schema.ObjectDescriptor),
		globalCache:   make(map[string][]ports.GlobalObject),
	}
}

// ListInsertableObjects returns the org's objects that are both queryable
// and createable, sorted by human label.
func (si *SchemaInspector) ListInsertableObjects(ctx context.Context, conn ports.Connection) ([]ports.GlobalObject, error) {
	all, err := si.describeGlobal(ctx, conn)
	if err != nil {
		return nil, err
	}

	out := make([]ports.GlobalObject, 0, len(all))
	for _, obj := range all {
		if obj.Queryable && obj.Createable {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// DescribeObject returns the object's full schema, cached per (org, object).
func (si *SchemaInspector) DescribeObject(ctx context.Context, conn ports.Connection, objectName string) (*schema.ObjectDescriptor, error) {
	key := conn.InstanceURL() + "/" + objectName
	if desc, ok := si.describeCache[key]; ok {
		return desc, nil
	}

	desc, err := conn.Describe(ctx, objectName)
	if err != nil {
		return nil, fmt.Errorf("describe %s failed: %w", objectName, err)
	}
	si.describeCache[key] = desc
	return desc, nil
}

// DiscoverChildren enumerates the object's child relationships, excluding
// platform companions that cannot be seeded as declared tiers:
//   - the fixed deny-list (activities, feeds, content links, subscriptions,
//     topic assignments, history-recent)
//   - generated companion objects by name suffix
//   - children missing from the org's insertable object list
//   - relationships with no lookup field name
//
// Results are sorted by child object name.
func (si *SchemaInspector) DiscoverChildren(ctx context.Context, conn ports.Connection, objectName string) ([]schema.ChildRelationship, error) {
	desc, err := si.DescribeObject(ctx, conn, objectName)
	if err != nil {
		return nil, err
	}

	insertable, err := si.ListInsertableObjects(ctx, conn)
	if err != nil {
		return nil, err
	}
	insertableSet := make(map[string]bool, len(insertable))
	for _, obj := range insertable {
		insertableSet[obj.Name] = true
	}

	out := make([]schema.ChildRelationship, 0, len(desc.ChildRelationships))
	for _, rel := range desc.ChildRelationships {
		if rel.FieldName == "" {
			continue
		}
		if constants.ChildObjectDenyList[rel.ChildObject] {
			continue
		}
		if hasDeniedSuffix(rel.ChildObject) {
			continue
		}
		if !insertableSet[rel.ChildObject] {
			continue
		}
		out = append(out, rel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChildObject < out[j].ChildObject })
	return out, nil
}

// DiscoverGrandchildren applies DiscoverChildren to each declared child,
// skipping any grandchild object already in scope (the root or a declared
// child). The in-scope check breaks relationship cycles.
func (si *SchemaInspector) DiscoverGrandchildren(ctx context.Context, conn ports.Connection, childNames []string, rootName string) ([]schema.GrandchildRelationship, error) {
	inScope := map[string]bool{rootName: true}
	for _, name := range childNames {
		inScope[name] = true
	}

	var out []schema.GrandchildRelationship
	for _, childName := range childNames {
		rels, err := si.DiscoverChildren(ctx, conn, childName)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			if inScope[rel.ChildObject] {
				continue
			}
			out = append(out, schema.GrandchildRelationship{
				ChildRelationship: rel,
				ParentChildObject: childName,
			})
		}
	}
	return out, nil
}

func (si *SchemaInspector) describeGlobal(ctx context.Context, conn ports.Connection) ([]ports.GlobalObject, error) {
	key := conn.InstanceURL()
	if objs, ok := si.globalCache[key]; ok {
		return objs, nil
	}

	objs, err := conn.DescribeGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe global failed: %w", err)
	}
	si.globalCache[key] = objs
	return objs, nil
}

func hasDeniedSuffix(objectName string) bool {
	for _, suffix := range constants.ChildObjectDenySuffixes {
		if strings.HasSuffix(objectName, suffix) {
			return true
		}
	}
	return false
}
