package registry

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/andrewh/weaver/internal/semconv"
)

// rootAttribute is a fully-resolved attribute together with the id of the
// group that first registered it as a reference target.
type rootAttribute struct {
	attribute ResolvedAttribute
	groupID   string
}

// AttributeCatalog is the append-only, deduplicated attribute table
// described in §4.4. Two attributes that compare semantically equal
// (same name, type, brief, note, examples, stability, deprecated,
// annotations) always resolve to the same AttributeRef. RequirementLevel
// and SamplingRelevant are per-reference-use properties, not intrinsic
// attribute identity, and are excluded from this comparison.
type AttributeCatalog struct {
	attributes []ResolvedAttribute
	refByKey   map[string]AttributeRef

	// rootAttributes indexes every attribute that can be the target of a
	// ref-form AttributeSpec: every id-form attribute, plus every prefixed
	// ref (which synthesizes a new root under its namespaced name).
	rootAttributes map[string]rootAttribute
}

// NewAttributeCatalog returns an empty catalog.
func NewAttributeCatalog() *AttributeCatalog {
	return &AttributeCatalog{
		refByKey:       make(map[string]AttributeRef),
		rootAttributes: make(map[string]rootAttribute),
	}
}

// Intern returns attr's existing AttributeRef if a semantically-equal
// attribute is already in the catalog, or appends attr and returns a new
// ref. Interning is the catalog's only way to grow: refs are dense and
// assigned in insertion order.
func (c *AttributeCatalog) Intern(attr ResolvedAttribute) AttributeRef {
	key := attributeKey(attr)
	if ref, ok := c.refByKey[key]; ok {
		return ref
	}
	ref := AttributeRef(len(c.attributes))
	c.attributes = append(c.attributes, attr)
	c.refByKey[key] = ref
	return ref
}

// RootAttribute returns the root attribute registered under name (either an
// id-form attribute's own name, or a prefixed ref's synthesized name), and
// whether one exists.
func (c *AttributeCatalog) RootAttribute(name string) (ResolvedAttribute, string, bool) {
	r, ok := c.rootAttributes[name]
	if !ok {
		return ResolvedAttribute{}, "", false
	}
	return r.attribute, r.groupID, true
}

// RegisterRoot makes attr resolvable by future refs under name, attributed
// to groupID.
func (c *AttributeCatalog) RegisterRoot(name, groupID string, attr ResolvedAttribute) {
	c.rootAttributes[name] = rootAttribute{attribute: attr, groupID: groupID}
}

// Attributes returns the deduplicated catalog ordered by AttributeRef.
func (c *AttributeCatalog) Attributes() []ResolvedAttribute {
	return append([]ResolvedAttribute(nil), c.attributes...)
}

// NamesIndex returns attribute names aligned with their refs, for template
// consumers that want a flat name list (§4.4).
func (c *AttributeCatalog) NamesIndex() []string {
	names := make([]string, len(c.attributes))
	for i, a := range c.attributes {
		names[i] = a.Name
	}
	return names
}

// GC removes every catalog entry not present in liveRefs, returning a remap
// from old refs to new (dense) refs. Callers must rewrite every
// AttributeRef they hold through the returned map after calling GC.
func (c *AttributeCatalog) GC(liveRefs map[AttributeRef]bool) map[AttributeRef]AttributeRef {
	remap := make(map[AttributeRef]AttributeRef, len(liveRefs))
	var kept []ResolvedAttribute
	keptKeys := make(map[string]AttributeRef)

	for oldRef, attr := range c.attributes {
		if !liveRefs[AttributeRef(oldRef)] {
			continue
		}
		newRef := AttributeRef(len(kept))
		kept = append(kept, attr)
		keptKeys[attributeKey(attr)] = newRef
		remap[AttributeRef(oldRef)] = newRef
	}

	c.attributes = kept
	c.refByKey = keptKeys
	return remap
}

// attributeKey produces a canonical string encoding of every semantic field
// of attr, used as the dedup key. JSON marshaling of map fields in Go is
// already key-sorted, so this is stable without an explicit sort beyond the
// one below for Annotations (kept for defense since map order is otherwise
// unspecified pre-marshal).
func attributeKey(attr ResolvedAttribute) string {
	type keyForm struct {
		Name        string
		TypeKind    semconv.AttributeTypeKind
		TypeName    string
		Members     []semconv.EnumMember
		Brief       string
		Note        string
		Stability   semconv.Stability
		Deprecated  *semconv.Deprecated
		Examples    []any
		Annotations []kv
	}

	var annotations []kv
	for k, v := range attr.Annotations {
		annotations = append(annotations, kv{k, v})
	}
	sort.Slice(annotations, func(i, j int) bool { return annotations[i].K < annotations[j].K })

	form := keyForm{
		Name:        attr.Name,
		TypeKind:    attr.Type.Kind,
		TypeName:    attr.Type.Name,
		Members:     attr.Type.Members,
		Brief:       attr.Brief,
		Note:        attr.Note,
		Stability:   attr.Stability,
		Deprecated:  attr.Deprecated,
		Examples:    attr.Examples.Values,
		Annotations: annotations,
	}

	data, err := json.Marshal(form)
	if err != nil {
		// Every field above is JSON-safe (strings, primitives, and a map
		// already flattened to a sorted slice), so this is unreachable.
		panic(fmt.Sprintf("attributeKey: %v", err))
	}
	return string(data)
}

type kv struct {
	K string
	V string
}
