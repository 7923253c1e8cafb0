// Package registry resolves a graph of semantic convention registries into
// a single normalized, deduplicated ResolvedRegistry: it traverses
// manifest-declared dependencies (the registry graph), flattens extends and
// include_groups, interns every attribute into a shared catalog, and
// enforces the resulting invariants.
package registry

import (
	"github.com/andrewh/weaver/internal/semconv"
)

// AttributeRef is a dense, non-negative index into a ResolvedRegistry's
// catalog.
type AttributeRef int

// ResolvedAttribute is the fully materialized, reference-free form of an
// attribute. Two ResolvedAttributes are semantically equal (and therefore
// deduplicated to the same AttributeRef) iff Name, Type, Brief, Note,
// Stability, Deprecated, Examples, and Annotations all match.
// RequirementLevel and SamplingRelevant are per-reference-use properties
// set at the use site, not part of attribute identity, and are excluded
// from that comparison (see attributeKey).
type ResolvedAttribute struct {
	Name             string                   `json:"name"`
	Type             semconv.AttributeType    `json:"type"`
	Brief            string                   `json:"brief,omitempty"`
	Note             string                   `json:"note,omitempty"`
	Stability        semconv.Stability        `json:"stability,omitempty"`
	Deprecated       *semconv.Deprecated      `json:"deprecated,omitempty"`
	Examples         semconv.Examples         `json:"examples,omitempty"`
	RequirementLevel semconv.RequirementLevel `json:"requirement_level,omitempty"`
	SamplingRelevant bool                     `json:"sampling_relevant,omitempty"`
	Annotations      map[string]string        `json:"annotations,omitempty"`
}

// FieldLineage records, for one field of one resolved attribute, whether
// its value was inherited from the referenced root attribute or overridden
// by the ref-form spec that produced it.
type FieldLineage struct {
	Inherited bool   `json:"inherited"`
	SourceID  string `json:"source_id,omitempty"` // the group id the inherited value came from
}

// AttributeLineage is the per-attribute record of which fields were
// inherited vs. overridden during resolution, keyed by field name.
type AttributeLineage struct {
	Fields map[string]FieldLineage `json:"fields"`
}

// ResolvedGroup is a Group with every AttributeSpec replaced by an
// AttributeRef, extends flattened, include_groups folded in, and lineage
// attached per attribute.
type ResolvedGroup struct {
	ID          string                        `json:"id"`
	Type        semconv.GroupType             `json:"type"`
	DisplayName string                        `json:"display_name,omitempty"`
	Brief       string                        `json:"brief,omitempty"`
	Note        string                        `json:"note,omitempty"`
	Stability   semconv.Stability             `json:"stability,omitempty"`
	Deprecated  *semconv.Deprecated           `json:"deprecated,omitempty"`
	SpanKind    string                        `json:"span_kind,omitempty"`
	MetricName  string                        `json:"metric_name,omitempty"`
	Instrument  string                        `json:"instrument,omitempty"`
	Unit        string                        `json:"unit,omitempty"`
	Name        string                        `json:"name,omitempty"`
	Origin      semconv.Origin                `json:"-"`
	Attributes  []AttributeRef                `json:"attributes"`
	Lineage     map[string]*AttributeLineage  `json:"lineage,omitempty"` // keyed by resolved attribute name
}

// ResolvedRegistry is the immutable output of resolution: a deduplicated
// attribute catalog plus every group rewritten to reference it.
type ResolvedRegistry struct {
	FileFormat string              `json:"file_format"`
	SchemaURL  string              `json:"schema_url,omitempty"`
	Manifest   semconv.Manifest    `json:"manifest"`
	Catalog    []ResolvedAttribute `json:"catalog"`
	Groups     []ResolvedGroup     `json:"groups"`
}

// CurrentFileFormat is the stable external format version stamped on every
// ResolvedRegistry (§6).
const CurrentFileFormat = "1.0.0"

// Attribute looks up a ResolvedAttribute by ref. It panics on an
// out-of-range ref: every ref in a finalized ResolvedRegistry is guaranteed
// valid by invariant I1, so an out-of-range ref is a resolver bug, not a
// caller error to recover from.
func (r *ResolvedRegistry) Attribute(ref AttributeRef) ResolvedAttribute {
	return r.Catalog[ref]
}

// Group returns the group with the given id, or nil.
func (r *ResolvedRegistry) Group(id string) *ResolvedGroup {
	for i := range r.Groups {
		if r.Groups[i].ID == id {
			return &r.Groups[i]
		}
	}
	return nil
}
