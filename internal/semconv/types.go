// Package semconv parses OpenTelemetry semantic convention registries from
// their YAML specification format: attribute, span, metric, event, entity,
// resource, and scope groups, plus the free-standing attribute definitions
// they reference.
package semconv

import (
	"fmt"
	"regexp"
	"strings"
)

// Stability is the maturity level of a group or attribute.
type Stability string

const (
	StabilityStable           Stability = "stable"
	StabilityDevelopment      Stability = "development"
	StabilityDeprecated       Stability = "deprecated"
	StabilityReleaseCandidate Stability = "release_candidate"
)

// GroupType discriminates the kind of semantic convention group.
type GroupType string

const (
	GroupAttributeGroup GroupType = "attribute_group"
	GroupSpan           GroupType = "span"
	GroupMetric         GroupType = "metric"
	GroupEvent          GroupType = "event"
	GroupEntity         GroupType = "entity"
	GroupResource       GroupType = "resource"
	GroupScope          GroupType = "scope"
)

// AttributeTypeKind distinguishes the four attribute type forms.
type AttributeTypeKind string

const (
	TypePrimitive      AttributeTypeKind = "primitive"
	TypeArrayPrimitive AttributeTypeKind = "array"
	TypeEnum           AttributeTypeKind = "enum"
	TypeTemplate       AttributeTypeKind = "template"
)

// AttributeType represents the type of an attribute. For primitive and
// array-of-primitive types Name holds e.g. "string", "string[]", "int",
// "int[]", "boolean", "boolean[]", "double", "double[]". For enum types
// Name is "enum" and Members is populated. For template types Name is the
// "template[...]" form.
type AttributeType struct {
	Kind    AttributeTypeKind `json:"kind"`
	Name    string            `json:"name"`
	Members []EnumMember      `json:"members,omitempty"`
}

// UnmarshalYAML accepts both a scalar type name and a mapping with enum
// members, matching the two shapes the registry format allows.
func (t *AttributeType) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		t.Name = scalar
		switch {
		case strings.HasPrefix(scalar, "template["):
			t.Kind = TypeTemplate
		case strings.HasSuffix(scalar, "[]"):
			t.Kind = TypeArrayPrimitive
		default:
			t.Kind = TypePrimitive
		}
		return nil
	}

	var mapping struct {
		Members []EnumMember `yaml:"members"`
	}
	if err := unmarshal(&mapping); err != nil {
		return fmt.Errorf("attribute type: expected string or mapping with members: %w", err)
	}
	t.Kind = TypeEnum
	t.Name = "enum"
	t.Members = mapping.Members
	return nil
}

// EnumMember is a single member of an enum attribute type.
type EnumMember struct {
	ID         string      `yaml:"id" json:"id"`
	Value      any         `yaml:"value" json:"value"`
	Brief      string      `yaml:"brief" json:"brief,omitempty"`
	Stability  Stability   `yaml:"stability" json:"stability,omitempty"`
	Note       string      `yaml:"note" json:"note,omitempty"`
	Deprecated *Deprecated `yaml:"-" json:"deprecated,omitempty"`
}

// RequirementLevel is the requirement level of an attribute within a group.
// For the simple levels (required, recommended, opt_in) Level holds the
// value directly; for conditionally_required, Level is
// "conditionally_required" and Condition carries the explanation text.
type RequirementLevel struct {
	Level     string `json:"level"`
	Condition string `json:"condition,omitempty"`
}

const conditionallyRequired = "conditionally_required"

// UnmarshalYAML accepts a scalar level or a {conditionally_required: "..."}
// mapping.
func (r *RequirementLevel) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		r.Level = scalar
		return nil
	}

	var mapping map[string]string
	if err := unmarshal(&mapping); err != nil {
		return fmt.Errorf("requirement level: expected string or mapping: %w", err)
	}
	if explanation, ok := mapping[conditionallyRequired]; ok {
		r.Level = conditionallyRequired
		r.Condition = explanation
		return nil
	}
	for k, v := range mapping {
		r.Level = k
		r.Condition = v
		break
	}
	return nil
}

// Examples holds example values for an attribute. The YAML may contain a
// scalar, a flat sequence, or (for array-typed attributes) a sequence of
// sequences.
type Examples struct {
	Values []any `json:"values,omitempty"`
}

func (e *Examples) UnmarshalYAML(unmarshal func(any) error) error {
	var seq []any
	if err := unmarshal(&seq); err == nil {
		e.Values = seq
		return nil
	}
	var scalar any
	if err := unmarshal(&scalar); err != nil {
		return fmt.Errorf("examples: expected scalar or sequence: %w", err)
	}
	if scalar == nil {
		e.Values = nil
		return nil
	}
	e.Values = []any{scalar}
	return nil
}

// AttributeSpec is either an id-form (full definition) or ref-form
// (reference plus overrides) attribute, as they appear inside a group's
// attribute list before resolution.
type AttributeSpec struct {
	// Id-form fields.
	ID   string        `yaml:"id,omitempty" json:"id,omitempty"`
	Type AttributeType `yaml:"type,omitempty" json:"type,omitempty"`

	// Ref-form field. Mutually exclusive with ID.
	Ref    string `yaml:"ref,omitempty" json:"ref,omitempty"`
	Prefix bool   `yaml:"prefix,omitempty" json:"prefix,omitempty"`

	// Shared / overridable fields.
	Brief            string            `yaml:"brief,omitempty" json:"brief,omitempty"`
	Note             string            `yaml:"note,omitempty" json:"note,omitempty"`
	Stability        Stability         `yaml:"stability,omitempty" json:"stability,omitempty"`
	Examples         Examples          `yaml:"examples,omitempty" json:"examples,omitempty"`
	Deprecated       *Deprecated        `yaml:"-" json:"deprecated,omitempty"`
	RequirementLevel RequirementLevel  `yaml:"requirement_level,omitempty" json:"requirement_level,omitempty"`
	SamplingRelevant bool              `yaml:"sampling_relevant,omitempty" json:"sampling_relevant,omitempty"`
	Annotations      map[string]string `yaml:"annotations,omitempty" json:"annotations,omitempty"`

	hasBrief            bool
	hasNote             bool
	hasStability        bool
	hasExamples         bool
	hasDeprecated       bool
	hasRequirementLevel bool
	hasAnnotations      bool
}

// IsRef reports whether this is a ref-form attribute.
func (a *AttributeSpec) IsRef() bool { return a.Ref != "" }

// HasBrief reports whether brief was explicitly present in the YAML, as
// opposed to defaulted to "".
func (a *AttributeSpec) HasBrief() bool { return a.hasBrief }

// HasNote reports whether note was explicitly present in the YAML.
func (a *AttributeSpec) HasNote() bool { return a.hasNote }

// HasStability reports whether stability was explicitly present in the YAML.
func (a *AttributeSpec) HasStability() bool { return a.hasStability }

// HasExamples reports whether examples was explicitly present in the YAML.
func (a *AttributeSpec) HasExamples() bool { return a.hasExamples }

// HasDeprecated reports whether deprecated was explicitly present in the
// YAML.
func (a *AttributeSpec) HasDeprecated() bool { return a.hasDeprecated }

// HasRequirementLevel reports whether requirement_level was explicitly
// present in the YAML.
func (a *AttributeSpec) HasRequirementLevel() bool { return a.hasRequirementLevel }

// HasAnnotations reports whether annotations was explicitly present in the
// YAML.
func (a *AttributeSpec) HasAnnotations() bool { return a.hasAnnotations }

// UnmarshalYAML parses an AttributeSpec, tracking which overridable fields
// were explicitly present so ref resolution can tell "unset" from
// "set to the zero value".
func (a *AttributeSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var raw struct {
		ID               string            `yaml:"id"`
		Type             *AttributeType    `yaml:"type"`
		Ref              string            `yaml:"ref"`
		Prefix           bool              `yaml:"prefix"`
		Brief            *string           `yaml:"brief"`
		Note             *string           `yaml:"note"`
		Stability        *Stability        `yaml:"stability"`
		Examples         *Examples         `yaml:"examples"`
		Deprecated       *rawDeprecated    `yaml:"deprecated"`
		RequirementLevel *RequirementLevel `yaml:"requirement_level"`
		SamplingRelevant bool              `yaml:"sampling_relevant"`
		Annotations      map[string]string `yaml:"annotations"`
	}
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("attribute: %w", err)
	}

	a.ID = raw.ID
	a.Ref = raw.Ref
	a.Prefix = raw.Prefix
	a.SamplingRelevant = raw.SamplingRelevant
	a.Annotations = raw.Annotations
	a.hasAnnotations = raw.Annotations != nil

	if raw.Type != nil {
		a.Type = *raw.Type
	}
	if raw.Brief != nil {
		a.Brief = *raw.Brief
		a.hasBrief = true
	}
	if raw.Note != nil {
		a.Note = *raw.Note
		a.hasNote = true
	}
	if raw.Stability != nil {
		a.Stability = *raw.Stability
		a.hasStability = true
	}
	if raw.Examples != nil {
		a.Examples = *raw.Examples
		a.hasExamples = true
	}
	if raw.Deprecated != nil {
		d, err := raw.Deprecated.resolve()
		if err != nil {
			return fmt.Errorf("attribute %s: %w", a.id(), err)
		}
		a.Deprecated = d
		a.hasDeprecated = true
	}
	if raw.RequirementLevel != nil {
		a.RequirementLevel = *raw.RequirementLevel
		a.hasRequirementLevel = true
	}
	return nil
}

func (a *AttributeSpec) id() string {
	if a.ID != "" {
		return a.ID
	}
	return a.Ref
}

// Group is a semantic convention group: one span, metric, event, entity,
// attribute_group, resource, or scope definition.
type Group struct {
	ID            string          `yaml:"id" json:"id"`
	Type          GroupType       `yaml:"type" json:"type"`
	DisplayName   string          `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Brief         string          `yaml:"brief,omitempty" json:"brief,omitempty"`
	Note          string          `yaml:"note,omitempty" json:"note,omitempty"`
	Stability     Stability       `yaml:"stability,omitempty" json:"stability,omitempty"`
	Deprecated    *Deprecated     `yaml:"-" json:"deprecated,omitempty"`
	Extends       string          `yaml:"extends,omitempty" json:"extends,omitempty"`
	IncludeGroups []string        `yaml:"include_groups,omitempty" json:"include_groups,omitempty"`
	Prefix        string          `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Attributes    []AttributeSpec `yaml:"attributes,omitempty" json:"attributes,omitempty"`

	// Span-specific.
	SpanKind string `yaml:"span_kind,omitempty" json:"span_kind,omitempty"`

	// Metric-specific.
	MetricName string `yaml:"metric_name,omitempty" json:"metric_name,omitempty"`
	Instrument string `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	Unit       string `yaml:"unit,omitempty" json:"unit,omitempty"`

	// Event/entity-specific.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Origin is attached by the loader, not present in the YAML itself.
	Origin Origin `yaml:"-" json:"-"`
}

// UnmarshalYAML resolves the Deprecated union field alongside the plain
// struct fields.
func (g *Group) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Group
	var raw struct {
		plain      `yaml:",inline"`
		Deprecated *rawDeprecated `yaml:"deprecated"`
	}
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("group: %w", err)
	}
	*g = Group(raw.plain)
	if raw.Deprecated != nil {
		d, err := raw.Deprecated.resolve()
		if err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
		g.Deprecated = d
	}
	return nil
}

// Origin records where a Group (or SpecFile) came from.
type Origin struct {
	RegistryURI string
	Path        string
}

func (o Origin) String() string {
	if o.RegistryURI == "" {
		return o.Path
	}
	return fmt.Sprintf("%s:%s", o.RegistryURI, o.Path)
}

// SpecFile is a single parsed YAML document.
type SpecFile struct {
	Origin Origin
	Groups []Group
}

var arrayTypeRe = regexp.MustCompile(`^(.*)\[\]$`)

// ElementType strips the array suffix from a primitive-array type name,
// returning ("string", true) for "string[]" and ("string", false) for
// "string".
func (t AttributeType) ElementType() (string, bool) {
	if m := arrayTypeRe.FindStringSubmatch(t.Name); m != nil {
		return m[1], true
	}
	return t.Name, false
}
