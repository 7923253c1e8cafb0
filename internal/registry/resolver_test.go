package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewh/weaver/internal/semconv"
)

// TestResolveExtendsRefOverridesIdForm is spec.md's worked example S1:
// core declares http.request.method as a plain id-form attribute;
// span.http extends core and re-declares the same attribute in ref-form,
// only overriding requirement_level. Resolution must produce exactly one
// catalog entry (requirement_level isn't part of attribute identity) and
// span.http's resolved group must carry lineage recording the override.
func TestResolveExtendsRefOverridesIdForm(t *testing.T) {
	core := semconv.Group{
		ID:   "registry.core",
		Type: semconv.GroupAttributeGroup,
		Attributes: []semconv.AttributeSpec{
			{ID: "http.request.method", Type: semconv.AttributeType{Name: "string"}, Brief: "HTTP method"},
		},
	}
	spanHTTP := semconv.Group{
		ID:      "span.http",
		Type:    semconv.GroupSpan,
		Extends: "registry.core",
		Attributes: []semconv.AttributeSpec{
			{Ref: "http.request.method", RequirementLevel: semconv.RequirementLevel{Level: "required"}},
		},
	}

	reg, diags, err := Resolve([]semconv.Group{core, spanHTTP}, Options{})
	require.NoError(t, err)
	assert.Nil(t, diags.ErrorOrNil())

	require.Len(t, reg.Catalog, 1, "core's id-form attribute and span.http's ref-form override must dedupe to one catalog entry")

	var spanGroup *ResolvedGroup
	for i := range reg.Groups {
		if reg.Groups[i].ID == "span.http" {
			spanGroup = &reg.Groups[i]
		}
	}
	require.NotNil(t, spanGroup)
	require.Len(t, spanGroup.Attributes, 1)

	require.NotNil(t, spanGroup.Lineage, "ref-form override must go through Phase C's ref path and record lineage")
	fieldLineage, ok := spanGroup.Lineage["http.request.method"]
	require.True(t, ok)
	_, hasBrief := fieldLineage.Fields["brief"]
	assert.True(t, hasBrief, "brief should be recorded as inherited from the root attribute")
	assert.True(t, fieldLineage.Fields["brief"].Inherited)
}

// TestAttributeKeyIgnoresPerUseFields locks in that RequirementLevel and
// SamplingRelevant never affect catalog deduplication, since they're
// properties of a reference's use site, not of attribute identity.
func TestAttributeKeyIgnoresPerUseFields(t *testing.T) {
	a := ResolvedAttribute{
		Name:             "http.request.method",
		Type:             semconv.AttributeType{Name: "string"},
		RequirementLevel: semconv.RequirementLevel{Level: "required"},
		SamplingRelevant: true,
	}
	b := ResolvedAttribute{
		Name:             "http.request.method",
		Type:             semconv.AttributeType{Name: "string"},
		RequirementLevel: semconv.RequirementLevel{Level: "recommended"},
		SamplingRelevant: false,
	}
	assert.Equal(t, attributeKey(a), attributeKey(b))
}
