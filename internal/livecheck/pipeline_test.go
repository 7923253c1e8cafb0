package livecheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewh/weaver/internal/registry"
	"github.com/andrewh/weaver/internal/semconv"
)

func testRegistry() *registry.ResolvedRegistry {
	return &registry.ResolvedRegistry{
		Catalog: []registry.ResolvedAttribute{
			{
				Name:      "http.request.method",
				Type:      semconv.AttributeType{Kind: semconv.TypePrimitive, Name: "string"},
				Stability: semconv.StabilityStable,
			},
		},
		Groups: []registry.ResolvedGroup{
			{ID: "registry.http", Type: semconv.GroupAttributeGroup, Attributes: []registry.AttributeRef{0}},
		},
	}
}

func TestPipelineMatchWithNoFindings(t *testing.T) {
	reg := testRegistry()
	p := NewPipeline(reg, nil, nil)

	sample := &Sample{Kind: KindAttribute, Name: "http.request.method", Value: "GET", Type: "string"}
	require.NoError(t, p.Check(context.Background(), sample))

	assert.Empty(t, sample.Result.Findings)
	assert.Equal(t, 1, p.Stats.NoAdviceCount)
	assert.Equal(t, 1.0, p.Stats.CoverageRatio())
}

func TestPipelineTypeMismatch(t *testing.T) {
	reg := testRegistry()
	p := NewPipeline(reg, nil, nil)

	sample := &Sample{Kind: KindAttribute, Name: "http.request.method", Value: float64(42), Type: "int"}
	require.NoError(t, p.Check(context.Background(), sample))

	require.Len(t, sample.Result.Findings, 1)
	assert.Equal(t, "type_mismatch", sample.Result.Findings[0].ID)
}

func TestPipelineMissingAttribute(t *testing.T) {
	reg := testRegistry()
	p := NewPipeline(reg, nil, nil)

	sample := &Sample{Kind: KindAttribute, Name: "does.not.exist", Value: "x", Type: "string"}
	require.NoError(t, p.Check(context.Background(), sample))

	require.Len(t, sample.Result.Findings, 1)
	assert.Equal(t, "missing_attribute", sample.Result.Findings[0].ID)
}

func TestPipelineRecursesIntoCompositeChildren(t *testing.T) {
	reg := testRegistry()
	p := NewPipeline(reg, nil, nil)

	span := &Sample{
		Kind: KindSpan,
		Name: "registry.http",
		Attributes: []*Sample{
			{Kind: KindAttribute, Name: "http.request.method", Value: "GET", Type: "string"},
		},
	}
	require.NoError(t, p.Check(context.Background(), span))

	assert.Equal(t, 2, p.Stats.TotalEntities)
	assert.NotNil(t, span.Attributes[0].Result)
}
