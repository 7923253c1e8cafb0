package otlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"github.com/andrewh/weaver/internal/livecheck"
)

func TestSamplesFromTrace(t *testing.T) {
	reqSpans := []*tracepb.ResourceSpans{
		{
			Resource: &resourcepb.Resource{
				Attributes: []*commonpb.KeyValue{
					{Key: "service.name", Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "my-svc"}}},
				},
			},
			ScopeSpans: []*tracepb.ScopeSpans{
				{
					Spans: []*tracepb.Span{
						{
							Name: "registry.http",
							Attributes: []*commonpb.KeyValue{
								{Key: "http.request.method", Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "GET"}}},
							},
						},
					},
				},
			},
		},
	}

	samples := SamplesFromTrace(reqSpans)
	require.Len(t, samples, 1)
	assert.Equal(t, livecheck.KindSpan, samples[0].Kind)
	assert.Equal(t, "registry.http", samples[0].Name)
	require.Len(t, samples[0].Attributes, 1)
	assert.Equal(t, "http.request.method", samples[0].Attributes[0].Name)
	assert.Equal(t, "GET", samples[0].Attributes[0].Value)
	require.NotNil(t, samples[0].Resource)
	assert.Equal(t, "my-svc", samples[0].Resource.Attributes[0].Value)
}

func TestAnyValueVariants(t *testing.T) {
	assert.Equal(t, "x", anyValue(&commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "x"}}))
	assert.Equal(t, true, anyValue(&commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: true}}))
	assert.Equal(t, int64(7), anyValue(&commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: 7}}))
	assert.Equal(t, 1.5, anyValue(&commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: 1.5}}))
	assert.Nil(t, anyValue(nil))
}
