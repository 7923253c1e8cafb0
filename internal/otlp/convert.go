// Package otlp hosts the OTLP gRPC Ingester that converts incoming
// Logs/Metrics/Trace export requests into live-check samples, and the
// Emitter that reports live-check findings back out as OTLP log records
// (§4.8, C8).
package otlp

import (
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"github.com/andrewh/weaver/internal/livecheck"
)

// anyValue decodes an OTLP AnyValue into the plain Go value the live-check
// Sample model expects (string, bool, float64, int64, or []any).
func anyValue(v *commonpb.AnyValue) any {
	if v == nil {
		return nil
	}
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue
	case *commonpb.AnyValue_BoolValue:
		return val.BoolValue
	case *commonpb.AnyValue_IntValue:
		return val.IntValue
	case *commonpb.AnyValue_DoubleValue:
		return val.DoubleValue
	case *commonpb.AnyValue_ArrayValue:
		out := make([]any, 0, len(val.ArrayValue.GetValues()))
		for _, e := range val.ArrayValue.GetValues() {
			out = append(out, anyValue(e))
		}
		return out
	default:
		return nil
	}
}

func attributeSamples(kvs []*commonpb.KeyValue) []*livecheck.Sample {
	samples := make([]*livecheck.Sample, 0, len(kvs))
	for _, kv := range kvs {
		value := anyValue(kv.GetValue())
		samples = append(samples, &livecheck.Sample{
			Kind:  livecheck.KindAttribute,
			Name:  kv.GetKey(),
			Value: value,
			Type:  livecheck.InferType(value),
		})
	}
	return samples
}

func resourceSample(r *resourcepb.Resource) *livecheck.Sample {
	if r == nil {
		return nil
	}
	return &livecheck.Sample{
		Kind:       livecheck.KindResource,
		Attributes: attributeSamples(r.GetAttributes()),
	}
}

// SamplesFromTrace converts an ExportTraceServiceRequest into one composite
// Sample per span.
func SamplesFromTrace(resourceSpans []*tracepb.ResourceSpans) []*livecheck.Sample {
	var out []*livecheck.Sample
	for _, rs := range resourceSpans {
		res := resourceSample(rs.GetResource())
		for _, ss := range rs.GetScopeSpans() {
			for _, span := range ss.GetSpans() {
				out = append(out, &livecheck.Sample{
					Kind:       livecheck.KindSpan,
					Name:       span.GetName(),
					Attributes: attributeSamples(span.GetAttributes()),
					Resource:   res,
				})
			}
		}
	}
	return out
}

// SamplesFromMetrics converts an ExportMetricsServiceRequest into one
// composite Sample per metric. Per-datapoint attributes are not expanded
// (the metric name match is what live-check cares about; datapoint
// attributes are out of scope for §4.8's sample model).
func SamplesFromMetrics(resourceMetrics []*metricspb.ResourceMetrics) []*livecheck.Sample {
	var out []*livecheck.Sample
	for _, rm := range resourceMetrics {
		res := resourceSample(rm.GetResource())
		for _, sm := range rm.GetScopeMetrics() {
			for _, m := range sm.GetMetrics() {
				out = append(out, &livecheck.Sample{
					Kind:     livecheck.KindMetric,
					Name:     m.GetName(),
					Resource: res,
				})
			}
		}
	}
	return out
}

// SamplesFromLogs converts an ExportLogsServiceRequest into one composite
// Sample per log record.
func SamplesFromLogs(resourceLogs []*logspb.ResourceLogs) []*livecheck.Sample {
	var out []*livecheck.Sample
	for _, rl := range resourceLogs {
		res := resourceSample(rl.GetResource())
		for _, sl := range rl.GetScopeLogs() {
			for _, rec := range sl.GetLogRecords() {
				out = append(out, &livecheck.Sample{
					Kind:       livecheck.KindLog,
					Attributes: attributeSamples(rec.GetAttributes()),
					Resource:   res,
				})
			}
		}
	}
	return out
}
