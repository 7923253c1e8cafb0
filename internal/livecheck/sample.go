// Package livecheck matches live telemetry samples against a resolved
// semantic convention registry, runs the built-in advisor chain plus any
// configured Rego policies, and aggregates the resulting findings.
package livecheck

import "github.com/andrewh/weaver/internal/policy"

// Kind discriminates the five sample shapes the live-check pipeline
// accepts (§4.7).
type Kind string

const (
	KindAttribute Kind = "attribute"
	KindSpan      Kind = "span"
	KindMetric    Kind = "metric"
	KindLog       Kind = "log"
	KindResource  Kind = "resource"
)

// Sample is one unit of live telemetry submitted to the pipeline: a bare
// attribute, or a composite (span/metric/log/resource) carrying its own
// attribute samples and, optionally, an attached resource.
type Sample struct {
	Kind Kind
	Name string

	// Attribute-only fields.
	Value any
	Type  string // inferred primitive type name, empty if unknown

	// Composite-only fields.
	Attributes []*Sample
	Resource   *Sample

	Result *LiveCheckResult
}

// LiveCheckResult is the per-sample bag of PolicyFindings produced by
// Pipeline.Check (§4.7/§4.8).
type LiveCheckResult struct {
	Findings []policy.Finding
}

// InferType guesses an attribute sample's primitive type from its decoded
// JSON value, the way the OTLP converter (C8) and file-based sample loaders
// both need to before the TypeAdvisor can run.
func InferType(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if v == float64(int64(v)) {
			return "int"
		}
		return "double"
	case int, int64:
		return "int"
	case []any:
		if len(v) == 0 {
			return "string[]"
		}
		return InferType(v[0]) + "[]"
	default:
		return ""
	}
}
