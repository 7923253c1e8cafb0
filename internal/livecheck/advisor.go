package livecheck

import (
	"context"
	"fmt"

	"github.com/andrewh/weaver/internal/policy"
	"github.com/andrewh/weaver/internal/registry"
	"github.com/andrewh/weaver/internal/semconv"
)

// Advisor produces PolicyFindings for one attribute sample, given the
// registry attribute it matched (nil if unmatched). Grounded on
// attribute_advice.rs's Advisor trait.
type Advisor interface {
	Advise(ctx context.Context, sample *Sample, attr *registry.ResolvedAttribute) ([]policy.Finding, error)
}

// DeprecatedAdvisor emits a violation if the matched attribute carries a
// Deprecated marker.
type DeprecatedAdvisor struct{}

func (DeprecatedAdvisor) Advise(_ context.Context, _ *Sample, attr *registry.ResolvedAttribute) ([]policy.Finding, error) {
	if attr == nil || attr.Deprecated == nil {
		return nil, nil
	}
	return []policy.Finding{{
		ID:      "deprecated",
		Level:   policy.LevelViolation,
		Message: attr.Deprecated.String(),
		Context: map[string]any{"attribute_name": attr.Name, "action": string(attr.Deprecated.Action)},
	}}, nil
}

// StabilityAdvisor emits an improvement-level finding if the matched
// attribute's stability is anything other than stable.
type StabilityAdvisor struct{}

func (StabilityAdvisor) Advise(_ context.Context, _ *Sample, attr *registry.ResolvedAttribute) ([]policy.Finding, error) {
	if attr == nil || attr.Stability == "" || attr.Stability == semconv.StabilityStable {
		return nil, nil
	}
	return []policy.Finding{{
		ID:      "not_stable",
		Level:   policy.LevelImprovement,
		Message: "is not stable",
		Context: map[string]any{"attribute_name": attr.Name, "stability": string(attr.Stability)},
	}}, nil
}

// TypeAdvisor emits a violation if the sample's inferred type disagrees
// with the registry type; enum types accept either a string or int
// variant.
type TypeAdvisor struct{}

func (TypeAdvisor) Advise(_ context.Context, sample *Sample, attr *registry.ResolvedAttribute) ([]policy.Finding, error) {
	if attr == nil || sample.Type == "" {
		return nil, nil
	}

	if attr.Type.Kind == semconv.TypeEnum {
		if sample.Type != "string" && sample.Type != "int" {
			return []policy.Finding{{
				ID:      "type_mismatch",
				Level:   policy.LevelViolation,
				Message: "type should be `string` or `int`",
				Context: map[string]any{"attribute_name": attr.Name, "actual": sample.Type},
			}}, nil
		}
		return nil, nil
	}

	expected, _ := attr.Type.ElementType()
	if sample.Type != attr.Type.Name && sample.Type != expected {
		return []policy.Finding{{
			ID:      "type_mismatch",
			Level:   policy.LevelViolation,
			Message: fmt.Sprintf("type should be `%s`", attr.Type.Name),
			Context: map[string]any{"attribute_name": attr.Name, "actual": sample.Type, "expected": attr.Type.Name},
		}}, nil
	}
	return nil, nil
}

// EnumAdvisor emits an information-level finding if an enum-typed
// attribute's value doesn't match any declared member.
type EnumAdvisor struct{}

func (EnumAdvisor) Advise(_ context.Context, sample *Sample, attr *registry.ResolvedAttribute) ([]policy.Finding, error) {
	if attr == nil || attr.Type.Kind != semconv.TypeEnum || sample.Value == nil {
		return nil, nil
	}

	for _, member := range attr.Type.Members {
		if enumMemberMatches(member, sample.Value) {
			return nil, nil
		}
	}
	return []policy.Finding{{
		ID:      "undefined_enum_variant",
		Level:   policy.LevelInformation,
		Message: "is not a defined variant",
		Context: map[string]any{"attribute_name": attr.Name, "value": sample.Value},
	}}, nil
}

func enumMemberMatches(member semconv.EnumMember, value any) bool {
	switch v := value.(type) {
	case string:
		s, ok := member.Value.(string)
		return ok && s == v
	case float64:
		switch mv := member.Value.(type) {
		case float64:
			return mv == v
		case int:
			return float64(mv) == v
		}
	}
	return false
}

// RegoAdvisor delegates to the policy engine's live_check stage and returns
// the findings its deny rules produce unchanged: every live_check deny
// entry is already shaped as a Finding, so no conversion or filtering is
// applied.
type RegoAdvisor struct {
	Engine *policy.Engine
}

func (a RegoAdvisor) Advise(ctx context.Context, sample *Sample, attr *registry.ResolvedAttribute) ([]policy.Finding, error) {
	if a.Engine == nil {
		return nil, nil
	}
	input := map[string]any{
		"sample": map[string]any{
			"kind":  string(sample.Kind),
			"name":  sample.Name,
			"value": sample.Value,
			"type":  sample.Type,
		},
	}
	if attr != nil {
		input["attribute"] = attr
	}
	return a.Engine.Evaluate(ctx, policy.StageLiveCheck, input, nil)
}

// DefaultAdvisors returns the built-in advisor chain in the exact
// declaration order attribute_advice.rs registers them.
func DefaultAdvisors(engine *policy.Engine) []Advisor {
	return []Advisor{
		DeprecatedAdvisor{},
		StabilityAdvisor{},
		TypeAdvisor{},
		EnumAdvisor{},
		RegoAdvisor{Engine: engine},
	}
}
