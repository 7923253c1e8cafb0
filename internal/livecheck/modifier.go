package livecheck

import "github.com/andrewh/weaver/internal/policy"

// FindingOverride rewrites the level of any finding whose id matches (and,
// if set, whose signal_type matches). First matching override wins.
type FindingOverride struct {
	IDs        []string     `mapstructure:"ids"`
	Level      policy.Level `mapstructure:"level"`
	SignalType string       `mapstructure:"signal_type"`
}

// FindingFilter drops findings by id or by a minimum level, optionally
// scoped to one signal_type.
type FindingFilter struct {
	Exclude    []string     `mapstructure:"exclude"`
	MinLevel   policy.Level `mapstructure:"min_level"`
	SignalType string       `mapstructure:"signal_type"`
}

// FindingModifier applies a fixed set of overrides then filters to every
// finding at creation time, exactly as finding_modifier.rs does: overrides
// are first-match-wins, filters short-circuit on the first match that
// drops the finding.
type FindingModifier struct {
	overrides []FindingOverride
	filters   []FindingFilter
}

// NewFindingModifier returns nil if both overrides and filters are empty,
// mirroring FindingModifier::from_config's Option<Self> — a Pipeline with
// no modifier configured applies findings unchanged.
func NewFindingModifier(overrides []FindingOverride, filters []FindingFilter) *FindingModifier {
	if len(overrides) == 0 && len(filters) == 0 {
		return nil
	}
	return &FindingModifier{overrides: overrides, filters: filters}
}

// Apply rewrites finding's level per the first matching override, then
// drops it if any applicable filter excludes it. ok is false iff the
// finding was dropped.
func (m *FindingModifier) Apply(finding policy.Finding) (out policy.Finding, ok bool) {
	if m == nil {
		return finding, true
	}

	for _, ov := range m.overrides {
		if !containsString(ov.IDs, finding.ID) {
			continue
		}
		if !scopeMatches(ov.SignalType, finding.SignalType) {
			continue
		}
		finding.Level = ov.Level
		break
	}

	for _, f := range m.filters {
		if !scopeMatches(f.SignalType, finding.SignalType) {
			continue
		}
		if isExcludedBy(finding, f) {
			return policy.Finding{}, false
		}
	}

	return finding, true
}

// scopeMatches reports whether an override/filter's optional signal_type
// scope applies to a finding's signal_type: an empty scope is global.
func scopeMatches(scope, signalType string) bool {
	return scope == "" || scope == signalType
}

func isExcludedBy(finding policy.Finding, filter FindingFilter) bool {
	if containsString(filter.Exclude, finding.ID) {
		return true
	}
	if filter.MinLevel != "" && finding.Level.Less(filter.MinLevel) {
		return true
	}
	return false
}

func containsString(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
