package livecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewh/weaver/internal/policy"
)

func makeFinding(id string, level policy.Level, signalType string) policy.Finding {
	return policy.Finding{ID: id, Level: level, Message: "test finding: " + id, SignalType: signalType}
}

func TestFindingModifierNoRulesIsNil(t *testing.T) {
	assert.Nil(t, NewFindingModifier(nil, nil))
}

func TestFindingModifierOverrideLevel(t *testing.T) {
	m := NewFindingModifier([]FindingOverride{{IDs: []string{"not_stable"}, Level: policy.LevelViolation}}, nil)
	require.NotNil(t, m)

	out, ok := m.Apply(makeFinding("not_stable", policy.LevelInformation, ""))
	require.True(t, ok)
	assert.Equal(t, policy.LevelViolation, out.Level)
}

func TestFindingModifierOverrideScopedBySignalType(t *testing.T) {
	m := NewFindingModifier([]FindingOverride{
		{IDs: []string{"not_stable"}, Level: policy.LevelInformation, SignalType: "span"},
	}, nil)
	require.NotNil(t, m)

	out, ok := m.Apply(makeFinding("not_stable", policy.LevelViolation, "span"))
	require.True(t, ok)
	assert.Equal(t, policy.LevelInformation, out.Level)

	out, ok = m.Apply(makeFinding("not_stable", policy.LevelViolation, "metric"))
	require.True(t, ok)
	assert.Equal(t, policy.LevelViolation, out.Level)
}

func TestFindingModifierFirstMatchWins(t *testing.T) {
	m := NewFindingModifier([]FindingOverride{
		{IDs: []string{"not_stable"}, Level: policy.LevelViolation},
		{IDs: []string{"not_stable"}, Level: policy.LevelInformation},
	}, nil)
	require.NotNil(t, m)

	out, ok := m.Apply(makeFinding("not_stable", policy.LevelImprovement, ""))
	require.True(t, ok)
	assert.Equal(t, policy.LevelViolation, out.Level)
}

func TestFindingModifierGlobalFilterExcludeByID(t *testing.T) {
	m := NewFindingModifier(nil, []FindingFilter{{Exclude: []string{"deprecated"}}})
	require.NotNil(t, m)

	_, ok := m.Apply(makeFinding("deprecated", policy.LevelViolation, ""))
	assert.False(t, ok)

	_, ok = m.Apply(makeFinding("not_stable", policy.LevelViolation, ""))
	assert.True(t, ok)
}

func TestFindingModifierGlobalFilterMinLevel(t *testing.T) {
	m := NewFindingModifier(nil, []FindingFilter{{MinLevel: policy.LevelImprovement}})
	require.NotNil(t, m)

	_, ok := m.Apply(makeFinding("foo", policy.LevelInformation, ""))
	assert.False(t, ok)

	_, ok = m.Apply(makeFinding("foo", policy.LevelImprovement, ""))
	assert.True(t, ok)

	_, ok = m.Apply(makeFinding("foo", policy.LevelViolation, ""))
	assert.True(t, ok)
}

func TestFindingModifierScopedFilter(t *testing.T) {
	m := NewFindingModifier(nil, []FindingFilter{{Exclude: []string{"not_stable"}, SignalType: "span"}})
	require.NotNil(t, m)

	_, ok := m.Apply(makeFinding("not_stable", policy.LevelInformation, "span"))
	assert.False(t, ok)

	_, ok = m.Apply(makeFinding("not_stable", policy.LevelInformation, "metric"))
	assert.True(t, ok)
}

func TestFindingModifierOverrideThenFilter(t *testing.T) {
	m := NewFindingModifier(
		[]FindingOverride{{IDs: []string{"foo"}, Level: policy.LevelViolation}},
		[]FindingFilter{{Exclude: []string{"foo"}}},
	)
	require.NotNil(t, m)

	_, ok := m.Apply(makeFinding("foo", policy.LevelInformation, ""))
	assert.False(t, ok)
}

func TestFindingModifierOverrideLevelThenMinLevelFilter(t *testing.T) {
	m := NewFindingModifier(
		[]FindingOverride{{IDs: []string{"foo"}, Level: policy.LevelInformation}},
		[]FindingFilter{{MinLevel: policy.LevelImprovement}},
	)
	require.NotNil(t, m)

	_, ok := m.Apply(makeFinding("foo", policy.LevelViolation, ""))
	assert.False(t, ok)
}
