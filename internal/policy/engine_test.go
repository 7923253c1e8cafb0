package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineEvaluateBeforeResolutionDeprecatedWithoutNote(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	input := map[string]any{
		"groups": []map[string]any{
			{
				"id":   "registry.network",
				"type": "attribute_group",
				"attributes": []map[string]any{
					{"id": "protocol.name", "stability": "deprecated"},
				},
			},
		},
	}

	findings, err := engine.Evaluate(context.Background(), StageBeforeResolution, input, nil)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "deprecated_stability_without_note", findings[0].ID)
	assert.Equal(t, LevelImprovement, findings[0].Level)
}

func TestEngineEvaluateNoMatchesIsEmpty(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	input := map[string]any{
		"groups": []map[string]any{
			{
				"id":   "registry.network",
				"type": "attribute_group",
				"attributes": []map[string]any{
					{"id": "protocol.name", "stability": "stable"},
				},
			},
		},
	}

	findings, err := engine.Evaluate(context.Background(), StageBeforeResolution, input, nil)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelInformation.Less(LevelImprovement))
	assert.True(t, LevelImprovement.Less(LevelViolation))
	assert.False(t, LevelViolation.Less(LevelInformation))
}
