package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewh/weaver/internal/policy"
)

func TestDiscoverWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	toml := `
[live_check]
[[live_check.finding_overrides]]
ids = ["not_stable"]
level = "violation"

[[live_check.finding_filters]]
exclude = ["deprecated"]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(toml), 0o644))

	cfg, err := Discover(nested)
	require.NoError(t, err)
	require.Len(t, cfg.LiveCheck.FindingOverrides, 1)
	assert.Equal(t, policy.LevelViolation, cfg.LiveCheck.FindingOverrides[0].Level)
	assert.Equal(t, []string{"not_stable"}, cfg.LiveCheck.FindingOverrides[0].IDs)
	assert.Equal(t, []string{"deprecated"}, cfg.LiveCheck.FindingFilters[0].Exclude)
}

func TestDiscoverMissingConfigIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.LiveCheck.FindingOverrides)
}
