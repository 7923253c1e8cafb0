// Package config discovers and loads the project's .weaver.toml, walking up
// from the current working directory the way most Go CLIs discover a
// dotfile config, via github.com/spf13/viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/andrewh/weaver/internal/livecheck"
)

// FileName is the project config file's name (§6).
const FileName = ".weaver.toml"

// ProjectConfig is the parsed contents of .weaver.toml.
type ProjectConfig struct {
	LiveCheck LiveCheckConfig `mapstructure:"live_check"`
}

// LiveCheckConfig is the `[live_check]` table: the Finding Modifier's
// configuration (§4.9).
type LiveCheckConfig struct {
	FindingOverrides []livecheck.FindingOverride `mapstructure:"finding_overrides"`
	FindingFilters   []livecheck.FindingFilter   `mapstructure:"finding_filters"`
}

// Discover walks up from startDir (or the current working directory, if
// startDir is empty) looking for .weaver.toml, and loads it if found. A
// missing config file is not an error: Discover returns a zero-value
// ProjectConfig.
func Discover(startDir string) (*ProjectConfig, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
		startDir = wd
	}

	path, ok := findUpward(startDir, FileName)
	if !ok {
		return &ProjectConfig{}, nil
	}
	return Load(path)
}

// Load parses the .weaver.toml file at path.
func Load(path string) (*ProjectConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg ProjectConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

func findUpward(dir, name string) (string, bool) {
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
