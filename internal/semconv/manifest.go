package semconv

import (
	"context"
	"fmt"

	"github.com/andrewh/weaver/internal/vdir"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the conventional name of a registry's manifest, discovered
// at the root of a virtual directory.
const ManifestFile = "manifest.yaml"

// Dependency is one entry in a Manifest's dependency list, pointing at
// another registry this one extends.
type Dependency struct {
	SchemaURL    string `yaml:"schema_url" json:"schema_url"`
	RegistryPath string `yaml:"registry_path,omitempty" json:"registry_path,omitempty"`
}

// Manifest describes a registry's identity and its dependencies on other
// registries.
type Manifest struct {
	Name         string       `yaml:"name" json:"name"`
	Version      string       `yaml:"version" json:"version"`
	SchemaURL    string       `yaml:"schema_url" json:"schema_url"`
	Dependencies []Dependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// LoadManifest reads and parses manifest.yaml from the root of dir. A
// missing manifest is not an error: it returns a zero-value Manifest, since
// dependency declarations are optional.
func LoadManifest(ctx context.Context, dir vdir.Directory) (*Manifest, error) {
	data, found, err := dir.LoadFile(ctx, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}
	if !found {
		return &Manifest{}, nil
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}
	return &m, nil
}
