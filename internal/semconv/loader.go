package semconv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andrewh/weaver/internal/vdir"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// groupsFile is the top-level structure of a semantic convention YAML file.
type groupsFile struct {
	Groups []Group `yaml:"groups"`
}

// LoadResult is the outcome of loading every YAML file under one virtual
// directory: the parsed groups plus any non-fatal diagnostics accumulated
// along the way (duplicate group ids, per-group parse errors). A failed
// individual group never aborts the rest of the load.
type LoadResult struct {
	SpecFiles   []SpecFile
	Groups      []Group
	Diagnostics *multierror.Error
}

// Load discovers every YAML file under dir and parses it into SpecFiles,
// tagging each contained Group with its Origin. Files under any directory
// named "deprecated" are skipped. Duplicate group ids within this call are
// recorded as diagnostics rather than failing the load.
func Load(ctx context.Context, dir vdir.Directory) (*LoadResult, error) {
	paths, err := dir.AllFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing files under %s: %w", dir.Root(), err)
	}

	result := &LoadResult{}
	seen := make(map[string]Origin)

	for _, p := range paths {
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if containsDeprecatedDir(p) {
			continue
		}

		data, found, readErr := dir.LoadFile(ctx, p)
		if readErr != nil {
			result.Diagnostics = multierror.Append(result.Diagnostics,
				fmt.Errorf("reading %s: %w", p, readErr))
			continue
		}
		if !found {
			continue
		}

		origin := Origin{RegistryURI: dir.Root(), Path: p}

		var gf groupsFile
		if parseErr := yaml.Unmarshal(data, &gf); parseErr != nil {
			result.Diagnostics = multierror.Append(result.Diagnostics,
				fmt.Errorf("parsing %s: %w", origin, parseErr))
			continue
		}

		sf := SpecFile{Origin: origin}
		for i := range gf.Groups {
			g := gf.Groups[i]
			g.Origin = origin

			if prior, dup := seen[g.ID]; dup {
				result.Diagnostics = multierror.Append(result.Diagnostics,
					fmt.Errorf("duplicate group id %q: defined at %s and %s", g.ID, prior, origin))
				continue
			}
			seen[g.ID] = origin

			sf.Groups = append(sf.Groups, g)
			result.Groups = append(result.Groups, g)
		}
		result.SpecFiles = append(result.SpecFiles, sf)
	}

	return result, nil
}

func containsDeprecatedDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "deprecated" {
			return true
		}
	}
	return false
}
