package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrewh/weaver/internal/semconv"
	"github.com/andrewh/weaver/internal/vdir"
)

// MaxDependencyDepth is the hard cap on registry dependency depth (§4.3).
const MaxDependencyDepth = 32

// GraphNode is one registry in the dependency DAG: its schema URL (the root
// directory's path, for the root registry), its manifest, and the groups it
// contributes.
type GraphNode struct {
	SchemaURL string
	Manifest  semconv.Manifest
	Groups    []semconv.Group
}

// GraphResult is the flattened output of traversing the dependency graph:
// every node's groups appended, in traversal order, to one Groups slice,
// plus the load diagnostics accumulated along the way. Groups are not keyed
// by registry: same-id groups from two registries both appear in Groups.
type GraphResult struct {
	Nodes       []*GraphNode
	Groups      []semconv.Group
	Diagnostics []error
}

// Opener resolves a dependency's registry_path (or schema_url, if
// registry_path is absent) into a vdir.Directory. Separated from
// ResolveGraph so tests can stub it without touching the filesystem or
// network.
type Opener func(ctx context.Context, dep semconv.Dependency) (vdir.Directory, error)

// DefaultOpener resolves a dependency via vdir.ParseRegistryPath/Open,
// preferring RegistryPath over SchemaURL when both are present.
func DefaultOpener(ctx context.Context, dep semconv.Dependency) (vdir.Directory, error) {
	path := dep.RegistryPath
	if path == "" {
		path = dep.SchemaURL
	}
	src, err := vdir.ParseRegistryPath(path)
	if err != nil {
		return nil, err
	}
	return vdir.Open(ctx, src)
}

// ResolveGraph performs the depth-first traversal described in §4.3: it
// loads root, then recursively loads every manifest-declared dependency,
// detecting cycles (reporting the full cycle path) and enforcing
// MaxDependencyDepth.
func ResolveGraph(ctx context.Context, rootDir vdir.Directory, open Opener) (*GraphResult, error) {
	result := &GraphResult{}
	visiting := map[string]bool{}
	path := []string{rootDir.Root()}

	var walk func(dir vdir.Directory, schemaURL string, depth int) error
	walk = func(dir vdir.Directory, schemaURL string, depth int) error {
		if depth > MaxDependencyDepth {
			return fmt.Errorf("registry dependency graph exceeds maximum depth of %d", MaxDependencyDepth)
		}

		manifest, err := semconv.LoadManifest(ctx, dir)
		if err != nil {
			return fmt.Errorf("loading manifest for %s: %w", dir.Root(), err)
		}

		load, err := semconv.Load(ctx, dir)
		if err != nil {
			return fmt.Errorf("loading registry %s: %w", dir.Root(), err)
		}
		if load.Diagnostics.ErrorOrNil() != nil {
			result.Diagnostics = append(result.Diagnostics, load.Diagnostics.Errors...)
		}

		node := &GraphNode{SchemaURL: schemaURL, Manifest: *manifest, Groups: load.Groups}
		result.Nodes = append(result.Nodes, node)
		result.Groups = append(result.Groups, load.Groups...)

		for _, dep := range manifest.Dependencies {
			depKey := dep.SchemaURL
			if visiting[depKey] {
				cyclePath := append(append([]string(nil), path...), depKey)
				return fmt.Errorf("cyclic registry dependency: %s", strings.Join(cyclePath, " → "))
			}

			depDir, err := open(ctx, dep)
			if err != nil {
				return fmt.Errorf("opening dependency %s: %w", depKey, err)
			}

			visiting[depKey] = true
			path = append(path, depKey)
			err = walk(depDir, dep.SchemaURL, depth+1)
			path = path[:len(path)-1]
			delete(visiting, depKey)
			closeErr := depDir.Close()

			if err != nil {
				return err
			}
			if closeErr != nil {
				return fmt.Errorf("closing dependency %s: %w", depKey, closeErr)
			}
		}
		return nil
	}

	rootSchemaURL := rootDir.Root()
	visiting[rootSchemaURL] = true
	if err := walk(rootDir, rootSchemaURL, 0); err != nil {
		return nil, err
	}

	return result, nil
}
