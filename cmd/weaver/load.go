package main

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/andrewh/weaver/internal/policy"
	"github.com/andrewh/weaver/internal/registry"
	"github.com/andrewh/weaver/internal/vdir"
)

// loadGraph opens registryPath and walks its manifest-declared dependency
// graph into a flat pool of groups (§4.3).
func loadGraph(ctx context.Context, registryPath string) (*registry.GraphResult, error) {
	src, err := vdir.ParseRegistryPath(registryPath)
	if err != nil {
		return nil, fmt.Errorf("invalid registry path %q: %w", registryPath, err)
	}
	dir, err := vdir.Open(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("opening registry %q: %w", registryPath, err)
	}
	defer dir.Close()

	result, err := registry.ResolveGraph(ctx, dir, registry.DefaultOpener)
	if err != nil {
		return nil, fmt.Errorf("resolving registry graph: %w", err)
	}
	return result, nil
}

// resolveRegistry loads registryPath's dependency graph and resolves it
// into a ResolvedRegistry (§4.5), surfacing the graph's load diagnostics
// alongside the resolver's own.
func resolveRegistry(ctx context.Context, registryPath string, includeUnreferenced bool) (*registry.ResolvedRegistry, *multierror.Error, error) {
	graph, err := loadGraph(ctx, registryPath)
	if err != nil {
		return nil, nil, err
	}

	var diags *multierror.Error
	for _, d := range graph.Diagnostics {
		diags = multierror.Append(diags, d)
	}

	opts := registry.Options{IncludeUnreferenced: includeUnreferenced}
	if len(graph.Nodes) > 0 {
		opts.Manifest = graph.Nodes[0].Manifest
		opts.SchemaURL = graph.Nodes[0].SchemaURL
	}

	reg, resolveDiags, err := registry.Resolve(graph.Groups, opts)
	if err != nil {
		return nil, diags, err
	}
	if resolveDiags.ErrorOrNil() != nil {
		diags = multierror.Append(diags, resolveDiags.Errors...)
	}
	return reg, diags, nil
}

// loadPolicyEngine builds a policy.Engine with the built-in advice bundle
// plus any user-supplied policy paths loaded on top.
func loadPolicyEngine(policyPaths []string) (*policy.Engine, error) {
	engine, err := policy.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("loading built-in policy bundle: %w", err)
	}
	if len(policyPaths) > 0 {
		if err := engine.LoadBundle(policyPaths...); err != nil {
			return nil, fmt.Errorf("loading policy bundle: %w", err)
		}
	}
	return engine, nil
}
