package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/registry"
)

// registryDiff is the structured delta between two resolved registries,
// keyed by attribute name and group id.
type registryDiff struct {
	AddedAttributes   []string `json:"added_attributes,omitempty"`
	RemovedAttributes []string `json:"removed_attributes,omitempty"`
	ChangedAttributes []string `json:"changed_attributes,omitempty"`
	AddedGroups       []string `json:"added_groups,omitempty"`
	RemovedGroups     []string `json:"removed_groups,omitempty"`
}

func diffRegistries(before, after *registry.ResolvedRegistry) registryDiff {
	beforeAttrs := make(map[string]registry.ResolvedAttribute, len(before.Catalog))
	for _, a := range before.Catalog {
		beforeAttrs[a.Name] = a
	}
	afterAttrs := make(map[string]registry.ResolvedAttribute, len(after.Catalog))
	for _, a := range after.Catalog {
		afterAttrs[a.Name] = a
	}

	var d registryDiff
	for name, a := range afterAttrs {
		b, existed := beforeAttrs[name]
		if !existed {
			d.AddedAttributes = append(d.AddedAttributes, name)
			continue
		}
		if b.Type.Name != a.Type.Name || b.Stability != a.Stability || b.Brief != a.Brief {
			d.ChangedAttributes = append(d.ChangedAttributes, name)
		}
	}
	for name := range beforeAttrs {
		if _, stillThere := afterAttrs[name]; !stillThere {
			d.RemovedAttributes = append(d.RemovedAttributes, name)
		}
	}

	beforeGroups := make(map[string]bool, len(before.Groups))
	for _, g := range before.Groups {
		beforeGroups[g.ID] = true
	}
	afterGroups := make(map[string]bool, len(after.Groups))
	for _, g := range after.Groups {
		afterGroups[g.ID] = true
		if !beforeGroups[g.ID] {
			d.AddedGroups = append(d.AddedGroups, g.ID)
		}
	}
	for id := range beforeGroups {
		if !afterGroups[id] {
			d.RemovedGroups = append(d.RemovedGroups, id)
		}
	}

	return d
}

func diffCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
		against      string
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Structured delta between two resolved registries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if against == "" {
				return fmt.Errorf("--against <registry> is required")
			}

			ctx := cmd.Context()
			before, _, err := resolveRegistry(ctx, against, true)
			if err != nil {
				return fmt.Errorf("resolving --against registry: %w", err)
			}
			after, _, err := resolveRegistry(ctx, registryPath, true)
			if err != nil {
				return err
			}

			d := diffRegistries(before, after)
			w := cmd.OutOrStdout()
			printNamed := func(label string, names []string) {
				_, _ = fmt.Fprintf(w, "%s (%d):\n", label, len(names))
				for _, n := range names {
					_, _ = fmt.Fprintf(w, "  %s\n", n)
				}
			}
			printNamed("added attributes", d.AddedAttributes)
			printNamed("removed attributes", d.RemovedAttributes)
			printNamed("changed attributes", d.ChangedAttributes)
			printNamed("added groups", d.AddedGroups)
			printNamed("removed groups", d.RemovedGroups)
			return nil
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	cmd.Flags().StringVar(&against, "against", "", "baseline registry path to diff against (required)")
	return cmd
}
