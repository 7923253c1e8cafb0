package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/output"
)

// resolvedRegistrySchema is the JSON Schema of registry.ResolvedRegistry,
// the stable external format §6 promises backward compatibility on within
// a major file_format version. Hand-authored rather than reflected,
// because every field here already carries an explicit json tag, and a
// reflection-based generator would add a dependency for a schema small
// and stable enough to maintain by hand.
func resolvedRegistrySchema() map[string]any {
	stringSchema := map[string]any{"type": "string"}
	attributeSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":              stringSchema,
			"type":              map[string]any{"type": "object"},
			"brief":             stringSchema,
			"note":              stringSchema,
			"stability":         stringSchema,
			"deprecated":        map[string]any{"type": []string{"object", "null"}},
			"examples":          map[string]any{"type": "object"},
			"requirement_level": map[string]any{"type": "object"},
			"sampling_relevant": map[string]any{"type": "boolean"},
			"annotations":       map[string]any{"type": "object"},
		},
		"required": []string{"name", "type"},
	}
	groupSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":           stringSchema,
			"type":         stringSchema,
			"display_name": stringSchema,
			"brief":        stringSchema,
			"note":         stringSchema,
			"stability":    stringSchema,
			"deprecated":   map[string]any{"type": []string{"object", "null"}},
			"span_kind":    stringSchema,
			"metric_name":  stringSchema,
			"instrument":   stringSchema,
			"unit":         stringSchema,
			"name":         stringSchema,
			"attributes":   map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			"lineage":      map[string]any{"type": "object"},
		},
		"required": []string{"id", "type"},
	}

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"title":   "ResolvedRegistry",
		"type":    "object",
		"properties": map[string]any{
			"file_format": stringSchema,
			"schema_url":  stringSchema,
			"manifest":    map[string]any{"type": "object"},
			"catalog":     map[string]any{"type": "array", "items": attributeSchema},
			"groups":      map[string]any{"type": "array", "items": groupSchema},
		},
		"required": []string{"file_format", "catalog", "groups"},
	}
}

func jsonSchemaCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
	)

	cmd := &cobra.Command{
		Use:   "json-schema",
		Short: "Emit the JSON Schema of the resolved registry form",
		RunE: func(cmd *cobra.Command, args []string) error {
			// -r is accepted for CLI surface consistency (§6) but the
			// schema is the same regardless of which registry is passed.
			sink := output.Json(cmd.OutOrStdout(), "  ")
			if err := sink.Write(resolvedRegistrySchema()); err != nil {
				return fmt.Errorf("writing JSON schema: %w", err)
			}
			return sink.Close()
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	cmd.Flags().Lookup("registry").Usage = "registry path (unused; accepted for CLI surface consistency)"
	return cmd
}
