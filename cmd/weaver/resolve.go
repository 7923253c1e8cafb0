package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/output"
)

func resolveCmd() *cobra.Command {
	var (
		registryPath        string
		policyPaths         []string
		format              string
		includeUnreferenced bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a registry and emit the ResolvedRegistry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, diags, err := resolveRegistry(ctx, registryPath, includeUnreferenced)
			if err != nil {
				return err
			}
			if diags.ErrorOrNil() != nil {
				for _, d := range diags.Errors {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", d)
				}
			}

			var sink output.Sink
			switch format {
			case "yaml":
				sink = output.Yaml(cmd.OutOrStdout())
			case "json", "":
				sink = output.Json(cmd.OutOrStdout(), "  ")
			default:
				return fmt.Errorf("unsupported --format %q, supported: json, yaml", format)
			}

			if err := sink.Write(reg); err != nil {
				return fmt.Errorf("writing resolved registry: %w", err)
			}
			return sink.Close()
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&includeUnreferenced, "include-unreferenced", false, "keep catalog attributes no group references")
	return cmd
}
