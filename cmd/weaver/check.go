package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/policy"
)

func checkCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve a registry and run all policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			graph, err := loadGraph(ctx, registryPath)
			if err != nil {
				return err
			}

			engine, err := loadPolicyEngine(policyPaths)
			if err != nil {
				return err
			}

			var allFindings []policy.Finding

			beforeFindings, err := engine.Evaluate(ctx, policy.StageBeforeResolution,
				map[string]any{"groups": graph.Groups}, nil)
			if err != nil {
				return fmt.Errorf("evaluating before_resolution policies: %w", err)
			}
			allFindings = append(allFindings, beforeFindings...)

			reg, diags, err := resolveRegistry(ctx, registryPath, false)
			if err != nil {
				return err
			}

			afterFindings, err := engine.Evaluate(ctx, policy.StageAfterResolution,
				map[string]any{"catalog": reg.Catalog, "groups": reg.Groups}, nil)
			if err != nil {
				return fmt.Errorf("evaluating after_resolution policies: %w", err)
			}
			allFindings = append(allFindings, afterFindings...)

			w := cmd.OutOrStdout()
			anyViolation := diags.ErrorOrNil() != nil
			if diags.ErrorOrNil() != nil {
				for _, d := range diags.Errors {
					_, _ = fmt.Fprintf(w, "ERROR  %s\n", d)
				}
			}
			for _, f := range allFindings {
				_, _ = fmt.Fprintln(w, f.String())
				if f.Level == policy.LevelViolation {
					anyViolation = true
				}
			}

			if anyViolation {
				return fmt.Errorf("registry check found violations")
			}
			_, _ = fmt.Fprintf(w, "registry check: %d group(s), %d attribute(s), no violations\n", len(reg.Groups), len(reg.Catalog))
			return nil
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	return cmd
}
