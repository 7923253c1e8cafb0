package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/semconv"
)

func statsCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Resolve a registry and print summary counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, diags, err := resolveRegistry(ctx, registryPath, false)
			if err != nil {
				return err
			}

			byType := make(map[semconv.GroupType]int)
			for _, g := range reg.Groups {
				byType[g.Type]++
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Group Type", "Count"})
			for _, gt := range []semconv.GroupType{
				semconv.GroupAttributeGroup, semconv.GroupSpan, semconv.GroupMetric,
				semconv.GroupEvent, semconv.GroupEntity, semconv.GroupResource, semconv.GroupScope,
			} {
				if byType[gt] > 0 {
					t.AppendRow(table.Row{string(gt), byType[gt]})
				}
			}
			t.AppendSeparator()
			t.AppendRow(table.Row{"Total groups", len(reg.Groups)})
			t.AppendRow(table.Row{"Catalog attributes", len(reg.Catalog)})
			t.Render()

			if diags.ErrorOrNil() != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d diagnostic(s):\n", len(diags.Errors))
				for _, d := range diags.Errors {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", d)
				}
			}
			return nil
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	return cmd
}
