package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/registry"
)

// semconvBlockRe matches a <!-- semconv <group_id> --> ... <!-- endsemconv
// --> snippet, the same marker convention the upstream semconv tooling
// uses for generated markdown tables.
var semconvBlockRe = regexp.MustCompile(`(?s)(<!--\s*semconv\s+(\S+)\s*-->).*?(<!--\s*endsemconv\s*-->)`)

func renderAttributeTable(reg *registry.ResolvedRegistry, groupID string) (string, error) {
	g := reg.Group(groupID)
	if g == nil {
		return "", fmt.Errorf("group %q not found in registry", groupID)
	}

	var b strings.Builder
	b.WriteString("\n| Attribute | Type | Description | Stability |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, ref := range g.Attributes {
		a := reg.Attribute(ref)
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", a.Name, a.Type.Name, a.Brief, a.Stability)
	}
	b.WriteString("\n")
	return b.String(), nil
}

// updateMarkdown rewrites every semconv marker block in content, returning
// the updated content and whether anything changed.
func updateMarkdown(reg *registry.ResolvedRegistry, content string) (string, bool, error) {
	var outerErr error
	changed := false

	updated := semconvBlockRe.ReplaceAllStringFunc(content, func(block string) string {
		m := semconvBlockRe.FindStringSubmatch(block)
		openTag, groupID, closeTag := m[1], m[2], m[3]

		table, err := renderAttributeTable(reg, groupID)
		if err != nil {
			outerErr = err
			return block
		}

		replacement := openTag + table + closeTag
		if replacement != block {
			changed = true
		}
		return replacement
	})

	return updated, changed, outerErr
}

func updateMarkdownCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "update-markdown <file.md> [file.md...]",
		Short: "Update <!-- semconv ... --> snippets in markdown files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, _, err := resolveRegistry(ctx, registryPath, true)
			if err != nil {
				return err
			}

			anyChange := false
			for _, path := range args {
				data, err := os.ReadFile(path) //nolint:gosec // user-supplied file path is expected
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}

				updated, changed, err := updateMarkdown(reg, string(data))
				if err != nil {
					return fmt.Errorf("updating %s: %w", path, err)
				}
				if !changed {
					continue
				}
				anyChange = true

				if dryRun {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "would update %s\n", path)
					continue
				}
				if err := os.WriteFile(path, []byte(updated), 0o644); err != nil { //nolint:gosec // mirrors source file's existing permissions intent
					return fmt.Errorf("writing %s: %w", path, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", path)
			}

			if dryRun && anyChange {
				return fmt.Errorf("markdown snippets are out of date")
			}
			return nil
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report whether changes are needed without writing them")
	return cmd
}
