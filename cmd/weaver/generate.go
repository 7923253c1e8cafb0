package main

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/output"
)

// textTemplateRenderer is the CLI's default output.TemplateRenderer: a
// thin text/template wrapper. The template engine proper is out of scope
// (§1 Non-goals) — this is the narrowest implementation that exercises the
// output.Template seam without inventing a templating DSL.
type textTemplateRenderer struct {
	tmpl *template.Template
}

func (r textTemplateRenderer) Render(w io.Writer, v any) error {
	return r.tmpl.Execute(w, v)
}

func generateCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
		templatePath string
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Resolve a registry then render a template pack",
		RunE: func(cmd *cobra.Command, args []string) error {
			if templatePath == "" {
				return fmt.Errorf("--template is required")
			}

			ctx := cmd.Context()
			reg, diags, err := resolveRegistry(ctx, registryPath, false)
			if err != nil {
				return err
			}
			if diags.ErrorOrNil() != nil {
				return fmt.Errorf("registry has unresolved diagnostics, refusing to generate: %w", diags.ErrorOrNil())
			}

			tmpl, err := template.ParseFiles(templatePath)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", templatePath, err)
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath) //nolint:gosec // user-supplied output path is expected
				if err != nil {
					return fmt.Errorf("creating output file %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			sink := output.Template(w, textTemplateRenderer{tmpl: tmpl})
			if err := sink.Write(reg); err != nil {
				return fmt.Errorf("rendering template: %w", err)
			}
			return sink.Close()
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	cmd.Flags().StringVar(&templatePath, "template", "", "text/template file to render against the ResolvedRegistry (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}
