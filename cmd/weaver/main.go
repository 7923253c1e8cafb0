// weaver resolves, checks, and live-checks OpenTelemetry semantic
// convention registries.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "weaver",
		Short:        "OpenTelemetry semantic convention registry toolchain",
		SilenceUsage: true,
	}

	root.AddCommand(registryCmd())
	root.AddCommand(versionCmd())
	return root
}

func registryCmd() *cobra.Command {
	reg := &cobra.Command{
		Use:   "registry",
		Short: "Resolve, validate, and inspect semantic convention registries",
	}

	reg.AddCommand(checkCmd())
	reg.AddCommand(resolveCmd())
	reg.AddCommand(generateCmd())
	reg.AddCommand(statsCmd())
	reg.AddCommand(searchCmd())
	reg.AddCommand(diffCmd())
	reg.AddCommand(updateMarkdownCmd())
	reg.AddCommand(jsonSchemaCmd())
	reg.AddCommand(emitCmd())
	reg.AddCommand(liveCheckCmd())
	return reg
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = cmd.OutOrStdout().Write([]byte("weaver " + version + " (commit: " + commit + ")\n"))
		},
	}
}

// addCommonFlags adds the -r/--registry and -p/--policy flags every
// `registry` subcommand takes (§6: "each taking -r <registry> and optional -p <policy>").
func addCommonFlags(cmd *cobra.Command, registryPath *string, policyPaths *[]string) {
	cmd.Flags().StringVarP(registryPath, "registry", "r", "", "registry path: local dir, archive, or git URL (required)")
	cmd.Flags().StringArrayVarP(policyPaths, "policy", "p", nil, "additional Rego policy file or directory (repeatable)")
	_ = cmd.MarkFlagRequired("registry")
}
