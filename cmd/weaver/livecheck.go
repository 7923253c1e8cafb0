package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/config"
	"github.com/andrewh/weaver/internal/livecheck"
	"github.com/andrewh/weaver/internal/otlp"
	"github.com/andrewh/weaver/internal/policy"
)

func liveCheckCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
		grpcAddr     string
		adminAddr    string
		inactivity   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "live-check",
		Short: "Run an OTLP receiver and check incoming telemetry against a registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg, diags, err := resolveRegistry(ctx, registryPath, true)
			if err != nil {
				return err
			}
			if diags.ErrorOrNil() != nil {
				for _, d := range diags.Errors {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", d)
				}
			}

			engine, err := loadPolicyEngine(policyPaths)
			if err != nil {
				return err
			}

			projectCfg, err := config.Discover("")
			if err != nil {
				return fmt.Errorf("discovering project config: %w", err)
			}
			modifier := livecheck.NewFindingModifier(
				projectCfg.LiveCheck.FindingOverrides,
				projectCfg.LiveCheck.FindingFilters,
			)

			pipeline := livecheck.NewPipeline(reg, engine, modifier)
			ingester := otlp.NewIngester(pipeline, otlp.Options{
				GRPCAddr:   grpcAddr,
				AdminAddr:  adminAddr,
				Inactivity: inactivity,
			})

			if err := ingester.Serve(ctx, grpcAddr, adminAddr); err != nil {
				return fmt.Errorf("serving OTLP live-check: %w", err)
			}

			report := pipeline.Report()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("writing final report: %w", err)
			}

			if report.HasViolations() {
				return fmt.Errorf("live-check found %d violation(s)", report.AdvisoriesByLevel[policy.LevelViolation])
			}
			return nil
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", ":4317", "OTLP gRPC listen address")
	cmd.Flags().StringVar(&adminAddr, "admin-addr", ":4320", "admin HTTP listen address (/health, /stop)")
	cmd.Flags().DurationVar(&inactivity, "inactivity-timeout", 0, "stop automatically after this long with no export (0 disables)")
	return cmd
}
