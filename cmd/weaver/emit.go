package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/otlp"
	"github.com/andrewh/weaver/internal/registry"
	"github.com/andrewh/weaver/internal/semconv"
)

// exampleValue picks a representative value for attr: its first declared
// example if any, otherwise a type-appropriate placeholder.
func exampleValue(attr registry.ResolvedAttribute) any {
	if len(attr.Examples.Values) > 0 {
		return attr.Examples.Values[0]
	}
	switch attr.Type.Kind {
	case semconv.TypeEnum:
		if len(attr.Type.Members) > 0 {
			return attr.Type.Members[0].Value
		}
		return nil
	default:
		switch attr.Type.Name {
		case "int", "int[]":
			return 1
		case "double", "double[]":
			return 1.0
		case "boolean", "boolean[]":
			return true
		default:
			return "example-value"
		}
	}
}

func emitCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
		endpoint     string
		protocol     string
		stdout       bool
	)

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Emit synthetic telemetry for each event group to an OTLP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, _, err := resolveRegistry(ctx, registryPath, false)
			if err != nil {
				return err
			}

			emitter, err := otlp.NewEmitter(ctx, otlp.EmitterOptions{Stdout: stdout, Protocol: protocol, Endpoint: endpoint})
			if err != nil {
				return fmt.Errorf("creating OTLP emitter: %w", err)
			}

			count := 0
			for _, g := range reg.Groups {
				if g.Type != semconv.GroupEvent {
					continue
				}
				eventName := g.Name
				if eventName == "" {
					eventName = g.ID
				}

				attrs := make(map[string]any, len(g.Attributes))
				for _, ref := range g.Attributes {
					a := reg.Attribute(ref)
					attrs[a.Name] = exampleValue(a)
				}

				emitter.EmitEventSample(ctx, eventName, attrs)
				count++
			}

			if err := emitter.ForceFlush(ctx); err != nil {
				return fmt.Errorf("flushing emitted telemetry: %w", err)
			}
			if err := emitter.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutting down emitter: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "emitted %d synthetic event(s)\n", count)
			return nil
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OTLP endpoint (e.g. localhost:4317)")
	cmd.Flags().StringVar(&protocol, "protocol", "http/protobuf", "OTLP protocol (http/protobuf or grpc)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "emit telemetry to stdout as JSON instead of an OTLP endpoint")
	return cmd
}
