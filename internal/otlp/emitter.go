package otlp

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/andrewh/weaver/internal/livecheck"
	"github.com/andrewh/weaver/internal/policy"
)

// EmitterOptions selects how the Emitter ships its OTLP log records,
// mirroring the teacher's --endpoint/--protocol/--stdout exporter
// selection.
type EmitterOptions struct {
	Stdout   bool
	Protocol string // "grpc" or "http/protobuf"
	Endpoint string
}

// Emitter converts live-check findings into OTLP log records and ships
// them via an sdklog.LoggerProvider: batched for OTLP export, or through a
// simple synchronous processor in stdout mode. It never modifies findings;
// it only reports them.
type Emitter struct {
	provider *sdklog.LoggerProvider
	logger   otellog.Logger
}

// NewEmitter builds an Emitter per opts. Call Shutdown when done.
func NewEmitter(ctx context.Context, opts EmitterOptions) (*Emitter, error) {
	exporter, err := newLogExporter(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	var processor sdklog.Processor
	if opts.Stdout {
		processor = sdklog.NewSimpleProcessor(exporter)
	} else {
		processor = sdklog.NewBatchProcessor(exporter)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", "weaver"),
	))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(processor),
		sdklog.WithResource(res),
	)

	return &Emitter{provider: provider, logger: provider.Logger("weaver")}, nil
}

func newLogExporter(ctx context.Context, opts EmitterOptions) (sdklog.Exporter, error) {
	if opts.Stdout {
		return stdoutlog.New()
	}
	switch opts.Protocol {
	case "grpc":
		var grpcOpts []otlploggrpc.Option
		if opts.Endpoint != "" {
			grpcOpts = append(grpcOpts, otlploggrpc.WithEndpoint(opts.Endpoint), otlploggrpc.WithInsecure())
		}
		return otlploggrpc.New(ctx, grpcOpts...)
	case "http/protobuf", "":
		var httpOpts []otlploghttp.Option
		if opts.Endpoint != "" {
			httpOpts = append(httpOpts, otlploghttp.WithEndpoint(opts.Endpoint), otlploghttp.WithInsecure())
		}
		return otlploghttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q for log emission", opts.Protocol)
	}
}

var levelToSeverity = map[policy.Level]otellog.Severity{
	policy.LevelInformation: otellog.SeverityInfo,
	policy.LevelImprovement: otellog.SeverityWarn,
	policy.LevelViolation:   otellog.SeverityError,
}

// Emit builds and emits one OTLP log record for finding, attributed to the
// sample it was produced against, per the weaver.finding.*/weaver.sample.*
// schema in §4.8.
func (e *Emitter) Emit(ctx context.Context, finding policy.Finding, sample *livecheck.Sample) {
	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetEventName("weaver.live_check.finding")
	record.SetSeverity(levelToSeverity[finding.Level])
	record.SetBody(otellog.StringValue(finding.Message))

	attrs := []otellog.KeyValue{
		otellog.String("weaver.finding.id", finding.ID),
		otellog.String("weaver.finding.level", string(finding.Level)),
		otellog.String("weaver.sample.type", string(sample.Kind)),
	}
	if finding.SignalType != "" {
		attrs = append(attrs, otellog.String("weaver.sample.signal_type", finding.SignalType))
	}
	if finding.SignalName != "" {
		attrs = append(attrs, otellog.String("weaver.sample.signal_name", finding.SignalName))
	}
	for k, v := range finding.Context {
		attrs = append(attrs, otellog.String("weaver.finding.context."+k, fmt.Sprint(v)))
	}
	if sample.Resource != nil {
		for _, a := range sample.Resource.Attributes {
			attrs = append(attrs, otellog.String("weaver.finding.resource.attribute."+a.Name, fmt.Sprint(a.Value)))
		}
	}
	record.AddAttributes(attrs...)

	e.logger.Emit(ctx, record)
}

// EmitEventSample builds and emits one synthetic OTLP log record for an
// event group, for `registry emit` (§6): a sample record that carries one
// attribute per entry in attrs, so a second weaver instance's live-check
// receiver has something real to match against the registry with.
func (e *Emitter) EmitEventSample(ctx context.Context, eventName string, attrs map[string]any) {
	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetEventName(eventName)
	record.SetSeverity(otellog.SeverityInfo)
	record.SetBody(otellog.StringValue(eventName))

	kvs := make([]otellog.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, otellog.String(k, fmt.Sprint(v)))
	}
	record.AddAttributes(kvs...)

	e.logger.Emit(ctx, record)
}

// ForceFlush blocks until every buffered log record has been exported,
// exposed for test determinism per §4.8.
func (e *Emitter) ForceFlush(ctx context.Context) error {
	return e.provider.ForceFlush(ctx)
}

// Shutdown flushes and closes the underlying exporter.
func (e *Emitter) Shutdown(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
