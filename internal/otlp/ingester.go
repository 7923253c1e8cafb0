package otlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"google.golang.org/grpc"

	colLogsPB "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colMetricsPB "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	colTracePB "go.opentelemetry.io/proto/otlp/collector/trace/v1"

	"github.com/andrewh/weaver/internal/livecheck"
)

// defaultQueueSize bounds how many converted samples can be pending
// consumption before Export calls start blocking, per §5's serialized
// live-check core requirement.
const defaultQueueSize = 256

// Ingester hosts the standard OTLP gRPC Logs/Metrics/Trace collector
// services, converts every export request into live-check samples, and
// feeds them one at a time to a single-consumer live-check Pipeline. An
// admin HTTP server exposes /health and /stop; an inactivity timer, reset
// on every export, stops the ingester automatically.
type Ingester struct {
	colTracePB.UnimplementedTraceServiceServer
	colMetricsPB.UnimplementedMetricsServiceServer
	colLogsPB.UnimplementedLogsServiceServer

	pipeline *livecheck.Pipeline
	queue    chan *livecheck.Sample
	logger   *slog.Logger

	inactivity time.Duration
	timer      *time.Timer

	grpcServer *grpc.Server
	adminSrv   *http.Server

	stopOnce sync.Once
	stopped  chan struct{}
}

// Options configures an Ingester.
type Options struct {
	GRPCAddr   string
	AdminAddr  string
	QueueSize  int
	Inactivity time.Duration // 0 disables the inactivity timer
	Logger     *slog.Logger
}

// NewIngester builds an Ingester over pipeline. Call Serve to start
// accepting connections; it blocks until Stop is called, the inactivity
// timer fires, or ctx is cancelled.
func NewIngester(pipeline *livecheck.Pipeline, opts Options) *Ingester {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ing := &Ingester{
		pipeline:   pipeline,
		queue:      make(chan *livecheck.Sample, queueSize),
		logger:     logger,
		inactivity: opts.Inactivity,
		stopped:    make(chan struct{}),
	}
	return ing
}

func (ing *Ingester) Export(ctx context.Context, req *colTracePB.ExportTraceServiceRequest) (*colTracePB.ExportTraceServiceResponse, error) {
	ing.resetInactivity()
	ing.enqueue(SamplesFromTrace(req.GetResourceSpans()))
	return &colTracePB.ExportTraceServiceResponse{}, nil
}

func (ing *Ingester) ExportMetrics(ctx context.Context, req *colMetricsPB.ExportMetricsServiceRequest) (*colMetricsPB.ExportMetricsServiceResponse, error) {
	ing.resetInactivity()
	ing.enqueue(SamplesFromMetrics(req.GetResourceMetrics()))
	return &colMetricsPB.ExportMetricsServiceResponse{}, nil
}

func (ing *Ingester) ExportLogs(ctx context.Context, req *colLogsPB.ExportLogsServiceRequest) (*colLogsPB.ExportLogsServiceResponse, error) {
	ing.resetInactivity()
	ing.enqueue(SamplesFromLogs(req.GetResourceLogs()))
	return &colLogsPB.ExportLogsServiceResponse{}, nil
}

func (ing *Ingester) enqueue(samples []*livecheck.Sample) {
	for _, s := range samples {
		ing.queue <- s
	}
}

func (ing *Ingester) resetInactivity() {
	if ing.inactivity <= 0 || ing.timer == nil {
		return
	}
	ing.timer.Reset(ing.inactivity)
}

// Serve starts the gRPC server on grpcAddr, the admin HTTP server on
// adminAddr (skipped if empty), and the single consumer goroutine draining
// the sample queue into the pipeline. It blocks until Stop is called or ctx
// is cancelled.
func (ing *Ingester) Serve(ctx context.Context, grpcAddr, adminAddr string) error {
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", grpcAddr, err)
	}

	ing.grpcServer = grpc.NewServer()
	colTracePB.RegisterTraceServiceServer(ing.grpcServer, ing)
	colMetricsPB.RegisterMetricsServiceServer(ing.grpcServer, ing)
	colLogsPB.RegisterLogsServiceServer(ing.grpcServer, ing)

	if ing.inactivity > 0 {
		ing.timer = time.AfterFunc(ing.inactivity, func() { ing.Stop() })
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for sample := range ing.queue {
			if err := ing.pipeline.Check(ctx, sample); err != nil {
				ing.logger.Error("live-check failed", "error", err)
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ing.pipeline.Report())
		go ing.Stop()
	})
	ing.adminSrv = &http.Server{Addr: adminAddr, Handler: mux}

	serveErrs := make(chan error, 2)
	go func() {
		serveErrs <- ing.grpcServer.Serve(lis)
	}()
	go func() {
		if adminAddr == "" {
			serveErrs <- nil
			return
		}
		adminLis, herr := net.Listen("tcp", adminAddr)
		if herr != nil {
			serveErrs <- herr
			return
		}
		serveErrs <- ing.adminSrv.Serve(adminLis)
	}()

	select {
	case <-ctx.Done():
		ing.Stop()
	case <-ing.stopped:
	case err := <-serveErrs:
		if err != nil && err != http.ErrServerClosed {
			ing.Stop()
			return err
		}
	}

	wg.Wait()
	return nil
}

// Stop shuts the ingester down: the gRPC server, the admin HTTP server, and
// the sample queue (allowing the consumer goroutine to drain and exit).
func (ing *Ingester) Stop() {
	ing.stopOnce.Do(func() {
		if ing.grpcServer != nil {
			ing.grpcServer.GracefulStop()
		}
		if ing.adminSrv != nil {
			_ = ing.adminSrv.Close()
		}
		close(ing.queue)
		close(ing.stopped)
	})
}
