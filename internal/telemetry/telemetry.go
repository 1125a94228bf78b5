// Package telemetry exposes the service counters through the OpenTelemetry
// Prometheus exporter. A nil *Recorder is valid and records nothing.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

var scoreBoundaries = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90}

type Recorder struct {
	exporter *prometheus.Exporter

	requests   metric.Int64Counter
	builds     metric.Int64Counter
	ingestions metric.Int64Counter
	rollbacks  metric.Int64Counter
	scores     metric.Float64ValueRecorder
}

// New wires a pull controller to a fresh Prometheus registry.
func New(serviceName string) (*Recorder, error) {
	config := prometheus.Config{DefaultHistogramBoundaries: scoreBoundaries}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	meter := metric.Must(exporter.MeterProvider().Meter(serviceName))

	return &Recorder{
		exporter: exporter,
		requests: meter.NewInt64Counter(
			"http/server/completed_count",
			metric.WithDescription("Count of completed requests, by HTTP method and response status"),
		),
		builds: meter.NewInt64Counter(
			"rankings/build_count",
			metric.WithDescription("Count of ranking builds, by outcome"),
		),
		ingestions: meter.NewInt64Counter(
			"news/workflow_count",
			metric.WithDescription("Count of article workflows, by action and outcome"),
		),
		rollbacks: meter.NewInt64Counter(
			"versions/rollback_count",
			metric.WithDescription("Count of ranking version rollbacks"),
		),
		scores: meter.NewFloat64ValueRecorder(
			"rankings/score",
			metric.WithDescription("Distribution of overall tool scores in built rankings"),
		),
	}, nil
}

// Handler serves the Prometheus scrape endpoint.
func (rec *Recorder) Handler() http.Handler {
	if rec == nil {
		return http.NotFoundHandler()
	}

	return rec.exporter
}

// Middleware counts completed requests.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	if rec == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		rec.requests.Add(r.Context(), 1,
			attribute.String("method", r.Method),
			attribute.String("status", strconv.Itoa(status)))
	})
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}

	return attribute.String("outcome", "ok")
}

// Build records one ranking build and the resulting scores.
func (rec *Recorder) Build(ctx context.Context, scores []float64, err error) {
	if rec == nil {
		return
	}
	rec.builds.Add(ctx, 1, outcome(err))
	for _, s := range scores {
		rec.scores.Record(ctx, s)
	}
}

// Workflow records one article workflow run.
func (rec *Recorder) Workflow(ctx context.Context, action string, err error) {
	if rec == nil {
		return
	}
	rec.ingestions.Add(ctx, 1, attribute.String("action", action), outcome(err))
}

func (rec *Recorder) Rollback(ctx context.Context, err error) {
	if rec == nil {
		return
	}
	rec.rollbacks.Add(ctx, 1, outcome(err))
}
