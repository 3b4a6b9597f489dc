// Command storedemo runs a YAML scenario through a counters store.
//
// Configuration comes from the environment:
//
//	STOREDEMO_SCENARIO      path to the scenario file (required)
//	STOREDEMO_TRACE         print OpenTelemetry spans and metrics to stdout
//	STOREDEMO_QUIET         do not log every dispatch
//	STOREDEMO_SERVICE_NAME  service name reported with traces
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jilio/store"
	"github.com/jilio/store/internal/config"
	"github.com/jilio/store/internal/scenario"
	storeotel "github.com/jilio/store/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func main() {
	cfg, err := config.LoadDemo()
	if err != nil {
		log.Fatalf("storedemo: %v", err)
	}

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		log.Fatalf("storedemo: %v", err)
	}
}

func run(ctx context.Context, cfg config.Demo, out io.Writer) error {
	sc, err := scenario.Load(cfg.Scenario)
	if err != nil {
		return err
	}

	var opts []storeotel.Option
	if cfg.Trace {
		tp, mp, err := setupTelemetry(cfg.Service, out)
		if err != nil {
			return err
		}
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("storedemo: shutting down tracer provider: %v", err)
			}
			if err := mp.Shutdown(ctx); err != nil {
				log.Printf("storedemo: shutting down meter provider: %v", err)
			}
		}()
		opts = append(opts,
			storeotel.WithTracerProvider(tp),
			storeotel.WithMeterProvider(mp),
		)
	}

	obs, err := storeotel.New(opts...)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}

	logger := log.New(out, "", log.Ltime)
	if cfg.Quiet {
		logger = log.New(io.Discard, "", 0)
	}

	s, err := store.New(scenario.Counters, sc.Initial, store.Compose(
		store.ApplyMiddleware(
			store.Recoverer[map[string]int](func(action any, v any) {
				logger.Printf("recovered panic for %v: %v", action, v)
			}),
			store.Logger[map[string]int](logger),
		),
		storeotel.Enhancer[map[string]int](obs),
	))
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	sub, err := store.Observe(s, store.ObserverFunc[map[string]int](func(state map[string]int) {
		if !cfg.Quiet {
			fmt.Fprintf(out, "state: %v\n", state)
		}
	}))
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	defer sub.Unsubscribe()

	final, err := sc.Run(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: final state %v\n", sc.Name, final)

	return sc.Verify(final)
}

func setupTelemetry(service string, out io.Writer) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"", // Empty schema URL to avoid conflicts
			semconv.ServiceName(service),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("resource: %w", err)
	}

	traceExporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("trace exporter: %w", err)
	}

	metricExporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(out),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(traceExporter),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	return tp, mp, nil
}
