package otel

import (
	"context"
	"fmt"
	"time"

	"github.com/jilio/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jilio/store"
)

// Observability records traces and metrics for store dispatches using OpenTelemetry
type Observability struct {
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	dispatchCounter  metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	dispatchErrors   metric.Int64Counter
	listeners        metric.Int64UpDownCounter
}

// Option configures the Observability
type Option func(*Observability)

// WithTracerProvider sets a custom tracer provider
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *Observability) {
		o.tracer = provider.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets a custom meter provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *Observability) {
		o.meter = provider.Meter(instrumentationName)
	}
}

// New creates a new OpenTelemetry observability implementation
func New(opts ...Option) (*Observability, error) {
	obs := &Observability{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	for _, opt := range opts {
		opt(obs)
	}

	var err error

	obs.dispatchCounter, err = obs.meter.Int64Counter(
		"store.dispatch.count",
		metric.WithDescription("Number of dispatched actions"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	obs.dispatchDuration, err = obs.meter.Float64Histogram(
		"store.dispatch.duration",
		metric.WithDescription("Dispatch duration including listener notification"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	obs.dispatchErrors, err = obs.meter.Int64Counter(
		"store.dispatch.errors",
		metric.WithDescription("Number of failed dispatches"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	obs.listeners, err = obs.meter.Int64UpDownCounter(
		"store.listeners",
		metric.WithDescription("Number of subscribed listeners"),
		metric.WithUnit("{listener}"),
	)
	if err != nil {
		return nil, err
	}

	return obs, nil
}

// OnDispatchStart is called when an action starts dispatching
func (o *Observability) OnDispatchStart(ctx context.Context, actionType string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "store.dispatch: "+actionType,
		trace.WithAttributes(
			attribute.String("action.type", actionType),
		),
	)

	o.dispatchCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("action.type", actionType),
		),
	)

	return ctx
}

// OnDispatchComplete is called when a dispatch returns (with or without error)
func (o *Observability) OnDispatchComplete(ctx context.Context, actionType string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	attrs := metric.WithAttributes(attribute.String("action.type", actionType))

	durationMs := float64(duration) / float64(time.Millisecond)
	o.dispatchDuration.Record(ctx, durationMs, attrs)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		o.dispatchErrors.Add(ctx, 1, attrs)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

// OnSubscribe is called when a listener is added
func (o *Observability) OnSubscribe(ctx context.Context) {
	o.listeners.Add(ctx, 1)
}

// OnUnsubscribe is called when a listener is removed
func (o *Observability) OnUnsubscribe(ctx context.Context) {
	o.listeners.Add(ctx, -1)
}

// Enhancer returns a store enhancer that reports every Dispatch, Subscribe and
// Unsubscribe of the created store to obs. A dispatch made by a listener is
// recorded as a child span of the dispatch that notified it.
func Enhancer[S any](obs *Observability) store.Enhancer[S] {
	return func(next store.CreateFunc[S]) store.CreateFunc[S] {
		return func(reducer store.Reducer[S], initial S) (store.Store[S], error) {
			base, err := next(reducer, initial)
			if err != nil {
				return nil, err
			}
			return &instrumented[S]{Store: base, obs: obs}, nil
		}
	}
}

// instrumented wraps a store. active is the context of the dispatch whose
// listeners are currently running.
type instrumented[S any] struct {
	store.Store[S]
	obs    *Observability
	active context.Context
}

func (i *instrumented[S]) Dispatch(action any) (result any, err error) {
	actionType := "unknown"
	if t, ok := store.TypeOf(action); ok {
		actionType = fmt.Sprint(t)
	}

	prev := i.active
	parent := prev
	if parent == nil {
		parent = context.Background()
	}
	ctx := i.obs.OnDispatchStart(parent, actionType)
	i.active = ctx

	start := time.Now()
	defer func() {
		i.active = prev
		if r := recover(); r != nil {
			i.obs.OnDispatchComplete(ctx, actionType, time.Since(start), fmt.Errorf("panic: %v", r))
			panic(r)
		}
		i.obs.OnDispatchComplete(ctx, actionType, time.Since(start), err)
	}()

	return i.Store.Dispatch(action)
}

func (i *instrumented[S]) Subscribe(listener store.Listener) (store.Unsubscribe, error) {
	unsubscribe, err := i.Store.Subscribe(listener)
	if err != nil {
		return nil, err
	}
	i.obs.OnSubscribe(context.Background())

	counted := true
	return func() error {
		if err := unsubscribe(); err != nil {
			return err
		}
		if counted {
			counted = false
			i.obs.OnUnsubscribe(context.Background())
		}
		return nil
	}, nil
}
