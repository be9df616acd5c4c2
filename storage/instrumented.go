package storage

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/chinmina/credcache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	metricsOnce       sync.Once
	backendOperations metric.Int64Counter
	backendDuration   metric.Float64Histogram
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("github.com/chinmina/credcache/storage")

		var err error
		backendOperations, err = meter.Int64Counter(
			"cache.backend.operations",
			metric.WithDescription("Total cache backend operations"),
		)
		if err != nil {
			otel.Handle(err)
		}

		backendDuration, err = meter.Float64Histogram(
			"cache.backend.operation.duration",
			metric.WithDescription("Cache backend operation duration"),
			metric.WithUnit("s"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}

// Instrumented wraps a backend with metrics instrumentation.
type Instrumented struct {
	wrapped credcache.Backend
	kind    string
}

// NewInstrumented creates an instrumented backend wrapper. The returned
// backend preserves the Enumerator capability of the wrapped backend, so
// wrapping does not change the manager's enumeration strategy. Close is
// forwarded to the wrapped backend when it holds resources to release.
func NewInstrumented(backend credcache.Backend, kind string) credcache.Backend {
	initMetrics()
	wrapper := &Instrumented{
		wrapped: backend,
		kind:    kind,
	}
	if enum, ok := backend.(credcache.Enumerator); ok {
		return &instrumentedEnumerator{Instrumented: wrapper, enum: enum}
	}
	return wrapper
}

// Get retrieves a value from the backend.
func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()

	value, found, err := i.wrapped.Get(ctx, key)

	duration := time.Since(start)
	i.recordDuration(ctx, "get", duration)

	status := "miss"
	if err != nil {
		status = "error"
	} else if found {
		status = "hit"
	}
	i.recordOperation(ctx, "get", status)
	i.setSpanAttributes(ctx, "get", status, duration)

	return value, found, err
}

// Set stores a value in the backend.
func (i *Instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()

	err := i.wrapped.Set(ctx, key, value)

	duration := time.Since(start)
	i.recordDuration(ctx, "set", duration)

	status := "success"
	if err != nil {
		status = "error"
	}
	i.recordOperation(ctx, "set", status)
	i.setSpanAttributes(ctx, "set", status, duration)

	return err
}

// Remove deletes a key from the backend.
func (i *Instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()

	err := i.wrapped.Remove(ctx, key)

	duration := time.Since(start)
	i.recordDuration(ctx, "remove", duration)

	status := "success"
	if err != nil {
		status = "error"
	}
	i.recordOperation(ctx, "remove", status)
	i.setSpanAttributes(ctx, "remove", status, duration)

	return err
}

// Close releases the wrapped backend's resources. Backends without resources
// to release, such as Memory, have nothing to forward to.
func (i *Instrumented) Close() error {
	if closer, ok := i.wrapped.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (i *Instrumented) recordOperation(ctx context.Context, operation, status string) {
	if backendOperations == nil {
		return
	}
	backendOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("cache.backend", i.kind),
			attribute.String("cache.operation", operation),
			attribute.String("cache.status", status),
		),
	)
}

func (i *Instrumented) recordDuration(ctx context.Context, operation string, duration time.Duration) {
	if backendDuration == nil {
		return
	}
	backendDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("cache.backend", i.kind),
			attribute.String("cache.operation", operation),
		),
	)
}

func (i *Instrumented) setSpanAttributes(ctx context.Context, operation, status string, duration time.Duration) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("cache.backend", i.kind),
		attribute.String("cache."+operation+".status", status),
		attribute.Float64("cache."+operation+".duration", duration.Seconds()),
	)
}

// instrumentedEnumerator decorates Instrumented with the wrapped backend's
// native enumeration.
type instrumentedEnumerator struct {
	*Instrumented
	enum credcache.Enumerator
}

// AllKeys lists the wrapped backend's keys.
func (i *instrumentedEnumerator) AllKeys(ctx context.Context) ([]string, error) {
	start := time.Now()

	keys, err := i.enum.AllKeys(ctx)

	duration := time.Since(start)
	i.recordDuration(ctx, "all_keys", duration)

	status := "success"
	if err != nil {
		status = "error"
	}
	i.recordOperation(ctx, "all_keys", status)
	i.setSpanAttributes(ctx, "all_keys", status, duration)

	return keys, err
}
