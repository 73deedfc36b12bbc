package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// ErrScanInFlight rejects a new ingestion while one is running. There
// is no queueing and no cancellation of the running one.
var ErrScanInFlight = errors.New("an ingestion is already in flight")

// Runner enforces the at-most-one-ingestion rule. Every outcome of a
// guarded operation is a Result; operations never return errors of
// their own past this boundary.
type Runner struct {
	inFlight atomic.Bool
}

func NewRunner() *Runner {
	return &Runner{}
}

// Do runs op on the calling goroutine while holding the in-flight slot.
// A concurrent call fails fast with ErrScanInFlight.
func (r *Runner) Do(ctx context.Context, op func(ctx context.Context) Result) (Result, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrScanInFlight
	}
	defer r.inFlight.Store(false)
	return op(ctx), nil
}

// Go runs op on its own goroutine and hands the outcome to the
// dispatcher. The in-flight rejection still happens synchronously so
// the caller gets immediate feedback.
func (r *Runner) Go(ctx context.Context, op func(ctx context.Context) Result, d *Dispatcher) error {
	if !r.inFlight.CompareAndSwap(false, true) {
		return ErrScanInFlight
	}
	go func() {
		defer r.inFlight.Store(false)
		result := op(ctx)
		if d != nil {
			d.Dispatch(ctx, result)
		}
	}()
	return nil
}

// Busy reports whether an ingestion is currently running.
func (r *Runner) Busy() bool {
	return r.inFlight.Load()
}

// Consumer is the display layer's receiving end. It may not have
// finished initializing when a result arrives.
type Consumer interface {
	Ready() bool
	Deliver(Result)
}

// Dispatcher hands results to a consumer that may not be ready yet.
// Delivery is retried on a fixed cadence up to the attempt budget and
// then dropped silently; the handshake models a target without a
// readiness signal.
type Dispatcher struct {
	consumer    Consumer
	maxAttempts int
	delay       time.Duration
}

func NewDispatcher(consumer Consumer, maxAttempts int, delay time.Duration) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 20
	}
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	return &Dispatcher{consumer: consumer, maxAttempts: maxAttempts, delay: delay}
}

// Dispatch blocks until the result is delivered or the attempt budget
// runs out.
func (d *Dispatcher) Dispatch(ctx context.Context, result Result) {
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if d.consumer.Ready() {
			d.consumer.Deliver(result)
			return
		}
		if attempt == d.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.delay):
		}
	}
	slog.Debug("Dropping ingestion result, consumer never became ready",
		"attempts", d.maxAttempts,
		"ok", result.OK)
}
