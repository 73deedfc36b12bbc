package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConsumer struct {
	mu         sync.Mutex
	readyAfter int
	checks     int
	delivered  []Result
}

func (c *stubConsumer) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks++
	return c.checks > c.readyAfter
}

func (c *stubConsumer) Deliver(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered = append(c.delivered, r)
}

func (c *stubConsumer) results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.delivered...)
}

func TestRunnerRejectsConcurrentScan(t *testing.T) {
	r := NewRunner()
	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_, _ = r.Do(context.Background(), func(context.Context) Result {
			close(started)
			<-release
			return Success(nil)
		})
	}()
	<-started

	_, err := r.Do(context.Background(), func(context.Context) Result {
		return Success(nil)
	})
	assert.ErrorIs(t, err, ErrScanInFlight)
	assert.True(t, r.Busy())

	close(release)
}

func TestRunnerReleasesSlot(t *testing.T) {
	r := NewRunner()

	res, err := r.Do(context.Background(), func(context.Context) Result {
		return Failure(ReasonEmpty)
	})
	require.NoError(t, err)
	assert.Equal(t, Failure(ReasonEmpty), res)

	// The slot is free again after completion.
	_, err = r.Do(context.Background(), func(context.Context) Result {
		return Success(nil)
	})
	assert.NoError(t, err)
}

func TestRunnerGoDeliversThroughDispatcher(t *testing.T) {
	r := NewRunner()
	consumer := &stubConsumer{}
	d := NewDispatcher(consumer, 3, time.Millisecond)

	err := r.Go(context.Background(), func(context.Context) Result {
		return Success([]SourceItem{{Path: "a.pdf"}})
	}, d)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(consumer.results()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, consumer.results()[0].OK)
}

func TestDispatcherRetriesUntilReady(t *testing.T) {
	consumer := &stubConsumer{readyAfter: 2}
	d := NewDispatcher(consumer, 5, time.Millisecond)

	d.Dispatch(context.Background(), Success(nil))

	results := consumer.results()
	require.Len(t, results, 1)
}

func TestDispatcherGivesUpSilently(t *testing.T) {
	consumer := &stubConsumer{readyAfter: 100}
	d := NewDispatcher(consumer, 3, time.Millisecond)

	d.Dispatch(context.Background(), Success(nil))

	assert.Empty(t, consumer.results())
	assert.Equal(t, 3, consumer.checks)
}

func TestDispatcherStopsOnContextCancel(t *testing.T) {
	consumer := &stubConsumer{readyAfter: 100}
	d := NewDispatcher(consumer, 20, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Dispatch(ctx, Success(nil))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch did not stop on cancellation")
	}
	assert.Empty(t, consumer.results())
}
