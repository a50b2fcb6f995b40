package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/asyncweb/service/future"
	"github.com/viant/asyncweb/service/messaging/memory"
)

var _ future.Executor = (*Service)(nil)

func newStarted(t *testing.T, options ...Option) *Service {
	t.Helper()
	srv, err := New(options...)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(srv.Shutdown)
	return srv
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name      string
		options   []Option
		expectErr bool
	}{
		{name: "defaults"},
		{name: "explicit workers", options: []Option{WithWorkers(2), WithQueueBuffer(4)}},
		{name: "zero workers", options: []Option{WithWorkers(0)}, expectErr: true},
		{name: "config", options: []Option{WithConfig(Config{WorkerCount: -1})}, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, err := New(tc.options...)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, srv)
		})
	}
}

func TestService_ConcurrencyLimit(t *testing.T) {
	const workers = 3
	const jobs = 20
	srv := newStarted(t, WithWorkers(workers))

	var active, maxActive int64
	var wg sync.WaitGroup
	barrier := make(chan struct{})
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		err := srv.Submit(context.Background(), "job", func(ctx context.Context) {
			defer wg.Done()
			cur := atomic.AddInt64(&active, 1)
			for {
				prev := atomic.LoadInt64(&maxActive)
				if cur <= prev || atomic.CompareAndSwapInt64(&maxActive, prev, cur) {
					break
				}
			}
			<-barrier
			atomic.AddInt64(&active, -1)
		}, nil)
		require.NoError(t, err)
	}
	waitFor(t, func() bool { return atomic.LoadInt64(&active) == workers })
	close(barrier)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&maxActive), int64(workers))
	waitFor(t, func() bool { return srv.Progress().CompletedJobs == jobs })
	counters := srv.Progress()
	assert.Equal(t, jobs, counters.SubmittedJobs)
	assert.Equal(t, 0, counters.RunningJobs)
	assert.Equal(t, 0, counters.Pending())
}

func TestService_JobContext(t *testing.T) {
	srv := newStarted(t, WithWorkers(2))

	results := make(chan error, 2)
	work := func(ctx context.Context) {
		select {
		case <-time.After(50 * time.Millisecond):
			results <- nil
		case <-ctx.Done():
			results <- ctx.Err()
		}
	}

	cancelled, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Submit(cancelled, "interrupted", work, nil))
	require.NoError(t, srv.Submit(context.Background(), "normal", work, nil))
	cancel()

	var errs []error
	for i := 0; i < 2; i++ {
		errs = append(errs, <-results)
	}
	assert.ElementsMatch(t, []error{nil, context.Canceled}, errs)
}

func TestService_Panic(t *testing.T) {
	queue := memory.NewQueue[Job](memory.DefaultConfig())
	srv := newStarted(t, WithWorkers(1), WithMessageQueue(queue))

	rejected := make(chan error, 1)
	require.NoError(t, srv.Submit(context.Background(), "panic", func(ctx context.Context) {
		panic("bad job")
	}, func(err error) { rejected <- err }))

	select {
	case err := <-rejected:
		assert.ErrorIs(t, err, ErrJobPanicked)
		assert.Contains(t, err.Error(), "bad job")
	case <-time.After(5 * time.Second):
		t.Fatal("reject not called")
	}
	waitFor(t, func() bool { return queue.DLQSize() == 1 })
	assert.Equal(t, 1, srv.Progress().FailedJobs)
}

func TestService_Shutdown(t *testing.T) {
	srv, err := New(WithWorkers(1))
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))

	started := make(chan struct{})
	barrier := make(chan struct{})
	var completed int32
	require.NoError(t, srv.Submit(context.Background(), "running", func(ctx context.Context) {
		close(started)
		<-barrier
		atomic.StoreInt32(&completed, 1)
	}, nil))
	<-started

	var mu sync.Mutex
	var rejected []error
	for i := 0; i < 2; i++ {
		require.NoError(t, srv.Submit(context.Background(), "queued", func(ctx context.Context) {
			t.Error("queued job must not run after shutdown")
		}, func(err error) {
			mu.Lock()
			rejected = append(rejected, err)
			mu.Unlock()
		}))
	}

	done := make(chan struct{})
	go func() {
		srv.Shutdown()
		close(done)
	}()
	waitFor(t, srv.IsClosed)
	close(barrier)
	<-done

	assert.Equal(t, int32(1), atomic.LoadInt32(&completed))
	mu.Lock()
	assert.Len(t, rejected, 2)
	for _, err := range rejected {
		assert.ErrorIs(t, err, ErrClosed)
	}
	mu.Unlock()
	assert.Equal(t, 2, srv.Progress().RejectedJobs)

	err = srv.Submit(context.Background(), "late", func(ctx context.Context) {}, nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, srv.Start(context.Background()), ErrClosed)
	srv.Shutdown()
}

func TestService_FutureExecutor(t *testing.T) {
	srv := newStarted(t, WithWorkers(2))
	ctx := context.Background()

	first := future.Supply(ctx, srv, "process", func(ctx context.Context) (string, error) { return "abc", nil })
	second := future.ThenAsync(ctx, first, srv, "reverse", func(ctx context.Context, s string) (string, error) {
		return s + "-next", nil
	})
	v, err := second.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "abc-next", v)

	cause := errors.New("interrupted")
	_, err = future.Supply(ctx, srv, "process", func(ctx context.Context) (string, error) { return "", cause }).Get(ctx)
	assert.ErrorIs(t, err, cause)
}
