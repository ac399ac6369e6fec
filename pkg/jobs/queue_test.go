package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("sync", func(context.Context, Job) error { return nil }, QueueConfig{})

	_, err := q.Enqueue(Job{Type: "sync_cycle"})
	assert.True(t, errors.Is(err, appErrors.ErrQueueStopped))
}

func TestQueueRunsJobsConcurrently(t *testing.T) {
	release := make(chan struct{})
	var running int32
	var peak int32
	var wg sync.WaitGroup
	wg.Add(2)

	q := NewQueue("sync", func(context.Context, Job) error {
		defer wg.Done()
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&running, -1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	first, err := q.Enqueue(Job{Type: "sync_cycle"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	_, err = q.Enqueue(Job{Type: "sync_cycle"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&peak) == 2 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()
}

func TestQueueFailedJobDoesNotStopWorker(t *testing.T) {
	var attempts int32
	q := NewQueue("sync", func(_ context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		if job.Type == "bad" {
			return errors.New("fail")
		}
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{Type: "bad"})
	require.NoError(t, err)
	_, err = q.Enqueue(Job{Type: "sync_cycle"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts), "failed job is not retried")
}
