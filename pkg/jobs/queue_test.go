package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 3)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 2})

	require.Error(t, q.Enqueue(Job{ID: "early"}))

	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id}))
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		select {
		case id := <-done:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	assert.Len(t, seen, 3)
}

func TestQueueRetriesThenReportsFailure(t *testing.T) {
	var attempts int32
	failed := make(chan Job, 1)
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
		OnFailure:  func(j Job, err error) { failed <- j },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "x"}))

	select {
	case j := <-failed:
		assert.Equal(t, "x", j.ID)
		assert.Equal(t, 3, j.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("failure handler not called")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueueReportsFailureWhenRetryCannotBeRequeued(t *testing.T) {
	release := make(chan struct{})
	attempted := make(chan string, 4)
	failed := make(chan Job, 1)

	q := NewQueue("full", func(ctx context.Context, job Job) error {
		attempted <- job.ID
		if job.ID == "x" {
			return errors.New("boom")
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{
		Workers:    1,
		BufferSize: 1,
		MaxRetries: 3,
		RetryDelay: 50 * time.Millisecond,
		OnFailure:  func(j Job, err error) { failed <- j },
	})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	require.NoError(t, q.Enqueue(Job{ID: "x"}))
	require.Equal(t, "x", <-attempted)

	// Occupy the only worker and the only buffer slot before the retry fires.
	require.NoError(t, q.Enqueue(Job{ID: "busy"}))
	require.Equal(t, "busy", <-attempted)
	require.NoError(t, q.Enqueue(Job{ID: "filler"}))

	select {
	case j := <-failed:
		assert.Equal(t, "x", j.ID)
		assert.Equal(t, 1, j.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("failure handler not called for dropped retry")
	}
}
