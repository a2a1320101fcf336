package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PutAndGet(t *testing.T) {
	q := New[int](2)
	ctx := context.Background()
	stopped := func() bool { return false }

	require.NoError(t, q.Put(ctx, 1, stopped))
	require.NoError(t, q.Put(ctx, 2, stopped))
	assert.Equal(t, 2, q.Len())

	v, err := q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestQueue_TryPutFailsWhenFull(t *testing.T) {
	q := New[int](1)
	assert.True(t, q.TryPut(1))
	assert.False(t, q.TryPut(2))
}

func TestQueue_PutReturnsErrShutdownWhenStopped(t *testing.T) {
	q := New[int](0) // unbuffered and nothing ever reads: Put must block until stopped
	ctx := context.Background()

	stopped := func() bool { return true }

	err := q.Put(ctx, 1, stopped)
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestQueue_GetReturnsContextError(t *testing.T) {
	q := New[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueue_CapAndLen(t *testing.T) {
	q := New[int](5)
	assert.Equal(t, 5, q.Cap())
	assert.Equal(t, 0, q.Len())
	q.TryPut(1)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_PutBlocksUntilConsumed(t *testing.T) {
	q := New[int](0)
	ctx := context.Background()
	stopped := func() bool { return false }

	done := make(chan error, 1)
	go func() { done <- q.Put(ctx, 42, stopped) }()

	select {
	case <-done:
		t.Fatal("Put on an unbuffered queue must block until a receiver is ready")
	case <-time.After(50 * time.Millisecond):
	}

	v, err := q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Put did not unblock after Get consumed the item")
	}
}
