package supervisor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/camwatch/internal/models"
	"github.com/brightloop/camwatch/internal/queue"
)

// crashOnceWorker panics exactly once, then (when rebuilt by the factory)
// blocks until its PoisonPill arrives -- simulating spec §8 scenario 6
// ("kill the Detection process... Supervisor restarts Detection").
type crashOnceWorker struct {
	q        *queue.Queue[any]
	started  *int32
	crash    bool
}

func (w *crashOnceWorker) Run(ctx context.Context) {
	atomic.AddInt32(w.started, 1)
	if w.crash {
		panic("simulated crash")
	}
	for {
		item, err := w.q.Get(ctx)
		if err != nil {
			return
		}
		if _, isPill := item.(*models.PoisonPill); isPill {
			return
		}
	}
}

func newQueues() Queues {
	return Queues{
		FrameQ:   queue.New[any](4),
		PersonQ:  queue.New[any](4),
		VehicleQ: queue.New[any](4),
		NotifQ:   queue.New[any](4),
	}
}

func TestSupervisor_RestartsAfterCrash(t *testing.T) {
	queues := newQueues()
	var starts int32
	var first int32 = 1

	factories := map[string]Factory{
		"worker": func() Worker {
			crash := atomic.CompareAndSwapInt32(&first, 1, 0)
			return &crashOnceWorker{q: queues.FrameQ, started: &starts, crash: crash}
		},
	}

	sup := New(queues, factories)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sup.Run(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&starts) >= 2
	}, 3*time.Second, 10*time.Millisecond, "supervisor must restart a worker that crashed")

	cancel()
}

func TestSupervisor_GracefulShutdownPushesPoisonPillsAndJoins(t *testing.T) {
	queues := newQueues()
	var starts int32

	factories := map[string]Factory{
		"worker": func() Worker {
			return &crashOnceWorker{q: queues.FrameQ, started: &starts, crash: false}
		},
	}

	sup := New(queues, factories)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(runDone)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&starts) >= 1 }, time.Second, 5*time.Millisecond)

	cancel() // Run() selects on ctx.Done() the same as a trapped signal

	select {
	case <-runDone:
	case <-time.After(3 * time.Second):
		t.Fatal("supervisor did not shut down within the expected window")
	}

	assert.True(t, sup.Stopped())
}

func TestQueues_All(t *testing.T) {
	q := newQueues()
	assert.Len(t, q.all(), 4)
}
