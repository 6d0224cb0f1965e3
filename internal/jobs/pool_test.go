package jobs

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsSubmittedWork(t *testing.T) {
	pool := NewPool(4)
	pool.Start()
	defer pool.Stop()

	var counter atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		ok := pool.Submit(func() {
			counter.Add(1)
			wg.Done()
		})
		assert.True(t, ok)
	}
	wg.Wait()

	assert.Equal(t, int32(50), counter.Load())

	submitted, completed := pool.Stats()
	assert.Equal(t, uint64(50), submitted)
	assert.Equal(t, uint64(50), completed)
}

func TestPoolRejectsWhenStopped(t *testing.T) {
	pool := NewPool(2)
	assert.False(t, pool.Submit(func() {}), "a pool that never started rejects work")

	pool.Start()
	pool.Stop()
	assert.False(t, pool.Submit(func() {}), "a stopped pool rejects work")
}

func TestPoolStartIsIdempotent(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Start()
	defer pool.Stop()

	done := make(chan struct{})
	assert.True(t, pool.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	pool := NewPool(1)
	pool.Start()
	defer pool.Stop()

	// One task blocks the single worker; the queue behind it is bounded.
	release := make(chan struct{})
	pool.Submit(func() { <-release })

	accepted := 0
	for i := 0; i < 1000; i++ {
		if pool.Submit(func() {}) {
			accepted++
		}
	}
	assert.Less(t, accepted, 1000, "a full queue must reject rather than block")
	close(release)
}
