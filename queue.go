package easel

import (
	"context"
	"sync"
)

// QueueStats counts what a render queue has done.
type QueueStats struct {
	Pushed   int // batches handed to push
	Replaced int // pending batches dropped because a newer one subsumed them
	Executed int // batches run to completion
}

// renderQueue runs batches one at a time on a worker goroutine that lives
// only while work is pending. A pushed batch that subsumes the last
// not-yet-started batch replaces it.
type renderQueue struct {
	name string
	run  func(RenderInfoMap)

	mu      sync.Mutex
	pending []RenderInfoMap
	running bool
	idle    chan struct{} // closed while no worker is running
	stats   QueueStats
}

func newRenderQueue(name string, run func(RenderInfoMap)) *renderQueue {
	idle := make(chan struct{})
	close(idle)
	return &renderQueue{name: name, run: run, idle: idle}
}

func (q *renderQueue) push(batch RenderInfoMap) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stats.Pushed++
	if n := len(q.pending); n > 0 && IsSubRenderInfo(q.pending[n-1], batch) {
		q.pending[n-1] = batch
		q.stats.Replaced++
	} else {
		q.pending = append(q.pending, batch)
	}
	if !q.running {
		q.running = true
		q.idle = make(chan struct{})
		go q.drain()
	}
}

func (q *renderQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			close(q.idle)
			q.mu.Unlock()
			return
		}
		batch := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.run(batch)

		q.mu.Lock()
		q.stats.Executed++
		q.mu.Unlock()
	}
}

// wait blocks until the queue has no running or pending batch.
func (q *renderQueue) wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *renderQueue) snapshot() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}
