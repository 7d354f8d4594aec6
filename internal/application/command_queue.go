package application

import (
	"sync"

	"github.com/oksasatya/vendor-directory/internal/domain/state"
)

// commandQueue runs commands one at a time in push order. push never blocks.
type commandQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []state.Command
	closed  bool
	pending sync.WaitGroup
	done    chan struct{}
	run     func(state.Command)
}

func newCommandQueue(run func(state.Command)) *commandQueue {
	q := &commandQueue{run: run, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

func (q *commandQueue) push(c state.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending.Add(1)
	q.items = append(q.items, c)
	q.cond.Signal()
}

func (q *commandQueue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			return
		}
		c := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		q.run(c)
		q.pending.Done()
	}
}

func (q *commandQueue) wait() {
	q.pending.Wait()
}

// close stops accepting commands, drains what is queued and waits for the worker.
func (q *commandQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}
