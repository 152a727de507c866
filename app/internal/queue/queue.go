package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
)

// ErrQueueClosed is returned by Do once the queue has been closed.
var ErrQueueClosed = errors.New("queue closed")

type job struct {
	run  func()
	done chan struct{}
}

// Queue runs jobs one at a time on a single worker goroutine
type Queue struct {
	ch       chan job
	interval time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue. A positive limitPerMin paces jobs so that at most
// that many start per minute; zero or negative disables pacing.
func NewQueue(limitPerMin int) *Queue {
	q := &Queue{
		ch: make(chan job, 1000),
	}
	if limitPerMin > 0 {
		q.interval = time.Minute / time.Duration(limitPerMin)
	}

	go q.worker()
	return q
}

func (q *Queue) worker() {
	var last time.Time
	for j := range q.ch {
		if q.interval > 0 && !last.IsZero() {
			if wait := q.interval - time.Since(last); wait > 0 {
				time.Sleep(wait)
			}
		}
		last = time.Now()
		q.handle(j)
	}
}

func (q *Queue) handle(j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("queued job panicked", "panic", r)
		}
	}()
	j.run()
}

// Do enqueues fn and blocks until it has run
func (q *Queue) Do(fn func()) error {
	j := job{run: fn, done: make(chan struct{})}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.ch <- j
	q.mu.RUnlock()

	<-j.done
	return nil
}

// Close stops the worker once queued jobs have run. Closing twice is safe.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
