package async

import (
	"context"
	"sync"
)

// Loop is the single-threaded event loop all async execution runs on.
// Tasks may be posted from any goroutine; they execute one at a time on
// the goroutine that called Run. The loop drains until the task queue is
// empty and no host operations are outstanding.
type Loop struct {
	mu          sync.Mutex
	cond        *sync.Cond
	tasks       []func()
	pending     int
	interrupted bool
}

func NewLoop() *Loop {
	l := &Loop{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Post enqueues a task. Safe from any goroutine.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()
	l.cond.Signal()
}

// AddPending records an outstanding host operation (a timer, an I/O
// call) that will eventually post a task. The loop stays alive while any
// are outstanding.
func (l *Loop) AddPending() {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()
}

// DonePending balances AddPending.
func (l *Loop) DonePending() {
	l.mu.Lock()
	l.pending--
	l.mu.Unlock()
	l.cond.Signal()
}

// Run executes tasks until the loop is idle (no queued tasks, no pending
// host operations) or ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	l.interrupted = false
	l.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.interrupted = true
			l.mu.Unlock()
			l.cond.Broadcast()
		case <-stop:
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		task := l.next()
		if task == nil {
			return ctx.Err()
		}
		task()
	}
}

// next blocks until a task is available, returning nil once the loop is
// idle or interrupted.
func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.tasks) == 0 {
		if l.interrupted || l.pending == 0 {
			return nil
		}
		l.cond.Wait()
	}
	task := l.tasks[0]
	l.tasks = l.tasks[1:]
	return task
}
