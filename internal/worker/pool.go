// Package worker provides the bounded pool that runs one analysis task
// per file. Submission never blocks; results come back through futures.
package worker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vestigehq/vestige/pkg/models"
)

var (
	// ErrPoolShutDown rejects tasks submitted to, or still queued in, a
	// pool that has been shut down.
	ErrPoolShutDown = errors.New("worker pool shut down")
	// ErrDuplicateTask rejects a task whose id is already in flight.
	ErrDuplicateTask = errors.New("task id already queued")
	// ErrTaskTimeout resolves a future whose task exceeded its deadline.
	// The worker finishes the task body; cancellation is cooperative.
	ErrTaskTimeout = errors.New("task deadline exceeded")
)

// State is a worker's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateBusy
	StateError
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	case StateError:
		return "error"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Task pairs a unique id with the work producing one file's result.
// Timeout, when positive, bounds how long callers wait on the future.
type Task struct {
	ID      string
	Run     func() (*models.FileAnalysisResult, error)
	Timeout time.Duration
}

// Future resolves exactly once with a task's result or error.
type Future struct {
	done    chan struct{}
	resolve sync.Once
	result  *models.FileAnalysisResult
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) settle(result *models.FileAnalysisResult, err error) {
	f.resolve.Do(func() {
		f.result = result
		f.err = err
		close(f.done)
	})
}

// Done is closed when the future has settled.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the future settles.
func (f *Future) Wait() (*models.FileAnalysisResult, error) {
	<-f.done
	return f.result, f.err
}

// WorkerStats is one worker's counters and current state.
type WorkerStats struct {
	ID             int
	State          State
	TasksCompleted uint64
	TasksFailed    uint64
}

// PoolStats aggregates the pool's counters.
type PoolStats struct {
	Workers        []WorkerStats
	QueueDepth     int
	TasksCompleted uint64
	TasksFailed    uint64
}

type queued struct {
	task   Task
	future *Future
}

type workerSlot struct {
	id        int
	state     atomic.Int32
	completed atomic.Uint64
	failed    atomic.Uint64
}

func (w *workerSlot) setState(s State) { w.state.Store(int32(s)) }
func (w *workerSlot) getState() State  { return State(w.state.Load()) }

// Pool is a fixed-size worker pool with a FIFO queue. Submit never blocks
// the caller: tasks queue and drain onto idle workers.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*queued
	inflight map[string]bool
	workers  []*workerSlot
	shutdown bool
	cooldown time.Duration
	wg       sync.WaitGroup
}

// Option configures a pool.
type Option func(*Pool)

// WithErrorCooldown sets how long a worker stays in the error state after
// a failed task before resetting to idle.
func WithErrorCooldown(d time.Duration) Option {
	return func(p *Pool) { p.cooldown = d }
}

// NewPool starts size workers. Size values below one are clamped to one.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		inflight: make(map[string]bool),
		cooldown: 10 * time.Millisecond,
	}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}

	p.workers = make([]*workerSlot, size)
	for i := range p.workers {
		w := &workerSlot{id: i}
		w.setState(StateIdle)
		p.workers[i] = w
		p.wg.Add(1)
		go p.run(w)
	}
	return p
}

// Submit enqueues a task and returns its future immediately. A task whose
// id is already in flight is rejected, as is any submission after
// Shutdown.
func (p *Pool) Submit(task Task) (*Future, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown {
		return nil, ErrPoolShutDown
	}
	if p.inflight[task.ID] {
		return nil, ErrDuplicateTask
	}
	p.inflight[task.ID] = true

	fut := newFuture()
	p.queue = append(p.queue, &queued{task: task, future: fut})
	p.cond.Signal()
	return fut, nil
}

func (p *Pool) next() (*queued, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.shutdown {
		p.cond.Wait()
	}
	if p.shutdown {
		return nil, false
	}
	item := p.queue[0]
	p.queue = p.queue[1:]
	return item, true
}

func (p *Pool) run(w *workerSlot) {
	defer p.wg.Done()
	for {
		item, ok := p.next()
		if !ok {
			w.setState(StateTerminated)
			return
		}
		p.execute(w, item)

		p.mu.Lock()
		delete(p.inflight, item.task.ID)
		p.mu.Unlock()
	}
}

// execute runs one task on one worker. Detectors inside the task run
// sequentially; the task owns its parse tree exclusively. A panicking or
// failing task puts the worker into the error state for a cooldown, then
// back to idle. No retry happens here.
func (p *Pool) execute(w *workerSlot, item *queued) {
	w.setState(StateBusy)

	var timer *time.Timer
	if item.task.Timeout > 0 {
		timer = time.AfterFunc(item.task.Timeout, func() {
			item.future.settle(nil, fmt.Errorf("task %s: %w", item.task.ID, ErrTaskTimeout))
		})
	}

	result, err := p.runTask(item.task)
	if timer != nil {
		timer.Stop()
	}
	item.future.settle(result, err)

	if err != nil {
		w.failed.Add(1)
		w.setState(StateError)
		time.Sleep(p.cooldown)
	} else {
		w.completed.Add(1)
	}
	w.setState(StateIdle)
}

func (p *Pool) runTask(task Task) (result *models.FileAnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("task %s panicked: %v", task.ID, r)
		}
	}()
	return task.Run()
}

// Shutdown stops accepting tasks, waits up to timeout for busy workers to
// finish, then rejects everything still queued with ErrPoolShutDown and
// marks all workers terminated.
func (p *Pool) Shutdown(timeout time.Duration) {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	rejected := p.queue
	p.queue = nil
	for _, item := range rejected {
		delete(p.inflight, item.task.ID)
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, item := range rejected {
		item.future.settle(nil, fmt.Errorf("task %s: %w", item.task.ID, ErrPoolShutDown))
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}

	for _, w := range p.workers {
		w.setState(StateTerminated)
	}
}

// Stats snapshots the pool's counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	depth := len(p.queue)
	p.mu.Unlock()

	stats := PoolStats{QueueDepth: depth}
	for _, w := range p.workers {
		ws := WorkerStats{
			ID:             w.id,
			State:          w.getState(),
			TasksCompleted: w.completed.Load(),
			TasksFailed:    w.failed.Load(),
		}
		stats.TasksCompleted += ws.TasksCompleted
		stats.TasksFailed += ws.TasksFailed
		stats.Workers = append(stats.Workers, ws)
	}
	return stats
}
