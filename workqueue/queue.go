// Copyright 2024 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package workqueue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/workqueue-go/go-workqueue/logging"
)

// QueueOption configures a [Queue] at construction time.
type QueueOption func(*Queue)

// WithName sets the queue's initial name, overriding the default
// "workqueue.Queue <hex-identity>" name that [NewQueue] otherwise assigns.
func WithName(name string) QueueOption {
	return func(q *Queue) { q.name = name }
}

// WithLogger attaches a structured logger the queue's worker uses for
// diagnostic (debug-level) and panic (error-level) logging. The default is
// [logging.Default].
func WithLogger(logger *zap.SugaredLogger) QueueOption {
	return func(q *Queue) { q.logger = logger }
}

// Queue is an ordered FIFO of operations served serially by one dedicated
// worker goroutine. Operations submitted to the same queue always run one
// at a time, in the order they were submitted; different queues run
// concurrently with each other.
//
// Create one with [NewQueue] (or use [MainQueue] for the process-wide main
// queue) and release it with [Queue.Close] once it is no longer needed.
type Queue struct {
	isMain bool
	logger *zap.SugaredLogger

	nameMu sync.Mutex
	name   string

	// guard protects the FIFO and executingOperation: everything a submitter,
	// canceller, or the worker itself touches about "what work is there".
	guard      sync.Mutex
	guardCond  *sync.Cond
	operations []*Operation
	executing  *Operation

	// stop is monotonic and read from both the worker's suspend-wait loop and
	// its FIFO-wait loop. It is a separate atomic, not a guard-protected bool,
	// specifically so the worker can check it while holding only suspend: the
	// data model's "guard before suspend, never the reverse" lock order would
	// otherwise forbid checking stop from inside the suspend critical section.
	stop atomic.Bool

	// suspend protects suspended, independent of guard per the lock-ordering
	// rule in the data model (guard is always acquired before suspend, never
	// the reverse).
	suspend     sync.Mutex
	suspendCond *sync.Cond
	suspended   bool

	workerDone chan struct{}
}

// NewQueue allocates a queue and immediately starts its worker goroutine.
func NewQueue(opts ...QueueOption) (*Queue, error) {
	q := &Queue{
		logger:     logging.Default(),
		workerDone: make(chan struct{}),
	}
	q.guardCond = sync.NewCond(&q.guard)
	q.suspendCond = sync.NewCond(&q.suspend)
	q.name = fmt.Sprintf("workqueue.Queue %p", q)

	for _, opt := range opts {
		opt(q)
	}

	go q.run()
	return q, nil
}

// setExecuting records (or clears, when op is nil) the operation currently
// executing on this queue. Called by Operation.perform with op's guard
// already held, never concurrently with itself.
func (q *Queue) setExecuting(op *Operation) {
	q.guard.Lock()
	q.executing = op
	q.guard.Unlock()
}

// SetName replaces the queue's name. It fails with [ErrInvalidArgument] if
// name is empty.
func (q *Queue) SetName(name string) error {
	if name == "" {
		return wrapInvalidArgument("queue name must not be empty")
	}
	q.nameMu.Lock()
	q.name = name
	q.nameMu.Unlock()
	return nil
}

// GetName returns the queue's current name.
func (q *Queue) GetName() string {
	q.nameMu.Lock()
	defer q.nameMu.Unlock()
	return q.name
}

// Submit enqueues op on q. It fails with:
//   - [ErrInvalidArgument] if q or op is nil,
//   - [ErrQueueStopped] if q has been closed,
//   - [ErrAlreadySubmitted] if op is already owned by a queue,
//   - [ErrAlreadyFinished] if op has already run to completion.
//
// A successful Submit is visible to the worker no later than the next time
// it re-acquires the FIFO lock; if two calls to Submit on the same queue
// return in program order, the first operation is guaranteed to execute
// before the second.
func (q *Queue) Submit(op *Operation) error {
	if q == nil || op == nil {
		return wrapInvalidArgument("queue and operation must not be nil")
	}

	op.guard.Lock()
	if op.queue != nil {
		op.guard.Unlock()
		return ErrAlreadySubmitted
	}
	op.guard.Unlock()

	op.wait.Lock()
	finished := op.finished
	op.wait.Unlock()
	if finished {
		return ErrAlreadyFinished
	}

	q.guard.Lock()
	if q.stop.Load() {
		q.guard.Unlock()
		return ErrQueueStopped
	}

	// Re-check ownership under q.guard and op.guard together: another
	// goroutine may have submitted op to a different queue between our first
	// check above and this one.
	op.guard.Lock()
	if op.queue != nil {
		op.guard.Unlock()
		q.guard.Unlock()
		return ErrAlreadySubmitted
	}
	op.queue = q
	op.guard.Unlock()

	wasEmpty := len(q.operations) == 0
	q.operations = append(q.operations, op)
	if wasEmpty {
		q.guardCond.Signal()
	}
	q.guard.Unlock()

	q.logger.Debugw("operation submitted", "queue", q.GetName())
	return nil
}

// Suspend pauses dispatching on q: any operation already popped from the
// FIFO runs to completion, but no further operation is popped until Resume
// is called. It fails with [ErrMainQueueRestricted] on the main queue.
func (q *Queue) Suspend() error {
	if q.isMain {
		return ErrMainQueueRestricted
	}
	q.suspend.Lock()
	if !q.suspended {
		q.suspended = true
		q.logger.Debugw("queue suspended", "queue", q.GetName())
	}
	q.suspend.Unlock()
	return nil
}

// Resume resumes dispatching on q after a prior Suspend. It fails with
// [ErrMainQueueRestricted] on the main queue.
func (q *Queue) Resume() error {
	if q.isMain {
		return ErrMainQueueRestricted
	}
	q.suspend.Lock()
	if q.suspended {
		q.suspended = false
		q.suspendCond.Broadcast()
		q.logger.Debugw("queue resumed", "queue", q.GetName())
	}
	q.suspend.Unlock()
	return nil
}

// IsSuspended reports whether the queue is currently suspended.
func (q *Queue) IsSuspended() bool {
	q.suspend.Lock()
	defer q.suspend.Unlock()
	return q.suspended
}

// CancelAll cancels every operation currently queued on q, and the one
// currently executing, if any. Cancellation remains cooperative: a running
// operation must still observe Flags().Canceled on its own.
func (q *Queue) CancelAll() {
	q.guard.Lock()
	pending := make([]*Operation, len(q.operations))
	copy(pending, q.operations)
	executing := q.executing
	q.guard.Unlock()

	for _, op := range pending {
		op.Cancel()
	}
	if executing != nil {
		executing.Cancel()
	}
}

// WaitAll blocks until every operation queued on q at the time of the call
// (including the one in flight, if any) has finished, or until ctx is done.
//
// Callers must not submit to q from another goroutine while WaitAll is
// running; doing so is undefined behavior, not a supported race.
func (q *Queue) WaitAll(ctx context.Context) error {
	for {
		q.guard.Lock()
		var tail *Operation
		if n := len(q.operations); n > 0 {
			tail = q.operations[n-1]
		} else {
			tail = q.executing
		}
		q.guard.Unlock()

		if tail == nil {
			return nil
		}
		if err := tail.Wait(ctx); err != nil {
			return err
		}
	}
}

// Close stops q: no further operations may be submitted, any operations
// still queued are dropped without executing (they never reach Finished;
// any outstanding Wait on one of them must rely on its own context deadline
// to return), and any in-flight operation is cooperatively canceled. Close
// blocks until the worker goroutine has exited. It fails with
// [ErrMainQueueRestricted] on the main queue.
func (q *Queue) Close() error {
	if q.isMain {
		return ErrMainQueueRestricted
	}

	q.guard.Lock()
	if q.stop.Load() {
		q.guard.Unlock()
		<-q.workerDone
		return nil
	}
	q.stop.Store(true)
	dropped := q.operations
	q.operations = nil
	executing := q.executing
	q.guardCond.Broadcast()
	q.guard.Unlock()

	// Wake a worker that might instead be parked waiting for suspend to
	// clear; it needs to observe stop from either suspension point.
	q.suspend.Lock()
	q.suspendCond.Broadcast()
	q.suspend.Unlock()

	if executing != nil {
		executing.Cancel()
	}
	for _, op := range dropped {
		op.guard.Lock()
		op.queue = nil
		op.guard.Unlock()
	}

	q.logger.Debugw("queue closed", "queue", q.GetName(), "dropped", len(dropped))

	<-q.workerDone
	return nil
}

// run is the worker loop. It is the body run by a spawned goroutine for a
// normal queue, and by RunMainQueueLoop's caller for the main queue.
func (q *Queue) run() {
	defer close(q.workerDone)
	for {
		q.suspend.Lock()
		for q.suspended && !q.stopped() {
			q.suspendCond.Wait()
		}
		q.suspend.Unlock()

		if q.stopped() {
			return
		}

		op := q.popOperation()
		if op == nil {
			if q.stopped() {
				return
			}
			continue
		}
		op.perform(q)
	}
}

func (q *Queue) stopped() bool {
	return q.stop.Load()
}

// popOperation removes and returns the head of the FIFO, or nil if the queue
// is suspended or was woken only to observe that it is stopping.
func (q *Queue) popOperation() *Operation {
	q.guard.Lock()
	for len(q.operations) == 0 && !q.stop.Load() {
		q.guardCond.Wait()
	}
	if len(q.operations) == 0 {
		q.guard.Unlock()
		return nil
	}
	q.guard.Unlock()

	if q.IsSuspended() {
		return nil
	}

	q.guard.Lock()
	if len(q.operations) == 0 {
		q.guard.Unlock()
		return nil
	}
	op := q.operations[0]
	q.operations = q.operations[1:]
	q.guard.Unlock()
	return op
}
