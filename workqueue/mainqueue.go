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
	"sync"

	"github.com/workqueue-go/go-workqueue/logging"
)

var (
	mainQueueOnce sync.Once
	mainQueue     *Queue
)

// MainQueue returns the process-wide main queue, creating it on first call.
// The main queue is never started by MainQueue itself: its worker loop only
// runs once some goroutine calls [RunMainQueueLoop], mirroring a "main
// thread" that an application's entrypoint dedicates to dispatch.
//
// Operations submitted to the main queue before RunMainQueueLoop is called
// simply wait in its FIFO. Suspend, Resume, and Close all fail with
// [ErrMainQueueRestricted]; the main queue lives for the lifetime of the
// process and is stopped only by RunMainQueueLoop returning.
func MainQueue() *Queue {
	mainQueueOnce.Do(func() {
		mainQueue = &Queue{
			isMain:     true,
			logger:     logging.Default(),
			workerDone: make(chan struct{}),
		}
		mainQueue.guardCond = sync.NewCond(&mainQueue.guard)
		mainQueue.suspendCond = sync.NewCond(&mainQueue.suspend)
		mainQueue.name = "workqueue.MainQueue"
	})
	return mainQueue
}

// RunMainQueueLoop adopts the calling goroutine as the main queue's worker:
// it pops and runs operations submitted to [MainQueue] until ctx is done or
// [StopMainQueueLoop] is called, whichever comes first. It does not return
// until the loop has actually stopped.
//
// Call this once, from whatever goroutine is standing in for the original
// "main thread" (typically the goroutine running main()). Calling it a
// second time, concurrently or after the first call returns, starts a fresh
// loop: the main queue itself persists across loop restarts, only the
// goroutine driving it changes.
func RunMainQueueLoop(ctx context.Context) error {
	q := MainQueue()

	q.guard.Lock()
	q.stop.Store(false)
	q.workerDone = make(chan struct{})
	q.guard.Unlock()

	stopOnCtxDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			requestMainQueueStop(q)
		case <-stopOnCtxDone:
		}
	}()
	defer close(stopOnCtxDone)

	q.run()

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// StopMainQueueLoop requests that the goroutine running [RunMainQueueLoop]
// return after finishing (or skipping) whatever operation it is currently
// running. It does not wait for the loop to actually stop; call it and then
// let RunMainQueueLoop's own return be the synchronization point.
//
// This has no analogue in the run loop this library was ported from, which
// never returns once started; it exists because a Go program, unlike the
// original's process, usually wants a clean way to let its main goroutine
// fall out of dispatch during shutdown.
func StopMainQueueLoop() {
	requestMainQueueStop(MainQueue())
}

func requestMainQueueStop(q *Queue) {
	q.guard.Lock()
	q.stop.Store(true)
	q.guardCond.Broadcast()
	q.guard.Unlock()

	q.suspend.Lock()
	q.suspendCond.Broadcast()
	q.suspend.Unlock()
}
