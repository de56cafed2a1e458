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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/workqueue-go/go-workqueue/testutil"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewQueue(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()

	if got := q.GetName(); got == "" {
		t.Errorf("expected a non-empty default name")
	}
}

func TestQueue_SetName(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()

	if err := q.SetName("renders"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := q.GetName(), "renders"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if diff := testutil.DiffErrString(q.SetName(""), "queue name must not be empty"); diff != "" {
		t.Error(diff)
	}
}

func TestQueue_Submit_nil(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()

	if err := q.Submit(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestQueue_Submit_alreadySubmitted(t *testing.T) {
	t.Parallel()

	q1, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q1.Close()
	q2, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q2.Close()

	block := make(chan struct{})
	op, err := NewOperation(func(op *Operation, arg any) error { <-block; return nil }, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q1.Submit(op); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q2.Submit(op); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("expected ErrAlreadySubmitted, got %v", err)
	}
	close(block)
}

func TestQueue_Submit_afterClose(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	op, err := NewOperation(func(op *Operation, arg any) error { return nil }, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Submit(op); !errors.Is(err, ErrQueueStopped) {
		t.Errorf("expected ErrQueueStopped, got %v", err)
	}
}

// TestQueue_SerialFIFO is seed scenario S1: ten operations appending their
// index to a shared slice must run in submission order.
func TestQueue_SerialFIFO(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		op, err := NewOperation(func(op *Operation, arg any) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := q.Submit(op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := q.WaitAll(testCtx(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 10 {
		t.Fatalf("expected 10 entries, got %d: %v", len(order), order)
	}
	for i, v := range order {
		if v != i {
			t.Errorf("order[%d] = %d, want %d (full: %v)", i, v, i, order)
		}
	}
}

// TestQueue_SuspendResume is seed scenario S2.
func TestQueue_SuspendResume(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()

	if err := q.Suspend(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var mu sync.Mutex
	flag := false
	op, err := NewOperation(func(op *Operation, arg any) error {
		mu.Lock()
		flag = true
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Submit(op); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	got := flag
	mu.Unlock()
	if got {
		t.Fatalf("expected the operation to not run while suspended")
	}

	if err := q.Resume(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := op.Wait(testCtx(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !flag {
		t.Errorf("expected the operation to have run after resume")
	}
}

// TestQueue_PrePopCancel is seed scenario S3.
func TestQueue_PrePopCancel(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()

	if err := q.Suspend(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var mu sync.Mutex
	var ran []string

	op1, err := NewOperation(func(op *Operation, arg any) error {
		mu.Lock()
		ran = append(ran, "op1")
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Submit(op1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	op1.Cancel()

	op2, err := NewOperation(func(op *Operation, arg any) error {
		mu.Lock()
		ran = append(ran, "op2")
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Submit(op2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := q.Resume(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.WaitAll(testCtx(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 || ran[0] != "op2" {
		t.Errorf("expected only op2 to run, got %v", ran)
	}
	if !op1.Flags().Finished {
		t.Errorf("expected op1 to be Finished")
	}
	if !op1.Flags().Canceled {
		t.Errorf("expected op1 to be Canceled")
	}
}

// TestQueue_CancelDuringExecution is seed scenario S6.
func TestQueue_CancelDuringExecution(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()

	exited := make(chan struct{})
	op, err := NewOperation(func(op *Operation, arg any) error {
		defer close(exited)
		for !op.Flags().Canceled {
			time.Sleep(time.Millisecond)
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Submit(op); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	op.Cancel()

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not observe cancellation within the deadline")
	}
	if err := op.Wait(testCtx(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !op.Flags().Finished {
		t.Errorf("expected Finished to be true")
	}
}

// TestQueue_CloseDrainsWithoutExecuting is seed scenario S9.
func TestQueue_CloseDrainsWithoutExecuting(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Suspend first so none of the five can start before Close runs.
	if err := q.Suspend(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var mu sync.Mutex
	ranCount := 0
	ops := make([]*Operation, 5)
	for i := range ops {
		op, err := NewOperation(func(op *Operation, arg any) error {
			mu.Lock()
			ranCount++
			mu.Unlock()
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := q.Submit(op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ops[i] = op
	}

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if ranCount != 0 {
		t.Errorf("expected none of the 5 operations to run, got %d", ranCount)
	}
	for i, op := range ops {
		if op.Flags().Finished {
			t.Errorf("op[%d]: expected dropped operations to never reach Finished", i)
		}
	}
}

func TestQueue_CancelAll(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()

	if err := q.Suspend(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	op, err := NewOperation(func(op *Operation, arg any) error { return nil }, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Submit(op); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q.CancelAll()

	if !op.Flags().Canceled {
		t.Errorf("expected op to be canceled")
	}
}

func TestQueue_Close_idempotent(t *testing.T) {
	t.Parallel()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected a second Close to be a no-op, got %v", err)
	}
}

func TestQueue_SuspendResume_restrictedOnMainQueue(t *testing.T) {
	t.Parallel()

	q := MainQueue()
	if err := q.Suspend(); !errors.Is(err, ErrMainQueueRestricted) {
		t.Errorf("expected ErrMainQueueRestricted from Suspend, got %v", err)
	}
	if err := q.Resume(); !errors.Is(err, ErrMainQueueRestricted) {
		t.Errorf("expected ErrMainQueueRestricted from Resume, got %v", err)
	}
	if err := q.Close(); !errors.Is(err, ErrMainQueueRestricted) {
		t.Errorf("expected ErrMainQueueRestricted from Close, got %v", err)
	}
}
