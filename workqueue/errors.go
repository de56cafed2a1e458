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
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for nil handles, malformed arguments, and
// operations restricted to or from the main queue. More specific sentinels
// below wrap this one, so callers may match at either granularity with
// [errors.Is].
var ErrInvalidArgument = errors.New("workqueue: invalid argument")

// ErrQueueStopped is returned by Submit when the target queue has already
// been closed.
var ErrQueueStopped = fmt.Errorf("%w: queue is stopped", ErrInvalidArgument)

// ErrAlreadySubmitted is returned by Submit when the operation already has an
// owning queue.
var ErrAlreadySubmitted = fmt.Errorf("%w: operation already submitted to a queue", ErrInvalidArgument)

// ErrAlreadyFinished is returned by Submit when the operation has already run
// to completion.
var ErrAlreadyFinished = fmt.Errorf("%w: operation already finished", ErrInvalidArgument)

// ErrMainQueueRestricted is returned by Suspend, Resume, and Close when
// called on the main queue, none of which it supports.
var ErrMainQueueRestricted = fmt.Errorf("%w: operation not permitted on the main queue", ErrInvalidArgument)

// wrapInvalidArgument builds an ErrInvalidArgument with a caller-specific
// message, still matchable via errors.Is(err, ErrInvalidArgument).
func wrapInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// PanicError wraps a panic recovered from an operation's function. It is
// attached to the operation (see (*Operation).Err) instead of being allowed
// to crash the queue's worker goroutine.
type PanicError struct {
	// Value is whatever was passed to panic().
	Value any
	// Stack is the goroutine stack trace captured at the point of the panic.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("workqueue: operation panicked: %v", e.Value)
}

// Unwrap lets errors.As/errors.Is see through to the panic value when it is
// itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
