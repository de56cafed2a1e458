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

// Package workqueue implements a small work-dispatch library: operations (a
// function plus an argument) are submitted to named queues, each served by
// its own dedicated worker goroutine in strict FIFO order.
//
// Unlike a parallel worker pool, a [Queue] never runs more than one
// operation at a time; concurrency comes from running multiple queues side
// by side, not from parallelizing within one. Queues support cooperative
// cancellation of individual operations or of everything pending, and can be
// suspended and resumed without losing queued work.
//
// A process-wide main queue (see [MainQueue]) is bound to whichever
// goroutine calls [RunMainQueueLoop], mirroring the "main thread" of the
// system this library was ported from. It is the one queue an application
// does not create or close itself.
package workqueue
