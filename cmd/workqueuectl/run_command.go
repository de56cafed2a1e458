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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sethvargo/go-retry"

	"github.com/workqueue-go/go-workqueue/cfgloader"
	"github.com/workqueue-go/go-workqueue/logging"
	"github.com/workqueue-go/go-workqueue/run"
	"github.com/workqueue-go/go-workqueue/timeutil"
	"github.com/workqueue-go/go-workqueue/workqueue"
)

// RunCommand loads a queue configuration and drives every queue it defines
// to completion, running each queue's commands concurrently with the other
// queues but serially within each one: exactly the concurrency shape
// [workqueue.Queue] provides.
type RunCommand struct {
	baseCommand

	flagConfig string
}

func (c *RunCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.Stderr())
	fs.StringVar(&c.flagConfig, "config", "", "Path to the queue configuration file.")
	fs.StringVar(&c.flagConfig, "c", "", "Shorthand for -config.")
	logging.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if c.flagConfig == "" {
		return fmt.Errorf("-config is required")
	}

	var cfg Config
	if err := cfgloader.LoadFile(ctx, c.flagConfig,
		&cfg, cfgloader.WithEnvPrefix("WORKQUEUECTL_")); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewFromFlags()

	// Queue names come from the config, but an operator may also reuse a
	// name between two queue blocks that were merged from separate files in
	// a future version of this tool; distinctQueueNames reports the names
	// actually being dispatched, independent of how many blocks named them.
	var names []string
	for _, qc := range cfg.Queues {
		names = append(names, qc.Name)
	}
	if distinct := distinctQueueNames(names); len(distinct) != len(cfg.Queues) {
		c.Errf("warning: %d queue blocks resolve to %d distinct queue names", len(cfg.Queues), len(distinct))
	}

	var queues []*workqueue.Queue
	defer func() {
		for _, q := range queues {
			q.Close()
		}
	}()

	results := newCommandResultCache()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Parallelism)

	for _, qc := range cfg.Queues {
		qc := qc

		q, err := workqueue.NewQueue(workqueue.WithName(qc.Name), workqueue.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to create queue %q: %w", qc.Name, err)
		}
		queues = append(queues, q)

		eg.Go(func() error {
			start := time.Now()
			err := c.runQueue(egCtx, q, qc, results)
			c.Errf("[%s] drained in %s", qc.Name, timeutil.HumanDuration(time.Since(start)))
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("one or more queues failed: %w", err)
	}

	for _, qc := range cfg.Queues {
		for _, command := range qc.Commands {
			key := qc.Name + "/" + command
			if out, ok := results.lookup(key); ok {
				c.Outf("[%s] %s\n%s", qc.Name, command, out)
			}
		}
	}

	return nil
}

// runQueue submits qc's commands to q in order and waits for the queue to
// drain. Submit is retried with a short constant backoff when it fails with
// [workqueue.ErrQueueStopped]. Run closes its queues only after every
// runQueue call has returned, so canceling ctx does not close q here.
func (c *RunCommand) runQueue(ctx context.Context, q *workqueue.Queue, qc QueueConfig, results *commandResultCache) error {
	backoff := retry.WithMaxRetries(3, retry.NewConstant(25*time.Millisecond))

	for _, command := range qc.Commands {
		command := command

		op, err := workqueue.NewOperation(func(op *workqueue.Operation, arg any) error {
			stdout, stderr, err := run.Shell(ctx, command)
			key := qc.Name + "/" + command
			if err != nil {
				results.set(key, fmt.Sprintf("error: %v\nstderr: %s", err, stderr))
				return err
			}
			results.set(key, stdout)
			return nil
		}, command)
		if err != nil {
			return fmt.Errorf("queue %q: failed to build operation for %q: %w", qc.Name, command, err)
		}

		submitErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
			err := q.Submit(op)
			if errors.Is(err, workqueue.ErrQueueStopped) {
				return retry.RetryableError(err)
			}
			return err
		})
		if submitErr != nil {
			return fmt.Errorf("queue %q: failed to submit %q: %w", qc.Name, command, submitErr)
		}
	}

	return q.WaitAll(ctx)
}
