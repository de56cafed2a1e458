// Copyright 2023 The Authors (see AUTHORS file)
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

// Package run shells out commands on behalf of a queue operation. It is
// deliberately narrower than a general-purpose exec wrapper: the one thing
// every operation in this module needs is "run this shell command and get
// back its stdout, stderr, and error", so that's the one thing this package
// exposes.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// DefaultTimeout bounds how long Shell waits for a command when the calling
// context carries no deadline of its own. Operation bodies are expected to
// pass a context derived from the submitting code, which usually already
// has one; this is a backstop, not the primary mechanism.
const DefaultTimeout = time.Minute

// Shell runs command through "sh -c" and captures its stdout and stderr as
// strings, the shape an Operation body needs to stash a result.
//
// If the command exits with a nonzero status, the returned error wraps
// *exec.ExitError and its message includes the captured stderr, unless
// [AllowNonzeroExit] was passed.
func Shell(ctx context.Context, command string, opts ...Option) (stdout, stderr string, _ error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	cfg := compileOptions(opts)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // shelling out is the whole point of this package
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Dir = cfg.cwd
	if cfg.stdin != nil {
		cmd.Stdin = cfg.stdin
	}

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && cfg.allowNonZeroExit {
			err = nil
		} else {
			err = fmt.Errorf("command %q failed: %w\nstderr: %s", command, err, stderrBuf.String())
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), err
}

// Option configures [Shell].
type Option func(*options)

type options struct {
	allowNonZeroExit bool
	cwd              string
	stdin            io.Reader
}

// AllowNonzeroExit treats a nonzero exit code as success instead of an
// error. Queues sometimes run commands purely for their exit code (a lint
// check, a test runner) where a "failure" is an expected, inspectable
// outcome rather than an operation error.
func AllowNonzeroExit() Option {
	return func(o *options) { o.allowNonZeroExit = true }
}

// WithCwd runs the command in dir instead of the current process's working
// directory.
func WithCwd(dir string) Option {
	return func(o *options) { o.cwd = dir }
}

// WithStdin feeds r to the command's standard input.
func WithStdin(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

func compileOptions(opts []Option) *options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &o
}
