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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// command is implemented by every workqueuectl subcommand.
type command interface {
	Run(ctx context.Context, args []string) error
}

// baseCommand is the stdout/stderr plumbing a subcommand needs: write to the
// real process streams by default, or to buffers a test installed via Pipe.
// workqueuectl only has two subcommands and neither needs flag grouping,
// shell completion, or help rendering, so this is the whole of its command
// framework rather than a generic one.
type baseCommand struct {
	stdout io.Writer
	stderr io.Writer
}

// Pipe redirects the command's stdout and stderr to buffers a test can
// inspect, returning (stdin, stdout, stderr). The returned stdin buffer is
// unused today; it exists so the signature has room for a subcommand that
// later reads from standard input.
func (c *baseCommand) Pipe() (stdin, stdout, stderr *bytes.Buffer) {
	var inBuf, outBuf, errBuf bytes.Buffer
	c.stdout = &outBuf
	c.stderr = &errBuf
	return &inBuf, &outBuf, &errBuf
}

func (c *baseCommand) Stdout() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}

func (c *baseCommand) Stderr() io.Writer {
	if c.stderr != nil {
		return c.stderr
	}
	return os.Stderr
}

// Outf writes a formatted, newline-terminated line to the command's stdout.
func (c *baseCommand) Outf(format string, a ...any) {
	fmt.Fprintf(c.Stdout(), format+"\n", a...)
}

// Errf writes a formatted, newline-terminated line to the command's stderr.
func (c *baseCommand) Errf(format string, a ...any) {
	fmt.Fprintf(c.Stderr(), format+"\n", a...)
}
