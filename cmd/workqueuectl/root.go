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
	"fmt"
)

var version = "source"

// subcommands maps each workqueuectl subcommand name to a constructor.
var subcommands = map[string]func() command{
	"run":    func() command { return &RunCommand{} },
	"status": func() command { return &StatusCommand{} },
}

// dispatch picks the subcommand named by args[0] and runs it with the rest
// of args.
func dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: workqueuectl <run|status> [options]")
	}

	if args[0] == "-version" || args[0] == "--version" || args[0] == "version" {
		fmt.Println("workqueuectl " + version)
		return nil
	}

	newCmd, ok := subcommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (want one of: run, status)", args[0])
	}
	return newCmd().Run(ctx, args[1:])
}
