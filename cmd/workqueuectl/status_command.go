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
	"flag"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/workqueue-go/go-workqueue/cfgloader"
)

// StatusCommand prints a human-readable summary of a queue configuration
// file without running anything.
type StatusCommand struct {
	baseCommand

	flagConfig string
}

func (c *StatusCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(c.Stderr())
	fs.StringVar(&c.flagConfig, "config", "", "Path to the queue configuration file.")
	fs.StringVar(&c.flagConfig, "c", "", "Shorthand for -config.")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if c.flagConfig == "" {
		return fmt.Errorf("-config is required")
	}

	var cfg Config
	if err := cfgloader.LoadFile(ctx, c.flagConfig, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	titler := cases.Title(language.English)
	for _, qc := range cfg.Queues {
		c.Outf("%s: %d command(s)", titler.String(qc.Name), len(qc.Commands))
	}

	return nil
}
