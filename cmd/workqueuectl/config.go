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

import "fmt"

// Config describes a set of named queues and the shell commands to run on
// each, loaded by cfgloader from a YAML file with environment overrides.
type Config struct {
	Queues      []QueueConfig `yaml:"queues"`
	Parallelism int           `yaml:"parallelism" env:"PARALLELISM,overwrite,default=4"`
}

// QueueConfig is one named queue and the commands to submit to it, in order.
type QueueConfig struct {
	Name     string   `yaml:"name"`
	Commands []string `yaml:"commands"`
}

// Validate implements [github.com/workqueue-go/go-workqueue/cfgloader.Validatable].
func (c *Config) Validate() error {
	if len(c.Queues) == 0 {
		return fmt.Errorf("config must define at least one queue")
	}
	seen := make(map[string]bool, len(c.Queues))
	for i, q := range c.Queues {
		if q.Name == "" {
			return fmt.Errorf("queues[%d]: name must not be empty", i)
		}
		if seen[q.Name] {
			return fmt.Errorf("queues[%d]: duplicate queue name %q", i, q.Name)
		}
		seen[q.Name] = true
		if len(q.Commands) == 0 {
			return fmt.Errorf("queues[%d] (%s): must define at least one command", i, q.Name)
		}
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive, got %d", c.Parallelism)
	}
	return nil
}
