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

import "sync"

// commandResultCache collects each command's captured stdout, keyed by
// "queue/command", so RunCommand can print results in queue order once every
// queue has drained instead of interleaving output from concurrent queues.
type commandResultCache struct {
	mu  sync.Mutex
	out map[string]string
}

func newCommandResultCache() *commandResultCache {
	return &commandResultCache{out: make(map[string]string)}
}

func (c *commandResultCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out[key] = value
}

func (c *commandResultCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.out[key]
	return v, ok
}
