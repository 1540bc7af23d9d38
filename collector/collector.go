/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package collector receives the rows emitted by table functions.
package collector

import (
	"sync"

	"github.com/rulego/streamudf/dataset"
)

// Collector receives rows emitted by a table function.
type Collector interface {
	Collect(row *dataset.Row)
}

// Func adapts a plain function to Collector.
type Func func(row *dataset.Row)

func (f Func) Collect(row *dataset.Row) {
	f(row)
}

// Slice keeps collected rows in emission order. It is safe for concurrent use.
type Slice struct {
	mu   sync.Mutex
	rows []*dataset.Row
}

// NewSlice creates an empty Slice collector
func NewSlice() *Slice {
	return &Slice{}
}

func (s *Slice) Collect(row *dataset.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
}

// Rows returns a copy of the collected rows
func (s *Slice) Rows() []*dataset.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*dataset.Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the number of collected rows
func (s *Slice) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Reset drops all collected rows
func (s *Slice) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
}

type discard struct{}

func (discard) Collect(*dataset.Row) {}

// Discard drops every row.
var Discard Collector = discard{}
