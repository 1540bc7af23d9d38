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

package functions

import (
	"fmt"

	"github.com/rulego/streamudf/logger"
)

// AggregatorFunction defines the interface for aggregator functions that support incremental computation.
// Calls with several arguments pass them to Add as one []interface{}.
type AggregatorFunction interface {
	Function
	// New creates a new aggregator instance
	New() AggregatorFunction
	// Add adds a value for incremental computation
	Add(value interface{})
	// Result returns the aggregation result
	Result() interface{}
	// Reset resets the aggregator state
	Reset()
	// Clone clones the aggregator including its state
	Clone() AggregatorFunction
}

// RetractableAggregator can withdraw a value added earlier, as required by
// changelog input and OVER windows.
type RetractableAggregator interface {
	AggregatorFunction
	// Retract removes the contribution of value
	Retract(value interface{})
}

// MergeableAggregator can fold the state of other instances into itself, as
// required by session windows and partitioned execution.
type MergeableAggregator interface {
	AggregatorFunction
	// Merge adds the state of others to this aggregator
	Merge(others ...AggregatorFunction)
}

// LoggingAggregator logs through the logger of the stream that owns it
// instead of the process default.
type LoggingAggregator interface {
	AggregatorFunction
	SetLogger(log logger.Logger)
}

// CreateAggregator creates an aggregator instance from the default registry
func CreateAggregator(name string) (AggregatorFunction, error) {
	return globalRegistry.CreateAggregator(name)
}

// CreateAggregator creates a fresh aggregator instance for the named function
func (r *FunctionRegistry) CreateAggregator(name string) (AggregatorFunction, error) {
	fn, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}

	if aggFn, ok := fn.(AggregatorFunction); ok {
		return aggFn.New(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotAggregator, name)
}

// IsAggregatorFunction checks if a function name is an aggregator function
func IsAggregatorFunction(name string) bool {
	fn, exists := Get(name)
	if !exists {
		return false
	}
	_, ok := fn.(AggregatorFunction)
	return ok
}

// Retract withdraws value from agg, failing when agg cannot retract.
func Retract(agg AggregatorFunction, value interface{}) error {
	r, ok := agg.(RetractableAggregator)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRetractable, agg.GetName())
	}
	r.Retract(value)
	return nil
}

// Merge folds others into agg, failing when agg cannot merge.
func Merge(agg AggregatorFunction, others ...AggregatorFunction) error {
	m, ok := agg.(MergeableAggregator)
	if !ok {
		return fmt.Errorf("aggregator %s does not support merge", agg.GetName())
	}
	m.Merge(others...)
	return nil
}
