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

	"github.com/rulego/streamudf/collector"
	"github.com/rulego/streamudf/dataset"
)

// TableFunction maps one call to zero or more rows pushed to a collector.
type TableFunction interface {
	Function
	// ResultType names the columns of the emitted rows
	ResultType() dataset.RowType
	// Eval emits the rows for one call
	Eval(ctx *FunctionContext, out collector.Collector, args []interface{}) error
}

// Explode runs the named table function of the default registry and returns its rows.
func Explode(name string, ctx *FunctionContext, args []interface{}) ([]*dataset.Row, error) {
	return globalRegistry.Explode(name, ctx, args)
}

// Explode runs the named table function and returns its rows.
func (r *FunctionRegistry) Explode(name string, ctx *FunctionContext, args []interface{}) ([]*dataset.Row, error) {
	fn, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	tf, ok := fn.(TableFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotTableFunction, name)
	}
	if err := tf.Validate(args); err != nil {
		return nil, fmt.Errorf("function %s validation failed: %w", name, err)
	}
	out := collector.NewSlice()
	if err := tf.Eval(ctx, out, args); err != nil {
		return nil, err
	}
	return out.Rows(), nil
}

// collectAsMaps runs a table function and converts the rows to named columns.
// Table functions use it to implement Execute.
func collectAsMaps(tf TableFunction, ctx *FunctionContext, args []interface{}) (interface{}, error) {
	out := collector.NewSlice()
	if err := tf.Eval(ctx, out, args); err != nil {
		return nil, err
	}
	rowType := tf.ResultType()
	rows := out.Rows()
	result := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		result[i] = rowType.ToMap(row)
	}
	return result, nil
}
