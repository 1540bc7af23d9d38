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

package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr/vm"
	"github.com/samber/lo"

	"github.com/rulego/streamudf/condition"
	"github.com/rulego/streamudf/dataset"
	"github.com/rulego/streamudf/functions"
	"github.com/rulego/streamudf/logger"
	"github.com/rulego/streamudf/types"
	"github.com/rulego/streamudf/utils/cast"
	"github.com/rulego/streamudf/utils/fieldpath"
)

// ErrMergeMismatch is returned when merging streams whose aggregates differ.
var ErrMergeMismatch = errors.New("streams do not aggregate the same columns")

type Stream struct {
	config  types.QueryConfig
	bridge  *functions.ExprBridge
	logger  logger.Logger
	metrics *Metrics
	stats   *StatsCollector

	filter      condition.Condition
	lateral     *lateralJoin
	projections []projection
	aggregates  []*aggregate

	aggMux   sync.Mutex
	sinks    []func([]map[string]interface{})
	sinksMux sync.RWMutex
}

type lateralJoin struct {
	function string
	alias    string
	columns  dataset.RowType
	args     []*vm.Program
}

type projection struct {
	name    string
	program *vm.Program
}

type aggregate struct {
	name string
	args []*vm.Program
	acc  functions.AggregatorFunction
}

// NewStream compiles every expression of config and returns the stream.
func NewStream(config types.QueryConfig, opts ...Option) (*Stream, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Stream{
		config: config,
		stats:  NewStatsCollector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetDefault()
	}
	if s.bridge == nil {
		bridgeOpts := []functions.BridgeOption{functions.WithBridgeLogger(s.logger)}
		if s.metrics != nil {
			bridgeOpts = append(bridgeOpts, functions.WithCallObserver(s.metrics.ObserveCall))
		}
		s.bridge = functions.NewExprBridge(nil, bridgeOpts...)
	}

	if err := s.registerFilter(config.Where); err != nil {
		return nil, err
	}
	if err := s.compileLateral(config.Lateral); err != nil {
		return nil, err
	}
	for _, p := range config.Select {
		program, err := s.bridge.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("select %s: %w", p.Name, err)
		}
		s.projections = append(s.projections, projection{name: p.Name, program: program})
	}
	for _, a := range config.Aggregates {
		acc, err := s.bridge.Registry().CreateAggregator(a.Function)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", a.Name, err)
		}
		if la, ok := acc.(functions.LoggingAggregator); ok {
			la.SetLogger(s.logger)
		}
		args, err := s.compileAll(a.Args)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", a.Name, err)
		}
		s.aggregates = append(s.aggregates, &aggregate{name: a.Name, args: args, acc: acc})
	}
	return s, nil
}

// registerFilter 注册过滤条件，支持LIKE语法和IS NULL语法
func (s *Stream) registerFilter(where string) error {
	if strings.TrimSpace(where) == "" {
		return nil
	}
	filter, err := condition.NewBridgedCondition(s.bridge, where)
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}
	s.filter = filter
	return nil
}

func (s *Stream) compileLateral(cfg *types.LateralConfig) error {
	if cfg == nil {
		return nil
	}
	fn, ok := s.bridge.Registry().Get(cfg.Function)
	if !ok {
		return fmt.Errorf("lateral: %w: %s", functions.ErrFunctionNotFound, cfg.Function)
	}
	tf, ok := fn.(functions.TableFunction)
	if !ok {
		return fmt.Errorf("lateral: %w: %s", functions.ErrNotTableFunction, cfg.Function)
	}
	args, err := s.compileAll(cfg.Args)
	if err != nil {
		return fmt.Errorf("lateral: %w", err)
	}
	s.lateral = &lateralJoin{
		function: tf.GetName(),
		alias:    cfg.Alias,
		columns:  tf.ResultType(),
		args:     args,
	}
	return nil
}

func (s *Stream) compileAll(expressions []string) ([]*vm.Program, error) {
	programs := make([]*vm.Program, 0, len(expressions))
	for _, e := range expressions {
		program, err := s.bridge.Compile(e)
		if err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	return programs, nil
}

func evalAll(programs []*vm.Program, record map[string]interface{}) ([]interface{}, error) {
	values := make([]interface{}, len(programs))
	for i, program := range programs {
		v, err := functions.Run(program, record)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// IsAggregationQuery reports whether records are accumulated instead of emitted.
func (s *Stream) IsAggregationQuery() bool {
	return len(s.aggregates) > 0
}

// Process runs one record through the query and returns the emitted rows.
// Aggregation queries and filtered records return no rows.
func (s *Stream) Process(ctx context.Context, record map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.stats.IncrementInput()
	if record == nil {
		record = map[string]interface{}{}
	}

	kindField := s.config.Kind()
	rawKind, _ := fieldpath.Get(record, kindField)
	kind, err := dataset.ParseRowKind(cast.ToString(rawKind))
	if err != nil {
		return nil, s.fail(err)
	}

	if s.filter != nil && !s.filter.Evaluate(record) {
		s.drop()
		return nil, nil
	}

	rows := []map[string]interface{}{record}
	if s.lateral != nil {
		if rows, err = s.join(record); err != nil {
			return nil, s.fail(err)
		}
		if len(rows) == 0 {
			s.drop()
			return nil, nil
		}
	}

	if s.IsAggregationQuery() {
		if err := s.accumulate(kind, rows); err != nil {
			return nil, s.fail(err)
		}
		s.metrics.ObserveRecord(ResultAggregated)
		return nil, nil
	}

	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		projected, err := s.project(row, kindField)
		if err != nil {
			return nil, s.fail(err)
		}
		out = append(out, projected)
	}
	s.stats.AddOutput(len(out))
	s.metrics.ObserveRecord(ResultEmitted)
	return out, nil
}

func (s *Stream) fail(err error) error {
	s.stats.IncrementError()
	s.metrics.ObserveRecord(ResultError)
	return err
}

func (s *Stream) drop() {
	s.stats.IncrementFiltered()
	s.metrics.ObserveRecord(ResultFiltered)
}

// join runs the lateral table function and merges each emitted row into a
// copy of record. With an alias the columns are nested under it, so that
// expressions address them as alias.column.
func (s *Stream) join(record map[string]interface{}) ([]map[string]interface{}, error) {
	args, err := evalAll(s.lateral.args, record)
	if err != nil {
		return nil, fmt.Errorf("lateral %s: %w", s.lateral.function, err)
	}
	ctx := &functions.FunctionContext{Data: record, Logger: s.logger}
	rows, err := s.bridge.Registry().Explode(s.lateral.function, ctx, args)
	s.metrics.ObserveCall(s.lateral.function, err)
	if err != nil {
		return nil, err
	}
	joined := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		columns := s.lateral.columns.ToMap(row)
		if s.lateral.alias != "" {
			joined = append(joined, lo.Assign(record, map[string]interface{}{s.lateral.alias: columns}))
		} else {
			joined = append(joined, lo.Assign(record, columns))
		}
	}
	return joined, nil
}

func (s *Stream) project(row map[string]interface{}, kindField string) (map[string]interface{}, error) {
	if len(s.projections) == 0 {
		if fieldpath.IsNested(kindField) {
			return lo.Assign(row), nil
		}
		return lo.OmitByKeys(row, []string{kindField}), nil
	}
	out := make(map[string]interface{}, len(s.projections))
	for _, p := range s.projections {
		v, err := functions.Run(p.program, row)
		if err != nil {
			return nil, fmt.Errorf("select %s: %w", p.name, err)
		}
		out[p.name] = v
	}
	return out, nil
}

// accumulate adds or retracts the aggregate arguments of every row. All
// arguments are evaluated before any aggregator is touched, so a failing
// record leaves the aggregate state unchanged.
func (s *Stream) accumulate(kind dataset.RowKind, rows []map[string]interface{}) error {
	s.aggMux.Lock()
	defer s.aggMux.Unlock()

	if kind.IsRetraction() {
		for _, a := range s.aggregates {
			if _, ok := a.acc.(functions.RetractableAggregator); !ok {
				err := fmt.Errorf("%w: %s", functions.ErrNotRetractable, a.acc.GetName())
				s.metrics.ObserveCall(a.acc.GetName(), err)
				return fmt.Errorf("aggregate %s: %w", a.name, err)
			}
		}
	}

	// values[row][aggregate]
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(s.aggregates))
		for j, a := range s.aggregates {
			args, err := evalAll(a.args, row)
			if err != nil {
				return fmt.Errorf("aggregate %s: %w", a.name, err)
			}
			if len(args) == 1 {
				values[i][j] = args[0]
			} else {
				values[i][j] = args
			}
		}
	}

	for _, rowValues := range values {
		for j, a := range s.aggregates {
			var err error
			if kind.IsRetraction() {
				err = functions.Retract(a.acc, rowValues[j])
			} else {
				a.acc.Add(rowValues[j])
			}
			s.metrics.ObserveCall(a.acc.GetName(), err)
			if err != nil {
				return fmt.Errorf("aggregate %s: %w", a.name, err)
			}
		}
	}
	return nil
}

// Result returns the current aggregate values as one row, or nil when the
// query does not aggregate.
func (s *Stream) Result() map[string]interface{} {
	if !s.IsAggregationQuery() {
		return nil
	}
	s.aggMux.Lock()
	defer s.aggMux.Unlock()
	row := make(map[string]interface{}, len(s.aggregates))
	for _, a := range s.aggregates {
		row[a.name] = a.acc.Result()
	}
	return row
}

// Emit processes record and hands the emitted rows to the sinks. Errors are
// logged.
func (s *Stream) Emit(record map[string]interface{}) {
	rows, err := s.Process(context.Background(), record)
	if err != nil {
		s.logger.Error("process record failed: %v", err)
		return
	}
	if len(rows) > 0 {
		s.callSinks(rows)
	}
}

// Flush hands the current aggregate row to the sinks.
func (s *Stream) Flush() {
	row := s.Result()
	if row == nil {
		return
	}
	s.stats.AddOutput(1)
	s.callSinks([]map[string]interface{}{row})
}

// Merge folds the aggregate state of other into s. Both streams must run the
// same aggregates; other is left unchanged.
func (s *Stream) Merge(other *Stream) error {
	if other == nil || other == s {
		return nil
	}
	if len(other.aggregates) != len(s.aggregates) {
		return ErrMergeMismatch
	}

	other.aggMux.Lock()
	clones := make([]functions.AggregatorFunction, len(other.aggregates))
	for i, a := range other.aggregates {
		clones[i] = a.acc.Clone()
	}
	other.aggMux.Unlock()

	s.aggMux.Lock()
	defer s.aggMux.Unlock()
	for i, a := range s.aggregates {
		if a.name != other.aggregates[i].name || a.acc.GetName() != clones[i].GetName() {
			return fmt.Errorf("%w: %s", ErrMergeMismatch, a.name)
		}
	}
	for i, a := range s.aggregates {
		if err := functions.Merge(a.acc, clones[i]); err != nil {
			return fmt.Errorf("aggregate %s: %w", a.name, err)
		}
	}
	return nil
}

// Reset clears aggregate state and statistics.
func (s *Stream) Reset() {
	s.aggMux.Lock()
	for _, a := range s.aggregates {
		a.acc.Reset()
	}
	s.aggMux.Unlock()
	s.stats.Reset()
}

// Stats returns the input, output, filtered and error counts.
func (s *Stream) Stats() map[string]int64 {
	return s.stats.Snapshot()
}
