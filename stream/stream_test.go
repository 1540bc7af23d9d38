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
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/streamudf/functions"
	"github.com/rulego/streamudf/logger"
	"github.com/rulego/streamudf/types"
)

func newTestStream(t *testing.T, config types.QueryConfig, opts ...Option) *Stream {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewDiscardLogger())}, opts...)
	s, err := NewStream(config, opts...)
	require.NoError(t, err)
	return s
}

func countConfig() types.QueryConfig {
	return types.QueryConfig{
		Aggregates: []types.AggregateConfig{
			{Name: "hits", Function: "count_substring", Args: []string{"text", "'ab'"}},
		},
	}
}

func TestStream_WhereAndSelect(t *testing.T) {
	s := newTestStream(t, types.QueryConfig{
		Where: "name LIKE 'A%' && tshirt_sizing_is_smaller(size, 'L')",
		Select: []types.Projection{
			{Name: "name", Expr: "name"},
			{Name: "payload", Expr: "rename_json_field(payload, 'a', 'b')"},
		},
	})

	tests := []struct {
		name   string
		record map[string]interface{}
		want   []map[string]interface{}
	}{
		{
			name:   "match",
			record: map[string]interface{}{"name": "Alice", "size": "M", "payload": `{"a":1}`},
			want:   []map[string]interface{}{{"name": "Alice", "payload": `{"b":1}`}},
		},
		{
			name:   "name filtered",
			record: map[string]interface{}{"name": "Bob", "size": "S", "payload": `{"a":1}`},
		},
		{
			name:   "size filtered",
			record: map[string]interface{}{"name": "Anna", "size": "XL", "payload": `{"a":1}`},
		},
		{
			name:   "missing fields filtered",
			record: map[string]interface{}{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.Process(context.Background(), tt.record)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, rows)
				return
			}
			assert.Equal(t, tt.want, rows)
		})
	}

	stats := s.Stats()
	assert.Equal(t, int64(4), stats[InputCount])
	assert.Equal(t, int64(1), stats[OutputCount])
	assert.Equal(t, int64(3), stats[FilteredCount])
	assert.Equal(t, int64(0), stats[ErrorCount])
}

func TestStream_EmptySelectDropsKindField(t *testing.T) {
	s := newTestStream(t, types.QueryConfig{KindField: "op"})

	rows, err := s.Process(context.Background(), map[string]interface{}{"id": 1, "op": "+U"})
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"id": 1}}, rows)
}

func TestStream_NestedKindField(t *testing.T) {
	s := newTestStream(t, types.QueryConfig{
		KindField:  "meta.op",
		Aggregates: countConfig().Aggregates,
	})

	for _, r := range []map[string]interface{}{
		{"text": "ababab", "meta": map[string]interface{}{"op": "+I"}},
		{"text": "ab", "meta": map[string]interface{}{"op": "-D"}},
		{"text": "ab"},
	} {
		_, err := s.Process(context.Background(), r)
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]interface{}{"hits": int64(3)}, s.Result())
}

func TestStream_LateralWithAlias(t *testing.T) {
	s := newTestStream(t, types.QueryConfig{
		Lateral: &types.LateralConfig{Function: "text_extractor", Args: []string{"sentence"}, Alias: "t"},
		Select: []types.Projection{
			{Name: "id", Expr: "id"},
			{Name: "word", Expr: "t.word"},
			{Name: "length", Expr: "t.length"},
		},
	})

	rows, err := s.Process(context.Background(), map[string]interface{}{"id": 7, "sentence": "Hello, big world!"})
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"id": 7, "word": "Hello", "length": 5},
		{"id": 7, "word": "big", "length": 3},
		{"id": 7, "word": "world", "length": 5},
	}, rows)
	assert.Equal(t, int64(3), s.Stats()[OutputCount])
}

func TestStream_LateralWithoutAlias(t *testing.T) {
	s := newTestStream(t, types.QueryConfig{
		Lateral: &types.LateralConfig{Function: "TEXT_EXTRACTOR", Args: []string{"sentence", "','"}},
	})

	rows, err := s.Process(context.Background(), map[string]interface{}{"sentence": "a,,bc"})
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"sentence": "a,,bc", "word": "a", "length": 1},
		{"sentence": "a,,bc", "word": "bc", "length": 2},
	}, rows)
}

func TestStream_LateralWithoutRowsDropsRecord(t *testing.T) {
	s := newTestStream(t, types.QueryConfig{
		Lateral: &types.LateralConfig{Function: "string_logging", Args: []string{"line"}, Alias: "l"},
	})

	rows, err := s.Process(context.Background(), map[string]interface{}{"line": ""})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, int64(1), s.Stats()[FilteredCount])
}

func TestStream_AggregateWithRetraction(t *testing.T) {
	s := newTestStream(t, countConfig())
	assert.True(t, s.IsAggregationQuery())

	records := []map[string]interface{}{
		{"text": "abab"},
		{"text": "xxab", "_kind": "+I"},
		{"text": "ab", "_kind": "-D"},
		{"text": "ab ab ab", "_kind": "+U"},
		{"text": "abab", "_kind": "-U"},
		{"text": nil},
	}
	for _, r := range records {
		rows, err := s.Process(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, rows)
	}
	assert.Equal(t, map[string]interface{}{"hits": int64(3)}, s.Result())

	s.Reset()
	assert.Equal(t, map[string]interface{}{"hits": int64(0)}, s.Result())
	assert.Equal(t, int64(0), s.Stats()[InputCount])
}

func TestStream_ProcessErrors(t *testing.T) {
	s := newTestStream(t, countConfig())

	_, err := s.Process(context.Background(), map[string]interface{}{"text": "ab", "_kind": "upsert"})
	assert.Error(t, err)
	assert.Equal(t, int64(1), s.Stats()[ErrorCount])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Process(ctx, map[string]interface{}{"text": "ab"})
	assert.ErrorIs(t, err, context.Canceled)
}

type sumAggregator struct {
	*functions.BaseFunction
	sum float64
}

func (f *sumAggregator) Validate(args []interface{}) error { return f.ValidateArgCount(args) }
func (f *sumAggregator) Execute(ctx *functions.FunctionContext, args []interface{}) (interface{}, error) {
	return nil, nil
}
func (f *sumAggregator) New() functions.AggregatorFunction {
	return &sumAggregator{BaseFunction: f.BaseFunction}
}
func (f *sumAggregator) Add(value interface{}) {
	if v, ok := value.(float64); ok {
		f.sum += v
	}
}
func (f *sumAggregator) Result() interface{} { return f.sum }
func (f *sumAggregator) Reset()              { f.sum = 0 }
func (f *sumAggregator) Clone() functions.AggregatorFunction {
	return &sumAggregator{BaseFunction: f.BaseFunction, sum: f.sum}
}

func TestStream_RetractionOnPlainAggregator(t *testing.T) {
	registry := functions.NewFunctionRegistry()
	require.NoError(t, registry.Register(&sumAggregator{
		BaseFunction: functions.NewBaseFunction("plain_sum", functions.TypeAggregation, "test", "sum", 1, 1),
	}))
	s := newTestStream(t, types.QueryConfig{
		Aggregates: []types.AggregateConfig{{Name: "total", Function: "plain_sum", Args: []string{"v"}}},
	}, WithBridge(functions.NewExprBridge(registry)))

	_, err := s.Process(context.Background(), map[string]interface{}{"v": 1.5})
	require.NoError(t, err)
	_, err = s.Process(context.Background(), map[string]interface{}{"v": 1.5, "_kind": "-D"})
	assert.ErrorIs(t, err, functions.ErrNotRetractable)
	assert.Equal(t, map[string]interface{}{"total": 1.5}, s.Result())

	other := newTestStream(t, types.QueryConfig{
		Aggregates: []types.AggregateConfig{{Name: "total", Function: "plain_sum", Args: []string{"v"}}},
	}, WithBridge(functions.NewExprBridge(registry)))
	assert.Error(t, s.Merge(other))
}

func TestStream_FailedRecordLeavesAggregatesUnchanged(t *testing.T) {
	s := newTestStream(t, types.QueryConfig{
		Aggregates: []types.AggregateConfig{
			{Name: "ok", Function: "count_substring", Args: []string{"text", "'a'"}},
			{Name: "bad", Function: "count_substring", Args: []string{"rename_json_field(text)", "'a'"}},
		},
	})

	_, err := s.Process(context.Background(), map[string]interface{}{"text": "aaa"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate bad")
	assert.Equal(t, map[string]interface{}{"ok": int64(0), "bad": int64(0)}, s.Result())
	assert.Equal(t, int64(1), s.Stats()[ErrorCount])
}

func TestStream_RetractionCheckedBeforeApplying(t *testing.T) {
	registry := functions.NewFunctionRegistry()
	functions.RegisterBuiltins(registry)
	require.NoError(t, registry.Register(&sumAggregator{
		BaseFunction: functions.NewBaseFunction("plain_sum", functions.TypeAggregation, "test", "sum", 1, 1),
	}))
	s := newTestStream(t, types.QueryConfig{
		Aggregates: []types.AggregateConfig{
			{Name: "hits", Function: "count_substring", Args: []string{"text", "'ab'"}},
			{Name: "total", Function: "plain_sum", Args: []string{"v"}},
		},
	}, WithBridge(functions.NewExprBridge(registry)))

	_, err := s.Process(context.Background(), map[string]interface{}{"text": "abab", "v": 2.0})
	require.NoError(t, err)
	_, err = s.Process(context.Background(), map[string]interface{}{"text": "ab", "v": 2.0, "_kind": "-D"})
	assert.ErrorIs(t, err, functions.ErrNotRetractable)
	assert.Equal(t, map[string]interface{}{"hits": int64(2), "total": 2.0}, s.Result())
}

func TestStream_AggregatorLogsThroughStreamLogger(t *testing.T) {
	var buf bytes.Buffer
	s := newTestStream(t, countConfig(), WithLogger(logger.NewLogger(logger.DEBUG, &buf)))

	_, err := s.Process(context.Background(), map[string]interface{}{"text": "ab"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "accumulating substring count")
}

func TestStream_Merge(t *testing.T) {
	left := newTestStream(t, countConfig())
	right := newTestStream(t, countConfig())

	for _, text := range []string{"ab", "abab"} {
		_, err := left.Process(context.Background(), map[string]interface{}{"text": text})
		require.NoError(t, err)
	}
	_, err := right.Process(context.Background(), map[string]interface{}{"text": "ababab"})
	require.NoError(t, err)

	require.NoError(t, left.Merge(right))
	assert.Equal(t, map[string]interface{}{"hits": int64(6)}, left.Result())
	assert.Equal(t, map[string]interface{}{"hits": int64(3)}, right.Result())

	mismatched := newTestStream(t, types.QueryConfig{
		Aggregates: []types.AggregateConfig{
			{Name: "other", Function: "count_substring", Args: []string{"text", "'ab'"}},
		},
	})
	assert.ErrorIs(t, left.Merge(mismatched), ErrMergeMismatch)
	assert.ErrorIs(t, left.Merge(newTestStream(t, types.QueryConfig{})), ErrMergeMismatch)
	assert.NoError(t, left.Merge(left))
}

func TestStream_ConcurrentProcess(t *testing.T) {
	s := newTestStream(t, countConfig())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Process(context.Background(), map[string]interface{}{"text": "abab"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), s.Result()["hits"])
	assert.Equal(t, int64(50), s.Stats()[InputCount])
}

func TestStream_SinksAndFlush(t *testing.T) {
	s := newTestStream(t, types.QueryConfig{
		Select: []types.Projection{{Name: "n", Expr: "count_substring(text, 'a')"}},
	})

	var got [][]map[string]interface{}
	s.AddSink(func(rows []map[string]interface{}) {
		panic("broken sink")
	})
	s.AddSink(func(rows []map[string]interface{}) {
		got = append(got, rows)
	})

	s.Emit(map[string]interface{}{"text": "banana"})
	s.Emit(map[string]interface{}{"text": "x", "_kind": "bogus"})
	require.Len(t, got, 1)
	assert.Equal(t, []map[string]interface{}{{"n": int64(3)}}, got[0])

	s.Flush()
	assert.Len(t, got, 1)

	agg := newTestStream(t, countConfig())
	var flushed []map[string]interface{}
	agg.AddSink(func(rows []map[string]interface{}) {
		flushed = rows
	})
	agg.Emit(map[string]interface{}{"text": "ab"})
	assert.Nil(t, flushed)
	agg.Flush()
	assert.Equal(t, []map[string]interface{}{{"hits": int64(1)}}, flushed)
}

func TestNewStream_InvalidQuery(t *testing.T) {
	tests := []struct {
		name   string
		config types.QueryConfig
		target error
	}{
		{
			name:   "unknown aggregate",
			config: types.QueryConfig{Aggregates: []types.AggregateConfig{{Name: "x", Function: "nope"}}},
			target: functions.ErrFunctionNotFound,
		},
		{
			name:   "scalar used as aggregate",
			config: types.QueryConfig{Aggregates: []types.AggregateConfig{{Name: "x", Function: "rename_json_field"}}},
			target: functions.ErrNotAggregator,
		},
		{
			name:   "unknown lateral",
			config: types.QueryConfig{Lateral: &types.LateralConfig{Function: "nope"}},
			target: functions.ErrFunctionNotFound,
		},
		{
			name:   "scalar used as lateral",
			config: types.QueryConfig{Lateral: &types.LateralConfig{Function: "tshirt_sizing_is_smaller"}},
			target: functions.ErrNotTableFunction,
		},
		{
			name:   "bad where",
			config: types.QueryConfig{Where: "a >"},
		},
		{
			name:   "bad select",
			config: types.QueryConfig{Select: []types.Projection{{Name: "a", Expr: "(("}}},
		},
		{
			name:   "unnamed column",
			config: types.QueryConfig{Select: []types.Projection{{Expr: "a"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStream(tt.config)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	shared, err := NewMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, m.records, shared.records)

	s := newTestStream(t, types.QueryConfig{
		Where:  "tshirt_sizing_is_smaller(size, 'M')",
		Select: []types.Projection{{Name: "size", Expr: "size"}},
	}, WithMetrics(m))

	for _, size := range []string{"S", "XS", "L"} {
		_, err := s.Process(context.Background(), map[string]interface{}{"size": size})
		require.NoError(t, err)
	}
	_, err = s.Process(context.Background(), map[string]interface{}{"_kind": "?"})
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues(ResultEmitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues(ResultFiltered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues(ResultError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.calls.WithLabelValues("tshirt_sizing_is_smaller", "ok")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveRecord(ResultEmitted)
		nilMetrics.ObserveCall("x", nil)
	})
}
