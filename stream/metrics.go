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
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Statistics field constants
const (
	InputCount    = "input_count"
	OutputCount   = "output_count"
	FilteredCount = "filtered_count"
	ErrorCount    = "error_count"
)

// Record outcomes reported on streamudf_records_total.
const (
	ResultEmitted    = "emitted"
	ResultFiltered   = "filtered"
	ResultAggregated = "aggregated"
	ResultError      = "error"
)

// StatsCollector statistics information collector
// Provides thread-safe statistics collection functionality
type StatsCollector struct {
	inputCount    int64
	outputCount   int64
	filteredCount int64
	errorCount    int64
}

// NewStatsCollector creates a new statistics collector
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

// IncrementInput increments input count
func (sc *StatsCollector) IncrementInput() {
	atomic.AddInt64(&sc.inputCount, 1)
}

// AddOutput adds n emitted rows
func (sc *StatsCollector) AddOutput(n int) {
	atomic.AddInt64(&sc.outputCount, int64(n))
}

// IncrementFiltered counts a record rejected by WHERE or by an empty lateral join
func (sc *StatsCollector) IncrementFiltered() {
	atomic.AddInt64(&sc.filteredCount, 1)
}

// IncrementError increments error count
func (sc *StatsCollector) IncrementError() {
	atomic.AddInt64(&sc.errorCount, 1)
}

// Reset resets statistics information
func (sc *StatsCollector) Reset() {
	atomic.StoreInt64(&sc.inputCount, 0)
	atomic.StoreInt64(&sc.outputCount, 0)
	atomic.StoreInt64(&sc.filteredCount, 0)
	atomic.StoreInt64(&sc.errorCount, 0)
}

// Snapshot returns the current counts keyed by the statistics field constants.
func (sc *StatsCollector) Snapshot() map[string]int64 {
	return map[string]int64{
		InputCount:    atomic.LoadInt64(&sc.inputCount),
		OutputCount:   atomic.LoadInt64(&sc.outputCount),
		FilteredCount: atomic.LoadInt64(&sc.filteredCount),
		ErrorCount:    atomic.LoadInt64(&sc.errorCount),
	}
}

// Metrics holds the prometheus counters of a stream. A nil *Metrics is a no-op.
type Metrics struct {
	records *prometheus.CounterVec
	calls   *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg. Counters already
// registered by another stream on the same registerer are shared.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamudf_records_total",
		Help: "Records processed by streams, by outcome",
	}, []string{"result"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamudf_function_calls_total",
		Help: "Function calls made by streams and the runtime, by registered name",
	}, []string{"function", "result"})

	var err error
	if records, err = register(reg, records); err != nil {
		return nil, err
	}
	if calls, err = register(reg, calls); err != nil {
		return nil, err
	}
	return &Metrics{records: records, calls: calls}, nil
}

func register(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}

// ObserveRecord counts one record with the given outcome.
func (m *Metrics) ObserveRecord(result string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(result).Inc()
}

// ObserveCall counts one function call; it has the shape of functions.CallObserver.
func (m *Metrics) ObserveCall(name string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calls.WithLabelValues(name, result).Inc()
}
