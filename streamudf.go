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

package streamudf

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rulego/streamudf/dataset"
	"github.com/rulego/streamudf/functions"
	"github.com/rulego/streamudf/logger"
	"github.com/rulego/streamudf/stream"
	"github.com/rulego/streamudf/types"
)

// Runtime 函数运行时，持有函数注册表和表达式桥接器
type Runtime struct {
	registry *functions.FunctionRegistry
	bridge   *functions.ExprBridge
	logger   logger.Logger
	config   *types.Config
	metrics  *stream.Metrics

	registerer   prometheus.Registerer
	level        *logger.Level
	customLogger bool
	logCloser    io.Closer
}

const unknownFunction = "unknown"

// New 创建运行时实例，注册所有内置函数
//
// 示例:
//
//	rt, err := streamudf.New(streamudf.WithLogLevel(logger.DEBUG))
//	renamed, err := rt.Call("rename_json_field", `{"a":1}`, "a", "b")
func New(options ...Option) (*Runtime, error) {
	r := &Runtime{registry: functions.NewFunctionRegistry()}
	functions.RegisterBuiltins(r.registry)

	for _, option := range options {
		option(r)
	}
	if r.config != nil {
		if err := r.applyConfig(r.config); err != nil {
			r.Close()
			return nil, err
		}
	}
	r.logger = logger.GetDefault()
	if r.level != nil {
		r.logger.SetLevel(*r.level)
	}

	bridgeOptions := []functions.BridgeOption{functions.WithBridgeLogger(r.logger)}
	if r.registerer != nil {
		metrics, err := stream.NewMetrics(r.registerer)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		r.metrics = metrics
		bridgeOptions = append(bridgeOptions, functions.WithCallObserver(metrics.ObserveCall))
	}
	r.bridge = functions.NewExprBridge(r.registry, bridgeOptions...)
	return r, nil
}

// applyConfig touches process-wide state (the default logger and mapping
// profiles) only after everything that can fail has succeeded.
func (r *Runtime) applyConfig(cfg *types.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	configureLog := !r.customLogger && (cfg.Log.Level != "" || cfg.Log.Output != "")
	var level logger.Level
	if configureLog {
		var err error
		if level, err = logger.ParseLevel(cfg.Log.Level); err != nil {
			return err
		}
	}
	for alias, target := range cfg.Aliases {
		if err := r.registry.RegisterAlias(alias, target); err != nil {
			return fmt.Errorf("alias %s: %w", alias, err)
		}
	}

	if configureLog {
		logger.SetDefault(logger.NewLogger(level, r.openLogOutput(cfg.Log)))
	}
	for name, mappings := range cfg.Mappings {
		functions.RegisterMappingProfile(name, mappings)
	}
	return nil
}

// openLogOutput returns the writer for the configured output. Files are
// rotated; the file is opened on the first write.
func (r *Runtime) openLogOutput(cfg types.LogConfig) io.Writer {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
	}
	r.logCloser = rotating
	return rotating
}

// Registry returns the function registry of the runtime.
func (r *Runtime) Registry() *functions.FunctionRegistry {
	return r.registry
}

// Config returns the configuration passed with WithConfig, or nil.
func (r *Runtime) Config() *types.Config {
	return r.config
}

// Register adds a function; expressions compiled afterwards can call it.
func (r *Runtime) Register(fn functions.Function) error {
	return r.registry.Register(fn)
}

// Eval evaluates an expression against record. Fields missing from record
// evaluate to nil.
func (r *Runtime) Eval(expression string, record map[string]interface{}) (interface{}, error) {
	return r.bridge.Evaluate(expression, record)
}

// Call runs a registered function with args.
func (r *Runtime) Call(name string, args ...interface{}) (interface{}, error) {
	result, err := r.registry.Execute(name, &functions.FunctionContext{Logger: r.logger}, args)
	r.metrics.ObserveCall(r.callLabel(name), err)
	return result, err
}

// Explode runs a table function and returns the emitted rows.
func (r *Runtime) Explode(name string, args ...interface{}) ([]*dataset.Row, error) {
	rows, err := r.registry.Explode(name, &functions.FunctionContext{Logger: r.logger}, args)
	r.metrics.ObserveCall(r.callLabel(name), err)
	return rows, err
}

// callLabel keeps the function label of the call metric bounded: aliases and
// case variants count under the registered name, unregistered names under
// "unknown".
func (r *Runtime) callLabel(name string) string {
	if fn, ok := r.registry.Get(name); ok {
		return fn.GetName()
	}
	return unknownFunction
}

// Query compiles a query into a stream sharing the runtime's functions,
// logger and metrics.
func (r *Runtime) Query(query types.QueryConfig) (*stream.Stream, error) {
	return stream.NewStream(query,
		stream.WithBridge(r.bridge),
		stream.WithLogger(r.logger),
		stream.WithMetrics(r.metrics),
	)
}

// Functions describes every callable name in sorted order.
func (r *Runtime) Functions() []functions.Descriptor {
	return r.registry.Describe()
}

// Close releases the log file opened from the configuration.
func (r *Runtime) Close() error {
	if r.logCloser == nil {
		return nil
	}
	err := r.logCloser.Close()
	r.logCloser = nil
	return err
}
