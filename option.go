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
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rulego/streamudf/logger"
	"github.com/rulego/streamudf/types"
)

// Option 表示对运行时默认行为的修改配置。
type Option func(*Runtime)

// WithLogger 设置自定义日志记录器。
// 允许用户提供自己的日志实现，支持不同的日志后端和格式。
//
// 示例:
//
//	customLogger := logger.NewLogger(logger.DEBUG, os.Stderr)
//	rt, err := streamudf.New(streamudf.WithLogger(customLogger))
func WithLogger(log logger.Logger) Option {
	return func(r *Runtime) {
		logger.SetDefault(log)
		r.customLogger = true
	}
}

// WithLogLevel 设置日志级别，使用默认的日志输出目标。
// 该级别也覆盖配置文件中的 log.level。
//
// 示例:
//
//	// 关闭日志
//	rt, err := streamudf.New(streamudf.WithLogLevel(logger.OFF))
func WithLogLevel(level logger.Level) Option {
	return func(r *Runtime) {
		r.level = &level
	}
}

// WithLogOutput 设置日志输出目标，如os.Stdout、os.Stderr或文件。
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(r *Runtime) {
		logger.SetDefault(logger.NewLogger(level, output))
		r.customLogger = true
	}
}

// WithDiscardLog 禁用所有日志输出。
func WithDiscardLog() Option {
	return func(r *Runtime) {
		logger.SetDefault(logger.NewDiscardLogger())
		r.customLogger = true
	}
}

// WithConfig applies a loaded configuration: its log section (unless a
// logger option is also given), its mapping profiles and its aliases.
func WithConfig(cfg *types.Config) Option {
	return func(r *Runtime) {
		r.config = cfg
	}
}

// WithMetrics registers the streamudf counters on reg.
//
// 示例:
//
//	reg := prometheus.NewRegistry()
//	rt, err := streamudf.New(streamudf.WithMetrics(reg))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Runtime) {
		r.registerer = reg
	}
}
