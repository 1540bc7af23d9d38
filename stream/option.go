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
	"github.com/rulego/streamudf/functions"
	"github.com/rulego/streamudf/logger"
)

// Option configures a Stream.
type Option func(*Stream)

// WithBridge compiles the query with bridge instead of a bridge over the default registry.
func WithBridge(bridge *functions.ExprBridge) Option {
	return func(s *Stream) {
		s.bridge = bridge
	}
}

// WithLogger sets the logger used by the stream and handed to functions.
func WithLogger(log logger.Logger) Option {
	return func(s *Stream) {
		s.logger = log
	}
}

// WithMetrics reports record outcomes and function calls to m.
func WithMetrics(m *Metrics) Option {
	return func(s *Stream) {
		s.metrics = m
	}
}
