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

// AddSink adds a sink function
// Parameters:
//   - sink: result processing function that receives []map[string]interface{} type result data
func (s *Stream) AddSink(sink func([]map[string]interface{})) {
	s.sinksMux.Lock()
	defer s.sinksMux.Unlock()
	s.sinks = append(s.sinks, sink)
}

// callSinks hands results to every sink in registration order. A panicking
// sink is logged and does not stop the others.
func (s *Stream) callSinks(results []map[string]interface{}) {
	s.sinksMux.RLock()
	defer s.sinksMux.RUnlock()

	for _, sink := range s.sinks {
		s.runSink(sink, results)
	}
}

func (s *Stream) runSink(sink func([]map[string]interface{}), results []map[string]interface{}) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sink execution exception: %v", r)
		}
	}()
	sink(results)
}
