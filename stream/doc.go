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

/*
Package stream runs a query over individual records.

A query is described by types.QueryConfig and compiled once by NewStream.
Each record then goes through the same pipeline:

	record -> kind -> WHERE -> LATERAL table function -> SELECT | aggregates

# Filtering

WHERE is an expr-lang boolean expression. Every registered function is
callable, and SQL-style LIKE and IS [NOT] NULL predicates are rewritten
before compilation:

	where: "tshirt_sizing_is_smaller(size, 'L') && name LIKE 'A%'"

# Lateral joins

A lateral table function turns one record into zero or more rows. The
columns of each emitted row are nested under the alias, or merged into the
record when no alias is set. A call that emits nothing drops the record.

	lateral:
	  function: text_extractor
	  args: ["sentence"]
	  alias: t
	select:
	  - {name: word, expr: t.word}
	  - {name: length, expr: t.length}

# Aggregation

When aggregates are configured the stream accumulates instead of emitting.
The change kind of a record is read from the kind field (default "_kind").
Insert and update-after rows are added; update-before and delete rows are
retracted, which fails for aggregators that cannot retract.

	s, _ := stream.NewStream(types.QueryConfig{
		Aggregates: []types.AggregateConfig{
			{Name: "hits", Function: "count_substring", Args: []string{"text", "'ab'"}},
		},
	})
	s.Process(ctx, map[string]interface{}{"text": "abab"})
	s.Process(ctx, map[string]interface{}{"text": "ab", "_kind": "-D"})
	s.Result() // map[hits:1]

Merge folds the state of another stream running the same aggregates, so a
partitioned input can be processed by several streams and combined.

# Sinks and metrics

Emit processes a record and hands the rows to every sink added with
AddSink; Flush does the same with the aggregate row. A panicking sink is
logged. NewMetrics registers the streamudf_records_total and
streamudf_function_calls_total counters on a prometheus registerer.
*/
package stream
