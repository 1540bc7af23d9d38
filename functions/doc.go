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
Package functions holds the function catalog: the registry, the function kinds
and the built-in user-defined functions.

# Function Types

	TypeScalar      - one row of arguments to one value
	TypeAggregation - folds many rows into one value (AggregatorFunction)
	TypeTable       - one row of arguments to zero or more rows (TableFunction)
	TypeCustom      - functions registered at runtime with RegisterCustomFunction

Names are case-insensitive. RegisterAlias exposes a function under a second
name; the built-ins are also published under their class-style names such as
json_field_renamer.

# Built-in Functions

	rename_json_field, rename_json_array     json
	nested_json_mapper, shipment_doc_mapper  json
	vehicle_stay_protobuf_serialize          protobuf
	vehicle_stay_protobuf_deserialize        protobuf
	tshirt_sizing_is_smaller                 sizing
	count_substring                          text, aggregation with Retract and Merge
	text_extractor, string_logging           text, table functions

The JSON functions never fail: invalid input is logged and the input (or nil)
is returned.

# Aggregation

	agg, _ := functions.CreateAggregator("count_substring")
	agg.Add([]interface{}{"abab", "ab"})
	functions.Retract(agg, []interface{}{"ab", "ab"})
	agg.Result() // int64(1)

Calls with several arguments pass them to Add as one []interface{}.
RetractableAggregator and MergeableAggregator are optional; Retract and Merge
return an error for aggregators without them.

# Table Functions

	rows, _ := functions.Explode("text_extractor", nil, []interface{}{"Hello, world"})
	// +I[Hello, 5], +I[world, 5]

Execute on a table function returns the rows as []map[string]interface{}
keyed by ResultType.

# Expressions

ExprBridge exposes every registered function to expr-lang under its lower- and
upper-case name, together with like_match, is_null and is_not_null. SQL-style
LIKE and IS [NOT] NULL predicates are rewritten before compilation. Compiled
programs are cached per expression until the registry changes.

	result, _ := functions.EvaluateWithBridge(
		"tshirt_sizing_is_smaller(size, 'L') && name LIKE 'A%'",
		map[string]interface{}{"size": "M", "name": "Alice"})

# Custom Functions

	functions.RegisterCustomFunction("double", functions.TypeCustom, "math",
		"Doubles a number", 1, 1,
		func(ctx *functions.FunctionContext, args []interface{}) (interface{}, error) {
			return cast.ToFloat64(args[0]) * 2, nil
		})
*/
package functions
