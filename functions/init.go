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

import "fmt"

// builtinAliases maps the class-style names the functions were published
// under to their registered names.
var builtinAliases = map[string]string{
	"json_field_renamer":       "rename_json_field",
	"json_array_renamer":       "rename_json_array",
	"count_substring_stateful": "count_substring",
	"vehicle_stay_serializer":  "vehicle_stay_protobuf_serialize",
	"string_logging_table":     "string_logging",
}

func init() {
	RegisterBuiltins(globalRegistry)
}

// Builtins returns fresh instances of every built-in function.
func Builtins() []Function {
	return []Function{
		NewRenameJsonFieldFunction(),
		NewRenameJsonArrayFunction(),
		NewNestedJsonMapperFunction(),
		NewShipmentDocMapperFunction(),
		NewVehicleStayProtobufSerializeFunction(),
		NewVehicleStayProtobufDeserializeFunction(),
		NewTshirtSizingIsSmallerFunction(),
		NewCountSubstringFunction(),
		NewTextExtractorFunction(),
		NewStringLoggingFunction(),
	}
}

// RegisterBuiltins adds the built-in functions and their aliases to r.
// It panics on a name clash, which only happens when called twice on one registry.
func RegisterBuiltins(r *FunctionRegistry) {
	for _, fn := range Builtins() {
		if err := r.Register(fn); err != nil {
			panic(fmt.Sprintf("register builtin %s: %v", fn.GetName(), err))
		}
	}
	for alias, target := range builtinAliases {
		if err := r.RegisterAlias(alias, target); err != nil {
			panic(fmt.Sprintf("register alias %s: %v", alias, err))
		}
	}
}
