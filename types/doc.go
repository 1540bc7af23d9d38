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
Package types holds the configuration shared by the runtime, the stream and the CLI.

A configuration file is YAML:

	log:
	  level: info          # TRACE, DEBUG, INFO, WARN, ERROR, FATAL, OFF
	  output: stderr       # stdout, stderr or a file path
	mappings:              # profiles usable as nested_json_mapper(doc, 'people')
	  people:
	    first_name: firstName
	aliases:               # extra names for registered functions
	  rename: rename_json_field
	query:
	  where: "text != nil"
	  lateral:             # table function joined to every record
	    function: text_extractor
	    args: ["text"]
	    alias: t
	  select:              # ordered projections; empty keeps every column
	    - name: word
	      expr: "t.word"
	  aggregates:          # accumulate instead of projecting
	    - name: hellos
	      function: count_substring
	      args: ["text", "'hello'"]
	  kindField: _kind     # record field holding +I, -U, +U or -D

Unknown keys are rejected by ParseConfig and LoadConfig.
*/
package types
