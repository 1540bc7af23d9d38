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
Package condition evaluates boolean filters over records.

Expressions are compiled with expr-lang through the function bridge, so every
registered function is callable by its lower- or upper-case name. SQL-style
predicates are rewritten before compilation:

	name LIKE 'ab%'     -> name startsWith 'ab'
	name LIKE 'a_c%z'   -> like_match(name, 'a_c%z')
	value IS NULL       -> value == nil
	f(x) IS NOT NULL    -> is_not_null(f(x))

A runtime error, or a result that is not a boolean, evaluates to false:

	cond, err := condition.NewExprCondition(`tshirt_sizing_is_smaller(size, "L") && name LIKE 'J%'`)
	if err != nil {
		return err
	}
	cond.Evaluate(map[string]interface{}{"size": "M", "name": "John"}) // true
*/
package condition
