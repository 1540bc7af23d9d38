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

package condition

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/streamudf/functions"
)

type Condition interface {
	Evaluate(env interface{}) bool
}

type ExprCondition struct {
	expression string
	program    *vm.Program
}

// NewExprCondition compiles expression against the default function registry.
func NewExprCondition(expression string) (Condition, error) {
	return NewBridgedCondition(functions.GetExprBridge(), expression)
}

// NewBridgedCondition compiles expression with the functions exposed by bridge.
func NewBridgedCondition(bridge *functions.ExprBridge, expression string) (Condition, error) {
	program, err := bridge.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, err
	}
	return &ExprCondition{expression: expression, program: program}, nil
}

// Evaluate reports false when the expression fails at runtime.
func (ec *ExprCondition) Evaluate(env interface{}) bool {
	if env == nil {
		env = map[string]interface{}{}
	}
	result, err := expr.Run(ec.program, env)
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}

func (ec *ExprCondition) String() string {
	return ec.expression
}
