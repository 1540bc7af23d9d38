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

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/streamudf/logger"
)

// CallObserver is told about every function call made from an expression.
type CallObserver func(name string, err error)

// BridgeOption configures an ExprBridge.
type BridgeOption func(*ExprBridge)

// WithCallObserver reports function calls, e.g. to metrics.
func WithCallObserver(observer CallObserver) BridgeOption {
	return func(b *ExprBridge) {
		b.observer = observer
	}
}

// WithBridgeLogger sets the logger handed to functions called from expressions.
func WithBridgeLogger(log logger.Logger) BridgeOption {
	return func(b *ExprBridge) {
		b.logger = log
	}
}

// ExprBridge 桥接函数注册表与 expr-lang/expr
type ExprBridge struct {
	registry *FunctionRegistry
	observer CallObserver
	logger   logger.Logger

	mutex    sync.RWMutex
	version  uint64
	options  []expr.Option
	programs map[string]*vm.Program
}

// NewExprBridge 创建新的表达式桥接器
func NewExprBridge(registry *FunctionRegistry, opts ...BridgeOption) *ExprBridge {
	if registry == nil {
		registry = globalRegistry
	}
	bridge := &ExprBridge{
		registry: registry,
		programs: make(map[string]*vm.Program),
	}
	for _, opt := range opts {
		opt(bridge)
	}
	return bridge
}

// Registry returns the registry the bridge exposes.
func (bridge *ExprBridge) Registry() *FunctionRegistry {
	return bridge.registry
}

// Options returns the expr options exposing every registered function under
// its lower- and upper-case name, plus like_match, is_null and is_not_null.
func (bridge *ExprBridge) Options() []expr.Option {
	bridge.mutex.Lock()
	defer bridge.mutex.Unlock()
	bridge.refreshLocked()
	return append([]expr.Option(nil), bridge.options...)
}

// refreshLocked rebuilds the function options and drops cached programs when
// the registry changed since the last build.
func (bridge *ExprBridge) refreshLocked() {
	version := bridge.registry.Version()
	if bridge.options != nil && version == bridge.version {
		return
	}
	options := []expr.Option{expr.AllowUndefinedVariables()}
	for name, fn := range bridge.registry.ListAll() {
		wrapped := bridge.wrap(name, fn)
		options = append(options, expr.Function(name, wrapped))
		if upper := strings.ToUpper(name); upper != name {
			options = append(options, expr.Function(upper, wrapped))
		}
	}
	options = append(options,
		expr.Function("like_match", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like_match function requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, nil
			}
			return LikeMatch(text, pattern), nil
		}),
		expr.Function("is_null", func(params ...any) (any, error) {
			return len(params) == 0 || params[0] == nil, nil
		}),
		expr.Function("is_not_null", func(params ...any) (any, error) {
			return len(params) > 0 && params[0] != nil, nil
		}),
	)
	bridge.options = options
	bridge.version = version
	bridge.programs = make(map[string]*vm.Program)
}

func (bridge *ExprBridge) wrap(name string, fn Function) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		var value any
		err := fn.Validate(params)
		if err == nil {
			value, err = fn.Execute(&FunctionContext{Logger: bridge.logger}, params)
		} else {
			err = fmt.Errorf("function %s validation failed: %w", name, err)
		}
		if bridge.observer != nil {
			bridge.observer(fn.GetName(), err)
		}
		return value, err
	}
}

// Compile compiles expression with the registered functions. Programs are
// cached per expression string until the registry changes.
func (bridge *ExprBridge) Compile(expression string, extra ...expr.Option) (*vm.Program, error) {
	expression = bridge.Preprocess(expression)

	bridge.mutex.Lock()
	defer bridge.mutex.Unlock()
	bridge.refreshLocked()

	if len(extra) == 0 {
		if program, ok := bridge.programs[expression]; ok {
			return program, nil
		}
	}
	options := append(append([]expr.Option(nil), bridge.options...), extra...)
	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", expression, err)
	}
	if len(extra) == 0 {
		bridge.programs[expression] = program
	}
	return program, nil
}

// Evaluate compiles (or reuses) expression and runs it against data.
// Fields missing from data evaluate to nil.
func (bridge *ExprBridge) Evaluate(expression string, data map[string]interface{}) (interface{}, error) {
	program, err := bridge.Compile(expression)
	if err != nil {
		return nil, err
	}
	return Run(program, data)
}

// Run executes a compiled program against data.
func Run(program *vm.Program, data map[string]interface{}) (interface{}, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	return expr.Run(program, data)
}

// Preprocess rewrites SQL-style LIKE and IS [NOT] NULL predicates into expr syntax.
func (bridge *ExprBridge) Preprocess(expression string) string {
	if ContainsLikeOperator(expression) {
		expression = PreprocessLikeExpression(expression)
	}
	if ContainsIsNullOperator(expression) {
		expression = PreprocessIsNullExpression(expression)
	}
	return expression
}

// ContainsLikeOperator 检查表达式是否包含LIKE操作符
func ContainsLikeOperator(expression string) bool {
	return strings.Contains(strings.ToUpper(expression), " LIKE ")
}

// ContainsIsNullOperator 检查表达式是否包含IS NULL或IS NOT NULL操作符
func ContainsIsNullOperator(expression string) bool {
	upperExpr := strings.ToUpper(expression)
	return strings.Contains(upperExpr, " IS NULL") || strings.Contains(upperExpr, " IS NOT NULL")
}

var (
	likePattern           = regexp.MustCompile(`(\w+(?:\.\w+)*)\s+(?i:LIKE)\s+'([^']*)'`)
	complexNotNullPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*\s*\([^)]*\))\s+(?i:IS\s+NOT\s+NULL)`)
	complexNullPattern    = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*\s*\([^)]*\))\s+(?i:IS\s+NULL)`)
	notNullPattern        = regexp.MustCompile(`(\w+(?:\.\w+)*)\s+(?i:IS\s+NOT\s+NULL)`)
	nullPattern           = regexp.MustCompile(`(\w+(?:\.\w+)*)\s+(?i:IS\s+NULL)`)
)

// PreprocessLikeExpression 将 field LIKE 'pattern' 转换为expr-lang可理解的表达式
func PreprocessLikeExpression(expression string) string {
	return likePattern.ReplaceAllStringFunc(expression, func(match string) string {
		submatches := likePattern.FindStringSubmatch(match)
		if len(submatches) != 3 {
			return match
		}
		return convertLikeToFunction(submatches[1], submatches[2])
	})
}

// PreprocessIsNullExpression 预处理IS NULL和IS NOT NULL表达式
func PreprocessIsNullExpression(expression string) string {
	// 函数调用形式必须先于简单字段处理
	result := complexNotNullPattern.ReplaceAllString(expression, "is_not_null($1)")
	result = complexNullPattern.ReplaceAllString(result, "is_null($1)")
	result = notNullPattern.ReplaceAllString(result, "$1 != nil")
	return nullPattern.ReplaceAllString(result, "$1 == nil")
}

func convertLikeToFunction(field, pattern string) string {
	switch {
	case pattern == "":
		return fmt.Sprintf("%s == ''", field)
	case pattern == "%":
		return "true"
	case len(pattern) > 1 && strings.HasPrefix(pattern, "%") && strings.HasSuffix(pattern, "%") &&
		!strings.ContainsAny(strings.Trim(pattern, "%"), "%_"):
		inner := strings.Trim(pattern, "%")
		if inner == "" {
			return "true"
		}
		return fmt.Sprintf("%s contains '%s'", field, inner)
	case strings.HasPrefix(pattern, "%") && !strings.ContainsAny(pattern[1:], "%_"):
		return fmt.Sprintf("%s endsWith '%s'", field, pattern[1:])
	case strings.HasSuffix(pattern, "%") && !strings.ContainsAny(pattern[:len(pattern)-1], "%_"):
		return fmt.Sprintf("%s startsWith '%s'", field, pattern[:len(pattern)-1])
	case strings.ContainsAny(pattern, "%_"):
		return fmt.Sprintf("like_match(%s, '%s')", field, pattern)
	default:
		return fmt.Sprintf("%s == '%s'", field, pattern)
	}
}

// LikeMatch 实现LIKE模式匹配
// 支持%（匹配任意字符序列）和_（匹配单个字符）
func LikeMatch(text, pattern string) bool {
	return likeMatch([]rune(text), []rune(pattern))
}

func likeMatch(text, pattern []rune) bool {
	if len(pattern) == 0 {
		return len(text) == 0
	}
	switch pattern[0] {
	case '%':
		for i := 0; i <= len(text); i++ {
			if likeMatch(text[i:], pattern[1:]) {
				return true
			}
		}
		return false
	case '_':
		return len(text) > 0 && likeMatch(text[1:], pattern[1:])
	default:
		return len(text) > 0 && text[0] == pattern[0] && likeMatch(text[1:], pattern[1:])
	}
}

// 全局桥接器实例
var (
	globalBridge     *ExprBridge
	globalBridgeOnce sync.Once
)

// GetExprBridge 获取默认注册表上的全局桥接器实例
func GetExprBridge() *ExprBridge {
	globalBridgeOnce.Do(func() {
		globalBridge = NewExprBridge(globalRegistry)
	})
	return globalBridge
}

// EvaluateWithBridge 便捷函数：直接评估表达式
func EvaluateWithBridge(expression string, data map[string]interface{}) (interface{}, error) {
	return GetExprBridge().Evaluate(expression, data)
}
