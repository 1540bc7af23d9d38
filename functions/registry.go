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
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rulego/streamudf/logger"
)

// FunctionType 函数类型枚举
type FunctionType string

const (
	// TypeScalar maps one row of arguments to one value
	TypeScalar FunctionType = "scalar"
	// TypeAggregation folds many rows into one value
	TypeAggregation FunctionType = "aggregation"
	// TypeTable maps one row of arguments to zero or more rows
	TypeTable FunctionType = "table"
	// TypeCustom 用户自定义函数
	TypeCustom FunctionType = "custom"
)

var (
	// ErrFunctionNotFound is returned when no function is registered under a name
	ErrFunctionNotFound = errors.New("function not found")
	// ErrFunctionExists is returned when a name is already taken
	ErrFunctionExists = errors.New("function already registered")
	// ErrNotAggregator is returned when an aggregate call names a non-aggregate function
	ErrNotAggregator = errors.New("not an aggregator function")
	// ErrNotRetractable is returned when a retraction reaches an aggregator without Retract
	ErrNotRetractable = errors.New("aggregator does not support retraction")
	// ErrNotTableFunction is returned when a lateral call names a non-table function
	ErrNotTableFunction = errors.New("not a table function")
)

// FunctionContext 函数执行上下文
type FunctionContext struct {
	// Data is the record being processed, when there is one
	Data map[string]interface{}
	// Logger overrides the default logger for this call
	Logger logger.Logger
}

// Log returns the logger functions should write to.
func (ctx *FunctionContext) Log() logger.Logger {
	if ctx != nil && ctx.Logger != nil {
		return ctx.Logger
	}
	return logger.GetDefault()
}

// Function 函数接口定义
type Function interface {
	// GetName 获取函数名称
	GetName() string
	// GetType 获取函数类型
	GetType() FunctionType
	// GetCategory 获取函数分类
	GetCategory() string
	// Validate 验证参数
	Validate(args []interface{}) error
	// Execute 执行函数
	Execute(ctx *FunctionContext, args []interface{}) (interface{}, error)
	// GetDescription 获取函数描述
	GetDescription() string
}

// FunctionRegistry 函数注册器
type FunctionRegistry struct {
	mu         sync.RWMutex
	functions  map[string]Function
	aliases    map[string]string
	categories map[FunctionType][]Function
	version    uint64
}

// 全局函数注册器实例
var globalRegistry = NewFunctionRegistry()

// NewFunctionRegistry 创建新的函数注册器
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions:  make(map[string]Function),
		aliases:    make(map[string]string),
		categories: make(map[FunctionType][]Function),
	}
}

// DefaultRegistry returns the process-wide registry holding the built-in functions.
func DefaultRegistry() *FunctionRegistry {
	return globalRegistry
}

// Register 注册函数
func (r *FunctionRegistry) Register(fn Function) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(fn.GetName())
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("%w: %s", ErrFunctionExists, name)
	}

	r.functions[name] = fn
	r.categories[fn.GetType()] = append(r.categories[fn.GetType()], fn)
	r.version++
	return nil
}

// RegisterAlias makes the function registered as target callable as alias too.
func (r *FunctionRegistry) RegisterAlias(alias, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	alias = strings.ToLower(alias)
	target = strings.ToLower(target)
	fn, ok := r.functions[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFunctionNotFound, target)
	}
	if _, exists := r.functions[alias]; exists {
		return fmt.Errorf("%w: %s", ErrFunctionExists, alias)
	}
	r.functions[alias] = fn
	r.aliases[alias] = target
	r.version++
	return nil
}

// Get 获取函数
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, exists := r.functions[strings.ToLower(name)]
	return fn, exists
}

// GetByType 按类型获取函数列表，不包含别名
func (r *FunctionRegistry) GetByType(fnType FunctionType) []Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	funcs := make([]Function, len(r.categories[fnType]))
	copy(funcs, r.categories[fnType])
	return funcs
}

// ListAll 列出所有注册的函数，包含别名
func (r *FunctionRegistry) ListAll() map[string]Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Function, len(r.functions))
	for name, fn := range r.functions {
		result[name] = fn
	}
	return result
}

// Names returns every callable name in sorted order.
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AliasOf returns the target name when name is an alias.
func (r *FunctionRegistry) AliasOf(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target, ok := r.aliases[strings.ToLower(name)]
	return target, ok
}

// Version changes whenever functions are registered or removed.
func (r *FunctionRegistry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Unregister 注销函数。注销原名时其别名一并移除
func (r *FunctionRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(name)
	fn, exists := r.functions[name]
	if !exists {
		return false
	}
	delete(r.functions, name)
	r.version++

	if _, isAlias := r.aliases[name]; isAlias {
		delete(r.aliases, name)
		return true
	}

	for alias, target := range r.aliases {
		if target == name {
			delete(r.aliases, alias)
			delete(r.functions, alias)
		}
	}

	fnType := fn.GetType()
	if funcs, ok := r.categories[fnType]; ok {
		for i, f := range funcs {
			if strings.ToLower(f.GetName()) == name {
				r.categories[fnType] = append(funcs[:i], funcs[i+1:]...)
				break
			}
		}
	}
	return true
}

// Execute validates the arguments and runs the named function.
func (r *FunctionRegistry) Execute(name string, ctx *FunctionContext, args []interface{}) (interface{}, error) {
	fn, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	if err := fn.Validate(args); err != nil {
		return nil, fmt.Errorf("function %s validation failed: %w", name, err)
	}
	return fn.Execute(ctx, args)
}

// 全局函数注册和获取方法
func Register(fn Function) error {
	return globalRegistry.Register(fn)
}

func RegisterAlias(alias, target string) error {
	return globalRegistry.RegisterAlias(alias, target)
}

func Get(name string) (Function, bool) {
	return globalRegistry.Get(name)
}

func GetByType(fnType FunctionType) []Function {
	return globalRegistry.GetByType(fnType)
}

func ListAll() map[string]Function {
	return globalRegistry.ListAll()
}

func Unregister(name string) bool {
	return globalRegistry.Unregister(name)
}

// Execute 执行函数
func Execute(name string, ctx *FunctionContext, args []interface{}) (interface{}, error) {
	return globalRegistry.Execute(name, ctx, args)
}

// RegisterCustomFunction 注册自定义函数
func RegisterCustomFunction(name string, fnType FunctionType, category, description string,
	minArgs, maxArgs int, executor func(ctx *FunctionContext, args []interface{}) (interface{}, error)) error {

	return Register(NewCustomFunction(name, fnType, category, description, minArgs, maxArgs, executor))
}

// NewCustomFunction wraps executor as a Function without registering it.
func NewCustomFunction(name string, fnType FunctionType, category, description string,
	minArgs, maxArgs int, executor func(ctx *FunctionContext, args []interface{}) (interface{}, error)) *CustomFunction {
	return &CustomFunction{
		BaseFunction: NewBaseFunction(name, fnType, category, description, minArgs, maxArgs),
		executor:     executor,
	}
}

// CustomFunction 自定义函数实现
type CustomFunction struct {
	*BaseFunction
	executor func(ctx *FunctionContext, args []interface{}) (interface{}, error)
}

func (f *CustomFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *CustomFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	return f.executor(ctx, args)
}
