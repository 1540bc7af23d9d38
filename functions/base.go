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
)

// BaseFunction holds the metadata shared by every function and checks argument counts.
type BaseFunction struct {
	name        string
	fnType      FunctionType
	category    string
	description string
	minArgs     int
	maxArgs     int // -1 表示无限制
}

// NewBaseFunction 创建基础函数
func NewBaseFunction(name string, fnType FunctionType, category, description string, minArgs, maxArgs int) *BaseFunction {
	return &BaseFunction{
		name:        name,
		fnType:      fnType,
		category:    category,
		description: description,
		minArgs:     minArgs,
		maxArgs:     maxArgs,
	}
}

func (bf *BaseFunction) GetName() string {
	return bf.name
}

func (bf *BaseFunction) GetType() FunctionType {
	return bf.fnType
}

func (bf *BaseFunction) GetCategory() string {
	return bf.category
}

func (bf *BaseFunction) GetDescription() string {
	return bf.description
}

// ArgBounds returns the accepted argument count range; max is -1 when unbounded.
func (bf *BaseFunction) ArgBounds() (min, max int) {
	return bf.minArgs, bf.maxArgs
}

// ValidateArgCount 验证参数数量
func (bf *BaseFunction) ValidateArgCount(args []interface{}) error {
	argCount := len(args)

	if argCount < bf.minArgs {
		return fmt.Errorf("function %s requires at least %d arguments, got %d", bf.name, bf.minArgs, argCount)
	}

	if bf.maxArgs != -1 && argCount > bf.maxArgs {
		return fmt.Errorf("function %s accepts at most %d arguments, got %d", bf.name, bf.maxArgs, argCount)
	}

	return nil
}

// Descriptor summarises a registered function for listings.
type Descriptor struct {
	Name        string       `json:"name"`
	Alias       string       `json:"aliasOf,omitempty"`
	Type        FunctionType `json:"type"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	MinArgs     int          `json:"minArgs"`
	MaxArgs     int          `json:"maxArgs"`
	Result      string       `json:"result,omitempty"`
}

// Describe lists every callable name of the registry in sorted order.
func (r *FunctionRegistry) Describe() []Descriptor {
	names := r.Names()
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		fn, ok := r.Get(name)
		if !ok {
			continue
		}
		d := Descriptor{
			Name:        name,
			Type:        fn.GetType(),
			Category:    fn.GetCategory(),
			Description: fn.GetDescription(),
			MaxArgs:     -1,
		}
		if target, isAlias := r.AliasOf(name); isAlias {
			d.Alias = target
		}
		if bounded, ok := fn.(interface{ ArgBounds() (int, int) }); ok {
			d.MinArgs, d.MaxArgs = bounded.ArgBounds()
		}
		if tf, ok := fn.(TableFunction); ok {
			d.Result = tf.ResultType().String()
		}
		out = append(out, d)
	}
	return out
}
