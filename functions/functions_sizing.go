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
	"strings"

	"github.com/rulego/streamudf/utils/cast"
)

var sizeRanks = map[string]int{
	"xxs":         0,
	"xs":          1,
	"extra small": 1,
	"s":           2,
	"small":       2,
	"m":           3,
	"medium":      3,
	"l":           4,
	"large":       4,
	"xl":          5,
	"extra large": 5,
	"xxl":         6,
}

// SizeRank returns the position of a t-shirt size on the XXS..XXL scale.
func SizeRank(size string) (int, bool) {
	rank, ok := sizeRanks[strings.ToLower(strings.TrimSpace(size))]
	return rank, ok
}

// TshirtSizingIsSmallerFunction compares two t-shirt sizes.
type TshirtSizingIsSmallerFunction struct {
	*BaseFunction
}

func NewTshirtSizingIsSmallerFunction() *TshirtSizingIsSmallerFunction {
	return &TshirtSizingIsSmallerFunction{
		BaseFunction: NewBaseFunction("tshirt_sizing_is_smaller", TypeScalar, "sizing",
			"Check whether the first t-shirt size is strictly smaller than the second", 2, 2),
	}
}

func (f *TshirtSizingIsSmallerFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *TshirtSizingIsSmallerFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	a, okA, _ := cast.ToNullableString(args[0])
	b, okB, _ := cast.ToNullableString(args[1])
	if !okA || !okB {
		return false, nil
	}
	rankA, knownA := SizeRank(a)
	rankB, knownB := SizeRank(b)
	if !knownA || !knownB {
		ctx.Log().Debug("unknown size in comparison %q < %q", a, b)
		return false, nil
	}
	return rankA < rankB, nil
}
