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
	"unicode/utf8"

	"github.com/rulego/streamudf/collector"
	"github.com/rulego/streamudf/dataset"
	"github.com/rulego/streamudf/logger"
	"github.com/rulego/streamudf/utils/cast"
)

// CountSubstringFunction sums the occurrences of a substring across rows.
// Add and Retract take the pair as []interface{}{text, substring}; Retract
// also accepts a plain count.
type CountSubstringFunction struct {
	*BaseFunction
	value int64
	log   logger.Logger
}

func NewCountSubstringFunction() *CountSubstringFunction {
	return &CountSubstringFunction{
		BaseFunction: NewBaseFunction("count_substring", TypeAggregation, "text",
			"Count non-overlapping occurrences of a substring", 2, 2),
	}
}

func (f *CountSubstringFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *CountSubstringFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	return countPair(args), nil
}

func (f *CountSubstringFunction) New() AggregatorFunction {
	return &CountSubstringFunction{BaseFunction: f.BaseFunction}
}

// SetLogger sets the logger used by Add, Retract and Merge.
func (f *CountSubstringFunction) SetLogger(log logger.Logger) {
	f.log = log
}

func (f *CountSubstringFunction) currentLogger() logger.Logger {
	if f.log == nil {
		return logger.GetDefault()
	}
	return f.log
}

func (f *CountSubstringFunction) Add(value interface{}) {
	counted := countPair(value)
	f.currentLogger().Debug("accumulating substring count. count before: %d, adding %d", f.value, counted)
	f.value += counted
}

func (f *CountSubstringFunction) Retract(value interface{}) {
	var counted int64
	if _, isPair := value.([]interface{}); isPair {
		counted = countPair(value)
	} else if n, err := cast.ToInt64(value); err == nil {
		counted = n
	}
	f.currentLogger().Debug("retracting. subtracting %d from %d", counted, f.value)
	f.value -= counted
}

func (f *CountSubstringFunction) Merge(others ...AggregatorFunction) {
	var reduced int64
	for _, other := range others {
		if o, ok := other.(*CountSubstringFunction); ok {
			reduced += o.value
		}
	}
	f.currentLogger().Debug("merging. count of merged: %d, adding to %d", reduced, f.value)
	f.value += reduced
}

func (f *CountSubstringFunction) Result() interface{} {
	return f.value
}

func (f *CountSubstringFunction) Reset() {
	f.value = 0
}

func (f *CountSubstringFunction) Clone() AggregatorFunction {
	return &CountSubstringFunction{BaseFunction: f.BaseFunction, value: f.value, log: f.log}
}

func countPair(value interface{}) int64 {
	pair, ok := value.([]interface{})
	if !ok || len(pair) < 2 {
		return 0
	}
	text, okText, _ := cast.ToNullableString(pair[0])
	sub, okSub, _ := cast.ToNullableString(pair[1])
	if !okText || !okSub {
		return 0
	}
	return CountSubstring(text, sub)
}

// CountSubstring counts non-overlapping literal occurrences of sub in s.
// An empty sub never matches.
func CountSubstring(s, sub string) int64 {
	if s == "" || sub == "" {
		return 0
	}
	return int64(strings.Count(s, sub))
}

var (
	nonWordChars = regexp.MustCompile(`[^a-zA-Z0-9\t\n\v\f\r ]`)
	splitPattern sync.Map // string -> *regexp.Regexp
)

func compileSplit(expr string) (*regexp.Regexp, error) {
	if re, ok := splitPattern.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid split pattern %q: %w", expr, err)
	}
	splitPattern.Store(expr, re)
	return re, nil
}

// TextExtractorFunction splits text into words and emits each with its length.
type TextExtractorFunction struct {
	*BaseFunction
}

func NewTextExtractorFunction() *TextExtractorFunction {
	return &TextExtractorFunction{
		BaseFunction: NewBaseFunction("text_extractor", TypeTable, "text",
			"Split text into words, optionally by a regular expression", 1, 2),
	}
}

func (f *TextExtractorFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *TextExtractorFunction) ResultType() dataset.RowType {
	return dataset.RowType{{Name: "word", Type: "STRING"}, {Name: "length", Type: "INT"}}
}

func (f *TextExtractorFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	return collectAsMaps(f, ctx, args)
}

func (f *TextExtractorFunction) Eval(ctx *FunctionContext, out collector.Collector, args []interface{}) error {
	input, ok, err := cast.ToNullableString(args[0])
	if err != nil {
		return err
	}
	if !ok || input == "" {
		ctx.Log().Debug("input is null or empty")
		return nil
	}

	var words []string
	if len(args) > 1 && args[1] != nil {
		expr := cast.ToString(args[1])
		re, err := compileSplit(expr)
		if err != nil {
			return err
		}
		words = re.Split(input, -1)
		ctx.Log().Debug("extracted %d words from input string using regex: %s", len(words), expr)
	} else {
		words = strings.Fields(nonWordChars.ReplaceAllString(input, ""))
		ctx.Log().Debug("extracted %d words from input string", len(words))
	}

	// empty tokens are never emitted, in either form
	for _, word := range words {
		if word == "" {
			continue
		}
		out.Collect(dataset.Of(word, utf8.RuneCountInString(word)))
	}
	return nil
}

// StringLoggingFunction logs its input at every level and echoes it as one row.
type StringLoggingFunction struct {
	*BaseFunction
}

func NewStringLoggingFunction() *StringLoggingFunction {
	return &StringLoggingFunction{
		BaseFunction: NewBaseFunction("string_logging", TypeTable, "text",
			"Log the input at every level and emit it unchanged", 1, 1),
	}
}

func (f *StringLoggingFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *StringLoggingFunction) ResultType() dataset.RowType {
	return dataset.RowType{{Name: "word", Type: "STRING"}}
}

func (f *StringLoggingFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	return collectAsMaps(f, ctx, args)
}

func (f *StringLoggingFunction) Eval(ctx *FunctionContext, out collector.Collector, args []interface{}) error {
	input, ok, err := cast.ToNullableString(args[0])
	if err != nil {
		return err
	}
	log := ctx.Log()
	if !ok || input == "" {
		log.Warn("input is null or empty")
		return nil
	}
	log.Trace(" TRACE: input %s ", input)
	log.Debug(" DEBUG: input %s ", input)
	log.Info(" INFO: input %s ", input)
	log.Warn(" WARN: input %s ", input)
	log.Error(" ERROR: input %s ", input)
	log.Fatal(" FATAL: input %s ", input)
	out.Collect(dataset.Of(input))
	return nil
}
