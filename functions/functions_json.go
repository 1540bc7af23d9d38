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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/rulego/streamudf/logger"
	"github.com/rulego/streamudf/utils/cast"
)

// RenameJsonFieldFunction renames one top-level key of a JSON object.
// It never fails: input it cannot handle is returned unchanged.
type RenameJsonFieldFunction struct {
	*BaseFunction
}

func NewRenameJsonFieldFunction() *RenameJsonFieldFunction {
	return &RenameJsonFieldFunction{
		BaseFunction: NewBaseFunction("rename_json_field", TypeScalar, "json",
			"Rename a top-level field of a JSON object", 3, 3),
	}
}

func (f *RenameJsonFieldFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *RenameJsonFieldFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	input, ok, err := cast.ToNullableString(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	oldName, okOld, err := cast.ToNullableString(args[1])
	if err != nil {
		return nil, err
	}
	newName, okNew, err := cast.ToNullableString(args[2])
	if err != nil {
		return nil, err
	}
	if !okOld || !okNew || oldName == newName {
		return input, nil
	}
	return RenameJSONField(ctx.Log(), input, oldName, newName), nil
}

// RenameJSONField moves the value of the top-level key oldName to newName.
// The result is compact; an existing newName keeps its position.
func RenameJSONField(log logger.Logger, input, oldName, newName string) string {
	if !gjson.Valid(input) {
		log.Error("error renaming JSON field '%s' to '%s', returning original value: invalid JSON", oldName, newName)
		return input
	}
	root := gjson.ParseBytes(pretty.Ugly([]byte(input)))
	if !root.IsObject() {
		log.Warn("input is not a JSON object, returning original value")
		return input
	}

	var moved gjson.Result
	root.ForEach(func(key, value gjson.Result) bool {
		if key.String() == oldName {
			moved = value
			return false
		}
		return true
	})
	if !moved.Exists() {
		return root.Raw
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	written := false
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == oldName {
			return true
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		if name == newName {
			buf.WriteString(key.Raw + ":" + moved.Raw)
			written = true
		} else {
			buf.WriteString(key.Raw + ":" + value.Raw)
		}
		return true
	})
	if !written {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(quoteKey(newName) + ":" + moved.Raw)
	}
	buf.WriteByte('}')
	return buf.String()
}

// quoteKey encodes s as a JSON string without HTML escaping.
func quoteKey(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimRight(buf.String(), "\n")
}

// RenameJsonArrayFunction rewrites `"old":` to `"new":` anywhere in the text,
// without parsing it.
type RenameJsonArrayFunction struct {
	*BaseFunction
}

func NewRenameJsonArrayFunction() *RenameJsonArrayFunction {
	return &RenameJsonArrayFunction{
		BaseFunction: NewBaseFunction("rename_json_array", TypeScalar, "json",
			"Textually rename a key in every object of a JSON document", 3, 3),
	}
}

func (f *RenameJsonArrayFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *RenameJsonArrayFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	input, ok, err := cast.ToNullableString(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	oldName, okOld, err := cast.ToNullableString(args[1])
	if err != nil {
		return nil, err
	}
	newName, okNew, err := cast.ToNullableString(args[2])
	if err != nil {
		return nil, err
	}
	if !okOld || !okNew {
		return input, nil
	}
	return strings.ReplaceAll(input, `"`+oldName+`":`, `"`+newName+`":`), nil
}

// NestedJsonMapperFunction renames keys at every depth of a JSON document.
// The second argument is a map of old to new names or the name of a mapping profile.
type NestedJsonMapperFunction struct {
	*BaseFunction
}

func NewNestedJsonMapperFunction() *NestedJsonMapperFunction {
	return &NestedJsonMapperFunction{
		BaseFunction: NewBaseFunction("nested_json_mapper", TypeScalar, "json",
			"Rename keys at every level of a JSON document using a mapping or a mapping profile", 2, 2),
	}
}

func (f *NestedJsonMapperFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *NestedJsonMapperFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	input, ok, err := cast.ToNullableString(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		ctx.Log().Debug("input is null or empty")
		return nil, nil
	}
	mappings, err := resolveMappings(args[1])
	if err != nil {
		return nil, err
	}
	return MapNestedJSON(ctx.Log(), input, mappings), nil
}

func resolveMappings(arg interface{}) (map[string]string, error) {
	if name, isName := arg.(string); isName {
		profile, ok := MappingProfile(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMapping, name)
		}
		return profile, nil
	}
	return cast.ToStringMap(arg)
}

// MapNestedJSON renames keys found in mappings at every depth of input.
// Blank or unparseable input yields nil; empty mappings return input untouched.
func MapNestedJSON(log logger.Logger, input string, mappings map[string]string) interface{} {
	if cast.IsBlank(input) {
		log.Debug("input is null or empty")
		return nil
	}
	if len(mappings) == 0 {
		log.Debug("field mappings are null or empty, returning input unchanged")
		return input
	}
	if !gjson.Valid(input) {
		log.Error("error processing JSON input: invalid JSON")
		return nil
	}
	var buf bytes.Buffer
	renameKeys(&buf, gjson.Parse(input), mappings)
	return buf.String()
}

// renameKeys writes node to buf with mapped object keys. Primitive values are
// copied as raw text so numbers keep their literal form.
func renameKeys(buf *bytes.Buffer, node gjson.Result, mappings map[string]string) {
	switch {
	case node.IsObject():
		buf.WriteByte('{')
		first := true
		node.ForEach(func(key, value gjson.Result) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if mapped, ok := mappings[key.String()]; ok {
				buf.WriteString(quoteKey(mapped))
			} else {
				buf.WriteString(key.Raw)
			}
			buf.WriteByte(':')
			renameKeys(buf, value, mappings)
			return true
		})
		buf.WriteByte('}')
	case node.IsArray():
		buf.WriteByte('[')
		for i, item := range node.Array() {
			if i > 0 {
				buf.WriteByte(',')
			}
			renameKeys(buf, item, mappings)
		}
		buf.WriteByte(']')
	default:
		buf.WriteString(node.Raw)
	}
}

// ShipmentDocMapperFunction applies the built-in SAP shipment key table.
type ShipmentDocMapperFunction struct {
	*BaseFunction
}

func NewShipmentDocMapperFunction() *ShipmentDocMapperFunction {
	return &ShipmentDocMapperFunction{
		BaseFunction: NewBaseFunction("shipment_doc_mapper", TypeScalar, "json",
			"Rename SAP shipment document keys to their camelCase names", 1, 1),
	}
}

func (f *ShipmentDocMapperFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *ShipmentDocMapperFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	input, ok, err := cast.ToNullableString(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		ctx.Log().Debug("input is null or empty")
		return nil, nil
	}
	return MapNestedJSON(ctx.Log(), input, shipmentMappings), nil
}
