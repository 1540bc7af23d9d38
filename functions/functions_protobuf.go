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
	"encoding/base64"
	"fmt"

	"github.com/rulego/streamudf/vehicle"
)

// VehicleStayProtobufSerializeFunction encodes a VehicleStay row or record to protobuf bytes.
type VehicleStayProtobufSerializeFunction struct {
	*BaseFunction
}

func NewVehicleStayProtobufSerializeFunction() *VehicleStayProtobufSerializeFunction {
	return &VehicleStayProtobufSerializeFunction{
		BaseFunction: NewBaseFunction("vehicle_stay_protobuf_serialize", TypeScalar, "protobuf",
			"Serialize a VehicleStay row to vehicle.objects.VehicleStay protobuf bytes", 1, 1),
	}
}

func (f *VehicleStayProtobufSerializeFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *VehicleStayProtobufSerializeFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		ctx.Log().Warn("VehicleStay row is null, returning null")
		return nil, nil
	}
	stay, err := vehicle.FromValue(args[0])
	if err == nil {
		var data []byte
		if data, err = stay.Marshal(); err == nil {
			return data, nil
		}
	}
	ctx.Log().Error("failed to serialize VehicleStay row to protobuf bytes: %v", err)
	return nil, fmt.Errorf("failed to serialize VehicleStay to protobuf: %w", err)
}

// VehicleStayProtobufDeserializeFunction renders VehicleStay bytes as JSON with
// protobuf field names. It accepts raw bytes or a base64 string.
type VehicleStayProtobufDeserializeFunction struct {
	*BaseFunction
}

func NewVehicleStayProtobufDeserializeFunction() *VehicleStayProtobufDeserializeFunction {
	return &VehicleStayProtobufDeserializeFunction{
		BaseFunction: NewBaseFunction("vehicle_stay_protobuf_deserialize", TypeScalar, "protobuf",
			"Decode vehicle.objects.VehicleStay protobuf bytes to JSON", 1, 1),
	}
}

func (f *VehicleStayProtobufDeserializeFunction) Validate(args []interface{}) error {
	return f.ValidateArgCount(args)
}

func (f *VehicleStayProtobufDeserializeFunction) Execute(ctx *FunctionContext, args []interface{}) (interface{}, error) {
	var data []byte
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case []byte:
		data = v
	case string:
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize VehicleStay: invalid base64: %w", err)
		}
		data = decoded
	default:
		return nil, fmt.Errorf("failed to deserialize VehicleStay: unsupported input %T", v)
	}
	out, err := vehicle.ToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize VehicleStay: %w", err)
	}
	return out, nil
}
