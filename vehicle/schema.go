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

// Package vehicle holds the vehicle.objects protobuf schema and the
// VehicleStay record that the serialization functions encode.
package vehicle

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	_ "google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// FileName is the path the schema is registered under
	FileName = "vehicle/objects/vehicle_objects.proto"
	// Package is the protobuf package of every message
	Package = "vehicle.objects"
)

var (
	// File is the resolved schema
	File protoreflect.FileDescriptor

	ObjectDescriptor    protoreflect.MessageDescriptor
	TrackableDescriptor protoreflect.MessageDescriptor
	VehicleDescriptor   protoreflect.MessageDescriptor
	StayDescriptor      protoreflect.MessageDescriptor
)

func init() {
	fd, err := protodesc.NewFile(schema(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("vehicle: invalid schema: %v", err))
	}
	File = fd
	ObjectDescriptor = fd.Messages().ByName("Object")
	TrackableDescriptor = fd.Messages().ByName("Trackable")
	VehicleDescriptor = TrackableDescriptor.Messages().ByName("Vehicle")
	StayDescriptor = fd.Messages().ByName("VehicleStay")
}

func schema() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(FileName),
		Package:    proto.String(Package),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/wrappers.proto"},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Object"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("alias", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("namespace", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("created", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("updated", 4, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("correlation_id", 5, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				},
			},
			{
				Name: proto.String("Trackable"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("object", 1, ".vehicle.objects.Object"),
					scalarField("omlox_sync_ts", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("tenant_alias", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					messageField("vehicle", 4, ".vehicle.objects.Trackable.Vehicle"),
				},
				NestedType: []*descriptorpb.DescriptorProto{
					{
						Name: proto.String("Vehicle"),
						Field: []*descriptorpb.FieldDescriptorProto{
							scalarField("vehicle_identification_number", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
							scalarField("vehicle_license_plate", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
							scalarField("customer_name", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
							scalarField("vehicle_type", 4, descriptorpb.FieldDescriptorProto_TYPE_STRING),
							scalarField("lane", 5, descriptorpb.FieldDescriptorProto_TYPE_STRING),
							scalarField("vehicle_model", 6, descriptorpb.FieldDescriptorProto_TYPE_STRING),
							scalarField("last_transited_entered", 7, descriptorpb.FieldDescriptorProto_TYPE_STRING),
							scalarField("alternative_vehicle_identifier", 8, descriptorpb.FieldDescriptorProto_TYPE_STRING),
						},
					},
				},
			},
			{
				Name: proto.String("VehicleStay"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("object", 1, ".vehicle.objects.Object"),
					messageField("trackable_vehicle", 2, ".vehicle.objects.Trackable"),
					scalarField("tenant_alias", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("entry_identified_date_time", 4, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("entry_identified_lane", 5, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("entry_lane", 6, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("entry_date_time", 7, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("exit_lane", 8, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("exit_date_time", 9, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("exit_identified_date_time", 10, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("exit_identified_lane", 11, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("customer_is_waiting", 12, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
					scalarField("vehicle_visit_reason", 13, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					messageField("external", 14, ".google.protobuf.BoolValue"),
					scalarField("exit_external_drive_date_time", 15, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("exit_external_drive_lane", 16, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("entry_external_drive_date_time", 17, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalarField("entry_external_drive_lane", 18, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				},
			},
		},
	}
}

func scalarField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalarField(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(typeName)
	return f
}
