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

package vehicle

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/rulego/streamudf/dataset"
)

// StayArity is the number of positional fields of a VehicleStay row.
const StayArity = 18

var ErrArity = errors.New("unexpected number of fields")

type Object struct {
	Alias         string `mapstructure:"alias"`
	Namespace     string `mapstructure:"namespace"`
	Created       string `mapstructure:"created"`
	Updated       string `mapstructure:"updated"`
	CorrelationID string `mapstructure:"correlation_id"`
}

type Vehicle struct {
	VehicleIdentificationNumber  string `mapstructure:"vehicle_identification_number"`
	VehicleLicensePlate          string `mapstructure:"vehicle_license_plate"`
	CustomerName                 string `mapstructure:"customer_name"`
	VehicleType                  string `mapstructure:"vehicle_type"`
	Lane                         string `mapstructure:"lane"`
	VehicleModel                 string `mapstructure:"vehicle_model"`
	LastTransitedEntered         string `mapstructure:"last_transited_entered"`
	AlternativeVehicleIdentifier string `mapstructure:"alternative_vehicle_identifier"`
}

type Trackable struct {
	Object      *Object  `mapstructure:"object"`
	OmloxSyncTs string   `mapstructure:"omlox_sync_ts"`
	TenantAlias string   `mapstructure:"tenant_alias"`
	Vehicle     *Vehicle `mapstructure:"vehicle"`
}

// Stay is one visit of a vehicle. Nil pointers are left unset on the wire;
// External keeps a false value distinct from absent.
type Stay struct {
	Object                     *Object    `mapstructure:"object"`
	TrackableVehicle           *Trackable `mapstructure:"trackable_vehicle"`
	TenantAlias                string     `mapstructure:"tenant_alias"`
	EntryIdentifiedDateTime    string     `mapstructure:"entry_identified_date_time"`
	EntryIdentifiedLane        string     `mapstructure:"entry_identified_lane"`
	EntryLane                  string     `mapstructure:"entry_lane"`
	EntryDateTime              string     `mapstructure:"entry_date_time"`
	ExitLane                   string     `mapstructure:"exit_lane"`
	ExitDateTime               string     `mapstructure:"exit_date_time"`
	ExitIdentifiedDateTime     string     `mapstructure:"exit_identified_date_time"`
	ExitIdentifiedLane         string     `mapstructure:"exit_identified_lane"`
	CustomerIsWaiting          *bool      `mapstructure:"customer_is_waiting"`
	VehicleVisitReason         string     `mapstructure:"vehicle_visit_reason"`
	External                   *bool      `mapstructure:"external"`
	ExitExternalDriveDateTime  string     `mapstructure:"exit_external_drive_date_time"`
	ExitExternalDriveLane      string     `mapstructure:"exit_external_drive_lane"`
	EntryExternalDriveDateTime string     `mapstructure:"entry_external_drive_date_time"`
	EntryExternalDriveLane     string     `mapstructure:"entry_external_drive_lane"`
}

// FromValue accepts a positional row (*dataset.Row, dataset.Row or []interface{}),
// a map keyed by protobuf field name, or a Stay.
func FromValue(v interface{}) (*Stay, error) {
	switch x := v.(type) {
	case *Stay:
		return x, nil
	case Stay:
		return &x, nil
	case *dataset.Row:
		return StayFromRow(x)
	case dataset.Row:
		return StayFromRow(&x)
	case []interface{}:
		return StayFromRow(dataset.Of(x...))
	case map[string]interface{}:
		return StayFromMap(x)
	default:
		return nil, fmt.Errorf("unsupported VehicleStay value %T", v)
	}
}

// StayFromMap decodes a record keyed by protobuf field name.
func StayFromMap(m map[string]interface{}) (*Stay, error) {
	var stay Stay
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &stay,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, err
	}
	return &stay, nil
}

// StayFromRow reads the positional layout: object, trackable_vehicle, then
// the scalar fields in protobuf field order.
func StayFromRow(row *dataset.Row) (*Stay, error) {
	if row.Arity() != StayArity {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrArity, StayArity, row.Arity())
	}
	var (
		stay Stay
		err  error
	)
	objectRow, err := row.RowField(0)
	if err != nil {
		return nil, err
	}
	if stay.Object, err = objectFromRow(objectRow); err != nil {
		return nil, fmt.Errorf("object: %w", err)
	}
	trackableRow, err := row.RowField(1)
	if err != nil {
		return nil, err
	}
	if stay.TrackableVehicle, err = trackableFromRow(trackableRow); err != nil {
		return nil, fmt.Errorf("trackable_vehicle: %w", err)
	}

	r := rowReader{row: row}
	stay.TenantAlias = r.str(2)
	stay.EntryIdentifiedDateTime = r.str(3)
	stay.EntryIdentifiedLane = r.str(4)
	stay.EntryLane = r.str(5)
	stay.EntryDateTime = r.str(6)
	stay.ExitLane = r.str(7)
	stay.ExitDateTime = r.str(8)
	stay.ExitIdentifiedDateTime = r.str(9)
	stay.ExitIdentifiedLane = r.str(10)
	stay.CustomerIsWaiting = r.boolean(11)
	stay.VehicleVisitReason = r.str(12)
	stay.External = r.boolean(13)
	stay.ExitExternalDriveDateTime = r.str(14)
	stay.ExitExternalDriveLane = r.str(15)
	stay.EntryExternalDriveDateTime = r.str(16)
	stay.EntryExternalDriveLane = r.str(17)
	if r.err != nil {
		return nil, r.err
	}
	return &stay, nil
}

func objectFromRow(row *dataset.Row) (*Object, error) {
	if row == nil {
		return nil, nil
	}
	r := rowReader{row: row}
	obj := &Object{
		Alias:         r.str(0),
		Namespace:     r.str(1),
		Created:       r.str(2),
		Updated:       r.str(3),
		CorrelationID: r.str(4),
	}
	return obj, r.err
}

func trackableFromRow(row *dataset.Row) (*Trackable, error) {
	if row == nil {
		return nil, nil
	}
	objectRow, err := row.RowField(0)
	if err != nil {
		return nil, err
	}
	obj, err := objectFromRow(objectRow)
	if err != nil {
		return nil, fmt.Errorf("object: %w", err)
	}
	vehicleRow, err := row.RowField(3)
	if err != nil {
		return nil, err
	}
	r := rowReader{row: row}
	t := &Trackable{
		Object:      obj,
		OmloxSyncTs: r.str(1),
		TenantAlias: r.str(2),
	}
	if vehicleRow != nil {
		v := rowReader{row: vehicleRow}
		t.Vehicle = &Vehicle{
			VehicleIdentificationNumber:  v.str(0),
			VehicleLicensePlate:          v.str(1),
			CustomerName:                 v.str(2),
			VehicleType:                  v.str(3),
			Lane:                         v.str(4),
			VehicleModel:                 v.str(5),
			LastTransitedEntered:         v.str(6),
			AlternativeVehicleIdentifier: v.str(7),
		}
		if v.err != nil {
			return nil, fmt.Errorf("vehicle: %w", v.err)
		}
	}
	return t, r.err
}

// rowReader keeps the first conversion error so field reads stay linear.
type rowReader struct {
	row *dataset.Row
	err error
}

func (r *rowReader) str(pos int) string {
	s, _, err := r.row.StringField(pos)
	if err != nil && r.err == nil {
		r.err = err
	}
	return s
}

func (r *rowReader) boolean(pos int) *bool {
	b, ok, err := r.row.BoolField(pos)
	if err != nil && r.err == nil {
		r.err = err
	}
	if !ok {
		return nil
	}
	return &b
}

// Message builds the dynamic vehicle.objects.VehicleStay message.
func (s *Stay) Message() *dynamicpb.Message {
	msg := dynamicpb.NewMessage(StayDescriptor)
	if s.Object != nil {
		s.Object.fill(mutable(msg, "object"))
	}
	if s.TrackableVehicle != nil {
		s.TrackableVehicle.fill(mutable(msg, "trackable_vehicle"))
	}
	setString(msg, "tenant_alias", s.TenantAlias)
	setString(msg, "entry_identified_date_time", s.EntryIdentifiedDateTime)
	setString(msg, "entry_identified_lane", s.EntryIdentifiedLane)
	setString(msg, "entry_lane", s.EntryLane)
	setString(msg, "entry_date_time", s.EntryDateTime)
	setString(msg, "exit_lane", s.ExitLane)
	setString(msg, "exit_date_time", s.ExitDateTime)
	setString(msg, "exit_identified_date_time", s.ExitIdentifiedDateTime)
	setString(msg, "exit_identified_lane", s.ExitIdentifiedLane)
	if s.CustomerIsWaiting != nil {
		msg.Set(field(msg, "customer_is_waiting"), protoreflect.ValueOfBool(*s.CustomerIsWaiting))
	}
	setString(msg, "vehicle_visit_reason", s.VehicleVisitReason)
	if s.External != nil {
		wrapper := mutable(msg, "external")
		wrapper.Set(field(wrapper, "value"), protoreflect.ValueOfBool(*s.External))
	}
	setString(msg, "exit_external_drive_date_time", s.ExitExternalDriveDateTime)
	setString(msg, "exit_external_drive_lane", s.ExitExternalDriveLane)
	setString(msg, "entry_external_drive_date_time", s.EntryExternalDriveDateTime)
	setString(msg, "entry_external_drive_lane", s.EntryExternalDriveLane)
	return msg
}

func (o *Object) fill(m protoreflect.Message) {
	setString(m, "alias", o.Alias)
	setString(m, "namespace", o.Namespace)
	setString(m, "created", o.Created)
	setString(m, "updated", o.Updated)
	setString(m, "correlation_id", o.CorrelationID)
}

func (t *Trackable) fill(m protoreflect.Message) {
	if t.Object != nil {
		t.Object.fill(mutable(m, "object"))
	}
	setString(m, "omlox_sync_ts", t.OmloxSyncTs)
	setString(m, "tenant_alias", t.TenantAlias)
	if t.Vehicle != nil {
		v := mutable(m, "vehicle")
		setString(v, "vehicle_identification_number", t.Vehicle.VehicleIdentificationNumber)
		setString(v, "vehicle_license_plate", t.Vehicle.VehicleLicensePlate)
		setString(v, "customer_name", t.Vehicle.CustomerName)
		setString(v, "vehicle_type", t.Vehicle.VehicleType)
		setString(v, "lane", t.Vehicle.Lane)
		setString(v, "vehicle_model", t.Vehicle.VehicleModel)
		setString(v, "last_transited_entered", t.Vehicle.LastTransitedEntered)
		setString(v, "alternative_vehicle_identifier", t.Vehicle.AlternativeVehicleIdentifier)
	}
}

func field(m protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(name)
}

func mutable(m protoreflect.Message, name protoreflect.Name) protoreflect.Message {
	return m.Mutable(field(m, name)).Message()
}

func setString(m protoreflect.Message, name protoreflect.Name, v string) {
	if v == "" {
		return
	}
	m.Set(field(m, name), protoreflect.ValueOfString(v))
}

// Marshal encodes the stay deterministically.
func (s *Stay) Marshal() ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(s.Message())
}

// Unmarshal decodes VehicleStay bytes.
func Unmarshal(data []byte) (*Stay, error) {
	msg := dynamicpb.NewMessage(StayDescriptor)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return stayFromMessage(msg), nil
}

// ToJSON decodes VehicleStay bytes and renders them with protobuf field names.
func ToJSON(data []byte) (string, error) {
	msg := dynamicpb.NewMessage(StayDescriptor)
	if err := proto.Unmarshal(data, msg); err != nil {
		return "", err
	}
	out, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(msg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func stayFromMessage(m protoreflect.Message) *Stay {
	s := &Stay{
		TenantAlias:                getString(m, "tenant_alias"),
		EntryIdentifiedDateTime:    getString(m, "entry_identified_date_time"),
		EntryIdentifiedLane:        getString(m, "entry_identified_lane"),
		EntryLane:                  getString(m, "entry_lane"),
		EntryDateTime:              getString(m, "entry_date_time"),
		ExitLane:                   getString(m, "exit_lane"),
		ExitDateTime:               getString(m, "exit_date_time"),
		ExitIdentifiedDateTime:     getString(m, "exit_identified_date_time"),
		ExitIdentifiedLane:         getString(m, "exit_identified_lane"),
		VehicleVisitReason:         getString(m, "vehicle_visit_reason"),
		ExitExternalDriveDateTime:  getString(m, "exit_external_drive_date_time"),
		ExitExternalDriveLane:      getString(m, "exit_external_drive_lane"),
		EntryExternalDriveDateTime: getString(m, "entry_external_drive_date_time"),
		EntryExternalDriveLane:     getString(m, "entry_external_drive_lane"),
	}
	waiting := m.Get(field(m, "customer_is_waiting")).Bool()
	s.CustomerIsWaiting = &waiting
	if m.Has(field(m, "external")) {
		w := m.Get(field(m, "external")).Message()
		external := w.Get(field(w, "value")).Bool()
		s.External = &external
	}
	if m.Has(field(m, "object")) {
		s.Object = objectFromMessage(m.Get(field(m, "object")).Message())
	}
	if m.Has(field(m, "trackable_vehicle")) {
		t := m.Get(field(m, "trackable_vehicle")).Message()
		s.TrackableVehicle = &Trackable{
			OmloxSyncTs: getString(t, "omlox_sync_ts"),
			TenantAlias: getString(t, "tenant_alias"),
		}
		if t.Has(field(t, "object")) {
			s.TrackableVehicle.Object = objectFromMessage(t.Get(field(t, "object")).Message())
		}
		if t.Has(field(t, "vehicle")) {
			v := t.Get(field(t, "vehicle")).Message()
			s.TrackableVehicle.Vehicle = &Vehicle{
				VehicleIdentificationNumber:  getString(v, "vehicle_identification_number"),
				VehicleLicensePlate:          getString(v, "vehicle_license_plate"),
				CustomerName:                 getString(v, "customer_name"),
				VehicleType:                  getString(v, "vehicle_type"),
				Lane:                         getString(v, "lane"),
				VehicleModel:                 getString(v, "vehicle_model"),
				LastTransitedEntered:         getString(v, "last_transited_entered"),
				AlternativeVehicleIdentifier: getString(v, "alternative_vehicle_identifier"),
			}
		}
	}
	return s
}

func objectFromMessage(m protoreflect.Message) *Object {
	return &Object{
		Alias:         getString(m, "alias"),
		Namespace:     getString(m, "namespace"),
		Created:       getString(m, "created"),
		Updated:       getString(m, "updated"),
		CorrelationID: getString(m, "correlation_id"),
	}
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(field(m, name)).String()
}
