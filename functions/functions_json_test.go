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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/streamudf/logger"
)

// capture returns a context whose logger writes every level to buf.
func capture(buf *bytes.Buffer) *FunctionContext {
	return &FunctionContext{Logger: logger.NewLogger(logger.TRACE, buf)}
}

func TestRenameJsonField(t *testing.T) {
	fn := NewRenameJsonFieldFunction()
	tests := []struct {
		name     string
		args     []interface{}
		expected interface{}
		exact    bool
	}{
		{"rename field", []interface{}{`{"name":"John","age":30}`, "name", "firstName"}, `{"age":30,"firstName":"John"}`, false},
		{"missing field", []interface{}{`{"name":"John","age":30}`, "address", "homeAddress"}, `{"name":"John","age":30}`, false},
		{"value untouched", []interface{}{`{"description":"this is my old_field","old_field":"value"}`, "old_field", "new_field"},
			`{"description":"this is my old_field","new_field":"value"}`, false},
		{"complex value", []interface{}{`{"data":{"nested_key":"nested_value"},"age":30}`, "data", "payload"},
			`{"payload":{"nested_key":"nested_value"},"age":30}`, false},
		{"null json", []interface{}{nil, "old", "new"}, nil, true},
		{"null old name", []interface{}{`{"name":"John"}`, nil, "new"}, `{"name":"John"}`, true},
		{"null new name", []interface{}{`{"name":"John"}`, "old", nil}, `{"name":"John"}`, true},
		{"same names", []interface{}{`{"name":"John"}`, "name", "name"}, `{"name":"John"}`, true},
		{"invalid json", []interface{}{`{ not json }`, "old", "new"}, `{ not json }`, true},
		{"array input", []interface{}{`[{"name":"John"}]`, "name", "firstName"}, `[{"name":"John"}]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, fn.Validate(tt.args))
			result, err := fn.Execute(capture(&buf), tt.args)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			if tt.exact {
				assert.Equal(t, tt.expected, result)
				return
			}
			assert.JSONEq(t, tt.expected.(string), result.(string))
		})
	}
}

func TestRenameJsonFieldOrderAndLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := capture(&buf)
	fn := NewRenameJsonFieldFunction()

	result, err := fn.Execute(ctx, []interface{}{`{"a":1,"b":2,"c":3}`, "a", "z"})
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"c":3,"z":1}`, result)

	result, err = fn.Execute(ctx, []interface{}{`{"a":1,"b":2}`, "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, `{"b":1}`, result)

	result, err = fn.Execute(ctx, []interface{}{`{ "a" : 1.50 , "b" : [1, 2], "s": "x y" }`, "a", "c"})
	require.NoError(t, err)
	assert.Equal(t, `{"b":[1,2],"s":"x y","c":1.50}`, result)

	result, err = fn.Execute(ctx, []interface{}{`{"a.b":1,"k":2}`, "a.b", "<c>"})
	require.NoError(t, err)
	assert.Equal(t, `{"k":2,"<c>":1}`, result)

	result, err = fn.Execute(ctx, []interface{}{`{ "k" : 2 }`, "missing", "c"})
	require.NoError(t, err)
	assert.Equal(t, `{"k":2}`, result)

	_, _ = fn.Execute(ctx, []interface{}{`[1]`, "a", "b"})
	assert.Contains(t, buf.String(), "level=warning")
	_, _ = fn.Execute(ctx, []interface{}{`{`, "a", "b"})
	assert.Contains(t, buf.String(), "level=error")

	assert.Error(t, fn.Validate([]interface{}{"{}"}))
}

func TestRenameJsonArray(t *testing.T) {
	fn := NewRenameJsonArrayFunction()
	ctx := &FunctionContext{}

	result, err := fn.Execute(ctx, []interface{}{`[{"name":"a"},{"name":"b","nested":{"name":"c"}}]`, "name", "label"})
	require.NoError(t, err)
	assert.Equal(t, `[{"label":"a"},{"label":"b","nested":{"label":"c"}}]`, result)

	result, err = fn.Execute(ctx, []interface{}{`{"text":"name"}`, "name", "label"})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"name"}`, result)

	result, err = fn.Execute(ctx, []interface{}{nil, "name", "label"})
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = fn.Execute(ctx, []interface{}{`{"name":1}`, nil, "label"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":1}`, result)
}

func TestNestedJsonMapper(t *testing.T) {
	fn := NewNestedJsonMapperFunction()
	mappings := map[string]string{"first_name": "firstName", "addr": "address", "zip_code": "zip"}

	tests := []struct {
		name     string
		input    interface{}
		mappings interface{}
		expected interface{}
	}{
		{
			name:     "nested objects and arrays",
			input:    `{"first_name":"Ann","addr":{"zip_code":"123","street":"Main"},"tags":[{"first_name":"x"},1,"first_name"]}`,
			mappings: mappings,
			expected: `{"firstName":"Ann","address":{"zip":"123","street":"Main"},"tags":[{"firstName":"x"},1,"first_name"]}`,
		},
		{
			name:     "numbers keep literal text",
			input:    `{"addr":{"zip_code":12.50,"big":12345678901234567890}}`,
			mappings: mappings,
			expected: `{"address":{"zip":12.50,"big":12345678901234567890}}`,
		},
		{
			name:     "interface map",
			input:    `{"a":true,"b":null}`,
			mappings: map[string]interface{}{"a": "A"},
			expected: `{"A":true,"b":null}`,
		},
		{"null input", nil, mappings, nil},
		{"blank input", "   ", mappings, nil},
		{"invalid json", `{"a":`, mappings, nil},
		{"nil mappings", ` {"a":1} `, nil, ` {"a":1} `},
		{"empty mappings", `{"a":1}`, map[string]string{}, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			result, err := fn.Execute(capture(&buf), []interface{}{tt.input, tt.mappings})
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, result)
			} else {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestNestedJsonMapperProfiles(t *testing.T) {
	fn := NewNestedJsonMapperFunction()
	ctx := &FunctionContext{}

	RegisterMappingProfile("test_people", map[string]string{"n": "name"})
	result, err := fn.Execute(ctx, []interface{}{`{"n":"x"}`, "TEST_PEOPLE"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x"}`, result)

	_, err = fn.Execute(ctx, []interface{}{`{"n":"x"}`, "no_such_profile"})
	assert.ErrorIs(t, err, ErrUnknownMapping)

	result, err = fn.Execute(ctx, []interface{}{nil, "no_such_profile"})
	require.NoError(t, err)
	assert.Nil(t, result)

	_, err = fn.Execute(ctx, []interface{}{`{"n":"x"}`, 42})
	assert.Error(t, err)
}

const shipmentSource = `{
  "/AMS/YBRV_PMO07": [
    {
      "MANDT": "103",
      "SHIPMENT_NUMBER": "0004604557",
      "DELIVERY_TYPE": "ZTPR",
      "APPOINTMENT_DATE": "0000-00-00",
      "APPOINTMENT_TIME": "00:00:00",
      "SHIPPING_POINT": "BR18",
      "SHIP_TO": "0000733101",
      "DELIVERY_CREATED_ON": "2024-07-24",
      "LIPS": [
        {
          "DELIVERY_NUMBER": "0850026493",
          "DELIVERY_ITEM": "000010",
          "MATERIAL_NUMBER": "000000000090004706",
          "MATERIAL_DESCRIPTION": "ESTRADO PALLET RETORNAVEL",
          "QUANTITY": "10.0",
          "UNIT_OF_MEASURE": "EA",
          "FISCAL_NOTE": "",
          "EIKP": [
            {
              "TRACKAGE_ID": "",
              "LFA1": [
                {
                  "CARRIER_CNPJ": "57705097000155",
                  "VTTK": [
                    {
                      "CARRIER_ID": "0100205740",
                      "SHIPMENT_CREATED_ON": "2024-07-24",
                      "SHIPMENT_DATE": "2024-07-24",
                      "SHIPMENT_TIME": "09:57:00",
                      "VEHICLE_TYPE": "BR004"
                    }
                  ]
                }
              ]
            }
          ]
        }
      ]
    }
  ]
}`

const shipmentExpected = `{
  "shipmentDocument": [
    {
      "mandt": "103",
      "shipmentNumber": "0004604557",
      "deliveryType": "ZTPR",
      "appointmentDate": "0000-00-00",
      "appointmentTime": "00:00:00",
      "shippingPoint": "BR18",
      "shippToParty": "0000733101",
      "createdOn": "2024-07-24",
      "deliveryItems": [
        {
          "deliveryNumber": "0850026493",
          "deliveryItem": "000010",
          "material": "000000000090004706",
          "description": "ESTRADO PALLET RETORNAVEL",
          "deliveryQuantity": "10.0",
          "baseUnit": "EA",
          "fiscalNote": "",
          "trackage": [
            {
              "trackageId": "",
              "shipment": [
                {
                  "carrierCNPJ": "57705097000155",
                  "changeDocument": [
                    {
                      "carrierId": "0100205740",
                      "shipmentCreatedOn": "2024-07-24",
                      "shipmentDate": "2024-07-24",
                      "shipmentTime": "09:57:00",
                      "vehicleType": "BR004"
                    }
                  ]
                }
              ]
            }
          ]
        }
      ]
    }
  ]
}`

func TestShipmentDocMapper(t *testing.T) {
	fn := NewShipmentDocMapperFunction()
	var buf bytes.Buffer
	ctx := capture(&buf)

	result, err := fn.Execute(ctx, []interface{}{shipmentSource})
	require.NoError(t, err)
	assert.JSONEq(t, shipmentExpected, result.(string))

	viaProfile, err := NewNestedJsonMapperFunction().Execute(ctx, []interface{}{shipmentSource, ShipmentProfile})
	require.NoError(t, err)
	assert.Equal(t, result, viaProfile)

	result, err = fn.Execute(ctx, []interface{}{nil})
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = fn.Execute(ctx, []interface{}{"not json"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Contains(t, buf.String(), "error processing JSON input")
}

func TestMappingProfiles(t *testing.T) {
	assert.Len(t, ShipmentMappings(), 27)
	assert.Contains(t, MappingProfileNames(), ShipmentProfile)

	source := map[string]string{"k": "v"}
	RegisterMappingProfile("copy_check", source)
	source["k"] = "changed"
	profile, ok := MappingProfile("copy_check")
	require.True(t, ok)
	assert.Equal(t, "v", profile["k"])

	profile["k"] = "mutated"
	again, _ := MappingProfile("copy_check")
	assert.Equal(t, "v", again["k"])

	_, ok = MappingProfile("missing")
	assert.False(t, ok)
}
