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
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// ErrUnknownMapping is returned when a mapping profile name is not registered.
var ErrUnknownMapping = errors.New("unknown mapping profile")

// ShipmentProfile is the name of the built-in SAP shipment document profile.
const ShipmentProfile = "shipment"

// shipmentMappings renames the keys of the SAP /AMS/YBRV_PMO07 shipment export.
var shipmentMappings = map[string]string{
	// top-level array
	"/AMS/YBRV_PMO07": "shipmentDocument",

	// shipment
	"MANDT":               "mandt",
	"SHIPMENT_NUMBER":     "shipmentNumber",
	"DELIVERY_TYPE":       "deliveryType",
	"APPOINTMENT_DATE":    "appointmentDate",
	"APPOINTMENT_TIME":    "appointmentTime",
	"SHIPPING_POINT":      "shippingPoint",
	"SHIP_TO":             "shippToParty",
	"DELIVERY_CREATED_ON": "createdOn",
	"LIPS":                "deliveryItems",

	// delivery items
	"DELIVERY_NUMBER":      "deliveryNumber",
	"DELIVERY_ITEM":        "deliveryItem",
	"MATERIAL_NUMBER":      "material",
	"MATERIAL_DESCRIPTION": "description",
	"QUANTITY":             "deliveryQuantity",
	"UNIT_OF_MEASURE":      "baseUnit",
	"FISCAL_NOTE":          "fiscalNote",
	"EIKP":                 "trackage",

	// trackage
	"TRACKAGE_ID": "trackageId",
	"LFA1":        "shipment",

	// carrier
	"CARRIER_CNPJ": "carrierCNPJ",
	"VTTK":         "changeDocument",

	// change document
	"CARRIER_ID":          "carrierId",
	"SHIPMENT_CREATED_ON": "shipmentCreatedOn",
	"SHIPMENT_DATE":       "shipmentDate",
	"SHIPMENT_TIME":       "shipmentTime",
	"VEHICLE_TYPE":        "vehicleType",
}

var profiles = struct {
	sync.RWMutex
	m map[string]map[string]string
}{m: map[string]map[string]string{}}

func init() {
	RegisterMappingProfile(ShipmentProfile, shipmentMappings)
}

// RegisterMappingProfile stores a copy of mappings under name, replacing any previous profile.
func RegisterMappingProfile(name string, mappings map[string]string) {
	profiles.Lock()
	defer profiles.Unlock()
	profiles.m[strings.ToLower(name)] = lo.Assign(mappings)
}

// MappingProfile returns a copy of the named profile.
func MappingProfile(name string) (map[string]string, bool) {
	profiles.RLock()
	defer profiles.RUnlock()
	m, ok := profiles.m[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return lo.Assign(m), true
}

// MappingProfileNames lists the registered profiles in sorted order.
func MappingProfileNames() []string {
	profiles.RLock()
	defer profiles.RUnlock()
	names := lo.Keys(profiles.m)
	sort.Strings(names)
	return names
}

// ShipmentMappings returns a copy of the built-in shipment key table.
func ShipmentMappings() map[string]string {
	return lo.Assign(shipmentMappings)
}
