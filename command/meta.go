// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

// Sensor kinds used to label values.
const (
	SensorKindSwitchBinary     = "SwitchBinary"
	SensorKindSwitchMultilevel = "SwitchMultilevel"
	SensorKindSwitchToggle     = "SwitchToggle"
	SensorKindBattery          = "Battery"
	SensorKindBasic            = "Basic"
	SensorKindRelativeHumidity = "Relative Humidity"
	SensorKindInvalid          = "@invalid@"
	SensorKindElectric         = "Electric"
	SensorKindGas              = "Gas"
	SensorKindWater            = "Water"
	SensorKindTemperature      = "Temperature"
	SensorKindUnknown          = "Unknown"
)

// UnknownUnit is returned for type/unit pairs with no table entry.
const UnknownUnit = "unknown unit"

type typeMeta struct {
	kind  string
	units []string
}

var meterTypes = []typeMeta{
	{SensorKindInvalid, nil},
	{SensorKindElectric, []string{"kWh", "kVAh", "W", "Pulses", "V", "A", "Power-Factor"}},
	{SensorKindGas, []string{"m^3", "ft^3", "", "Pulses"}},
	{SensorKindWater, []string{"m^3", "ft^3", "", "Pulses"}},
}

var sensorTypes = []typeMeta{
	{SensorKindInvalid, nil},
	{SensorKindTemperature, []string{"C", "F"}},
	{"General", []string{"%"}},
	{"Luminance", []string{"%", "lux"}},
	{"Power", []string{"W", "BTU/h"}},
	{SensorKindRelativeHumidity, []string{"%"}},
	{"Velocity", []string{"m/s", "mph"}},
	{"Direction", []string{"", ""}},
	{"Atmospheric Pressure", []string{"kPa", "inHg"}},
	{"Barometric Pressure", []string{"kPa", "inHg"}},
	{"Solar Radiation", []string{"W/m2"}},
	{"Dew Point", []string{"C", "F"}},
	{"Rain Rate", []string{"mm/h", "in/h"}},
	{"Tide Level", []string{"m", "ft"}},
	{"Weight", []string{"kg", "lb"}},
	{"Voltage", []string{"V", "mV"}},
	{"Current", []string{"A", "mA"}},
	{"CO2 Level", []string{"ppm"}},
	{"Air Flow", []string{"m3/h", "cfm"}},
	{"Tank Capacity", []string{"l", "cbm", "gal"}},
	{"Distance", []string{"m", "cm", "ft"}},
	{"Angle Position", []string{"%", "deg N", "deg S"}},
	{"Rotation", []string{"rpm", "Hz"}},
	{"Water Temperature", []string{"C", "F"}},
	{"Soil Temperature", []string{"C", "F"}},
	{"Seismic Intensity", []string{"mercalli", "EU macroseismic", "liedu", "shindo"}},
	{"Seismic Magnitude", []string{"local", "moment", "surface wave", "body wave"}},
	{"Ultraviolet", []string{"", ""}},
	{"Electrical Resistivity", []string{"ohm"}},
	{"Electrical Conductivity", []string{"siemens/m"}},
	{"Loudness", []string{"db", "dbA"}},
	{"Moisture", []string{"%", "content", "k ohms", "water activity"}},
}

// GetSensorMeta returns the kind and unit name of a multilevel sensor
// type/unit pair. Unknown pairs yield SensorKindUnknown and ok false.
func GetSensorMeta(sensorType, unit int) (kind, unitName string, ok bool) {
	if sensorType <= 0 || sensorType >= len(sensorTypes) {
		return SensorKindUnknown, UnknownUnit, false
	}
	t := sensorTypes[sensorType]
	if unit < 0 || unit >= len(t.units) {
		return SensorKindUnknown, UnknownUnit, false
	}
	return t.kind, t.units[unit], true
}

// GetMeterMeta returns the kind and unit name of a meter type/unit pair.
func GetMeterMeta(meterType, unit int) (kind, unitName string, ok bool) {
	if meterType <= 0 || meterType >= len(meterTypes) {
		return SensorKindUnknown, UnknownUnit, false
	}
	t := meterTypes[meterType]
	if unit < 0 || unit >= len(t.units) || t.units[unit] == "" {
		return SensorKindUnknown, UnknownUnit, false
	}
	return t.kind, t.units[unit], true
}

// AlarmTypes names the sensor alarm types by id.
var AlarmTypes = []string{
	"General",
	"Smoke",
	"Carbon Monoxide",
	"Carbon Dioxide",
	"Heat",
	"Flood",
}

// ThermostatMode describes a thermostat mode id.
type ThermostatMode struct {
	Name string
	// Setpoint reports whether the mode has its own setpoint.
	Setpoint bool
}

// ThermostatModes is indexed by mode id.
var ThermostatModes = []ThermostatMode{
	{"Off", false},
	{"Heating", true},
	{"Cooling", true},
	{"Auto", false},
	{"Auxiliary Heat", false},
	{"Resume", false},
	{"Fan Only", false},
	{"Furnace", true},
	{"Dry Air", true},
	{"Moist Air", true},
	{"Auto Changeover", true},
	{"Heating Econ", true},
	{"Cooling Econ", true},
	{"Away Heating", true},
}

// DoorLogEventTypes names door lock logging events, starting at id 1.
var DoorLogEventTypes = []string{
	"Lock: Access Code",
	"Unlock: Access Code",
	"Lock: Lock Button",
	"Unlock: Lock Button",
	"Lock Attempt: Out of Schedule Access Code",
	"Unlock Attempt: Out of Schedule Access Code",
	"Illegal Access Code Entered",
	"Lock: Manual",
	"Unlock: Manual",
	"Lock: Auto",
	"Unlock: Auto",
	"Lock: Remote Out of Schedule Access Code",
	"Unlock: Remote Out of Schedule Access Code",
	"Lock: Remote",
	"Unlock: Remote",
	"Lock Attempt: Remote Out of Schedule Access Code",
	"Unlock Attempt Remote Out of Schedule Access Code",
	"Illegal Remote Access Code",
	"Lock: Manual (2)",
	"Unlock: Manual (2)",
	"Lock Secured",
	"Lock Unsecured",
	"User Code Added",
	"User Code Deleted",
	"All User Codes Deleted",
	"Master Code Changed",
	"User Code Changed",
	"Lock Reset",
	"Configuration Changed",
	"Low Battery",
	"New Battery Installed",
}
