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

import "fmt"

// DeviceType is a generic/specific device class pair.
type DeviceType struct {
	Generic  byte
	Specific byte
}

// DeviceClass is what the device database knows about a device type: the
// command classes every such device supports and controls.
type DeviceClass struct {
	Name     string
	Commands []Class
	Controls []Class
	// Mapped is the class that Basic commands map onto, or 0.
	Mapped Class
}

type deviceEntry struct {
	name    string
	classes []Class
	mapped  Class
}

// splitMark splits a node information class list on the Mark class.
func splitMark(classes []Class) (commands, controls []Class) {
	seen := false
	for _, c := range classes {
		switch {
		case c == ClassMark:
			seen = true
		case seen:
			controls = append(controls, c)
		default:
			commands = append(commands, c)
		}
	}
	return commands, controls
}

// SplitNodeInfo splits the class list of a node information frame into
// supported and controlled classes.
func SplitNodeInfo(data []byte) (commands, controls []Class) {
	classes := make([]Class, len(data))
	for i, b := range data {
		classes[i] = Class(b)
	}
	return splitMark(classes)
}

// LookupDevice merges the specific device class with its generic class.
// When only the generic class is known, its entry is returned with ok
// still true; ok is false when the generic class is unknown too.
func LookupDevice(t DeviceType) (DeviceClass, bool) {
	g, ok := genericDevices[t.Generic]
	if !ok {
		return DeviceClass{Name: fmt.Sprintf("Unknown: %02x:%02x", t.Generic, t.Specific)}, false
	}
	d := DeviceClass{Name: g.name, Mapped: g.mapped}
	if s, ok := specificDevices[t]; ok {
		d.Name = s.name
		if s.mapped != 0 {
			d.Mapped = s.mapped
		}
		d.Commands, d.Controls = splitMark(s.classes)
	}
	cmds, ctrls := splitMark(g.classes)
	d.Commands = append(d.Commands, cmds...)
	d.Controls = append(d.Controls, ctrls...)
	return d, true
}

// BasicDeviceName names a basic device type.
func BasicDeviceName(b byte) string {
	if name, ok := BasicDeviceNames[b]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", b)
}


// BasicDeviceNames names the basic device types.
var BasicDeviceNames = map[byte]string{
	0x01: "Controller",
	0x02: "StaticController",
	0x03: "Slave",
	0x04: "RoutingSlave",
}

// Generic device classes. ClassMark separates supported classes from
// controlled ones.
var genericDevices = map[byte]deviceEntry{
	0x01: {"Remote Controller", []Class{ClassMark, ClassBasic}, 0},
	0x02: {"Static Controller", []Class{ClassMark, ClassBasic}, 0},
	0x03: {"AV Control Point", []Class{ClassBasic}, 0},
	0x04: {"Display", []Class{ClassBasic}, 0},
	0x08: {"Thermostat", []Class{ClassBasic}, 0},
	0x09: {"Window Covering", []Class{ClassBasic}, 0},
	0x0f: {"Repeater Slave", []Class{ClassBasic}, 0},
	0x10: {"Binary Switch", []Class{ClassBasic, ClassSwitchBinary}, ClassSwitchBinary},
	0x11: {"Multilevel Switch", []Class{ClassBasic, ClassSwitchMultilevel}, ClassSwitchMultilevel},
	0x12: {"Remote Switch", []Class{ClassMark, ClassBasic}, 0},
	0x13: {"Toggle Switch", []Class{ClassBasic}, 0},
	0x20: {"Binary Sensor", []Class{ClassSensorBinary, ClassMark, ClassBasic}, ClassSensorBinary},
	0x21: {"Multilevel Sensor", []Class{ClassSensorMultilevel, ClassMark, ClassBasic}, ClassSensorMultilevel},
	0x30: {"Pulse Meter", []Class{ClassMeterPulse, ClassMark, ClassBasic}, ClassMeterPulse},
	0x31: {"Meter", []Class{ClassMark, ClassBasic}, 0},
	0x40: {"Entry Control", []Class{ClassBasic}, 0},
	0x50: {"Semi Interoperable", []Class{ClassBasic, ClassManufacturerSpecific, ClassVersion, ClassProprietary}, 0},
	0xa1: {"Alarm Sensor", []Class{ClassMark, ClassBasic}, ClassAlarm},
	0xff: {"Non Interoperable", nil, 0},
}

// Specific device classes, extending their generic class.
var specificDevices = map[DeviceType]deviceEntry{
	{0x01, 0x00}: {"Remote Controller", nil, 0},
	{0x01, 0x01}: {"Portable Remote Controller", nil, 0},
	{0x01, 0x02}: {"Portable Scene Controller", []Class{ClassSceneControllerConf, ClassManufacturerSpecific, ClassAssociation, ClassMark, ClassSceneActivation}, 0},
	{0x01, 0x03}: {"Portable Installer Tool", []Class{ClassControllerReplication, ClassManufacturerSpecific, ClassVersion, ClassMultiCmd, ClassMark, ClassControllerReplication, ClassMultiChannel, ClassConfiguration, ClassManufacturerSpecific, ClassWakeUp, ClassAssociation, ClassVersion, ClassMultiInstanceAssociation}, 0},
	{0x02, 0x01}: {"Static PC Controller", nil, 0},
	{0x02, 0x02}: {"Static Scene Controller", []Class{ClassSceneControllerConf, ClassManufacturerSpecific, ClassAssociation, ClassMark, ClassSceneActivation}, 0},
	{0x02, 0x03}: {"Static Installer Tool", []Class{ClassControllerReplication, ClassManufacturerSpecific, ClassVersion, ClassMultiCmd, ClassMark, ClassControllerReplication, ClassMultiChannel, ClassConfiguration, ClassManufacturerSpecific, ClassWakeUp, ClassAssociation, ClassVersion, ClassMultiInstanceAssociation}, 0},
	{0x03, 0x04}: {"Satellite Receiver", []Class{ClassManufacturerSpecific, ClassVersion, ClassSimpleAvControl}, 0},
	{0x03, 0x11}: {"Satellite Receiver V2", []Class{ClassManufacturerSpecific, ClassVersion, ClassSimpleAvControl}, ClassSimpleAvControl},
	{0x03, 0x12}: {"Doorbell", []Class{ClassSensorBinary, ClassManufacturerSpecific, ClassAssociation, ClassVersion}, ClassSensorBinary},
	{0x04, 0x01}: {"Simple Display", []Class{ClassManufacturerSpecific, ClassVersion, ClassScreenMd, ClassScreenAttributes}, 0},
	{0x08, 0x01}: {"Heating Thermostat", nil, 0},
	{0x08, 0x02}: {"General Thermostat", []Class{ClassThermostatMode, ClassThermostatSetpoint, ClassManufacturerSpecific}, ClassThermostatMode},
	{0x08, 0x03}: {"Setback Schedule Thermostat", []Class{ClassClimateControlSchedule, ClassManufacturerSpecific, ClassVersion, ClassMultiCmd, ClassMark, ClassClimateControlSchedule, ClassClock, ClassMultiCmd}, ClassClimateControlSchedule},
	{0x08, 0x04}: {"Setpoint Thermostat", []Class{ClassThermostatSetpoint, ClassManufacturerSpecific, ClassVersion, ClassMultiCmd, ClassMark, ClassThermostatSetpoint, ClassMultiCmd}, ClassThermostatSetpoint},
	{0x08, 0x05}: {"Setback Thermostat", []Class{ClassThermostatMode, ClassThermostatSetpoint, ClassThermostatSetBack, ClassManufacturerSpecific, ClassVersion}, ClassThermostatMode},
	{0x08, 0x06}: {"General Thermostat V2", []Class{ClassThermostatMode, ClassThermostatSetpoint, ClassManufacturerSpecific, ClassVersion}, ClassThermostatMode},
	{0x09, 0x01}: {"Simple Window Covering", []Class{ClassBasicWindowCovering}, ClassBasicWindowCovering},
	{0x0f, 0x01}: {"Basic Repeater Slave", nil, 0},
	{0x10, 0x01}: {"Binary Power Switch", []Class{ClassSwitchAll}, 0},
	{0x10, 0x03}: {"Binary Scene Switch", []Class{ClassSwitchAll, ClassSceneActivation, ClassSceneActuatorConf, ClassManufacturerSpecific}, 0},
	{0x11, 0x01}: {"Multilevel Power Switch", []Class{ClassSwitchAll}, 0},
	{0x11, 0x03}: {"Multiposition Motor", []Class{ClassManufacturerSpecific, ClassVersion}, 0},
	{0x11, 0x04}: {"Multilevel Scene Switch", []Class{ClassSwitchAll, ClassSceneActivation, ClassSceneActuatorConf, ClassManufacturerSpecific}, 0},
	{0x11, 0x05}: {"Motor Control Class A", []Class{ClassSwitchBinary, ClassManufacturerSpecific, ClassVersion}, 0},
	{0x11, 0x06}: {"Motor Control Class B", []Class{ClassSwitchBinary, ClassManufacturerSpecific, ClassVersion}, 0},
	{0x11, 0x07}: {"Motor Control Class C", []Class{ClassSwitchBinary, ClassManufacturerSpecific, ClassVersion}, 0},
	{0x12, 0x00}: {"Remote Switch", []Class{ClassMark, ClassBasic}, 0},
	{0x12, 0x01}: {"Binary Remote Switch", []Class{ClassMark, ClassSwitchBinary}, ClassSwitchBinary},
	{0x12, 0x02}: {"Multilevel Remote Switch", []Class{ClassMark, ClassSwitchMultilevel}, ClassSwitchMultilevel},
	{0x12, 0x03}: {"Binary Toggle Remote Switch", []Class{ClassMark, ClassSwitchToggleBinary}, ClassSwitchToggleBinary},
	{0x12, 0x04}: {"Multilevel Toggle Remote Switch", []Class{ClassMark, ClassSwitchToggleMultilevel}, ClassSwitchToggleMultilevel},
	{0x13, 0x01}: {"Binary Toggle Switch", []Class{ClassSwitchBinary, ClassSwitchToggleBinary}, ClassSwitchToggleBinary},
	{0x13, 0x02}: {"Multilevel Toggle Switch", []Class{ClassSwitchMultilevel, ClassSwitchToggleMultilevel}, ClassSwitchToggleMultilevel},
	{0x20, 0x01}: {"Routing Binary Sensor", nil, 0},
	{0x21, 0x01}: {"Routing Multilevel Sensor", nil, 0},
	{0x31, 0x01}: {"Simple Meter", []Class{ClassMeter, ClassManufacturerSpecific, ClassVersion}, ClassMeter},
	{0x40, 0x01}: {"Door Lock", []Class{ClassDoorLock}, ClassDoorLock},
	{0x40, 0x02}: {"Advanced Door Lock", []Class{ClassDoorLock, ClassManufacturerSpecific, ClassVersion}, ClassDoorLock},
	{0x40, 0x03}: {"Secure Keypad Door Lock", []Class{ClassDoorLock, ClassUserCode, ClassManufacturerSpecific, ClassVersion, ClassSecurity}, ClassDoorLock},
	{0x50, 0x01}: {"Energy Production", []Class{ClassEnergyProduction}, 0},
	{0xa1, 0x00}: {"Alarm Sensor", nil, 0},
	{0xa1, 0x01}: {"Basic Routing Alarm Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassAssociation, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x02}: {"Routing Alarm Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassBattery, ClassAssociation, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x03}: {"Basic Zensor Alarm Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x04}: {"Zensor Alarm Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassBattery, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x05}: {"Advanced Zensor Alarm Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassBattery, ClassAssociation, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x06}: {"Basic Routing Smoke Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassAssociation, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x07}: {"Routing Smoke Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassBattery, ClassAssociation, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x08}: {"Basic Zensor Smoke Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x09}: {"Zensor Smoke Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassBattery, ClassVersion, ClassMark, ClassAlarm}, 0},
	{0xa1, 0x0a}: {"Advanced Zensor Smoke Sensor", []Class{ClassAlarm, ClassManufacturerSpecific, ClassBattery, ClassAssociation, ClassVersion, ClassMark, ClassAlarm}, 0},
}
