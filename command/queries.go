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

// Query is one command of a batch: a key and the values to assemble it
// with.
type Query struct {
	Values Values
	Key    Key
}

// Batch is an ordered list of queries submitted together.
type Batch []Query

// Q builds a query from alternating field names and values. An odd number
// of arguments or a non-string name is a defect in the caller and panics.
func Q(k Key, kv ...any) Query {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("command: query %s with odd argument count %d", k, len(kv)))
	}
	v := make(Values, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("command: query %s field name %v is %T, not string", k, kv[i], kv[i]))
		}
		v[name] = kv[i+1]
	}
	return Query{Key: k, Values: v}
}

// DynamicQueries are the values that change during normal operation.
// Basic comes first.
func DynamicQueries() Batch {
	return Batch{
		Q(BasicGet),
		Q(AlarmGet),
		Q(SensorBinaryGet),
		Q(BatteryGet),
		Q(LockGet),
		Q(DoorLockGet),
		Q(PowerlevelGet),
		Q(ProtectionGet),
		Q(SwitchBinaryGet),
		Q(SwitchMultilevelGet),
		Q(SwitchToggleBinaryGet),
		Q(IndicatorGet),
		// current scene
		Q(SceneActuatorConfGet, "scene", 0),
		Q(SensorAlarmGet),
		Q(ThermostatModeGet),
	}
}

// StaticQueries are the values fixed by the device. Class versions are
// inserted before the final ManufacturerSpecific query so that its report
// marks the end of the static interview.
func StaticQueries(classes []Class) Batch {
	b := Batch{
		Q(SensorMultilevelSupportedGet),
		Q(UserCodeNumberGet),
		Q(DoorLockConfigurationGet),
		Q(DoorLockLoggingSupportedGet),
		Q(MeterSupportedGet),
		Q(SensorAlarmSupportedGet),
		Q(ThermostatModeSupportedGet),
		Q(ThermostatSetpointSupportedGet),
		Q(VersionGet),
		Q(SwitchMultilevelSupportedGet),
		Q(MultiChannelEndPointGet),
		// device type
		Q(ManufacturerSpecificDeviceSpecificGet, "type", 0),
		// serial number
		Q(ManufacturerSpecificDeviceSpecificGet, "type", 1),
		Q(TimeParametersGet),
		Q(ZwavePlusInfoGet),
		Q(SwitchAllGet),
		Q(AlarmSupportedGet),
		Q(NodeNamingGet),
		Q(NodeNamingLocationGet),
		Q(ColorSwitchSupportedGet),
		Q(ClockGet),
		Q(FirmwareMetadataGet),
		Q(CentralSceneSupportedGet),
		Q(AssociationGroupingsGet),
	}
	b = append(b, CommandVersionQueries(classes)...)
	return append(b, Q(ManufacturerSpecificGet))
}

// SensorMultilevelQueries asks for the default sensor, for older devices,
// then for every listed sensor type.
func SensorMultilevelQueries(sensors []int) Batch {
	b := Batch{Q(SensorMultilevelGet)}
	for _, s := range sensors {
		b = append(b, Q(SensorMultilevelGet, "sensor", s))
	}
	return b
}

// DefaultMeterScales are queried when a meter has not reported its scales.
var DefaultMeterScales = []int{0, 1, 2, 3}

// MeterQueries asks for the default scale, for older devices, then for
// every listed scale.
func MeterQueries(scales []int) Batch {
	b := Batch{Q(MeterGet)}
	for _, s := range scales {
		b = append(b, Q(MeterGet, "scale", s<<3))
	}
	return b
}

// ColorQueries asks for every listed color component.
func ColorQueries(groups []int) Batch {
	b := make(Batch, 0, len(groups))
	for _, g := range groups {
		b = append(b, Q(ColorSwitchGet, "group", g))
	}
	return b
}

// CommandVersionQueries asks for the version of every listed class.
func CommandVersionQueries(classes []Class) Batch {
	b := make(Batch, 0, len(classes))
	for _, c := range classes {
		if c > 0xff {
			continue
		}
		b = append(b, Q(VersionCommandClassGet, "class", int(c)))
	}
	return b
}

// MultiChannelEndpointQueries asks every listed endpoint for its
// capabilities.
func MultiChannelEndpointQueries(endpoints []int) Batch {
	b := make(Batch, 0, len(endpoints))
	for _, e := range endpoints {
		b = append(b, Q(MultiChannelCapabilityGet, "endpoint", e))
	}
	return b
}

// SceneActuatorConfQueries asks for every listed scene.
func SceneActuatorConfQueries(scenes []int) Batch {
	b := make(Batch, 0, len(scenes))
	for _, s := range scenes {
		b = append(b, Q(SceneActuatorConfGet, "scene", s))
	}
	return b
}

// ParameterQueries asks for every listed configuration parameter.
func ParameterQueries(params []int) Batch {
	b := make(Batch, 0, len(params))
	for _, p := range params {
		b = append(b, Q(ConfigurationGet, "parameter", p))
	}
	return b
}

// AssociationQueries asks for the members, name, command list and info of
// every listed group.
func AssociationQueries(groups []int) Batch {
	b := make(Batch, 0, 4*len(groups))
	for _, g := range groups {
		b = append(b,
			Q(AssociationGet, "group", g),
			Q(AssociationGroupInformationNameGet, "group", g),
			Q(AssociationGroupInformationListGet, "group", g, "mode", 0),
			Q(AssociationGroupInformationInfoGet, "group", g, "mode", 0),
		)
	}
	return b
}

// SetBasic sets the basic level, then reads it back if refresh is set.
func SetBasic(level int, refresh bool) Batch {
	b := Batch{Q(BasicSet, "level", level)}
	if refresh {
		b = append(b, Q(BasicGet))
	}
	return b
}

// SetBinarySwitch switches a binary switch, then reads back both switch
// kinds if refresh is set.
func SetBinarySwitch(level int, refresh bool) Batch {
	b := Batch{Q(SwitchBinarySet, "level", level)}
	if refresh {
		b = append(b, Q(SwitchBinaryGet), Q(SwitchMultilevelGet))
	}
	return b
}

// SetMultilevelSwitch sets a dimmer level. Version 1 devices ignore the
// duration.
func SetMultilevelSwitch(level, duration int, refresh bool) Batch {
	b := Batch{Q(SwitchMultilevelSet, "level", level, "duration", duration)}
	if refresh {
		b = append(b, Q(SwitchBinaryGet), Q(SwitchMultilevelGet))
	}
	return b
}

// SetConfiguration writes a size-byte configuration parameter.
func SetConfiguration(param, size int, value uint64, refresh bool) Batch {
	b := Batch{Q(ConfigurationSet, "parameter", param, "value", SizedValue{Size: size, Value: value})}
	if refresh {
		b = append(b, Q(ConfigurationGet, "parameter", param))
	}
	return b
}

// SetSceneActuatorConf configures the level a scene applies.
func SetSceneActuatorConf(scene, delay, extra, level int, refresh bool) Batch {
	b := Batch{Q(SceneActuatorConfSet, "scene", scene, "delay", delay, "extra", extra, "level", level)}
	if refresh {
		b = append(b, Q(SceneActuatorConfGet, "scene", scene))
	}
	return b
}

// ResetMeter clears the accumulated meter values.
func ResetMeter() Batch {
	return Batch{Q(MeterReset)}
}

// AddAssociation adds node to group and reads the group back.
func AddAssociation(group, node int) Batch {
	return Batch{
		Q(AssociationSet, "group", group, "nodes", []byte{byte(node)}),
		Q(AssociationGet, "group", group),
	}
}

// RemoveAssociation removes node from group and reads the group back.
func RemoveAssociation(group, node int) Batch {
	return Batch{
		Q(AssociationRemove, "group", group, "nodes", []byte{byte(node)}),
		Q(AssociationGet, "group", group),
	}
}
