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

package node

import (
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-zwave/command"
)

// ProductInfo is the manufacturer specific report.
type ProductInfo struct {
	Manufacturer int
	Type         int
	Product      int
}

// Versions is the version report.
type Versions struct {
	Library  int
	Protocol int
	Firmware int
	Hardware int
}

// CommandVersion is one supported class and its version.
type CommandVersion struct {
	Name    string
	Class   command.Class
	Version int
}

// Parameter is one configuration parameter.
type Parameter struct {
	Number int
	Size   int
	Value  uint64
}

// SceneConf is one scene actuator configuration.
type SceneConf struct {
	Scene int
	Level int
	Delay int
}

// Reading is a sensor or meter value with its metadata.
type Reading struct {
	Kind     string
	UnitName string
	Type     int
	Unit     int
	Value    float64
}

// Setpoint is one thermostat setpoint.
type Setpoint struct {
	Thermo int
	Unit   int
	Value  float64
}

// MiscSensor is a switch or battery level presented as a sensor.
type MiscSensor struct {
	Kind  string
	Unit  string
	Key   command.Key
	Level int
}

// Association merges what is known about one association group.
type Association struct {
	Info     *command.Group
	Name     string
	Nodes    []byte
	Commands []byte
	Group    int
}

func intOr(v command.Values, name string) int {
	n, _ := v.Int(name)
	return n
}

// ColorSwitchSupported returns the supported color components.
func (c *ValueCache) ColorSwitchSupported() []int {
	bits, ok := command.As[command.Bitmask](c.Get(command.ColorSwitchSupportedReport), "bits")
	if !ok {
		return nil
	}
	return bits.List()
}

// SensorSupported returns the supported multilevel sensor types.
func (c *ValueCache) SensorSupported() []int {
	bits, ok := command.As[command.Bitmask](c.Get(command.SensorMultilevelSupportedReport), "bits")
	if !ok {
		return nil
	}
	out := bits.List()
	for i := range out {
		out[i]++
	}
	return out
}

// MeterSupported returns the supported meter scales.
func (c *ValueCache) MeterSupported() []int {
	v := c.Get(command.MeterSupportedReport)
	if v == nil {
		return nil
	}
	return command.Bitmask{byte(intOr(v, "scale"))}.List()
}

// MeterFlags returns the type byte of the meter supported report.
func (c *ValueCache) MeterFlags() (int, bool) {
	return c.Get(command.MeterSupportedReport).Int("type")
}

// MultiChannelEndPointIDs returns the ids of the reported endpoints.
func (c *ValueCache) MultiChannelEndPointIDs() []int {
	v := c.Get(command.MultiChannelEndPointReport)
	if v == nil {
		return nil
	}
	n := intOr(v, "count")
	out := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, i)
	}
	return out
}

// MultilevelSwitchLevel returns the last dimmer level, or 0.
func (c *ValueCache) MultilevelSwitchLevel() int {
	return intOr(c.Get(command.SwitchMultilevelReport), "level")
}

// ProductInfo returns the manufacturer, product type and product id.
func (c *ValueCache) ProductInfo() ProductInfo {
	v := c.Get(command.ManufacturerSpecificReport)
	return ProductInfo{
		Manufacturer: intOr(v, "manufacturer"),
		Type:         intOr(v, "type"),
		Product:      intOr(v, "product"),
	}
}

// DeviceType returns the basic, generic and specific device class.
func (c *ValueCache) DeviceType() (basic, generic, specific int) {
	v := c.Get(command.ProtocolInfo)
	return intOr(v, "basic"), intOr(v, "generic"), intOr(v, "specific")
}

// Versions returns the library, protocol, firmware and hardware versions.
func (c *ValueCache) Versions() Versions {
	v := c.Get(command.VersionReport)
	return Versions{
		Library:  intOr(v, "library"),
		Protocol: intOr(v, "protocol"),
		Firmware: intOr(v, "firmware"),
		Hardware: intOr(v, "hardware"),
	}
}

// AssociationGroupIDs returns the groups to query. Without any association
// report it assumes the reported group count, or 4 when the count is
// missing or implausible, plus the lifeline-style group 255.
func (c *ValueCache) AssociationGroupIDs() []int {
	if m := c.GetMap(command.AssociationReport); len(m) > 0 {
		out := make([]int, 0, len(m))
		for _, k := range sortedSubKeys(m) {
			out = append(out, k.ID)
		}
		return out
	}
	n, ok := c.Get(command.AssociationGroupingsReport).Int("count")
	if !ok || n == 0 || n == 255 {
		n = 4
	}
	out := make([]int, 0, n+1)
	for i := 1; i <= n; i++ {
		out = append(out, i)
	}
	return append(out, 255)
}

// CommandVersions returns every class not reported as unsupported.
func (c *ValueCache) CommandVersions() []CommandVersion {
	m := c.GetMap(command.VersionCommandClassReport)
	var out []CommandVersion
	for _, k := range sortedSubKeys(m) {
		v := intOr(m[k].Values, "version")
		if v == BadVersion {
			continue
		}
		class := command.Class(k.ID)
		out = append(out, CommandVersion{Class: class, Name: command.StringifyCommandClass(class), Version: v})
	}
	return out
}

// Configuration returns the reported configuration parameters.
func (c *ValueCache) Configuration() []Parameter {
	m := c.GetMap(command.ConfigurationReport)
	out := make([]Parameter, 0, len(m))
	for _, k := range sortedSubKeys(m) {
		sv, _ := command.As[command.SizedValue](m[k].Values, "value")
		out = append(out, Parameter{Number: k.ID, Size: sv.Size, Value: sv.Value})
	}
	return out
}

// SceneActuatorConfiguration returns the reported scene configurations.
func (c *ValueCache) SceneActuatorConfiguration() []SceneConf {
	m := c.GetMap(command.SceneActuatorConfReport)
	out := make([]SceneConf, 0, len(m))
	for _, k := range sortedSubKeys(m) {
		v := m[k].Values
		out = append(out, SceneConf{Scene: k.ID, Level: intOr(v, "level"), Delay: intOr(v, "delay")})
	}
	return out
}

// Sensors returns the multilevel sensor readings.
func (c *ValueCache) Sensors() []Reading {
	m := c.GetMap(command.SensorMultilevelReport)
	out := make([]Reading, 0, len(m))
	for _, k := range sortedSubKeys(m) {
		r, _ := command.As[command.Reading](m[k].Values, "value")
		kind, unit, _ := command.GetSensorMeta(k.ID, k.Unit)
		out = append(out, Reading{Type: k.ID, Unit: k.Unit, Kind: kind, UnitName: unit, Value: r.Value()})
	}
	return out
}

// Meters returns the meter readings.
func (c *ValueCache) Meters() []Reading {
	m := c.GetMap(command.MeterReport)
	out := make([]Reading, 0, len(m))
	for _, k := range sortedSubKeys(m) {
		mv, _ := command.As[command.Meter](m[k].Values, "value")
		kind, unit, _ := command.GetMeterMeta(k.ID, k.Unit)
		out = append(out, Reading{Type: k.ID, Unit: k.Unit, Kind: kind, UnitName: unit, Value: mv.Value()})
	}
	return out
}

// ThermostatMode returns the current thermostat mode.
func (c *ValueCache) ThermostatMode() (int, command.ThermostatMode, bool) {
	mode, ok := c.Get(command.ThermostatModeReport).Int("thermo")
	if !ok || mode < 0 || mode >= len(command.ThermostatModes) {
		return mode, command.ThermostatMode{}, false
	}
	return mode, command.ThermostatModes[mode], true
}

// ThermostatSetpoints returns the reported setpoints.
func (c *ValueCache) ThermostatSetpoints() []Setpoint {
	m := c.GetMap(command.ThermostatSetpointReport)
	out := make([]Setpoint, 0, len(m))
	for _, k := range sortedSubKeys(m) {
		r, _ := command.As[command.Reading](m[k].Values, "value")
		out = append(out, Setpoint{Thermo: k.ID, Unit: r.Unit, Value: r.Value()})
	}
	return out
}

// MiscSensors returns switch and battery levels.
func (c *ValueCache) MiscSensors() []MiscSensor {
	var out []MiscSensor
	for _, s := range []MiscSensor{
		{Key: command.SwitchMultilevelReport, Kind: command.SensorKindSwitchMultilevel, Unit: "% (dimmer)"},
		{Key: command.SwitchBinaryReport, Kind: command.SensorKindSwitchBinary, Unit: "on/off"},
		{Key: command.BatteryReport, Kind: command.SensorKindBattery, Unit: "% (battery)"},
	} {
		v := c.Get(s.Key)
		if v == nil {
			continue
		}
		s.Level = intOr(v, "level")
		out = append(out, s)
	}
	return out
}

// Associations merges association reports with association group
// information for every group mentioned by either.
func (c *ValueCache) Associations() []Association {
	groups := c.GetMap(command.AssociationReport)
	names := c.GetMap(command.AssociationGroupInformationNameReport)
	infos := c.GetMap(command.AssociationGroupInformationInfoReport)
	lists := c.GetMap(command.AssociationGroupInformationListReport)

	seen := make(map[SubKey]Entry)
	for _, m := range []map[SubKey]Entry{groups, names, infos, lists} {
		for k, e := range m {
			seen[k] = e
		}
	}
	out := make([]Association, 0, len(seen))
	for _, k := range sortedSubKeys(seen) {
		a := Association{Group: k.ID}
		if e, ok := groups[k]; ok {
			a.Nodes, _ = e.Values.Bytes("nodes")
		}
		if e, ok := names[k]; ok {
			name, _ := e.Values.Bytes("name")
			a.Name = string(name)
		}
		if e, ok := infos[k]; ok {
			if g, ok := command.As[command.Group](e.Values, "group"); ok {
				a.Info = &g
			}
		}
		if e, ok := lists[k]; ok {
			a.Commands, _ = e.Values.Bytes("commands")
		}
		out = append(out, a)
	}
	return out
}

// String renders the cache for diagnostics.
func (c *ValueCache) String() string {
	var b strings.Builder
	b.WriteString("  values:\n")
	for _, k := range c.Keys() {
		fmt.Fprintf(&b, "    %s: %v\n", k, c.Get(k))
	}
	b.WriteString("  configuration:\n")
	for _, p := range c.Configuration() {
		fmt.Fprintf(&b, "    %d: %d (%d bytes)\n", p.Number, p.Value, p.Size)
	}
	b.WriteString("  commands:\n")
	for _, v := range c.CommandVersions() {
		fmt.Fprintf(&b, "    %s (%#02x): %d\n", v.Name, int(v.Class), v.Version)
	}
	b.WriteString("  associations:\n")
	for _, a := range c.Associations() {
		fmt.Fprintf(&b, "    %d %q: % x\n", a.Group, a.Name, a.Nodes)
	}
	if meters := c.Meters(); len(meters) > 0 {
		b.WriteString("  meters:\n")
		for _, r := range meters {
			fmt.Fprintf(&b, "    %s: %g %s\n", r.Kind, r.Value, r.UnitName)
		}
	}
	if sensors := c.Sensors(); len(sensors) > 0 {
		b.WriteString("  sensors:\n")
		for _, r := range sensors {
			fmt.Fprintf(&b, "    %s: %g %s\n", r.Kind, r.Value, r.UnitName)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
