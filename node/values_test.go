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
	"testing"
	"time"

	"github.com/ZaparooProject/go-zwave/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueCache_SetAndGet(t *testing.T) {
	t.Parallel()

	c := NewValueCache()
	assert.Nil(t, c.Get(command.BasicReport))
	assert.False(t, c.HasValue(command.BasicReport))

	c.Set(t0, command.BasicReport, command.Values{"level": 10})
	c.Set(t0.Add(time.Second), command.BasicReport, command.Values{"level": 20})
	assert.Equal(t, command.Values{"level": 20}, c.Get(command.BasicReport))

	c.Set(t0, command.BasicReport, command.Values{"level": 30})
	assert.Equal(t, command.Values{"level": 20}, c.Get(command.BasicReport), "older values are ignored")

	c.Set(t0.Add(2*time.Second), command.BasicReport, nil)
	e, ok := c.GetEntry(command.BasicReport)
	require.True(t, ok)
	assert.Equal(t, t0.Add(time.Second), e.Time)
	assert.Equal(t, []command.Key{command.BasicReport}, c.Keys())
}

func TestValueCache_MapEntries(t *testing.T) {
	t.Parallel()

	c := NewValueCache()
	c.SetMapEntry(t0, command.ConfigurationReport, SubKey{ID: 3}, command.Values{"parameter": 3})
	c.SetMapEntry(t0, command.ConfigurationReport, SubKey{ID: 1}, command.Values{"parameter": 1})

	m := c.GetMap(command.ConfigurationReport)
	assert.Len(t, m, 2)
	delete(m, SubKey{ID: 1})
	assert.Len(t, c.GetMap(command.ConfigurationReport), 2, "GetMap returns a copy")

	_, ok := c.GetMapEntry(command.ConfigurationReport, SubKey{ID: 2})
	assert.False(t, ok)
	assert.Empty(t, c.GetMap(command.MeterReport))
}

func TestEndpoint_IdempotentCaching(t *testing.T) {
	t.Parallel()

	events := [][]byte{
		{0x20, 0x03, 0x63},
		{0x70, 0x06, 0x05, 0x01, 0x07},
		{0x31, 0x05, 0x01, 0x22, 0x01, 0x0a},
		{0x86, 0x14, 0x25, 0x02},
	}
	e := NewEndpoint(5, &fakeSender{}, false)
	e.MaybeChangeState(StateInterviewed)
	for _, ev := range events {
		k, v := parse(t, ev...)
		e.Put(t0, k, v)
	}
	before := snapshot(e.Values())

	for _, ev := range events {
		k, v := parse(t, ev...)
		e.Put(t0.Add(time.Minute), k, v)
	}
	assert.Equal(t, before, snapshot(e.Values()))

	entry, ok := e.Values().GetEntry(command.BasicReport)
	require.True(t, ok)
	assert.Equal(t, t0.Add(time.Minute), entry.Time, "only the timestamp moves")
}

// snapshot drops timestamps.
func snapshot(c *ValueCache) map[string]any {
	out := map[string]any{}
	for _, k := range c.Keys() {
		out[k.String()] = c.Get(k)
	}
	for k := range mapValued {
		for sub, e := range c.GetMap(k) {
			out[k.String()+"/"+fmt.Sprint(sub)] = e.Values
		}
	}
	return out
}

func TestHasCommandClass_VersionReportFlipsSupport(t *testing.T) {
	t.Parallel()

	e := NewEndpoint(5, &fakeSender{}, false)
	e.MaybeChangeState(StateInterviewed)

	k, v := parse(t, 0x86, 0x14, 0x20, 0x00)
	e.Put(t0, k, v)
	assert.False(t, e.Values().HasCommandClass(command.ClassBasic), "version 0 is unsupported")

	k, v = parse(t, 0x86, 0x14, 0x20, 0x0a)
	e.Put(t0.Add(time.Second), k, v)
	assert.True(t, e.Values().HasCommandClass(command.ClassBasic))
	ver, ok := e.Values().CommandVersion(command.ClassBasic)
	require.True(t, ok)
	assert.Equal(t, 10, ver)
}

func TestInitializeUnversioned(t *testing.T) {
	t.Parallel()

	e := NewEndpoint(5, &fakeSender{}, false)
	e.Values().SetMapEntry(t0, command.VersionCommandClassReport, SubKey{ID: 0x25},
		command.Values{"class": 0x25, "version": 2})
	e.Values().SetMapEntry(t0, command.VersionCommandClassReport, SubKey{ID: 0x26},
		command.Values{"class": 0x26, "version": BadVersion})

	e.InitializeUnversioned(
		[]command.Class{0x25, 0x26, 0x86},
		[]command.Class{0x2b},
		[]command.Class{0x20},
		[]command.Class{0x27},
	)

	tests := []struct {
		class     command.Class
		version   int
		supported bool
	}{
		{class: 0x25, version: 2, supported: true},
		{class: 0x26, version: BadVersion, supported: false},
		{class: 0x86, version: NoVersion, supported: true},
		{class: 0x2b, version: NoVersion, supported: true},
		{class: 0x20, version: NoVersion, supported: true},
		{class: 0x27, version: NoVersion, supported: true},
	}
	for _, tt := range tests {
		v, ok := e.Values().CommandVersion(tt.class)
		require.True(t, ok, "class %s", tt.class)
		assert.Equal(t, tt.version, v, "class %s", tt.class)
		assert.Equal(t, tt.supported, e.Values().HasCommandClass(tt.class), "class %s", tt.class)
	}
	assert.Equal(t, []command.Class{0x27, 0x2b}, e.Controls())
	assert.Equal(t, 6, e.Values().NumCommands())
	assert.True(t, e.Values().HasAlternativeForBasic())
}

func TestViews(t *testing.T) {
	t.Parallel()

	c := NewValueCache()
	assert.Nil(t, c.SensorSupported())
	assert.Nil(t, c.MeterSupported())
	assert.Nil(t, c.MultiChannelEndPointIDs())
	assert.Equal(t, []int{1, 2, 3, 4, 255}, c.AssociationGroupIDs())
	assert.Equal(t, ProductInfo{}, c.ProductInfo())

	c.Set(t0, command.SensorMultilevelSupportedReport, command.Values{"bits": command.BitmaskOf(0, 4)})
	c.Set(t0, command.ColorSwitchSupportedReport, command.Values{"bits": command.BitmaskOf(2, 3)})
	c.Set(t0, command.MeterSupportedReport, command.Values{"type": 0x81, "scale": 0x05})
	c.Set(t0, command.MultiChannelEndPointReport, command.Values{"mode": 0, "count": 3})
	c.Set(t0, command.ManufacturerSpecificReport, command.Values{"manufacturer": 0x86, "type": 3, "product": 0x62})
	c.Set(t0, command.VersionReport, command.Values{"library": 3, "protocol": 0x0406, "firmware": 0x0104})
	c.Set(t0, command.ProtocolInfo, command.Values{"basic": 4, "generic": 0x10, "specific": 1})
	c.Set(t0, command.ThermostatModeReport, command.Values{"thermo": 1})
	c.Set(t0, command.SwitchBinaryReport, command.Values{"level": 0xff})
	c.Set(t0, command.BatteryReport, command.Values{"level": 80})
	c.Set(t0, command.AssociationGroupingsReport, command.Values{"count": 2})

	assert.Equal(t, []int{1, 5}, c.SensorSupported())
	assert.Equal(t, []int{2, 3}, c.ColorSwitchSupported())
	assert.Equal(t, []int{0, 2}, c.MeterSupported())
	flags, ok := c.MeterFlags()
	require.True(t, ok)
	assert.Equal(t, 0x81, flags)
	assert.Equal(t, []int{1, 2, 3}, c.MultiChannelEndPointIDs())
	assert.Equal(t, ProductInfo{Manufacturer: 0x86, Type: 3, Product: 0x62}, c.ProductInfo())
	assert.Equal(t, Versions{Library: 3, Protocol: 0x0406, Firmware: 0x0104}, c.Versions())
	b, g, s := c.DeviceType()
	assert.Equal(t, []int{4, 0x10, 1}, []int{b, g, s})
	assert.Equal(t, []int{1, 2, 255}, c.AssociationGroupIDs())

	mode, info, ok := c.ThermostatMode()
	require.True(t, ok)
	assert.Equal(t, 1, mode)
	assert.Equal(t, "Heating", info.Name)

	misc := c.MiscSensors()
	require.Len(t, misc, 2)
	assert.Equal(t, command.SwitchBinaryReport, misc[0].Key)
	assert.Equal(t, 0xff, misc[0].Level)
	assert.Equal(t, command.SensorKindBattery, misc[1].Kind)
	assert.Equal(t, 80, misc[1].Level)
}

func TestViews_AssociationGroupCountFallback(t *testing.T) {
	t.Parallel()

	for _, count := range []int{0, 255} {
		c := NewValueCache()
		c.Set(t0, command.AssociationGroupingsReport, command.Values{"count": count})
		assert.Equal(t, []int{1, 2, 3, 4, 255}, c.AssociationGroupIDs(), "count %d", count)
	}
}

func TestViews_MapValued(t *testing.T) {
	t.Parallel()

	e := NewEndpoint(5, &fakeSender{}, false)
	e.MaybeChangeState(StateInterviewed)
	for _, ev := range [][]byte{
		{0x31, 0x05, 0x01, 0x22, 0x01, 0x0a},             // 26.6 C
		{0x31, 0x05, 0x05, 0x01, 0x2d},                   // 45 %
		{0x70, 0x06, 0x05, 0x02, 0x01, 0x2c},             // parameter 5 = 300
		{0x85, 0x03, 0x01, 0x05, 0x00, 0x01, 0x02},       // group 1: nodes 1, 2
		{0x85, 0x03, 0x02, 0x05, 0x00},                   // group 2: empty
		{0x59, 0x02, 0x01, 0x08, 'L', 'i', 'f', 'e', 'l', 'i', 'n', 'e'},
		{0x86, 0x14, 0x20, 0x01},
		{0x86, 0x14, 0x26, 0x00},
		{0x2c, 0x03, 0x02, 0x63, 0x00},
	} {
		k, v := parse(t, ev...)
		e.Put(t0, k, v)
	}
	c := e.Values()

	sensors := c.Sensors()
	require.Len(t, sensors, 2)
	assert.Equal(t, command.SensorKindTemperature, sensors[0].Kind)
	assert.Equal(t, "C", sensors[0].UnitName)
	assert.InDelta(t, 26.6, sensors[0].Value, 1e-9)
	assert.Equal(t, command.SensorKindRelativeHumidity, sensors[1].Kind)
	assert.InDelta(t, 45.0, sensors[1].Value, 1e-9)

	assert.Equal(t, []Parameter{{Number: 5, Size: 2, Value: 300}}, c.Configuration())

	assocs := c.Associations()
	require.Len(t, assocs, 2)
	assert.Equal(t, 1, assocs[0].Group)
	assert.Equal(t, []byte{1, 2}, assocs[0].Nodes)
	assert.Equal(t, "Lifeline", assocs[0].Name)
	assert.Equal(t, []int{1, 2}, c.AssociationGroupIDs())

	versions := c.CommandVersions()
	require.Len(t, versions, 1)
	assert.Equal(t, command.ClassBasic, versions[0].Class)
	assert.Equal(t, 1, versions[0].Version)

	assert.Equal(t, []SceneConf{{Scene: 2, Level: 0x63, Delay: 0}}, c.SceneActuatorConfiguration())
	assert.Contains(t, c.String(), "Lifeline")
	assert.Contains(t, c.String(), "sensors:")
}
