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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchesAssemble(t *testing.T) {
	t.Parallel()
	batches := map[string]Batch{
		"dynamic":       DynamicQueries(),
		"static":        StaticQueries([]Class{ClassBasic, ClassSwitchBinary}),
		"sensor":        SensorMultilevelQueries([]int{1, 5}),
		"meter":         MeterQueries(DefaultMeterScales),
		"color":         ColorQueries([]int{0, 2, 3, 4}),
		"version":       CommandVersionQueries([]Class{ClassBasic, ClassCustom}),
		"multi channel": MultiChannelEndpointQueries([]int{1, 2}),
		"scene":         SceneActuatorConfQueries([]int{1, 0}),
		"parameter":     ParameterQueries([]int{1, 2, 3}),
		"association":   AssociationQueries([]int{1, 255}),
		"basic":         SetBasic(99, true),
		"binary":        SetBinarySwitch(0xff, true),
		"multilevel":    SetMultilevelSwitch(50, 2, true),
		"configuration": SetConfiguration(7, 2, 300, true),
		"scene conf":    SetSceneActuatorConf(3, 0, 0x80, 99, true),
		"reset meter":   ResetMeter(),
		"add assoc":     AddAssociation(1, 5),
		"remove assoc":  RemoveAssociation(2, 5),
	}
	for name, b := range batches {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.NotEmpty(t, b)
			for _, q := range b {
				_, err := Assemble(q.Key, q.Values)
				assert.NoError(t, err, "%s %v", q.Key, q.Values)
			}
		})
	}
}

func TestSensorAlarmGetTypeIsOptional(t *testing.T) {
	t.Parallel()

	wire, err := Assemble(SensorAlarmGet, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x9c, 0x01}, wire)

	wire, err = Assemble(SensorAlarmGet, Values{"alarm": 0xff})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x9c, 0x01, 0xff}, wire)

	k, v, err := ParseCommand(wire)
	require.NoError(t, err)
	assert.Equal(t, SensorAlarmGet, k)
	assert.Equal(t, 0xff, v["alarm"])
}

func TestStaticQueriesEndWithManufacturerSpecific(t *testing.T) {
	t.Parallel()
	b := StaticQueries([]Class{ClassBasic, ClassMeter})
	require.NotEmpty(t, b)
	assert.Equal(t, ManufacturerSpecificGet, b[len(b)-1].Key)
	assert.Equal(t, VersionCommandClassGet, b[len(b)-2].Key)
	assert.Equal(t, int(ClassMeter), b[len(b)-2].Values["class"])
}

func TestQueryBatchShapes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, BasicGet, DynamicQueries()[0].Key)

	m := MeterQueries([]int{0, 2})
	require.Len(t, m, 3)
	assert.Empty(t, m[0].Values)
	assert.Equal(t, 2<<3, m[2].Values["scale"])

	assert.Len(t, CommandVersionQueries([]Class{ClassBasic, ClassCustom}), 1)
	assert.Len(t, AssociationQueries([]int{1, 2}), 8)
	assert.Len(t, SetBasic(1, false), 1)

	r := RemoveAssociation(2, 5)
	assert.Equal(t, 2, r[0].Values["group"])
	assert.Equal(t, []byte{5}, r[0].Values["nodes"])
}

func TestQPanicsOnBadArity(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { Q(BasicSet, "level") })
	assert.Panics(t, func() { Q(BasicSet, 1, 2) })
	assert.NotPanics(t, func() { Q(BasicSet, "level", 1) })
}

func TestSensorMeta(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name, wantKind, wantUnit string
		typ, unit                int
		ok                       bool
	}{
		{name: "celsius", typ: 1, unit: 0, wantKind: SensorKindTemperature, wantUnit: "C", ok: true},
		{name: "lux", typ: 3, unit: 1, wantKind: "Luminance", wantUnit: "lux", ok: true},
		{name: "humidity", typ: 5, unit: 0, wantKind: SensorKindRelativeHumidity, wantUnit: "%", ok: true},
		{name: "bad unit", typ: 5, unit: 3, wantKind: SensorKindUnknown, wantUnit: UnknownUnit},
		{name: "invalid type", typ: 0, unit: 0, wantKind: SensorKindUnknown, wantUnit: UnknownUnit},
		{name: "out of table", typ: 200, unit: 0, wantKind: SensorKindUnknown, wantUnit: UnknownUnit},
	}
	for _, tt := range tests {
		kind, unit, ok := GetSensorMeta(tt.typ, tt.unit)
		assert.Equal(t, tt.wantKind, kind, tt.name)
		assert.Equal(t, tt.wantUnit, unit, tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
	}
}

func TestMeterMeta(t *testing.T) {
	t.Parallel()
	kind, unit, ok := GetMeterMeta(1, 2)
	assert.True(t, ok)
	assert.Equal(t, SensorKindElectric, kind)
	assert.Equal(t, "W", unit)

	_, unit, ok = GetMeterMeta(2, 2)
	assert.False(t, ok)
	assert.Equal(t, UnknownUnit, unit)

	_, _, ok = GetMeterMeta(9, 0)
	assert.False(t, ok)
}

func TestLookupDevice(t *testing.T) {
	t.Parallel()

	d, ok := LookupDevice(DeviceType{Generic: 0x10, Specific: 0x01})
	require.True(t, ok)
	assert.Equal(t, "Binary Power Switch", d.Name)
	assert.Equal(t, []Class{ClassSwitchAll, ClassBasic, ClassSwitchBinary}, d.Commands)
	assert.Empty(t, d.Controls)
	assert.Equal(t, ClassSwitchBinary, d.Mapped)

	d, ok = LookupDevice(DeviceType{Generic: 0x01, Specific: 0x02})
	require.True(t, ok)
	assert.Equal(t, "Portable Scene Controller", d.Name)
	assert.Equal(t, []Class{ClassSceneControllerConf, ClassManufacturerSpecific, ClassAssociation}, d.Commands)
	assert.Equal(t, []Class{ClassSceneActivation, ClassBasic}, d.Controls)

	d, ok = LookupDevice(DeviceType{Generic: 0x21, Specific: 0x7f})
	require.True(t, ok)
	assert.Equal(t, "Multilevel Sensor", d.Name)
	assert.Equal(t, ClassSensorMultilevel, d.Mapped)

	_, ok = LookupDevice(DeviceType{Generic: 0x77})
	assert.False(t, ok)
}

func TestSplitNodeInfo(t *testing.T) {
	t.Parallel()
	cmds, ctrls := SplitNodeInfo([]byte{0x25, 0x86, 0xef, 0x20, 0x2b})
	assert.Equal(t, []Class{ClassSwitchBinary, ClassVersion}, cmds)
	assert.Equal(t, []Class{ClassBasic, ClassSceneActivation}, ctrls)

	cmds, ctrls = SplitNodeInfo(nil)
	assert.Empty(t, cmds)
	assert.Empty(t, ctrls)

	assert.Equal(t, "StaticController", BasicDeviceName(2))
	assert.Equal(t, "0x09", BasicDeviceName(9))
}
