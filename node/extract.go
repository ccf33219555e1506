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

import "github.com/ZaparooProject/go-zwave/command"

type mapItem struct {
	values command.Values
	sub    SubKey
}

// extractor splits a report into the subkeyed entries it updates.
type extractor func(v command.Values) []mapItem

func byField(name string) extractor {
	return func(v command.Values) []mapItem {
		n, ok := v.Int(name)
		if !ok {
			return nil
		}
		return []mapItem{{sub: SubKey{ID: n}, values: v}}
	}
}

func extractSensor(v command.Values) []mapItem {
	t, ok := v.Int("type")
	r, rok := command.As[command.Reading](v, "value")
	if !ok || !rok {
		return nil
	}
	return []mapItem{{sub: SubKey{ID: t, Unit: r.Unit}, values: v}}
}

func extractMeter(v command.Values) []mapItem {
	m, ok := command.As[command.Meter](v, "value")
	if !ok {
		return nil
	}
	return []mapItem{{sub: SubKey{ID: m.Type, Unit: m.Unit}, values: v}}
}

func extractGroupInfo(v command.Values) []mapItem {
	groups, ok := command.As[[]command.Group](v, "groups")
	if !ok {
		return nil
	}
	out := make([]mapItem, 0, len(groups))
	for _, g := range groups {
		out = append(out, mapItem{sub: SubKey{ID: g.Number}, values: command.Values{"group": g}})
	}
	return out
}

// mapValued lists the reports that answer a parameterised Get and how
// each is keyed.
var mapValued = map[command.Key]extractor{
	command.VersionCommandClassReport:             byField("class"),
	command.MeterReport:                           extractMeter,
	command.ConfigurationReport:                   byField("parameter"),
	command.SensorMultilevelReport:                extractSensor,
	command.ThermostatSetpointReport:              byField("thermo"),
	command.AssociationReport:                     byField("group"),
	command.AssociationGroupInformationNameReport: byField("group"),
	command.AssociationGroupInformationInfoReport: extractGroupInfo,
	command.AssociationGroupInformationListReport: byField("group"),
	command.SceneActuatorConfReport:               byField("scene"),
	command.UserCodeReport:                        byField("user"),
	command.MultiChannelCapabilityReport:          byField("endpoint"),
}

// IsMapValued reports whether key is cached per subkey.
func IsMapValued(key command.Key) bool {
	_, ok := mapValued[key]
	return ok
}
