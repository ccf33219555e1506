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

package translator

import (
	"fmt"
	"slices"

	"github.com/ZaparooProject/go-zwave/command"
)

// Protocol info flags.
const (
	FlagListening             = "listening"
	FlagRouting               = "routing"
	FlagSecurity              = "security"
	FlagController            = "controller"
	FlagSpecificDevice        = "specific_device"
	FlagRoutingSlave          = "routing_slave"
	FlagBeamCapable           = "beam_capable"
	FlagSensor250ms           = "sensor_250ms"
	FlagSensor1000ms          = "sensor_1000ms"
	FlagOptionalFunctionality = "optional_functionality"
)

var baudNames = [8]string{
	"unknown_baud",
	"9600",
	"40000",
	"100000",
	"unknown_baud",
	"unknown_baud",
	"unknown_baud",
	"unknown_baud",
}

var capabilityFlags = []struct {
	name string
	bit  byte
}{
	{FlagSecurity, 0x01},
	{FlagController, 0x02},
	{FlagSpecificDevice, 0x04},
	{FlagRoutingSlave, 0x08},
	{FlagBeamCapable, 0x10},
	{FlagSensor250ms, 0x20},
	{FlagSensor1000ms, 0x40},
	{FlagOptionalFunctionality, 0x80},
}

// ProtocolInfo is the decoded ZW_GET_NODE_PROTOCOL_INFO response.
type ProtocolInfo struct {
	Flags    []string
	Version  int
	Basic    byte
	Generic  byte
	Specific byte
}

// DecodeProtocolInfo decodes the response payload: capability, security,
// reserved, basic, generic and specific bytes.
func DecodeProtocolInfo(payload []byte) (ProtocolInfo, error) {
	if len(payload) < 6 {
		return ProtocolInfo{}, fmt.Errorf("protocol info % x: %w", payload, command.ErrMalformed)
	}
	a, b := payload[0], payload[1]
	info := ProtocolInfo{
		Version:  1 + int(a&0x07),
		Basic:    payload[3],
		Generic:  payload[4],
		Specific: payload[5],
	}
	if a&0x80 != 0 {
		info.Flags = append(info.Flags, FlagListening)
	}
	if a&0x40 != 0 {
		info.Flags = append(info.Flags, FlagRouting)
	}
	info.Flags = append(info.Flags, baudNames[(a&0x38)>>3])
	for _, f := range capabilityFlags {
		if b&f.bit != 0 {
			info.Flags = append(info.Flags, f.name)
		}
	}
	return info, nil
}

// Has reports whether the flag is set.
func (p ProtocolInfo) Has(flag string) bool {
	return slices.Contains(p.Flags, flag)
}

// DeviceType returns the generic/specific pair.
func (p ProtocolInfo) DeviceType() command.DeviceType {
	return command.DeviceType{Generic: p.Generic, Specific: p.Specific}
}

// Values renders the info as the payload of a ProtocolInfo event.
func (p ProtocolInfo) Values() command.Values {
	return command.Values{
		"protocol_version": p.Version,
		"flags":            slices.Clone(p.Flags),
		"basic":            int(p.Basic),
		"generic":          int(p.Generic),
		"specific":         int(p.Specific),
	}
}
