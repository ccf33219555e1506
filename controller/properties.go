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

package controller

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	zwave "github.com/ZaparooProject/go-zwave"
)

// Properties is what the controller reports about itself during
// initialization.
type Properties struct {
	Version          string
	apiMask          []byte
	attrs            []string
	HomeID           uint32
	Manufacturer     uint16
	ProductType      uint16
	ProductID        uint16
	SerialAPIVersion uint16
	NodeID           byte
	LibraryType      byte
	SerialVersion    byte
	ChipType         byte
	ChipVersion      byte
}

func (p *Properties) addAttr(a string) {
	if !slices.Contains(p.attrs, a) {
		p.attrs = append(p.attrs, a)
		slices.Sort(p.attrs)
	}
}

// Attrs returns the capability attributes, e.g. "suc" or "bridge".
func (p *Properties) Attrs() []string {
	return slices.Clone(p.attrs)
}

// HasAttr reports whether attr is set.
func (p *Properties) HasAttr(attr string) bool {
	return slices.Contains(p.attrs, attr)
}

// HasAPI reports whether the controller implements the serial API function.
func (p *Properties) HasAPI(fn byte) bool {
	if fn == 0 {
		return false
	}
	i := int(fn - 1)
	return i/8 < len(p.apiMask) && p.apiMask[i/8]&(1<<(i%8)) != 0
}

// APIs returns the supported functions the package has names for.
func (p *Properties) APIs() []byte {
	var out []byte
	for fn := 1; fn < 256; fn++ {
		if p.HasAPI(byte(fn)) && zwave.FuncName(byte(fn)) != "UNKNOWN_FUNC" {
			out = append(out, byte(fn))
		}
	}
	return out
}

func (p *Properties) setVersion(payload []byte) error {
	if len(payload) < 2 {
		return fmt.Errorf("%w: version payload of %d bytes", ErrShortReply, len(payload))
	}
	text := payload[:len(payload)-1]
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	p.Version = string(text)
	p.LibraryType = payload[len(payload)-1]
	if p.LibraryType == 7 {
		p.addAttr("bridge")
	}
	return nil
}

func (p *Properties) setID(payload []byte) error {
	if len(payload) < 5 {
		return fmt.Errorf("%w: memory id payload of %d bytes", ErrShortReply, len(payload))
	}
	p.HomeID = binary.BigEndian.Uint32(payload)
	p.NodeID = payload[4]
	return nil
}

func (p *Properties) setControllerCapabilities(caps byte) {
	for _, c := range []struct {
		name string
		bit  byte
	}{
		{"secondary", zwave.CapControllerSecondary},
		{"suc", zwave.CapControllerSUC},
		{"sis", zwave.CapControllerSIS},
		{"real_primary", zwave.CapControllerRealPrimary},
	} {
		if caps&c.bit != 0 {
			p.addAttr(c.name)
		}
	}
}

func (p *Properties) setSerialCapabilities(payload []byte) error {
	if len(payload) < 8+32 {
		return fmt.Errorf("%w: capabilities payload of %d bytes", ErrShortReply, len(payload))
	}
	p.SerialAPIVersion = binary.BigEndian.Uint16(payload)
	p.Manufacturer = binary.BigEndian.Uint16(payload[2:])
	p.ProductType = binary.BigEndian.Uint16(payload[4:])
	p.ProductID = binary.BigEndian.Uint16(payload[6:])
	p.apiMask = bytes.Clone(payload[8 : 8+32])
	return nil
}

// setInitData stores the serial API data and returns the node bitfield.
func (p *Properties) setInitData(payload []byte) ([]byte, error) {
	const size = 3 + zwave.NumNodeBitfieldBytes + 2
	if len(payload) < size || payload[2] != zwave.NumNodeBitfieldBytes {
		return nil, fmt.Errorf("%w: init data payload of %d bytes", ErrShortReply, len(payload))
	}
	p.SerialVersion = payload[0]
	caps := payload[1]
	for _, c := range []struct {
		name string
		bit  byte
	}{
		{"serial_slave", zwave.SerialCapSlave},
		{"serial_timer", zwave.SerialCapTimerSupport},
		{"serial_secondary", zwave.SerialCapSecondary},
	} {
		if caps&c.bit != 0 {
			p.addAttr(c.name)
		}
	}
	bits := payload[3 : 3+zwave.NumNodeBitfieldBytes]
	p.ChipType = payload[3+zwave.NumNodeBitfieldBytes]
	p.ChipVersion = payload[4+zwave.NumNodeBitfieldBytes]
	return bits, nil
}

func (p *Properties) String() string {
	return strings.Join([]string{
		fmt.Sprintf("home: %08x  node: %02x", p.HomeID, p.NodeID),
		fmt.Sprintf("versions: %s %x %x (%s)", zwave.LibraryTypeName(p.LibraryType), p.SerialAPIVersion, p.SerialVersion, p.Version),
		fmt.Sprintf("chip: %x.%02x", p.ChipType, p.ChipVersion),
		fmt.Sprintf("product: %04x %04x %04x", p.Manufacturer, p.ProductType, p.ProductID),
		fmt.Sprintf("attrs: %s", strings.Join(p.attrs, " ")),
	}, "\n")
}

// NodesFromBitfield returns the node ids whose bit is set, bit 0 being
// node 1.
func NodesFromBitfield(bits []byte) []int {
	var out []int
	for i := range 8 * len(bits) {
		if bits[i/8]&(1<<(i%8)) != 0 {
			out = append(out, i+1)
		}
	}
	return out
}
