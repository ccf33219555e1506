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

// Package command encodes and decodes application-layer command payloads.
//
// Every known (class, command) pair has an ordered list of field
// descriptors. Parse walks the descriptors left to right over the payload
// and produces a Values record; Assemble walks them again to rebuild the
// payload from a record.
package command

import (
	"fmt"
	"strings"
)

// Class is a command class id. Values above 0xff are pseudo classes used
// for events that do not come from a command frame.
type Class uint16

// ClassCustom is the pseudo class carrying controller-side events.
const ClassCustom Class = 0x100

// Key identifies a command by class and command id.
type Key struct {
	Class   Class
	Command byte
}

// Pseudo commands raised by the translator.
var (
	ApplicationUpdate = Key{ClassCustom, 0x01}
	ProtocolInfo      = Key{ClassCustom, 0x02}
	ActiveScene       = Key{ClassCustom, 0x03}
	FailedNode        = Key{ClassCustom, 0x04}
	NodeInfoFailed    = Key{ClassCustom, 0x05}
)

var customNames = map[Key]string{
	ApplicationUpdate: "_Application_Update",
	ProtocolInfo:      "_ProtocolInfo",
	ActiveScene:       "_Active_Scene",
	FailedNode:        "_FailedNode",
	NodeInfoFailed:    "_NodeInfoFailed",
}

// String returns the registered command name.
func (k Key) String() string {
	return StringifyCommand(k)
}

// IsCustom reports whether k is a pseudo command.
func (k Key) IsCustom() bool {
	return k.Class == ClassCustom
}

// Kind selects how a field is laid out on the wire.
type Kind byte

// Field kinds. The letters are the compact descriptor codes used in
// diagnostics.
const (
	KindByte         Kind = 'B' // one byte
	KindOptionalByte Kind = 'b' // one byte if present
	KindWord         Kind = 'W' // big-endian uint16
	KindInt24        Kind = '3' // big-endian 24-bit
	KindString       Kind = 'A' // length byte then bytes
	KindDate         Kind = 'C' // year word then month, day, hour, minute, second
	KindExtensions   Kind = 'E' // S2 header extensions then ciphertext
	KindText         Kind = 'F' // encoding<<5|length byte then text
	KindGroups       Kind = 'G' // 7-byte association group records
	KindKey          Kind = 'K' // 16-byte network key
	KindList         Kind = 'L' // rest of payload
	KindMeter        Kind = 'M' // meter reading
	KindName         Kind = 'N' // encoding byte then name, rest of payload
	KindNonce        Kind = 'O' // 8-byte nonce
	KindBits         Kind = 'R' // rest of payload as a bit mask
	KindSizedBits    Kind = 'T' // length byte then bit mask
	KindValue        Kind = 'V' // size byte then big-endian value
	KindReading      Kind = 'X' // precision/scale/size byte then value
	KindTargets      Kind = 't' // count then words, if present
	KindCommand      Kind = 'I' // nested command, rest of payload
)

func (k Kind) String() string {
	return string(rune(k))
}

// Optional reports whether a field of this kind may be absent.
func (k Kind) Optional() bool {
	return k == KindOptionalByte || k == KindTargets
}

// Field is one entry of a command's schema.
type Field struct {
	Kind Kind
	Name string
}

func (f Field) String() string {
	return fmt.Sprintf("%s{%s}", f.Kind, f.Name)
}

type entry struct {
	key    Key
	name   string
	fields []Field
}

var (
	byKey  map[Key]*entry
	byName map[string]Key
)

func init() {
	byKey = make(map[Key]*entry, len(registry))
	byName = make(map[string]Key, len(registry)+len(customNames))
	for i := range registry {
		e := &registry[i]
		if _, dup := byKey[e.key]; dup {
			panic(fmt.Sprintf("command: duplicate key %02x:%02x", uint16(e.key.Class), e.key.Command))
		}
		byKey[e.key] = e
		byName[e.name] = e.key
	}
	for k, name := range customNames {
		byName[name] = k
	}
}

// Known reports whether the table has a schema for k.
func Known(k Key) bool {
	_, ok := byKey[k]
	return ok
}

// Schema returns a copy of the field list registered for k.
func Schema(k Key) ([]Field, bool) {
	e, ok := byKey[k]
	if !ok {
		return nil, false
	}
	return append([]Field(nil), e.fields...), true
}

// Lookup returns the key registered under name, e.g. "Basic_Set".
func Lookup(name string) (Key, bool) {
	k, ok := byName[name]
	return k, ok
}

// Keys returns every registered wire command in table order.
func Keys() []Key {
	out := make([]Key, len(registry))
	for i := range registry {
		out[i] = registry[i].key
	}
	return out
}

// CommandsOf returns the registered commands of class c.
func CommandsOf(c Class) []Key {
	var out []Key
	for i := range registry {
		if registry[i].key.Class == c {
			out = append(out, registry[i].key)
		}
	}
	return out
}

// StringifyCommand returns the registered name of k, or
// "Unknown:cc:ii" for pairs the table does not know.
func StringifyCommand(k Key) string {
	if e, ok := byKey[k]; ok {
		return e.name
	}
	if name, ok := customNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown:%02x:%02x", uint16(k.Class), k.Command)
}

// StringifyCommandClass returns the registered name of c.
func StringifyCommandClass(c Class) string {
	if c == ClassCustom {
		return "_Custom"
	}
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN:%d", uint16(c))
}

func (c Class) String() string {
	return StringifyCommandClass(c)
}

// KindLabel is the display label of a value reported under k. A trailing
// "Report" or "_Report" is dropped, so "Battery_Report" becomes "Battery".
func KindLabel(k Key) string {
	name := StringifyCommand(k)
	if trimmed, ok := strings.CutSuffix(name, "_Report"); ok {
		return trimmed
	}
	return strings.TrimSuffix(name, "Report")
}
