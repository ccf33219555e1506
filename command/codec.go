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
	"bytes"
	"encoding/binary"
	"fmt"
)

// Parse decodes payload, the bytes following the class and command ids,
// against the schema registered for k. Bytes beyond the last field are
// ignored so that newer command versions still parse.
func Parse(k Key, payload []byte) (Values, error) {
	e, ok := byKey[k]
	if !ok {
		return nil, &ParseError{Key: k, Data: payload, Err: ErrUnknownCommand}
	}
	out := make(Values, len(e.fields))
	i := 0
	for _, f := range e.fields {
		next, v, err := parseField(f.Kind, payload, i)
		if err != nil {
			return nil, &ParseError{Key: k, Field: f.Name, Offset: i, Data: payload, Err: err}
		}
		if v != nil {
			out[f.Name] = v
		}
		i = next
	}
	return out, nil
}

// ParseCommand decodes a complete command: class id, command id and
// payload. Known firmware defects are repaired first on a private copy.
func ParseCommand(data []byte) (Key, Values, error) {
	if len(data) < 2 {
		return Key{}, nil, fmt.Errorf("parse command % x: %w", data, ErrMalformed)
	}
	data = MaybePatch(bytes.Clone(data))
	k := Key{Class: Class(data[0]), Command: data[1]}
	v, err := Parse(k, data[2:])
	return k, v, err
}

// Assemble encodes a complete command for k from v, class and command id
// included. It fails on missing required fields, fields of the wrong type
// and values that do not fit their wire width.
func Assemble(k Key, v Values) ([]byte, error) {
	e, ok := byKey[k]
	if !ok {
		return nil, &AssembleError{Key: k, Err: ErrUnknownCommand}
	}
	out := []byte{byte(k.Class), k.Command}
	for _, f := range e.fields {
		x, present := v[f.Name]
		if !present || x == nil {
			if f.Kind.Optional() {
				continue
			}
			return nil, &AssembleError{Key: k, Field: f.Name, Err: ErrMissingField}
		}
		var err error
		out, err = assembleField(out, f.Kind, x)
		if err != nil {
			return nil, &AssembleError{Key: k, Field: f.Name, Value: x, Err: err}
		}
	}
	return out, nil
}

// MaybePatch repairs, in place, reports from firmware that is known to
// produce invalid encodings. It returns the repaired command, which may be
// longer than data.
func MaybePatch(data []byte) []byte {
	if len(data) < 2 {
		return data
	}
	k := Key{Class: Class(data[0]), Command: data[1]}
	switch k {
	case SensorMultilevelReport:
		if len(data) < 4 || data[2] != sensorTemperature {
			return data
		}
		// Size larger than the payload: these devices send one decimal,
		// Celsius, two bytes.
		if int(data[3]&0x07) > len(data)-4 {
			data[3] = 1<<5 | 0<<3 | 2
		}
		// Scale bit from an obsolete revision of the temperature encoding.
		if data[3]&0x10 != 0 {
			data[3] &= 0xe7
		}
	case VersionCommandClassReport:
		if len(data) == 3 {
			data = append(data, 1)
		}
	}
	return data
}

const sensorTemperature = 1

func need(data []byte, i, n int) error {
	if n < 0 || i+n > len(data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformed, n, i, len(data)-i)
	}
	return nil
}

func parseField(kind Kind, data []byte, i int) (int, any, error) {
	switch kind {
	case KindByte:
		if err := need(data, i, 1); err != nil {
			return i, nil, err
		}
		return i + 1, int(data[i]), nil
	case KindOptionalByte:
		if i >= len(data) {
			return i, nil, nil
		}
		return i + 1, int(data[i]), nil
	case KindWord:
		if err := need(data, i, 2); err != nil {
			return i, nil, err
		}
		return i + 2, int(binary.BigEndian.Uint16(data[i:])), nil
	case KindInt24:
		if err := need(data, i, 3); err != nil {
			return i, nil, err
		}
		return i + 3, int(data[i])<<16 | int(data[i+1])<<8 | int(data[i+2]), nil
	case KindString:
		if err := need(data, i, 1); err != nil {
			return i, nil, err
		}
		size := int(data[i])
		if err := need(data, i+1, size); err != nil {
			return i, nil, err
		}
		return i + 1 + size, bytes.Clone(data[i+1 : i+1+size]), nil
	case KindDate:
		if err := need(data, i, 7); err != nil {
			return i, nil, err
		}
		return i + 7, Date{
			Year:   int(binary.BigEndian.Uint16(data[i:])),
			Month:  int(data[i+2]),
			Day:    int(data[i+3]),
			Hour:   int(data[i+4]),
			Minute: int(data[i+5]),
			Second: int(data[i+6]),
		}, nil
	case KindExtensions:
		return parseExtensions(data, i)
	case KindText:
		if err := need(data, i, 1); err != nil {
			return i, nil, err
		}
		size := int(data[i] & 0x1f)
		if err := need(data, i+1, size); err != nil {
			return i, nil, err
		}
		return i + 1 + size, Text{Encoding: int(data[i] >> 5), Text: bytes.Clone(data[i+1 : i+1+size])}, nil
	case KindGroups:
		if (len(data)-i)%7 != 0 {
			return i, nil, fmt.Errorf("%w: group records of %d bytes", ErrMalformed, len(data)-i)
		}
		groups := []Group{}
		for ; i < len(data); i += 7 {
			groups = append(groups, Group{
				Number:  int(data[i]),
				Profile: int(binary.BigEndian.Uint16(data[i+2:])),
				Event:   int(binary.BigEndian.Uint16(data[i+5:])),
			})
		}
		return i, groups, nil
	case KindKey:
		if err := need(data, i, 16); err != nil {
			return i, nil, err
		}
		return i + 16, bytes.Clone(data[i : i+16]), nil
	case KindList:
		if i > len(data) {
			i = len(data)
		}
		return len(data), bytes.Clone(data[i:]), nil
	case KindMeter:
		return parseMeter(data, i)
	case KindName:
		if err := need(data, i, 1); err != nil {
			return i, nil, err
		}
		return len(data), bytes.Clone(data[i:]), nil
	case KindNonce:
		if err := need(data, i, 8); err != nil {
			return i, nil, err
		}
		return i + 8, bytes.Clone(data[i : i+8]), nil
	case KindBits:
		if i > len(data) {
			i = len(data)
		}
		return len(data), Bitmask(bytes.Clone(data[i:])), nil
	case KindSizedBits:
		if err := need(data, i, 1); err != nil {
			return i, nil, err
		}
		size := int(data[i])
		if err := need(data, i+1, size); err != nil {
			return i, nil, err
		}
		return i + 1 + size, Bitmask(bytes.Clone(data[i+1 : i+1+size])), nil
	case KindValue:
		if err := need(data, i, 1); err != nil {
			return i, nil, err
		}
		size := int(data[i] & 0x07)
		if err := need(data, i+1, size); err != nil {
			return i, nil, err
		}
		var v uint64
		for _, c := range data[i+1 : i+1+size] {
			v = v<<8 | uint64(c)
		}
		return i + 1 + size, SizedValue{Size: size, Value: v}, nil
	case KindReading:
		return parseReading(data, i)
	case KindTargets:
		if i >= len(data) {
			return i, nil, nil
		}
		n := int(data[i])
		if err := need(data, i+1, 2*n); err != nil {
			return i, nil, err
		}
		targets := make([]int, n)
		for j := range targets {
			targets[j] = int(binary.BigEndian.Uint16(data[i+1+2*j:]))
		}
		return i + 1 + 2*n, targets, nil
	case KindCommand:
		if err := need(data, i, 2); err != nil {
			return i, nil, err
		}
		k, v, err := ParseCommand(data[i:])
		if err != nil {
			return i, nil, err
		}
		return len(data), Command{Key: k, Values: v}, nil
	default:
		return i, nil, fmt.Errorf("%w: descriptor %q", ErrMalformed, kind)
	}
}

func parseReading(data []byte, i int) (int, any, error) {
	if err := need(data, i, 2); err != nil {
		return i, nil, err
	}
	c := data[i]
	size := int(c & 0x07)
	if size != 1 && size != 2 && size != 4 {
		return i, nil, fmt.Errorf("%w: reading size %d", ErrMalformed, size)
	}
	if err := need(data, i+1, size); err != nil {
		return i, nil, err
	}
	return i + 1 + size, Reading{
		Exp:      int(c >> 5),
		Unit:     int(c>>3) & 0x03,
		Mantissa: bytes.Clone(data[i+1 : i+1+size]),
	}, nil
}

func parseMeter(data []byte, i int) (int, any, error) {
	if err := need(data, i, 2); err != nil {
		return i, nil, err
	}
	c1, c2 := data[i], data[i+1]
	size := int(c2 & 0x07)
	m := Meter{
		Type: int(c1 & 0x1f),
		Rate: int(c1&0x60) >> 5,
		Unit: int(c2&0x18)>>3 | int(c1&0x80)>>5,
		Exp:  int(c2 >> 5),
	}
	i += 2
	if err := need(data, i, size); err != nil {
		return i, nil, err
	}
	m.Mantissa = bytes.Clone(data[i : i+size])
	i += size
	if i+2 <= len(data) {
		m.Delta = int(binary.BigEndian.Uint16(data[i:]))
		m.HasDelta = true
		i += 2
		if i+size <= len(data) {
			m.Previous = bytes.Clone(data[i : i+size])
			i += size
		}
	}
	return i, m, nil
}

func parseExtensions(data []byte, i int) (int, any, error) {
	if err := need(data, i, 1); err != nil {
		return i, nil, err
	}
	e := Encapsulation{Mode: data[i]}
	i++
	more := e.Mode&0x01 != 0
	for more {
		if err := need(data, i, 2); err != nil {
			return i, nil, err
		}
		size, typ := int(data[i]), data[i+1]
		if size < 2 {
			return i, nil, fmt.Errorf("%w: extension length %d", ErrMalformed, size)
		}
		if err := need(data, i, size); err != nil {
			return i, nil, err
		}
		e.Extensions = append(e.Extensions, Extension{Type: typ, Data: bytes.Clone(data[i+2 : i+size])})
		i += size
		more = typ&0x80 != 0
	}
	e.Ciphertext = bytes.Clone(data[i:])
	return len(data), e, nil
}

func checkRange(v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, v, lo, hi)
	}
	return nil
}

func wrongType(v any) error {
	return fmt.Errorf("%w: unexpected type %T", ErrMalformed, v)
}

func assembleInt(out []byte, v any, width int) ([]byte, error) {
	n, ok := toInt(v)
	if !ok {
		return nil, wrongType(v)
	}
	if err := checkRange(n, 0, 1<<(8*width)-1); err != nil {
		return nil, err
	}
	for s := (width - 1) * 8; s >= 0; s -= 8 {
		out = append(out, byte(n>>s))
	}
	return out, nil
}

func asBytes(v any) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case Bitmask:
		return b, true
	default:
		return nil, false
	}
}

func assembleField(out []byte, kind Kind, v any) ([]byte, error) {
	switch kind {
	case KindByte, KindOptionalByte:
		return assembleInt(out, v, 1)
	case KindWord:
		return assembleInt(out, v, 2)
	case KindInt24:
		return assembleInt(out, v, 3)
	case KindString, KindSizedBits:
		b, ok := asBytes(v)
		if !ok {
			return nil, wrongType(v)
		}
		if err := checkRange(len(b), 0, 0xff); err != nil {
			return nil, err
		}
		out = append(out, byte(len(b)))
		return append(out, b...), nil
	case KindList, KindName, KindBits:
		b, ok := asBytes(v)
		if !ok {
			return nil, wrongType(v)
		}
		if kind == KindName && len(b) == 0 {
			return nil, fmt.Errorf("%w: empty name", ErrMalformed)
		}
		return append(out, b...), nil
	case KindKey, KindNonce:
		b, ok := asBytes(v)
		if !ok {
			return nil, wrongType(v)
		}
		size := 16
		if kind == KindNonce {
			size = 8
		}
		if len(b) != size {
			return nil, fmt.Errorf("%w: %d bytes, want %d", ErrOutOfRange, len(b), size)
		}
		return append(out, b...), nil
	case KindDate:
		d, ok := v.(Date)
		if !ok {
			return nil, wrongType(v)
		}
		if err := checkRange(d.Year, 0, 0xffff); err != nil {
			return nil, err
		}
		out = binary.BigEndian.AppendUint16(out, uint16(d.Year))
		for _, n := range []int{d.Month, d.Day, d.Hour, d.Minute, d.Second} {
			if err := checkRange(n, 0, 0xff); err != nil {
				return nil, err
			}
			out = append(out, byte(n))
		}
		return out, nil
	case KindExtensions:
		e, ok := v.(Encapsulation)
		if !ok {
			return nil, wrongType(v)
		}
		for _, x := range e.Extensions {
			if err := checkRange(len(x.Data)+2, 2, 0xff); err != nil {
				return nil, err
			}
		}
		out = append(out, e.Header()...)
		return append(out, e.Ciphertext...), nil
	case KindText:
		t, ok := v.(Text)
		if !ok {
			return nil, wrongType(v)
		}
		if err := checkRange(t.Encoding, 0, 7); err != nil {
			return nil, err
		}
		if err := checkRange(len(t.Text), 0, 0x1f); err != nil {
			return nil, err
		}
		out = append(out, byte(t.Encoding<<5|len(t.Text)))
		return append(out, t.Text...), nil
	case KindGroups:
		groups, ok := v.([]Group)
		if !ok {
			return nil, wrongType(v)
		}
		for _, g := range groups {
			if err := checkRange(g.Number, 0, 0xff); err != nil {
				return nil, err
			}
			if err := checkRange(g.Profile, 0, 0xffff); err != nil {
				return nil, err
			}
			if err := checkRange(g.Event, 0, 0xffff); err != nil {
				return nil, err
			}
			out = append(out, byte(g.Number), 0, byte(g.Profile>>8), byte(g.Profile), 0, byte(g.Event>>8), byte(g.Event))
		}
		return out, nil
	case KindMeter:
		m, ok := v.(Meter)
		if !ok {
			return nil, wrongType(v)
		}
		return assembleMeter(out, m)
	case KindValue:
		sv, ok := v.(SizedValue)
		if !ok {
			return nil, wrongType(v)
		}
		if err := checkRange(sv.Size, 0, 7); err != nil {
			return nil, err
		}
		if sv.Size < 8 && sv.Value>>(8*sv.Size) != 0 {
			return nil, fmt.Errorf("%w: %d does not fit in %d bytes", ErrOutOfRange, sv.Value, sv.Size)
		}
		out = append(out, byte(sv.Size))
		for s := (sv.Size - 1) * 8; s >= 0; s -= 8 {
			out = append(out, byte(sv.Value>>s))
		}
		return out, nil
	case KindReading:
		r, ok := v.(Reading)
		if !ok {
			return nil, wrongType(v)
		}
		size := len(r.Mantissa)
		if size != 1 && size != 2 && size != 4 {
			return nil, fmt.Errorf("%w: mantissa of %d bytes", ErrOutOfRange, size)
		}
		if err := checkRange(r.Exp, 0, 7); err != nil {
			return nil, err
		}
		if err := checkRange(r.Unit, 0, 3); err != nil {
			return nil, err
		}
		out = append(out, byte(r.Exp<<5|r.Unit<<3|size))
		return append(out, r.Mantissa...), nil
	case KindTargets:
		targets, ok := v.([]int)
		if !ok {
			return nil, wrongType(v)
		}
		if err := checkRange(len(targets), 0, 0xff); err != nil {
			return nil, err
		}
		out = append(out, byte(len(targets)))
		for _, t := range targets {
			if err := checkRange(t, 0, 0xffff); err != nil {
				return nil, err
			}
			out = binary.BigEndian.AppendUint16(out, uint16(t))
		}
		return out, nil
	case KindCommand:
		c, ok := v.(Command)
		if !ok {
			return nil, wrongType(v)
		}
		inner, err := Assemble(c.Key, c.Values)
		if err != nil {
			return nil, err
		}
		return append(out, inner...), nil
	default:
		return nil, fmt.Errorf("%w: descriptor %q", ErrMalformed, kind)
	}
}

func assembleMeter(out []byte, m Meter) ([]byte, error) {
	for _, r := range [][3]int{{m.Type, 0, 0x1f}, {m.Rate, 0, 3}, {m.Unit, 0, 7}, {m.Exp, 0, 7}, {len(m.Mantissa), 0, 7}} {
		if err := checkRange(r[0], r[1], r[2]); err != nil {
			return nil, err
		}
	}
	size := len(m.Mantissa)
	out = append(out,
		byte((m.Unit&0x04)<<5|m.Rate<<5|m.Type),
		byte(m.Exp<<5|(m.Unit&0x03)<<3|size))
	out = append(out, m.Mantissa...)
	if !m.HasDelta && m.Previous == nil {
		return out, nil
	}
	if err := checkRange(m.Delta, 0, 0xffff); err != nil {
		return nil, err
	}
	out = binary.BigEndian.AppendUint16(out, uint16(m.Delta))
	if m.Previous != nil {
		if len(m.Previous) != size {
			return nil, fmt.Errorf("%w: previous reading of %d bytes, want %d", ErrOutOfRange, len(m.Previous), size)
		}
		out = append(out, m.Previous...)
	}
	return out, nil
}
