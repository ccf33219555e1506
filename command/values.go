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
	"math"
	"unicode/utf16"
)

// Values is a decoded command payload keyed by field name. The dynamic
// type of each entry is fixed by the field's Kind:
//
//	B b W 3        int
//	t              []int
//	A K L N O      []byte
//	C              Date
//	E              Encapsulation
//	F              Text
//	G              []Group
//	M              Meter
//	R T            Bitmask
//	V              SizedValue
//	X              Reading
//	I              Command
type Values map[string]any

// As returns the named field converted to T.
func As[T any](v Values, name string) (T, bool) {
	x, ok := v[name].(T)
	return x, ok
}

// Int returns an integer field.
func (v Values) Int(name string) (int, bool) {
	n, ok := toInt(v[name])
	return n, ok
}

// Bytes returns a byte-list field.
func (v Values) Bytes(name string) ([]byte, bool) {
	return As[[]byte](v, name)
}

// Reading is a sensor or setpoint value: a signed big-endian mantissa
// scaled by 10^-Exp.
type Reading struct {
	Mantissa []byte
	Exp      int
	Unit     int
}

// NewReading encodes value with exp decimal places in the smallest
// mantissa that holds it.
func NewReading(value float64, exp, unit int) (Reading, error) {
	m, err := encodeScaled(value, exp)
	if err != nil {
		return Reading{}, err
	}
	return Reading{Mantissa: m, Exp: exp, Unit: unit}, nil
}

// Value returns the scaled reading.
func (r Reading) Value() float64 {
	return scaled(r.Mantissa, r.Exp)
}

// Meter is a meter report value.
type Meter struct {
	Mantissa []byte
	Previous []byte
	Type     int
	Unit     int
	Exp      int
	Rate     int
	Delta    int
	HasDelta bool
}

// Value returns the current scaled reading.
func (m Meter) Value() float64 {
	return scaled(m.Mantissa, m.Exp)
}

// PreviousValue returns the scaled previous reading, if reported.
func (m Meter) PreviousValue() (float64, bool) {
	if m.Previous == nil {
		return 0, false
	}
	return scaled(m.Previous, m.Exp), true
}

// SizedValue is an unsigned value with an explicit byte width, as used by
// configuration parameters.
type SizedValue struct {
	Size  int
	Value uint64
}

// Bitmask is a little-endian bit set: bit i lives in byte i/8.
type Bitmask []byte

// Has reports whether bit i is set.
func (b Bitmask) Has(i int) bool {
	if i < 0 || i/8 >= len(b) {
		return false
	}
	return b[i/8]&(1<<(i%8)) != 0
}

// List returns the indices of all set bits in ascending order.
func (b Bitmask) List() []int {
	var out []int
	for i := range len(b) * 8 {
		if b.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// BitmaskOf builds the smallest mask with the given bits set.
func BitmaskOf(bits ...int) Bitmask {
	size := 0
	for _, i := range bits {
		size = max(size, i/8+1)
	}
	b := make(Bitmask, size)
	for _, i := range bits {
		if i >= 0 {
			b[i/8] |= 1 << (i % 8)
		}
	}
	return b
}

// Text is a short string with its character encoding id.
type Text struct {
	Text     []byte
	Encoding int
}

// Date is a calendar timestamp.
type Date struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// Group is one association group information record.
type Group struct {
	Number  int
	Profile int
	Event   int
}

// Extension is one S2 header extension.
type Extension struct {
	Data []byte
	Type byte
}

// Encapsulation is the body of an S2 encapsulated message.
type Encapsulation struct {
	Extensions []Extension
	Ciphertext []byte
	Mode       byte
}

// Header returns the unencrypted bytes preceding the ciphertext. They are
// part of the associated data of the authenticated encryption.
func (e Encapsulation) Header() []byte {
	out := []byte{e.Mode}
	for _, x := range e.Extensions {
		out = append(out, byte(len(x.Data)+2), x.Type)
		out = append(out, x.Data...)
	}
	return out
}

// Command is a nested command carried by an encapsulation.
type Command struct {
	Values Values
	Key    Key
}

// DecodeName decodes a name field: the low two bits of the first byte pick
// ASCII, Latin-1 or UTF-16BE.
func DecodeName(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	data := b[1:]
	switch b[0] & 3 {
	case 1:
		r := make([]rune, len(data))
		for i, c := range data {
			r[i] = rune(c)
		}
		return string(r)
	case 2:
		u := make([]uint16, len(data)/2)
		for i := range u {
			u[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
		}
		return string(utf16.Decode(u))
	default:
		return string(data)
	}
}

func signedValue(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	var x int64
	if b[0]&0x80 != 0 {
		x = -1
	}
	for _, c := range b {
		x = x<<8 | int64(c)
	}
	return x
}

func scaled(b []byte, exp int) float64 {
	return float64(signedValue(b)) / math.Pow10(exp)
}

// encodeSigned returns the shortest of 1, 2 or 4 two's complement bytes
// holding v.
func encodeSigned(v int64) ([]byte, error) {
	mag := v
	if v < 0 {
		mag = -v - 1
	}
	var size int
	switch {
	case mag <= 0x7f:
		size = 1
	case mag <= 0x7fff:
		size = 2
	case mag <= 0x7fffffff:
		size = 4
	default:
		return nil, ErrOutOfRange
	}
	out := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out, nil
}

func encodeScaled(value float64, exp int) ([]byte, error) {
	if exp < 0 || exp > 7 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, ErrOutOfRange
	}
	r := math.Round(value * math.Pow10(exp))
	if r < math.MinInt32 || r > math.MaxInt32 {
		return nil, ErrOutOfRange
	}
	return encodeSigned(int64(r))
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true //nolint:gosec // field widths are at most 24 bits
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true //nolint:gosec // field widths are at most 24 bits
	default:
		return 0, false
	}
}
