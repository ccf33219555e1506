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

package security

import (
	"crypto/aes"
	"crypto/subtle"
	"fmt"
)

const seedSize = 2 * aes.BlockSize

// CTRDRBG is the NIST SP 800-90A CTR_DRBG with AES-128, no derivation
// function and no reseeding, as SPAN requires. General purpose DRBG
// packages run the derivation function over their inputs, which yields a
// different stream than the one both S2 peers must agree on.
type CTRDRBG struct {
	key [aes.BlockSize]byte
	v   [aes.BlockSize]byte
}

// NewCTRDRBG instantiates the generator from 32 bytes of entropy and an
// optional 32 byte personalization string.
func NewCTRDRBG(entropy, personalization []byte) (*CTRDRBG, error) {
	if len(entropy) != seedSize {
		return nil, fmt.Errorf("%w: entropy is %d bytes", ErrInvalidEntropy, len(entropy))
	}
	seed := make([]byte, seedSize)
	copy(seed, entropy)
	if personalization != nil {
		if len(personalization) != seedSize {
			return nil, fmt.Errorf("%w: personalization is %d bytes", ErrInvalidEntropy, len(personalization))
		}
		subtle.XORBytes(seed, seed, personalization)
	}
	d := &CTRDRBG{}
	if err := d.update(seed); err != nil {
		return nil, err
	}
	return d, nil
}

func increment(v []byte) {
	for i := len(v) - 1; i >= 0; i-- {
		v[i]++
		if v[i] != 0 {
			return
		}
	}
}

func (d *CTRDRBG) update(data []byte) error {
	block, err := aes.NewCipher(d.key[:])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	var tmp [seedSize]byte
	for i := 0; i < seedSize; i += aes.BlockSize {
		increment(d.v[:])
		block.Encrypt(tmp[i:], d.v[:])
	}
	subtle.XORBytes(tmp[:], tmp[:], data)
	copy(d.key[:], tmp[:aes.BlockSize])
	copy(d.v[:], tmp[aes.BlockSize:])
	clearKey(tmp[:])
	return nil
}

// Generate returns n pseudo random bytes. additional, when not nil, must
// be 32 bytes and is mixed in before and after generation.
func (d *CTRDRBG) Generate(n int, additional []byte) ([]byte, error) {
	if additional != nil {
		if len(additional) != seedSize {
			return nil, fmt.Errorf("%w: additional input is %d bytes", ErrInvalidEntropy, len(additional))
		}
		if err := d.update(additional); err != nil {
			return nil, err
		}
	} else {
		additional = make([]byte, seedSize)
	}

	block, err := aes.NewCipher(d.key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	out := make([]byte, 0, n+aes.BlockSize)
	var buf [aes.BlockSize]byte
	for len(out) < n {
		increment(d.v[:])
		block.Encrypt(buf[:], d.v[:])
		out = append(out, buf[:]...)
	}
	if err := d.update(additional); err != nil {
		return nil, err
	}
	return out[:n], nil
}
