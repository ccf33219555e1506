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

// Package security builds Z-Wave S2 bootstrapping on existing primitives:
// X25519 from x/crypto, AES-CMAC from aead/cmac and AES-CCM from pion/dtls.
// It adds the CMAC based key derivations and the AES-128 CTR_DRBG behind
// the SPAN nonce generator.
//
// Handshake plugs these into node.Endpoint as its SecurityHook.
package security

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sizes used throughout S2.
const (
	KeySize             = 16
	PublicKeySize       = 32
	PersonalizationSize = 32
	EntropySize         = 16
	NonceSize           = 13
	TagSize             = 8
)

// Errors returned by the security package.
var (
	ErrInvalidKey          = errors.New("security: invalid key")
	ErrInvalidNonce        = errors.New("security: invalid nonce")
	ErrInvalidEntropy      = errors.New("security: invalid entropy")
	ErrAuthentication      = errors.New("security: message authentication failed")
	ErrMessageTooLong      = errors.New("security: message too long")
	ErrNotReady            = errors.New("security: key agreement not completed")
	ErrSpanNotSynchronized = errors.New("security: SPAN not synchronized")
)

// Encrypt seals data with AES-CCM under key and the 13 byte nonce,
// authenticating additional alongside it. The result is the ciphertext
// followed by the 8 byte tag.
func Encrypt(key, nonce, data, additional []byte) ([]byte, error) {
	c, err := newCCM(key)
	if err != nil {
		return nil, err
	}
	return seal(c, nonce, data, additional)
}

// Decrypt opens a ciphertext produced by Encrypt. It returns
// ErrAuthentication when the tag does not verify.
func Decrypt(key, nonce, sealed, additional []byte) ([]byte, error) {
	c, err := newCCM(key)
	if err != nil {
		return nil, err
	}
	return open(c, nonce, sealed, additional)
}

// AdditionalData builds the authenticated data of a Security 2 message
// encapsulation: sender, destination, home id, total message length and
// the unencrypted header starting with the sequence number.
func AdditionalData(src, dst byte, homeID uint32, messageLen int, header []byte) []byte {
	out := make([]byte, 0, 8+len(header))
	out = append(out, src, dst)
	out = binary.BigEndian.AppendUint32(out, homeID)
	out = binary.BigEndian.AppendUint16(out, uint16(messageLen)) //nolint:gosec // S2 frames are far below 64K
	return append(out, header...)
}

func checkKey(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidKey, len(key))
	}
	return nil
}

// clearKey overwrites key material.
func clearKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}
