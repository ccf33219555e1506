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
	"bytes"
	"fmt"
)

var (
	constantPRK   = bytes.Repeat([]byte{0x33}, KeySize)
	constantNonce = bytes.Repeat([]byte{0x26}, KeySize)
)

// constant15 is fifteen copies of a followed by b.
func constant15(a, b byte) []byte {
	out := bytes.Repeat([]byte{a}, 16)
	out[15] = b
	return out
}

// TempExtract derives the pseudo random key of the temporary key exchange
// from the ECDH shared secret and both public keys, the including node's
// key first.
func TempExtract(sharedSecret, ownPublic, peerPublic []byte) ([]byte, error) {
	in := make([]byte, 0, len(sharedSecret)+len(ownPublic)+len(peerPublic))
	in = append(in, sharedSecret...)
	in = append(in, ownPublic...)
	in = append(in, peerPublic...)
	return CMAC(constantPRK, in)
}

// TempExpand expands the pseudo random key into the temporary CCM key and
// the 32 byte personalization string.
func TempExpand(prk []byte) (key, personalization []byte, err error) {
	t1, err := CMAC(prk, constant15(0x88, 0x01))
	if err != nil {
		return nil, nil, err
	}
	t2, err := CMAC(prk, append(bytes.Clone(t1), constant15(0x88, 0x02)...))
	if err != nil {
		return nil, nil, err
	}
	t3, err := CMAC(prk, append(bytes.Clone(t2), constant15(0x88, 0x03)...))
	if err != nil {
		return nil, nil, err
	}
	return t1, append(t2, t3...), nil
}

// MeiExtract derives the nonce pseudo random key from the sender's and
// receiver's entropy inputs.
func MeiExtract(senderEntropy, receiverEntropy []byte) ([]byte, error) {
	if len(senderEntropy) != EntropySize || len(receiverEntropy) != EntropySize {
		return nil, fmt.Errorf("%w: sender %d, receiver %d bytes",
			ErrInvalidEntropy, len(senderEntropy), len(receiverEntropy))
	}
	return CMAC(constantNonce, append(bytes.Clone(senderEntropy), receiverEntropy...))
}

// MeiExpand expands the nonce pseudo random key into the 32 byte mixed
// entropy input that seeds the SPAN generator.
func MeiExpand(noncePRK []byte) ([]byte, error) {
	t0 := constant15(0x88, 0x00)
	t1, err := CMAC(noncePRK, append(t0, constant15(0x88, 0x01)...))
	if err != nil {
		return nil, err
	}
	t2, err := CMAC(noncePRK, append(bytes.Clone(t1), constant15(0x88, 0x02)...))
	if err != nil {
		return nil, err
	}
	return append(t1, t2...), nil
}
