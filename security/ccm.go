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
	"fmt"

	"github.com/pion/dtls/v3/pkg/crypto/ccm"
)

// newCCM returns AES-CCM (RFC 3610) with the S2 13 byte nonce and 8 byte
// tag.
func newCCM(key []byte) (ccm.CCM, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	c, err := ccm.NewCCM(block, TagSize, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("security: ccm: %w", err)
	}
	return c, nil
}

// checkCCM rejects what the AEAD would panic on.
func checkCCM(c ccm.CCM, nonce []byte, n int) error {
	if len(nonce) != NonceSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidNonce, len(nonce))
	}
	if n > c.MaxLength() {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLong, n)
	}
	return nil
}

func seal(c ccm.CCM, nonce, data, additional []byte) ([]byte, error) {
	if err := checkCCM(c, nonce, len(data)); err != nil {
		return nil, err
	}
	return c.Seal(make([]byte, 0, len(data)+TagSize), nonce, data, additional), nil
}

func open(c ccm.CCM, nonce, sealed, additional []byte) ([]byte, error) {
	if len(sealed) < TagSize {
		return nil, ErrAuthentication
	}
	n := len(sealed) - TagSize
	if err := checkCCM(c, nonce, n); err != nil {
		return nil, err
	}
	out, err := c.Open(make([]byte, 0, n), nonce, sealed, additional)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return out, nil
}
