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

// SPAN is the singlecast pre-agreed nonce generator of one peer. Both
// sides seed it from the entropy they exchanged in nonce reports and then
// draw identical 13 byte nonces from it.
type SPAN struct {
	drbg *CTRDRBG
}

// NewSPAN seeds a generator from both entropy inputs and the
// personalization string of the current key.
func NewSPAN(senderEntropy, receiverEntropy, personalization []byte) (*SPAN, error) {
	prk, err := MeiExtract(senderEntropy, receiverEntropy)
	if err != nil {
		return nil, err
	}
	mei, err := MeiExpand(prk)
	if err != nil {
		return nil, err
	}
	defer clearKey(mei)
	drbg, err := NewCTRDRBG(mei, personalization)
	if err != nil {
		return nil, err
	}
	return &SPAN{drbg: drbg}, nil
}

// Next returns the next nonce.
func (s *SPAN) Next() ([]byte, error) {
	if s == nil || s.drbg == nil {
		return nil, ErrSpanNotSynchronized
	}
	return s.drbg.Generate(NonceSize, nil)
}
